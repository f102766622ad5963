package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var likesPath, dislikesPath, prefs string

	cmd := &cobra.Command{
		Use:     "analyze",
		Short:   "Infer a taste profile from liked and disliked movies",
		Example: "  reviewctl analyze --likes likes.json --dislikes dislikes.json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			likes, err := readSignals(likesPath)
			if err != nil {
				return err
			}
			dislikes, err := readSignals(dislikesPath)
			if err != nil {
				return err
			}

			profile, err := root.client().AnalyzeSwipes(cmd.Context(), models.SwipeRequest{
				Likes:    likes,
				Dislikes: dislikes,
				Settings: models.ReviewSettings{PreferenceText: prefs},
			})
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(profile)
		},
	}

	cmd.Flags().StringVar(&likesPath, "likes", "", "JSON file with an array of liked movies")
	cmd.Flags().StringVar(&dislikesPath, "dislikes", "", "JSON file with an array of disliked movies")
	cmd.Flags().StringVar(&prefs, "prefs", "", "preference text passed to the analysis")
	return cmd
}

// readSignals loads a JSON array of movies; an empty path yields none
func readSignals(path string) ([]models.MovieSignal, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var signals []models.MovieSignal
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return signals, nil
}
