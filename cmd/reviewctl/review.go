package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/spf13/cobra"
)

func newReviewCmd(root *rootOptions) *cobra.Command {
	var prefs string
	var quiet bool

	cmd := &cobra.Command{
		Use:     "review <title>",
		Short:   "Stream a review for a movie title",
		Example: `  reviewctl review "Dune Part Two" --prefs "short and witty"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.ReviewRequest{
				Title:    strings.Join(args, " "),
				Settings: models.ReviewSettings{PreferenceText: prefs},
			}

			out := cmd.OutOrStdout()
			onProgress := func(event models.ProgressEvent) {
				if quiet {
					return
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "• %s\n", event.Message)
			}

			result, err := root.client().NewSession().Generate(cmd.Context(), req, onProgress)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		},
	}

	cmd.Flags().StringVar(&prefs, "prefs", "", "reviewer preference text; empty requests a generic review")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress lines")
	return cmd
}
