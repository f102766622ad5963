package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/Conceptual-Machines/reelmate-api/internal/review"
)

const (
	likeWeight          = 2
	dislikeWeight       = -1
	maxProfileGenres    = 3
	highConfidenceCount = 6
	midConfidenceCount  = 3
)

// GenreScore is one genre's accumulated preference score
type GenreScore struct {
	Genre string `json:"genre"`
	Score int    `json:"score"`
}

// GenreScores accumulates genre preferences from pairwise votes
type GenreScores struct {
	Scores map[string]int `json:"genreScores"`
	Votes  int            `json:"votes"`
}

// ApplyVersusVote returns new scores with the winner's genres raised by two
// and the loser's genres lowered by one. The input is not modified.
func ApplyVersusVote(scores GenreScores, winner, loser models.MovieSignal) GenreScores {
	next := make(map[string]int, len(scores.Scores)+len(winner.Genres)+len(loser.Genres))
	for genre, score := range scores.Scores {
		next[genre] = score
	}
	for _, genre := range winner.Genres {
		next[genre] += likeWeight
	}
	for _, genre := range loser.Genres {
		next[genre] += dislikeWeight
	}
	return GenreScores{Scores: next, Votes: scores.Votes + 1}
}

// Rank returns genres ordered by descending score, ties broken by name
func (g GenreScores) Rank() []GenreScore {
	ranked := make([]GenreScore, 0, len(g.Scores))
	for genre, score := range g.Scores {
		ranked = append(ranked, GenreScore{Genre: genre, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Genre < ranked[j].Genre
	})
	return ranked
}

// scoreSignals weighs likes and dislikes per genre. Order of first
// appearance is kept so equal scores rank stably.
func scoreSignals(likes, dislikes []models.MovieSignal) []GenreScore {
	index := map[string]int{}
	var scores []GenreScore
	add := func(genre string, delta int) {
		i, ok := index[genre]
		if !ok {
			i = len(scores)
			index[genre] = i
			scores = append(scores, GenreScore{Genre: genre})
		}
		scores[i].Score += delta
	}

	for _, movie := range likes {
		for _, genre := range movie.Genres {
			add(genre, likeWeight)
		}
	}
	for _, movie := range dislikes {
		for _, genre := range movie.Genres {
			add(genre, dislikeWeight)
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// LocalTasteProfile infers a taste profile from swipes without an agent
func LocalTasteProfile(req models.SwipeRequest) models.TasteProfile {
	scores := scoreSignals(req.Likes, req.Dislikes)

	var topGenres, avoidGenres []string
	for _, s := range scores {
		if s.Score > 0 && len(topGenres) < maxProfileGenres {
			topGenres = append(topGenres, s.Genre)
		}
	}
	for _, s := range scores {
		if s.Score < 0 && len(avoidGenres) < maxProfileGenres {
			avoidGenres = append(avoidGenres, s.Genre)
		}
	}

	primary := "character-driven"
	if len(topGenres) > 0 {
		primary = topGenres[0]
	}
	genreList := strings.Join(topGenres, ", ")
	if genreList == "" {
		genreList = "nuanced"
	}

	thesis := fmt.Sprintf("Your swipes suggest a preference for %s stories with coherent tone and pacing.", genreList)
	if note := strings.TrimSpace(req.Settings.PreferenceText); note != "" {
		thesis = fmt.Sprintf("Your swipes plus settings suggest a preference for %s stories. You also asked for: %s", genreList, note)
	}

	dealbreakerLead := "Formulaic"
	if len(avoidGenres) > 0 {
		dealbreakerLead = avoidGenres[0]
	}

	usuallyLike := topGenres
	if len(usuallyLike) == 0 {
		usuallyLike = []string{"Drama", "Sci-Fi", "Thriller"}
	}
	usuallyAvoid := avoidGenres
	if len(usuallyAvoid) == 0 {
		usuallyAvoid = []string{"Predictable romance beats", "Low-stakes comedy"}
	}

	return review.SanitizeTasteProfile(models.TasteProfile{
		PersonaLabel: primary + " Mood Navigator",
		TasteThesis:  thesis,
		GreenFlags: []string{
			primary + " premise with clear stakes",
			"Consistent emotional tone",
			"Strong lead-character arc",
			"Purposeful pacing",
			"Distinct directorial style",
		},
		Dealbreakers: []string{
			dealbreakerLead + " storytelling",
			"Tone that conflicts with your stated mood",
			"Flat or predictable third act",
		},
		Tradeoffs: []string{
			"Long runtime works with strong momentum",
			"Genre-mixing works when character focus remains clear",
			"Experimental style works if story stays understandable",
		},
		ReviewLevers:   []string{"Pacing fit", "Character depth", "Theme clarity", "Emotional tone", "Ending payoff"},
		UsuallyLike:    usuallyLike,
		UsuallyAvoid:   usuallyAvoid,
		DependsOn:      []string{"Runtime vs pacing", "Tone consistency"},
		Recommendation: fmt.Sprintf("Start with a %s pick that matches your current mood and avoid tone-mismatched options.", primary),
		Confidence:     confidenceFor(len(req.Likes) + len(req.Dislikes)),
	})
}

func confidenceFor(signals int) string {
	switch {
	case signals >= highConfidenceCount:
		return models.ConfidenceHigh
	case signals >= midConfidenceCount:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
