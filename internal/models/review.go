package models

import "strings"

// ReviewSettings carries the free-text preference override supplied by the viewer
type ReviewSettings struct {
	PreferenceText string `json:"preferenceText"`
}

// ReviewRequest is the body accepted by the review generation endpoints
type ReviewRequest struct {
	Title        string         `json:"title"`
	Settings     ReviewSettings `json:"settings"`
	SwipeContext *TasteProfile  `json:"swipeContext,omitempty"`
}

// GenerationRequest is the immutable input of one review generation.
// PriorSignal is an optional taste summary from earlier swipes or votes.
type GenerationRequest struct {
	Title          string
	PriorSignal    *TasteProfile
	PreferenceText string
}

// IsGeneric reports whether no viewer-specific preference text was supplied
func (r GenerationRequest) IsGeneric() bool {
	return strings.TrimSpace(r.PreferenceText) == ""
}

// Source is one citation backing a generated review
type Source struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	Note   string `json:"note"`
}

// ReviewResult is the terminal structured payload of a review generation
type ReviewResult struct {
	Title          string   `json:"title"`
	Year           int      `json:"year"`
	Genres         []string `json:"genres"`
	RuntimeMinutes int      `json:"runtime"`
	Rating         float64  `json:"rating"`
	Cast           []string `json:"cast"`
	ShortPlot      string   `json:"shortPlot"`
	Summary        string   `json:"summary"`
	Verdict        string   `json:"verdict"`
	PeopleLikeYou  []string `json:"peopleLikeYou"`
	Sources        []Source `json:"sources"`
	IsGeneric      bool     `json:"isGeneric"`
}
