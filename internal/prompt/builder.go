package prompt

import (
	"encoding/json"
	"strings"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
)

// CurrentDate is the fixed date context given to the reviewer
const CurrentDate = "2026-01-03"

const (
	skillContextHeader = "SKILL CONTEXT:"
	payloadHeader      = "INPUT PAYLOAD:"
)

// ReviewPayload is the structured input embedded at the end of a review prompt
type ReviewPayload struct {
	Title            string                `json:"title"`
	CurrentDate      string                `json:"currentDate"`
	SwipeContext     *models.TasteProfile  `json:"swipeContext"`
	Settings         models.ReviewSettings `json:"settings"`
	IsGenericRequest bool                  `json:"isGenericRequest"`
}

// SwipePayload is the structured input embedded at the end of a swipe analysis prompt
type SwipePayload struct {
	Likes    []models.MovieSignal  `json:"likes"`
	Dislikes []models.MovieSignal  `json:"dislikes"`
	Metadata map[string]any        `json:"metadata,omitempty"`
	Settings models.ReviewSettings `json:"settings"`
}

// Builder renders generation requests into agent prompts.
// Output depends only on the inputs and the loaded skill bundle.
type Builder struct {
	skills *SkillBundle
}

// NewPromptBuilder creates a builder over a loaded skill bundle
func NewPromptBuilder(skills *SkillBundle) *Builder {
	if skills == nil {
		skills = &SkillBundle{}
	}
	return &Builder{skills: skills}
}

// Skills returns the bundle the builder embeds in prompts
func (b *Builder) Skills() *SkillBundle {
	return b.skills
}

// NewReviewPayload resolves the preference text and generic flag for a request
func NewReviewPayload(req models.GenerationRequest) ReviewPayload {
	preferences := req.PreferenceText
	if req.IsGeneric() {
		preferences = DefaultPreferences()
	}
	return ReviewPayload{
		Title:            req.Title,
		CurrentDate:      CurrentDate,
		SwipeContext:     req.PriorSignal,
		Settings:         models.ReviewSettings{PreferenceText: preferences},
		IsGenericRequest: req.IsGeneric(),
	}
}

// BuildReviewPrompt renders a review generation request
func (b *Builder) BuildReviewPrompt(req models.GenerationRequest) string {
	return b.render([]string{
		"You are the movie review synthesis engine for this app.",
		"Use the provided skill documents to personalize explanation style when profile signals are available.",
		"Make the review accurate, fact-aware, and human-friendly in tone.",
		"Treat settings.preferenceText as high-priority reviewer guidance.",
		"When isGenericRequest is true, write for a general audience and set isGeneric to true; otherwise set isGeneric to false and let the verdict reflect the preferences.",
		"Return only valid JSON matching the requested schema. Never include markdown or commentary outside the JSON object.",
	}, NewReviewPayload(req))
}

// BuildSwipePrompt renders a taste profile analysis request
func (b *Builder) BuildSwipePrompt(req models.SwipeRequest) string {
	return b.render([]string{
		"You are the movie preference intelligence engine for this app.",
		"Use the provided skill documents as hard guidance for analysis style and output priorities.",
		"Infer a concise and actionable taste profile from likes/dislikes.",
		"Respect settings.preferenceText as high-priority user intent.",
		"Return only valid JSON matching the requested schema.",
	}, SwipePayload{
		Likes:    nonNilSignals(req.Likes),
		Dislikes: nonNilSignals(req.Dislikes),
		Metadata: req.Metadata,
		Settings: req.Settings,
	})
}

func (b *Builder) render(guidance []string, payload any) string {
	// Payload types contain only strings, numbers, slices and maps, so encoding cannot fail
	data, _ := json.MarshalIndent(payload, "", "  ")

	lines := append([]string{}, guidance...)
	lines = append(lines,
		"",
		skillContextHeader,
		b.skills.Context,
		"",
		payloadHeader,
		string(data),
	)
	return strings.Join(lines, "\n")
}

// ExtractPayload returns the JSON payload embedded in a prompt built by Builder,
// or an empty string when the prompt carries none
func ExtractPayload(prompt string) string {
	idx := strings.LastIndex(prompt, payloadHeader+"\n")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(prompt[idx+len(payloadHeader)+1:])
}

func nonNilSignals(signals []models.MovieSignal) []models.MovieSignal {
	if signals == nil {
		return []models.MovieSignal{}
	}
	return signals
}
