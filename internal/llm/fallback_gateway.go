package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"unicode/utf16"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/Conceptual-Machines/reelmate-api/internal/prompt"
	"github.com/tidwall/gjson"
)

const (
	providerNameFallback = "fallback"
	fallbackModel        = "local-fallback"
	fallbackTodoCount    = 3
)

// ErrUnsupportedSchema is returned when the fallback gateway is asked for an output it cannot produce
var ErrUnsupportedSchema = errors.New("fallback gateway only generates movie reviews")

var (
	fallbackAdjectives = []string{"focused", "immersive", "inventive", "tense", "emotionally grounded"}
	fallbackViewers    = []string{"Jordan M.", "Priya S.", "Chris A.", "Nadia V.", "Ethan R.", "Mina K."}
	fallbackCastRoles  = []string{"Lead performer", "Co-lead", "Supporting ensemble", "Scene-stealing antagonist", "Mentor figure"}
)

// FallbackGateway generates deterministic reviews without network access.
// The output is a pure function of the title, preference text and persona
// label carried in the prompt payload.
type FallbackGateway struct{}

// NewFallbackGateway creates the local fallback gateway
func NewFallbackGateway() *FallbackGateway {
	return &FallbackGateway{}
}

// Name returns the provider name
func (g *FallbackGateway) Name() string {
	return providerNameFallback
}

// Model returns the model identifier
func (g *FallbackGateway) Model() string {
	return fallbackModel
}

// Run returns the fallback review as JSON text
func (g *FallbackGateway) Run(ctx context.Context, promptText string, schema *OutputSchema) (*RunResult, error) {
	return collectFinalText(g.RunStreamed(ctx, promptText, schema))
}

// RunStreamed emits the same event kinds a hosted run produces, ending with the fallback review
func (g *FallbackGateway) RunStreamed(ctx context.Context, promptText string, schema *OutputSchema) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		text, err := g.generate(promptText, schema)
		if err != nil {
			yield(Event{}, err)
			return
		}

		events := []Event{
			{Kind: EventTurnStarted},
			{Kind: EventItemStarted, Item: &Item{ID: "reasoning_0", Type: ItemReasoning}},
			{Kind: EventItemCompleted, Item: &Item{ID: "reasoning_0", Type: ItemReasoning}},
			{Kind: EventItemUpdated, Item: &Item{ID: "todo_0", Type: ItemTodoList, TodoCount: fallbackTodoCount}},
			{Kind: EventItemCompleted, Item: &Item{ID: "message_0", Type: ItemAgentMessage, Text: text}},
			{Kind: EventTurnCompleted},
		}
		for _, event := range events {
			if err := ctx.Err(); err != nil {
				yield(Event{}, err)
				return
			}
			if !yield(event, nil) {
				return
			}
		}
	}
}

func (g *FallbackGateway) generate(promptText string, schema *OutputSchema) (string, error) {
	if schema == nil || schema.Name != ReviewSchemaName {
		return "", ErrUnsupportedSchema
	}

	payload := gjson.Parse(prompt.ExtractPayload(promptText))
	title := strings.TrimSpace(payload.Get("title").String())
	if title == "" {
		return "", fmt.Errorf("fallback gateway: prompt payload has no title")
	}

	preferences := ""
	isGeneric := payload.Get("isGenericRequest").Bool()
	if !isGeneric {
		preferences = payload.Get("settings.preferenceText").String()
	}
	persona := payload.Get("swipeContext.personaLabel").String()

	data, err := json.Marshal(FallbackReview(title, preferences, persona, isGeneric))
	if err != nil {
		return "", fmt.Errorf("fallback gateway: %w", err)
	}
	return string(data), nil
}

// FallbackReview builds the deterministic review for a title
func FallbackReview(title, preferences, persona string, isGeneric bool) models.ReviewResult {
	seed := hashText(title + "|" + preferences + "|" + persona)
	genres := inferGenresFromTitle(title)
	primary := strings.ToLower(genres[0])

	verdict := "Accurate and human-friendly read: strong choice when you want a balanced blend of story, craft, and emotional clarity."
	if pref := strings.TrimSpace(preferences); pref != "" {
		verdict = fmt.Sprintf(
			"Accurate and human-friendly read: this likely works for your preferences if you want %s in a %s package.",
			strings.ToLower(pref), primary,
		)
	}

	cast := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		cast = append(cast, chooseFrom(fallbackCastRoles, seed, i))
	}

	peopleLikeYou := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		peopleLikeYou = append(peopleLikeYou, fmt.Sprintf(
			"%s found it very %s and easy to follow. The pacing held up and the ending felt earned.",
			chooseFrom(fallbackViewers, seed, i), chooseFrom(fallbackAdjectives, seed, i+1),
		))
	}

	return models.ReviewResult{
		Title:          title,
		Year:           2001 + int(seed%24),
		Genres:         genres,
		RuntimeMinutes: 96 + int(seed%60),
		Rating:         float64(73+seed%21) / 10,
		Cast:           cast,
		ShortPlot: fmt.Sprintf(
			"%s sets up its premise quickly and follows a %s %s story through to a clear payoff.",
			title, chooseFrom(fallbackAdjectives, seed, 2), primary,
		),
		Summary: fmt.Sprintf(
			"%s delivers a %s %s experience with clear narrative momentum and strong craft detail.",
			title, chooseFrom(fallbackAdjectives, seed, 0), primary,
		),
		Verdict:       verdict,
		PeopleLikeYou: peopleLikeYou,
		Sources:       []models.Source{},
		IsGeneric:     isGeneric,
	}
}

// hashText is 32-bit FNV-1a over UTF-16 code units, matching browser clients
func hashText(input string) uint32 {
	hash := uint32(2166136261)
	for _, c := range utf16.Encode([]rune(input)) {
		hash ^= uint32(c)
		hash += (hash << 1) + (hash << 4) + (hash << 7) + (hash << 8) + (hash << 24)
	}
	return hash
}

func chooseFrom(values []string, seed uint32, index int) string {
	return values[(int(seed%uint32(len(values)))+index)%len(values)]
}

func inferGenresFromTitle(title string) []string {
	lower := strings.ToLower(title)
	switch {
	case containsAny(lower, "dune", "interstellar", "blade"):
		return []string{"Sci-Fi", "Adventure", "Drama"}
	case containsAny(lower, "spider", "batman"):
		return []string{"Action", "Adventure", "Fantasy"}
	case containsAny(lower, "oppenheimer", "social"):
		return []string{"Drama", "History", "Thriller"}
	case containsAny(lower, "barbie", "lady bird"):
		return []string{"Comedy", "Drama"}
	default:
		return []string{"Drama", "Thriller"}
	}
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
