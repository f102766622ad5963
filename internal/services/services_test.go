package services

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/Conceptual-Machines/reelmate-api/internal/llm"
	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/Conceptual-Machines/reelmate-api/internal/prompt"
	"github.com/Conceptual-Machines/reelmate-api/internal/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGateway is a test implementation of llm.Gateway
type mockGateway struct {
	runFunc         func(ctx context.Context, prompt string, schema *llm.OutputSchema) (*llm.RunResult, error)
	runStreamedFunc func(ctx context.Context, prompt string, schema *llm.OutputSchema) iter.Seq2[llm.Event, error]
	lastPrompt      string
	lastSchema      *llm.OutputSchema
}

func (m *mockGateway) Name() string  { return "mock" }
func (m *mockGateway) Model() string { return "mock-model" }

func (m *mockGateway) Run(ctx context.Context, prompt string, schema *llm.OutputSchema) (*llm.RunResult, error) {
	m.lastPrompt = prompt
	m.lastSchema = schema
	if m.runFunc != nil {
		return m.runFunc(ctx, prompt, schema)
	}
	return &llm.RunResult{Text: "{}"}, nil
}

func (m *mockGateway) RunStreamed(ctx context.Context, prompt string, schema *llm.OutputSchema) iter.Seq2[llm.Event, error] {
	m.lastPrompt = prompt
	m.lastSchema = schema
	if m.runStreamedFunc != nil {
		return m.runStreamedFunc(ctx, prompt, schema)
	}
	return func(yield func(llm.Event, error) bool) {}
}

// recordingEmitter captures every outcome written to a stream
type recordingEmitter struct {
	outcomes []models.StreamOutcome
	closed   bool
}

func (e *recordingEmitter) Emit(outcome models.StreamOutcome) error {
	e.outcomes = append(e.outcomes, outcome)
	return nil
}

func (e *recordingEmitter) Closed() bool { return e.closed }
func (e *recordingEmitter) Close()       { e.closed = true }

func newBuilder() *prompt.Builder {
	return prompt.NewPromptBuilder(nil)
}

func TestValidateReviewInput(t *testing.T) {
	tests := []struct {
		name    string
		req     models.ReviewRequest
		wantErr bool
	}{
		{name: "empty title", req: models.ReviewRequest{}, wantErr: true},
		{name: "whitespace title", req: models.ReviewRequest{Title: "   "}, wantErr: true},
		{name: "valid", req: models.ReviewRequest{Title: "  Heat ", Settings: models.ReviewSettings{PreferenceText: "slow"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			genReq, err := ValidateReviewInput(tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, review.IsValidation(err))
				assert.Equal(t, MsgTitleRequired, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Heat", genReq.Title)
			assert.Equal(t, "slow", genReq.PreferenceText)
		})
	}
}

func TestValidateSwipeInput(t *testing.T) {
	tests := []struct {
		name    string
		req     models.SwipeRequest
		message string
	}{
		{name: "no signals", req: models.SwipeRequest{}, message: MsgSignalsRequired},
		{
			name:    "untitled like",
			req:     models.SwipeRequest{Likes: []models.MovieSignal{{Genres: []string{"Drama"}}}},
			message: MsgSignalTitle,
		},
		{
			name:    "blank dislike title",
			req:     models.SwipeRequest{Dislikes: []models.MovieSignal{{Title: "  "}}},
			message: MsgSignalTitle,
		},
		{
			name: "valid",
			req:  models.SwipeRequest{Dislikes: []models.MovieSignal{{Title: "Barbie"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSwipeInput(tt.req)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, review.IsValidation(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestReviewService_GenerateEndToEnd(t *testing.T) {
	service := NewReviewService(llm.NewFallbackGateway(), newBuilder(), nil, 0)
	assert.Equal(t, "fallback", service.Provider())
	assert.Equal(t, "local-fallback", service.Model())

	generic, err := service.Generate(context.Background(), models.GenerationRequest{Title: "Dune Part Two"})
	require.NoError(t, err)
	assert.True(t, generic.IsGeneric)
	assert.Equal(t, "Dune Part Two", generic.Title)
	assert.Equal(t, 2003, generic.Year)
	assert.Equal(t, 146, generic.RuntimeMinutes)

	personal, err := service.Generate(context.Background(), models.GenerationRequest{
		Title:          "Dune Part Two",
		PreferenceText: "short and witty",
	})
	require.NoError(t, err)
	assert.False(t, personal.IsGeneric)
	assert.Contains(t, personal.Verdict, "short and witty")
}

func TestReviewService_GenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		runFunc func(ctx context.Context, prompt string, schema *llm.OutputSchema) (*llm.RunResult, error)
		check   func(t *testing.T, err error)
	}{
		{
			name: "gateway failure",
			runFunc: func(ctx context.Context, prompt string, schema *llm.OutputSchema) (*llm.RunResult, error) {
				return nil, &llm.RunError{Message: "quota exceeded"}
			},
			check: func(t *testing.T, err error) {
				var ge *review.GatewayError
				require.ErrorAs(t, err, &ge)
				assert.Equal(t, "mock", ge.Provider)
				assert.Equal(t, "quota exceeded", review.UserMessage(err))
			},
		},
		{
			name: "unparsable output",
			runFunc: func(ctx context.Context, prompt string, schema *llm.OutputSchema) (*llm.RunResult, error) {
				return &llm.RunResult{Text: "I could not find that film."}, nil
			},
			check: func(t *testing.T, err error) {
				var pe *review.ParseError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, review.MsgParseFailure, err.Error())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewReviewService(&mockGateway{runFunc: tt.runFunc}, newBuilder(), nil, 0)
			result, err := service.Generate(context.Background(), models.GenerationRequest{Title: "Heat"})
			assert.Nil(t, result)
			tt.check(t, err)
		})
	}
}

func TestReviewService_GenerateSendsReviewSchema(t *testing.T) {
	gateway := &mockGateway{
		runFunc: func(ctx context.Context, prompt string, schema *llm.OutputSchema) (*llm.RunResult, error) {
			return &llm.RunResult{Text: `noise {"title":"Heat","isGeneric":false,"rating":"abc"} noise`}, nil
		},
	}
	service := NewReviewService(gateway, newBuilder(), nil, 0)

	result, err := service.Generate(context.Background(), models.GenerationRequest{Title: "Heat"})
	require.NoError(t, err)
	assert.Equal(t, llm.ReviewSchemaName, gateway.lastSchema.Name)
	assert.Contains(t, gateway.lastPrompt, `"isGenericRequest": true`)
	assert.True(t, result.IsGeneric)
	assert.Equal(t, 0.0, result.Rating)
}

func TestFinalizeReview(t *testing.T) {
	result, err := FinalizeReview(
		models.GenerationRequest{Title: " Heat  1995 ", PreferenceText: "no flashbacks"},
		`{"title":"","isGeneric":true,"cast":["Al Pacino, Robert De Niro","Al Pacino"]}`,
	)
	require.NoError(t, err)
	assert.Equal(t, "Heat 1995", result.Title)
	assert.False(t, result.IsGeneric)
	assert.Equal(t, []string{"Al Pacino", "Robert De Niro"}, result.Cast)

	_, err = FinalizeReview(models.GenerationRequest{Title: "Heat"}, "[]")
	assert.Error(t, err)
}

func TestReviewService_StreamWithFallback(t *testing.T) {
	service := NewReviewService(llm.NewFallbackGateway(), newBuilder(), nil, 0)
	emitter := &recordingEmitter{}

	summary := service.Stream(context.Background(), models.GenerationRequest{Title: "Dune Part Two"}, emitter)

	require.NotEmpty(t, emitter.outcomes)
	first := emitter.outcomes[0]
	assert.Equal(t, models.OutcomeProgress, first.Kind)
	assert.Equal(t, "Request accepted. Starting Local reviewer review stream.", first.Progress.Message)
	assert.Contains(t, first.Progress.Detail, `"preferenceTextLength": 0`)
	assert.Contains(t, first.Progress.Detail, `"title": "Dune Part Two"`)

	n := len(emitter.outcomes)
	assert.Equal(t, models.OutcomeResult, emitter.outcomes[n-2].Kind)
	assert.Equal(t, models.OutcomeDone, emitter.outcomes[n-1].Kind)
	assert.True(t, emitter.outcomes[n-2].Result.IsGeneric)
	assert.Equal(t, "result", summary.Outcome)
	assert.True(t, emitter.closed)
}

func TestReviewService_StreamFailure(t *testing.T) {
	gateway := &mockGateway{
		runStreamedFunc: func(ctx context.Context, prompt string, schema *llm.OutputSchema) iter.Seq2[llm.Event, error] {
			return func(yield func(llm.Event, error) bool) {
				if !yield(llm.Event{Kind: llm.EventTurnStarted}, nil) {
					return
				}
				yield(llm.Event{Kind: llm.EventTurnFailed, Error: "model overloaded"}, nil)
			}
		},
	}
	emitter := &recordingEmitter{}

	summary := NewReviewService(gateway, newBuilder(), nil, 0).Stream(context.Background(), models.GenerationRequest{Title: "Heat"}, emitter)

	last := emitter.outcomes[len(emitter.outcomes)-1]
	assert.Equal(t, models.OutcomeFailure, last.Kind)
	assert.Equal(t, "model overloaded", last.Failure)
	assert.Equal(t, "error", summary.Outcome)
}

func TestReviewService_StreamTimeoutReachesClient(t *testing.T) {
	gateway := &mockGateway{
		runStreamedFunc: func(ctx context.Context, prompt string, schema *llm.OutputSchema) iter.Seq2[llm.Event, error] {
			return func(yield func(llm.Event, error) bool) {
				if !yield(llm.Event{Kind: llm.EventTurnStarted}, nil) {
					return
				}
				<-ctx.Done()
				yield(llm.Event{}, ctx.Err())
			}
		},
	}
	emitter := &recordingEmitter{}

	summary := NewReviewService(gateway, newBuilder(), nil, 20*time.Millisecond).Stream(context.Background(), models.GenerationRequest{Title: "Heat"}, emitter)

	require.NotEmpty(t, emitter.outcomes)
	last := emitter.outcomes[len(emitter.outcomes)-1]
	assert.Equal(t, models.OutcomeFailure, last.Kind)
	assert.Contains(t, last.Failure, "timed out")
	assert.Equal(t, "error", summary.Outcome)
}

func TestSwipeService_Analyze(t *testing.T) {
	req := models.SwipeRequest{
		Likes:    []models.MovieSignal{{Title: "Dune", Genres: []string{"Sci-Fi", "Adventure"}}},
		Dislikes: []models.MovieSignal{{Title: "Barbie", Genres: []string{"Comedy"}}},
	}

	t.Run("agent profile", func(t *testing.T) {
		gateway := &mockGateway{
			runFunc: func(ctx context.Context, prompt string, schema *llm.OutputSchema) (*llm.RunResult, error) {
				return &llm.RunResult{Text: `{"personaLabel":" Space Nerd ","confidence":"HIGH","greenFlags":["a","b","c","d","e","f"]}`}, nil
			},
		}
		profile, source, err := NewSwipeService(gateway, newBuilder(), 0).Analyze(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, SourceAgent, source)
		assert.Equal(t, llm.TasteProfileSchemaName, gateway.lastSchema.Name)
		assert.Equal(t, "Space Nerd", profile.PersonaLabel)
		assert.Equal(t, models.ConfidenceHigh, profile.Confidence)
		assert.Len(t, profile.GreenFlags, 5)
	})

	t.Run("fallback gateway uses local heuristic", func(t *testing.T) {
		profile, source, err := NewSwipeService(llm.NewFallbackGateway(), newBuilder(), 0).Analyze(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, SourceLocal, source)
		assert.Equal(t, "Sci-Fi Mood Navigator", profile.PersonaLabel)
	})

	t.Run("gateway error uses local heuristic", func(t *testing.T) {
		gateway := &mockGateway{
			runFunc: func(ctx context.Context, prompt string, schema *llm.OutputSchema) (*llm.RunResult, error) {
				return nil, errors.New("timeout")
			},
		}
		_, source, err := NewSwipeService(gateway, newBuilder(), 0).Analyze(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, SourceLocal, source)
	})

	t.Run("validation error", func(t *testing.T) {
		_, _, err := NewSwipeService(llm.NewFallbackGateway(), newBuilder(), 0).Analyze(context.Background(), models.SwipeRequest{})
		require.Error(t, err)
		assert.True(t, review.IsValidation(err))
	})
}
