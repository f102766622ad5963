package services

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/Conceptual-Machines/reelmate-api/internal/llm"
	"github.com/Conceptual-Machines/reelmate-api/internal/logger"
	"github.com/Conceptual-Machines/reelmate-api/internal/metrics"
	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/Conceptual-Machines/reelmate-api/internal/observability"
	"github.com/Conceptual-Machines/reelmate-api/internal/prompt"
	"github.com/Conceptual-Machines/reelmate-api/internal/review"
	"github.com/Conceptual-Machines/reelmate-api/internal/stream"
)

const (
	kindReview      = "review"
	startedAtLayout = "2006-01-02T15:04:05.000Z"
)

// ReviewService generates movie reviews through an agent gateway
type ReviewService struct {
	gateway    llm.Gateway
	builder    *prompt.Builder
	timeout    time.Duration
	sentry     *metrics.SentryMetrics
	cloudwatch *metrics.Client
}

// NewReviewService creates a review service. A zero timeout leaves runs bounded only by the caller's context.
func NewReviewService(gateway llm.Gateway, builder *prompt.Builder, cloudwatch *metrics.Client, timeout time.Duration) *ReviewService {
	return &ReviewService{
		gateway:    gateway,
		builder:    builder,
		timeout:    timeout,
		sentry:     metrics.NewSentryMetrics(),
		cloudwatch: cloudwatch,
	}
}

// Provider returns the gateway provider name
func (s *ReviewService) Provider() string {
	return s.gateway.Name()
}

// Model returns the gateway model identifier
func (s *ReviewService) Model() string {
	return s.gateway.Model()
}

// Generate runs a blocking generation and returns the sanitized review
func (s *ReviewService) Generate(ctx context.Context, req models.GenerationRequest) (*models.ReviewResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	startTime := time.Now()
	promptText := s.builder.BuildReviewPrompt(req)

	trace := observability.GetClient().StartTrace(ctx, "review.generate", map[string]interface{}{
		"title":     req.Title,
		"isGeneric": req.IsGeneric(),
	})
	defer trace.Finish()
	generation := trace.Generation("gateway.run", map[string]interface{}{"provider": s.gateway.Name()})
	defer generation.Finish()

	result, err := s.gateway.Run(ctx, promptText, llm.ReviewSchema())
	if err != nil {
		s.record(ctx, startTime, false)
		generation.SetLevel("ERROR")
		logger.Error("Review generation failed", err, logger.Fields{"provider": s.gateway.Name(), "model": s.gateway.Model(), "title": req.Title})
		return nil, &review.GatewayError{Provider: s.gateway.Name(), Err: err}
	}
	generation.LogRun(s.gateway.Name(), s.gateway.Model(), promptText, result.Text, tokenUsage(result.Usage), nil)
	s.recordUsage(ctx, result.Usage)

	reviewResult, err := FinalizeReview(req, result.Text)
	if err != nil {
		s.record(ctx, startTime, false)
		logger.Warn("Review output could not be parsed", logger.Fields{"provider": s.gateway.Name(), "chars": len(result.Text)})
		return nil, err
	}

	s.record(ctx, startTime, true)
	return &reviewResult, nil
}

// Stream relays a streamed generation to emitter. Progress, the terminal
// result or failure and the done marker are all written through emitter,
// which is closed when Stream returns.
func (s *ReviewService) Stream(ctx context.Context, req models.GenerationRequest, emitter stream.Emitter) stream.Summary {
	startTime := time.Now()
	relay := stream.NewRelay(stream.ProviderLabel(s.gateway.Name()), emitter, func(text string) (models.ReviewResult, error) {
		return FinalizeReview(req, text)
	})
	relay.Accept(acceptedDetail(req, startTime))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	promptText := s.builder.BuildReviewPrompt(req)
	trace := observability.GetClient().StartTrace(ctx, "review.stream", map[string]interface{}{
		"title":  req.Title,
		"run_id": relay.RunID(),
	})
	defer trace.Finish()
	generation := trace.Generation("gateway.run_streamed", map[string]interface{}{"provider": s.gateway.Name()})
	defer generation.Finish()

	summary := relay.Run(ctx, s.gateway.RunStreamed(ctx, promptText, llm.ReviewSchema()))

	generation.LogRun(s.gateway.Name(), s.gateway.Model(), promptText, summary.RawText, tokenUsage(summary.Usage), map[string]interface{}{
		"outcome":  summary.Outcome,
		"progress": summary.ProgressCount,
	})
	if summary.Err != nil {
		generation.SetLevel("ERROR")
	}
	trace.SetMetadata(map[string]interface{}{
		"outcome":  summary.Outcome,
		"progress": summary.ProgressCount,
		"dropped":  summary.Dropped,
	})
	s.recordUsage(ctx, summary.Usage)
	s.record(ctx, startTime, summary.Outcome == metrics.StreamOutcomeResult)
	s.sentry.RecordStreamOutcome(ctx, summary.Outcome, summary.ProgressCount)
	s.cloudwatch.RecordStreamOutcome(summary.Outcome)
	return summary
}

// FinalizeReview parses the agent's final text into a sanitized review. The
// generic flag always mirrors the request, and a missing title falls back
// to the requested one.
func FinalizeReview(req models.GenerationRequest, text string) (models.ReviewResult, error) {
	result, err := review.ParseReview(text)
	if err != nil {
		return models.ReviewResult{}, err
	}
	result.IsGeneric = req.IsGeneric()
	if result.Title == "" {
		result.Title = review.CleanText(req.Title)
	}
	return result, nil
}

func acceptedDetail(req models.GenerationRequest, startedAt time.Time) string {
	detail, err := json.MarshalIndent(map[string]any{
		"title":                req.Title,
		"preferenceTextLength": utf8.RuneCountInString(req.PreferenceText),
		"startedAt":            startedAt.UTC().Format(startedAtLayout),
	}, "", "  ")
	if err != nil {
		return ""
	}
	return string(detail)
}

func (s *ReviewService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *ReviewService) record(ctx context.Context, startTime time.Time, success bool) {
	duration := time.Since(startTime)
	metrics.RecordGeneration(s.gateway.Name(), kindReview, duration, success)
	s.sentry.RecordGenerationDuration(ctx, kindReview, duration, success)
	s.cloudwatch.RecordGenerationDuration(s.gateway.Name(), duration, success)
	logger.LogGenerationRequest(ctx, s.gateway.Name(), s.gateway.Model(), duration, logger.Fields{
		"kind":    kindReview,
		"success": success,
	})
}

func (s *ReviewService) recordUsage(ctx context.Context, usage *llm.Usage) {
	if usage == nil {
		return
	}
	metrics.RecordTokens(s.gateway.Name(), usage.InputTokens, usage.OutputTokens, usage.ReasoningTokens)
	s.sentry.RecordTokenUsage(ctx, s.gateway.Name(), s.gateway.Model(),
		usage.InputTokens, usage.OutputTokens, usage.ReasoningTokens, usage.TotalTokens)
}

func tokenUsage(usage *llm.Usage) observability.TokenUsage {
	if usage == nil {
		return observability.TokenUsage{}
	}
	return observability.TokenUsage{
		Input:     usage.InputTokens,
		Output:    usage.OutputTokens,
		Reasoning: usage.ReasoningTokens,
		Total:     usage.TotalTokens,
	}
}
