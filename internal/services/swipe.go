package services

import (
	"context"
	"errors"
	"time"

	"github.com/Conceptual-Machines/reelmate-api/internal/llm"
	"github.com/Conceptual-Machines/reelmate-api/internal/logger"
	"github.com/Conceptual-Machines/reelmate-api/internal/metrics"
	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/Conceptual-Machines/reelmate-api/internal/prompt"
	"github.com/Conceptual-Machines/reelmate-api/internal/review"
)

const kindSwipe = "swipe"

// Profile sources
const (
	SourceAgent = "agent"
	SourceLocal = "local"
)

// SwipeService infers taste profiles from liked and disliked movies
type SwipeService struct {
	gateway llm.Gateway
	builder *prompt.Builder
	timeout time.Duration
}

// NewSwipeService creates a swipe analysis service
func NewSwipeService(gateway llm.Gateway, builder *prompt.Builder, timeout time.Duration) *SwipeService {
	return &SwipeService{
		gateway: gateway,
		builder: builder,
		timeout: timeout,
	}
}

// Analyze returns the taste profile for req and where it came from. Any
// gateway or parse failure falls back to the local heuristic profile.
func (s *SwipeService) Analyze(ctx context.Context, req models.SwipeRequest) (*models.TasteProfile, string, error) {
	if err := ValidateSwipeInput(req); err != nil {
		return nil, "", err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	startTime := time.Now()
	result, err := s.gateway.Run(ctx, s.builder.BuildSwipePrompt(req), llm.TasteProfileSchema())
	if err == nil {
		profile, parseErr := review.ParseTasteProfile(result.Text)
		if parseErr == nil {
			metrics.RecordGeneration(s.gateway.Name(), kindSwipe, time.Since(startTime), true)
			return &profile, SourceAgent, nil
		}
		err = parseErr
	}

	metrics.RecordGeneration(s.gateway.Name(), kindSwipe, time.Since(startTime), false)
	fields := logger.Fields{"provider": s.gateway.Name(), "error": err.Error()}
	if errors.Is(err, llm.ErrUnsupportedSchema) {
		logger.Debug("Using local swipe analysis", fields)
	} else {
		logger.Warn("Falling back to local swipe analysis", fields)
	}
	profile := LocalTasteProfile(req)
	return &profile, SourceLocal, nil
}
