package stream

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/Conceptual-Machines/reelmate-api/internal/llm"
	"github.com/Conceptual-Machines/reelmate-api/internal/logger"
	"github.com/Conceptual-Machines/reelmate-api/internal/metrics"
	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/Conceptual-Machines/reelmate-api/internal/review"
	"github.com/google/uuid"
)

const (
	msgNoFinalMessage = "Agent finished without a final review message."
	msgTimedOut       = "Review generation timed out."
)

// Emitter is the push side of a stream. Closed must turn true as soon as
// the client goes away so the relay can stop writing.
type Emitter interface {
	Emit(outcome models.StreamOutcome) error
	Closed() bool
	Close()
}

// Finalizer turns the agent's final message text into the terminal result
type Finalizer func(text string) (models.ReviewResult, error)

// Summary describes how a relayed stream ended
type Summary struct {
	RunID         string
	Outcome       string
	ProgressCount int
	Dropped       int
	Result        *models.ReviewResult
	RawText       string
	Usage         *llm.Usage
	Err           error
	Duration      time.Duration
}

// Relay bridges one streamed gateway run to an Emitter. A relay is used for
// a single run and is not safe for concurrent use.
type Relay struct {
	runID    string
	label    string
	emitter  Emitter
	finalize Finalizer
	started  time.Time
	summary  Summary
}

// NewRelay creates a relay writing to emitter. label names the agent in
// progress messages.
func NewRelay(label string, emitter Emitter, finalize Finalizer) *Relay {
	runID := uuid.NewString()
	return &Relay{
		runID:    runID,
		label:    label,
		emitter:  emitter,
		finalize: finalize,
		started:  time.Now(),
		summary:  Summary{RunID: runID},
	}
}

// RunID identifies this relay in logs
func (r *Relay) RunID() string {
	return r.runID
}

// Accept sends the initial "request accepted" progress event
func (r *Relay) Accept(detail string) {
	r.progress(AcceptedEvent(r.label, detail))
}

// Fail delivers a Failure outcome if the client is still connected, then closes the stream
func (r *Relay) Fail(err error) Summary {
	r.fail(err)
	r.emitter.Close()
	return r.finish()
}

// Run drains events until a terminal outcome, forwarding mapped progress.
// The stream is always closed when Run returns.
func (r *Relay) Run(ctx context.Context, events iter.Seq2[llm.Event, error]) Summary {
	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()
	defer r.emitter.Close()

	var finalText string
	haveFinal := false

	for event, err := range events {
		if r.stopped(ctx) {
			return r.finish()
		}
		if err != nil {
			r.fail(&review.GatewayError{Err: err})
			return r.finish()
		}

		if progress, ok := MapEvent(event, r.label); ok {
			r.progress(progress)
		} else {
			r.summary.Dropped++
			metrics.RecordDroppedEvent()
		}

		switch {
		case event.IsItemError():
			r.fail(&review.GatewayError{Message: event.Item.Message})
			return r.finish()
		case event.Kind == llm.EventTurnFailed:
			r.fail(&review.GatewayError{Message: event.Error})
			return r.finish()
		case event.IsAgentMessageDone():
			finalText = event.Item.Text
			haveFinal = true
		case event.Kind == llm.EventTurnCompleted:
			r.summary.Usage = event.Usage
		}
	}

	if r.stopped(ctx) {
		return r.finish()
	}
	if !haveFinal {
		r.fail(&review.GatewayError{Message: msgNoFinalMessage})
		return r.finish()
	}

	r.summary.RawText = finalText
	result, err := r.finalize(finalText)
	if err != nil {
		r.fail(err)
		return r.finish()
	}

	r.summary.Result = &result
	if err := r.emitter.Emit(models.StreamOutcome{Kind: models.OutcomeResult, Result: &result}); err != nil {
		r.markAborted()
		return r.finish()
	}
	r.summary.Outcome = metrics.StreamOutcomeResult
	_ = r.emitter.Emit(models.StreamOutcome{Kind: models.OutcomeDone})
	return r.finish()
}

func (r *Relay) progress(event models.ProgressEvent) {
	if r.emitter.Closed() {
		return
	}
	if err := r.emitter.Emit(models.StreamOutcome{Kind: models.OutcomeProgress, Progress: &event}); err != nil {
		logger.Debug("Progress write failed", logger.Fields{"run_id": r.runID, "error": err.Error()})
		return
	}
	r.summary.ProgressCount++
	metrics.RecordProgressEvent()
}

func (r *Relay) fail(err error) {
	r.summary.Err = err
	r.summary.Outcome = metrics.StreamOutcomeError
	if r.emitter.Closed() {
		r.markAborted()
		return
	}
	message := review.UserMessage(err)
	if emitErr := r.emitter.Emit(models.StreamOutcome{Kind: models.OutcomeFailure, Failure: message}); emitErr != nil {
		r.markAborted()
	}
}

// stopped reports whether the run must end now. A closed emitter or a
// cancelled ctx ends it silently; an expired deadline is delivered as a
// failure while the client is still connected.
func (r *Relay) stopped(ctx context.Context) bool {
	if r.emitter.Closed() {
		r.markAborted()
		return true
	}
	switch err := ctx.Err(); {
	case err == nil:
		return false
	case errors.Is(err, context.DeadlineExceeded):
		r.fail(&review.GatewayError{Message: msgTimedOut, Err: err})
	default:
		r.markAborted()
	}
	return true
}

func (r *Relay) markAborted() {
	r.summary.Outcome = metrics.StreamOutcomeAborted
}

func (r *Relay) finish() Summary {
	if r.summary.Outcome == "" {
		r.summary.Outcome = metrics.StreamOutcomeAborted
	}
	r.summary.Duration = time.Since(r.started)
	metrics.RecordStreamOutcome(r.summary.Outcome)

	fields := logger.Fields{
		"run_id":   r.runID,
		"outcome":  r.summary.Outcome,
		"progress": r.summary.ProgressCount,
		"dropped":  r.summary.Dropped,
		"duration": r.summary.Duration.String(),
	}
	if r.summary.Err != nil {
		logger.Warn("Review stream ended with failure", logger.Fields{"run_id": r.runID, "error": r.summary.Err.Error()})
	}
	logger.Info("Review stream finished", fields)
	return r.summary
}
