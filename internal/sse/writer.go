package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
)

// ErrClosed is returned when writing to a stream that is already closed
var ErrClosed = errors.New("event stream closed")

// Writer pushes stream outcomes to a client as text/event-stream frames.
// Once the client disconnects or a write fails, the writer is closed and
// every later write returns ErrClosed instead of touching the connection.
type Writer struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	done    <-chan struct{}
	closed  bool
}

// NewWriter creates a writer bound to the request context. Cancellation of
// ctx is treated as the client going away.
func NewWriter(ctx context.Context, w http.ResponseWriter) *Writer {
	flusher, _ := w.(http.Flusher)
	return &Writer{
		w:       w,
		flusher: flusher,
		done:    ctx.Done(),
	}
}

// WriteHeaders sends the event-stream headers and flushes them immediately
func (s *Writer) WriteHeaders() {
	s.mu.Lock()
	defer s.mu.Unlock()

	header := s.w.Header()
	header.Set("Content-Type", "text/event-stream; charset=utf-8")
	header.Set("Cache-Control", "no-cache, no-transform")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// Emit writes one outcome as a frame
func (s *Writer) Emit(outcome models.StreamOutcome) error {
	switch outcome.Kind {
	case models.OutcomeProgress:
		return s.Send(outcome.Kind, outcome.Progress)
	case models.OutcomeResult:
		return s.Send(outcome.Kind, outcome.Result)
	case models.OutcomeFailure:
		return s.Send(outcome.Kind, models.FailurePayload{Message: outcome.Failure})
	case models.OutcomeDone:
		return s.Send(outcome.Kind, models.DonePayload{OK: true})
	default:
		return fmt.Errorf("unknown outcome kind %q", outcome.Kind)
	}
}

// Send marshals payload and writes it as an `event: kind` frame
func (s *Writer) Send(kind models.OutcomeKind, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s frame: %w", kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closedLocked() {
		return ErrClosed
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", kind, data); err != nil {
		s.closed = true
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// Closed reports whether the stream can no longer be written
func (s *Writer) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closedLocked()
}

// Close marks the stream closed. It is safe to call more than once.
func (s *Writer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Writer) closedLocked() bool {
	if s.closed {
		return true
	}
	select {
	case <-s.done:
		s.closed = true
	default:
	}
	return s.closed
}
