package sse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenResponseWriter struct {
	header http.Header
}

func (b *brokenResponseWriter) Header() http.Header {
	if b.header == nil {
		b.header = http.Header{}
	}
	return b.header
}

func (b *brokenResponseWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func (b *brokenResponseWriter) WriteHeader(int) {}

func TestWriter_Headers(t *testing.T) {
	rec := httptest.NewRecorder()
	NewWriter(context.Background(), rec).WriteHeaders()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-transform", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
	assert.True(t, rec.Flushed)
}

func TestWriter_EmitFrames(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(context.Background(), rec)

	require.NoError(t, w.Emit(models.StreamOutcome{
		Kind:     models.OutcomeProgress,
		Progress: &models.ProgressEvent{Message: "Searching web.", Detail: ""},
	}))
	require.NoError(t, w.Emit(models.StreamOutcome{Kind: models.OutcomeFailure, Failure: "boom"}))
	require.NoError(t, w.Emit(models.StreamOutcome{Kind: models.OutcomeDone}))

	assert.Equal(t,
		"event: progress\ndata: {\"message\":\"Searching web.\",\"detail\":\"\"}\n\n"+
			"event: error\ndata: {\"message\":\"boom\"}\n\n"+
			"event: done\ndata: {\"ok\":true}\n\n",
		rec.Body.String())
}

func TestWriter_ResultFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(context.Background(), rec)

	require.NoError(t, w.Emit(models.StreamOutcome{
		Kind:   models.OutcomeResult,
		Result: &models.ReviewResult{Title: "Heat", RuntimeMinutes: 170},
	}))
	assert.Contains(t, rec.Body.String(), "event: result\ndata: {\"title\":\"Heat\"")
	assert.Contains(t, rec.Body.String(), "\"runtime\":170")
}

func TestWriter_UnknownKind(t *testing.T) {
	err := NewWriter(context.Background(), httptest.NewRecorder()).Emit(models.StreamOutcome{Kind: "bogus"})
	assert.Error(t, err)
}

func TestWriter_ClosedAfterClose(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(context.Background(), rec)
	w.Close()
	w.Close()

	assert.True(t, w.Closed())
	assert.ErrorIs(t, w.Emit(models.StreamOutcome{Kind: models.OutcomeDone}), ErrClosed)
	assert.Empty(t, rec.Body.String())
}

func TestWriter_ClosedWhenClientGoesAway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := httptest.NewRecorder()
	w := NewWriter(ctx, rec)
	assert.False(t, w.Closed())

	cancel()
	assert.True(t, w.Closed())
	assert.ErrorIs(t, w.Send(models.OutcomeProgress, models.ProgressEvent{Message: "late"}), ErrClosed)
	assert.Empty(t, rec.Body.String())
}

func TestWriter_WriteFailureClosesStream(t *testing.T) {
	w := NewWriter(context.Background(), &brokenResponseWriter{})

	err := w.Emit(models.StreamOutcome{Kind: models.OutcomeDone})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrClosed)
	assert.True(t, w.Closed())
	assert.ErrorIs(t, w.Emit(models.StreamOutcome{Kind: models.OutcomeDone}), ErrClosed)
}
