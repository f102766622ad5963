package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentryMetrics_TokenUsageTagsTransaction(t *testing.T) {
	transaction := sentry.StartTransaction(context.Background(), "review.stream")
	defer transaction.Finish()

	m := NewSentryMetrics()
	m.RecordTokenUsage(transaction.Context(), "openai", "gpt-5", 10, 20, 5, 35)

	require.NotNil(t, transaction.Tags)
	assert.Equal(t, "openai", transaction.Tags["llm.provider"])
	assert.Equal(t, "gpt-5", transaction.Tags["llm.model"])
	assert.Equal(t, int64(35), transaction.Data["llm.total_tokens"])
}

func TestSentryMetrics_SpansWithoutTransaction(t *testing.T) {
	m := NewSentryMetrics()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordAPIRequest(ctx, "/review/generate", 500, time.Second)
		m.RecordGenerationDuration(ctx, "review", time.Second, false)
		m.RecordStreamOutcome(ctx, StreamOutcomeAborted, 3)
		m.RecordTokenUsage(ctx, "gemini", "gemini-2.5-flash", 1, 2, 0, 3)
	})
}

func TestSentryMetrics_Disabled(t *testing.T) {
	m := &SentryMetrics{}
	assert.NotPanics(t, func() {
		m.RecordStreamOutcome(context.Background(), StreamOutcomeResult, 1)
	})
}
