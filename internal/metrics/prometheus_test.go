package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// Cannot use t.Parallel() - shared global collectors

func TestRecordGeneration(t *testing.T) {
	success := GenerationsTotal.WithLabelValues("fallback", "review", "success")
	failure := GenerationsTotal.WithLabelValues("fallback", "review", "failure")
	beforeSuccess := testutil.ToFloat64(success)
	beforeFailure := testutil.ToFloat64(failure)

	RecordGeneration("fallback", "review", 2*time.Second, true)
	RecordGeneration("fallback", "review", time.Second, false)

	assert.Equal(t, beforeSuccess+1, testutil.ToFloat64(success))
	assert.Equal(t, beforeFailure+1, testutil.ToFloat64(failure))
}

func TestRecordStreamCounters(t *testing.T) {
	outcome := StreamOutcomes.WithLabelValues(StreamOutcomeAborted)
	beforeOutcome := testutil.ToFloat64(outcome)
	beforeProgress := testutil.ToFloat64(ProgressEventsTotal)
	beforeDropped := testutil.ToFloat64(DroppedEventsTotal)

	RecordStreamOutcome(StreamOutcomeAborted)
	RecordProgressEvent()
	RecordProgressEvent()
	RecordDroppedEvent()

	assert.Equal(t, beforeOutcome+1, testutil.ToFloat64(outcome))
	assert.Equal(t, beforeProgress+2, testutil.ToFloat64(ProgressEventsTotal))
	assert.Equal(t, beforeDropped+1, testutil.ToFloat64(DroppedEventsTotal))
}

func TestRecordTokens(t *testing.T) {
	input := TokensTotal.WithLabelValues("openai", "input")
	reasoning := TokensTotal.WithLabelValues("openai", "reasoning")
	beforeInput := testutil.ToFloat64(input)
	beforeReasoning := testutil.ToFloat64(reasoning)

	RecordTokens("openai", 100, 40, 0)
	assert.Equal(t, beforeInput+100, testutil.ToFloat64(input))
	assert.Equal(t, beforeReasoning, testutil.ToFloat64(reasoning))

	RecordTokens("openai", 0, 0, 12)
	assert.Equal(t, beforeReasoning+12, testutil.ToFloat64(reasoning))
}
