package llm

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type iterSeq = iter.Seq2[Event, error]

// MockGateway is a test implementation of the Gateway interface
type MockGateway struct {
	name            string
	runFunc         func(ctx context.Context, prompt string, schema *OutputSchema) (*RunResult, error)
	runStreamedFunc func(ctx context.Context, prompt string, schema *OutputSchema) iter.Seq2[Event, error]
}

func (m *MockGateway) Name() string {
	return m.name
}

func (m *MockGateway) Model() string {
	return "mock-model"
}

func (m *MockGateway) Run(ctx context.Context, prompt string, schema *OutputSchema) (*RunResult, error) {
	if m.runFunc != nil {
		return m.runFunc(ctx, prompt, schema)
	}
	return &RunResult{}, nil
}

func (m *MockGateway) RunStreamed(ctx context.Context, prompt string, schema *OutputSchema) iter.Seq2[Event, error] {
	if m.runStreamedFunc != nil {
		return m.runStreamedFunc(ctx, prompt, schema)
	}
	return sequence()
}

// sequence yields the given events in order, stopping on the first error
func sequence(events ...Event) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for _, event := range events {
			if !yield(event, nil) {
				return
			}
		}
	}
}

func failingSequence(err error, events ...Event) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for _, event := range events {
			if !yield(event, nil) {
				return
			}
		}
		yield(Event{}, err)
	}
}

func agentMessage(text string) Event {
	return Event{Kind: EventItemCompleted, Item: &Item{Type: ItemAgentMessage, Text: text}}
}

func TestGatewayInterface(t *testing.T) {
	var gateway Gateway = &MockGateway{name: "mock"}
	assert.Equal(t, "mock", gateway.Name())
	assert.Equal(t, "mock-model", gateway.Model())
}

func TestEventPredicates(t *testing.T) {
	assert.True(t, agentMessage("x").IsAgentMessageDone())
	assert.False(t, Event{Kind: EventItemStarted, Item: &Item{Type: ItemAgentMessage}}.IsAgentMessageDone())
	assert.False(t, Event{Kind: EventTurnCompleted}.IsAgentMessageDone())

	assert.True(t, Event{Kind: EventItemCompleted, Item: &Item{Type: ItemError, Message: "m"}}.IsItemError())
	assert.False(t, Event{Kind: EventTurnFailed}.IsItemError())
}

func TestCollectFinalText(t *testing.T) {
	usage := &Usage{InputTokens: 3, OutputTokens: 4, TotalTokens: 7}

	tests := []struct {
		name     string
		events   iter.Seq2[Event, error]
		wantText string
		wantErr  string
	}{
		{
			name: "last agent message wins",
			events: sequence(
				Event{Kind: EventTurnStarted},
				agentMessage(`{"draft":1}`),
				agentMessage(`{"draft":2}`),
				Event{Kind: EventTurnCompleted, Usage: usage},
			),
			wantText: `{"draft":2}`,
		},
		{
			name:    "turn failure",
			events:  sequence(Event{Kind: EventTurnStarted}, Event{Kind: EventTurnFailed, Error: "quota exceeded"}),
			wantErr: "quota exceeded",
		},
		{
			name:    "error item",
			events:  sequence(Event{Kind: EventItemCompleted, Item: &Item{Type: ItemError, Message: "tool crashed"}}),
			wantErr: "tool crashed",
		},
		{
			name:    "no agent message",
			events:  sequence(Event{Kind: EventTurnStarted}, Event{Kind: EventTurnCompleted}),
			wantErr: "agent finished without a final message",
		},
		{
			name:    "transport error",
			events:  failingSequence(errors.New("connection reset"), Event{Kind: EventTurnStarted}),
			wantErr: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := collectFinalText(tt.events)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, result.Text)
			assert.Equal(t, usage, result.Usage)
		})
	}
}

func TestRunError_EmptyMessage(t *testing.T) {
	assert.Equal(t, "agent run failed", (&RunError{}).Error())
}
