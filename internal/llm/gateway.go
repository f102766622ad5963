package llm

import (
	"context"
	"iter"
)

// Gateway is an agent runtime that turns a prompt and an output schema into
// structured JSON text. Cancelling ctx stops the run; for streamed runs the
// consumer may also stop ranging over the sequence, which cancels the run.
type Gateway interface {
	// Run blocks until the agent produces its final text
	Run(ctx context.Context, prompt string, schema *OutputSchema) (*RunResult, error)

	// RunStreamed returns the run as a sequence of events ending with either
	// EventTurnCompleted or EventTurnFailed. A non-nil error ends the sequence.
	RunStreamed(ctx context.Context, prompt string, schema *OutputSchema) iter.Seq2[Event, error]

	// Name returns the provider name (e.g., "openai", "gemini", "fallback")
	Name() string

	// Model returns the model identifier used for runs
	Model() string
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// Usage is the token accounting of a run, when the provider reports it
type Usage struct {
	InputTokens     int64 `json:"inputTokens"`
	OutputTokens    int64 `json:"outputTokens"`
	ReasoningTokens int64 `json:"reasoningTokens,omitempty"`
	TotalTokens     int64 `json:"totalTokens"`
}

// RunResult contains the final text of a blocking run
type RunResult struct {
	Text  string
	Usage *Usage
}

// EventKind is the lifecycle stage an Event reports
type EventKind string

const (
	EventTurnStarted   EventKind = "turn.started"
	EventItemStarted   EventKind = "item.started"
	EventItemUpdated   EventKind = "item.updated"
	EventItemCompleted EventKind = "item.completed"
	EventTurnCompleted EventKind = "turn.completed"
	EventTurnFailed    EventKind = "turn.failed"
)

// ItemType is the sub-type of an item event
type ItemType string

const (
	ItemWebSearch    ItemType = "web_search"
	ItemReasoning    ItemType = "reasoning"
	ItemToolCall     ItemType = "mcp_tool_call"
	ItemTodoList     ItemType = "todo_list"
	ItemAgentMessage ItemType = "agent_message"
	ItemError        ItemType = "error"
	ItemOther        ItemType = "other"
)

// Item is the payload of item events. Only the fields relevant to Type are set.
type Item struct {
	ID        string
	Type      ItemType
	Text      string // agent_message
	Query     string // web_search
	Server    string // mcp_tool_call
	Tool      string // mcp_tool_call
	TodoCount int    // todo_list
	Message   string // error
}

// Event is one step of a streamed run
type Event struct {
	Kind  EventKind
	Item  *Item
	Error string // set for EventTurnFailed
	Usage *Usage // set for EventTurnCompleted when reported
}

// IsAgentMessageDone reports whether the event carries the final agent message
func (e Event) IsAgentMessageDone() bool {
	return e.Kind == EventItemCompleted && e.Item != nil && e.Item.Type == ItemAgentMessage
}

// IsItemError reports whether the event carries an error item
func (e Event) IsItemError() bool {
	return e.Item != nil && e.Item.Type == ItemError
}

// collectFinalText drains a streamed run and returns the last completed agent
// message. Gateways without a native blocking call build Run on top of it.
func collectFinalText(events iter.Seq2[Event, error]) (*RunResult, error) {
	result := &RunResult{}
	found := false
	for event, err := range events {
		if err != nil {
			return nil, err
		}
		switch {
		case event.Kind == EventTurnFailed:
			return nil, &RunError{Message: event.Error}
		case event.IsItemError():
			return nil, &RunError{Message: event.Item.Message}
		case event.IsAgentMessageDone():
			result.Text = event.Item.Text
			found = true
		case event.Kind == EventTurnCompleted:
			result.Usage = event.Usage
		}
	}
	if !found {
		return nil, &RunError{Message: "agent finished without a final message"}
	}
	return result, nil
}

// RunError is a failure reported by the agent itself (as opposed to transport)
type RunError struct {
	Message string
}

func (e *RunError) Error() string {
	if e.Message == "" {
		return "agent run failed"
	}
	return e.Message
}
