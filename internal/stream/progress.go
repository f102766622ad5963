package stream

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/reelmate-api/internal/config"
	"github.com/Conceptual-Machines/reelmate-api/internal/llm"
	"github.com/Conceptual-Machines/reelmate-api/internal/models"
)

const (
	msgReasoning    = "Analyzing review evidence and preferences."
	msgFinalDraft   = "Generated final review draft."
	msgSearching    = "Searching web."
	msgSearchDone   = "Completed web search."
	msgPlanningStep = "Planning steps: %d tasks tracked."
)

// ProviderLabel is the agent name shown in progress messages
func ProviderLabel(provider string) string {
	switch provider {
	case config.ProviderOpenAI:
		return "Codex"
	case config.ProviderGemini:
		return "Gemini"
	case config.ProviderFallback:
		return "Local reviewer"
	default:
		return "Agent"
	}
}

// AcceptedEvent is the first progress event of every stream, sent before the gateway produces anything
func AcceptedEvent(label, detail string) models.ProgressEvent {
	return models.ProgressEvent{
		Message: fmt.Sprintf("Request accepted. Starting %s review stream.", label),
		Detail:  detail,
	}
}

// MapEvent derives the progress event for a gateway event. Events with no
// entry in the table return false and are dropped by the relay.
func MapEvent(event llm.Event, label string) (models.ProgressEvent, bool) {
	switch event.Kind {
	case llm.EventTurnStarted:
		return models.ProgressEvent{Message: label + " started the review run."}, true
	case llm.EventTurnCompleted:
		return models.ProgressEvent{
			Message: label + " finished and returned structured review output.",
			Detail:  usageDetail(event.Usage),
		}, true
	case llm.EventItemStarted, llm.EventItemUpdated, llm.EventItemCompleted:
		if event.Item == nil {
			return models.ProgressEvent{}, false
		}
		return mapItem(event.Kind, event.Item)
	default:
		return models.ProgressEvent{}, false
	}
}

func mapItem(kind llm.EventKind, item *llm.Item) (models.ProgressEvent, bool) {
	completed := kind == llm.EventItemCompleted

	switch item.Type {
	case llm.ItemWebSearch:
		query := strings.TrimSpace(item.Query)
		if completed {
			if query == "" {
				return models.ProgressEvent{Message: msgSearchDone}, true
			}
			return models.ProgressEvent{Message: "Completed web search: " + query, Detail: query}, true
		}
		if query == "" {
			return models.ProgressEvent{Message: msgSearching}, true
		}
		return models.ProgressEvent{Message: "Searching web: " + query, Detail: query}, true

	case llm.ItemReasoning:
		return models.ProgressEvent{Message: msgReasoning, Detail: item.Text}, true

	case llm.ItemToolCall:
		name := item.Server + "/" + item.Tool
		if completed {
			return models.ProgressEvent{Message: "Finished tool call: " + name}, true
		}
		return models.ProgressEvent{Message: "Running tool call: " + name}, true

	case llm.ItemTodoList:
		return models.ProgressEvent{Message: fmt.Sprintf(msgPlanningStep, item.TodoCount)}, true

	case llm.ItemAgentMessage:
		if !completed {
			return models.ProgressEvent{}, false
		}
		return models.ProgressEvent{Message: msgFinalDraft, Detail: fmt.Sprintf("%d characters", len(item.Text))}, true

	case llm.ItemError:
		return models.ProgressEvent{Message: "Agent warning: " + item.Message}, true

	default:
		return models.ProgressEvent{}, false
	}
}

func usageDetail(usage *llm.Usage) string {
	if usage == nil {
		return ""
	}
	return fmt.Sprintf("input=%d output=%d reasoning=%d total=%d",
		usage.InputTokens, usage.OutputTokens, usage.ReasoningTokens, usage.TotalTokens)
}
