package llm

import (
	"strings"

	"github.com/openai/openai-go/responses"
)

// Reasoning modes accepted by AGENT_REASONING_EFFORT
const (
	ReasoningMinimal = "minimal"
	ReasoningLow     = "low"
	ReasoningMedium  = "medium"
	ReasoningHigh    = "high"
)

// ReasoningEffort maps a configured reasoning mode onto the Responses API
// value. Unknown or empty modes map to low.
func ReasoningEffort(mode string) responses.ReasoningEffort {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ReasoningHigh:
		return responses.ReasoningEffortHigh
	case ReasoningMedium:
		return responses.ReasoningEffortMedium
	case ReasoningMinimal:
		return ReasoningMinimal
	default:
		return responses.ReasoningEffortLow
	}
}

// reasoningFor picks the effort for one run. Taste analysis works from the
// payload alone and runs at minimal effort unless a mode is configured.
func reasoningFor(schema *OutputSchema, mode string) responses.ReasoningEffort {
	if strings.TrimSpace(mode) != "" {
		return ReasoningEffort(mode)
	}
	if schema != nil && schema.Name == TasteProfileSchemaName {
		return ReasoningMinimal
	}
	return responses.ReasoningEffortLow
}
