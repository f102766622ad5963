package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/reelmate-api/internal/config"
)

// GatewayFactory creates gateways based on the resolved provider choice
type GatewayFactory struct {
	openaiAPIKey string
	geminiAPIKey string
	openaiModel  string
	geminiModel  string
	webSearch    bool
	reasoning    string
	breaker      BreakerSettings
}

// NewGatewayFactory creates a factory from the application config
func NewGatewayFactory(cfg *config.Config) *GatewayFactory {
	return &GatewayFactory{
		openaiAPIKey: cfg.OpenAIAPIKey,
		geminiAPIKey: cfg.GeminiAPIKey,
		openaiModel:  cfg.Model,
		geminiModel:  cfg.GeminiModel,
		webSearch:    cfg.WebSearch,
		reasoning:    cfg.ReasoningEffort,
		breaker:      DefaultBreakerSettings(),
	}
}

// GetGateway returns the gateway for the given provider name. Hosted
// providers are wrapped in a circuit breaker; the fallback needs none.
func (f *GatewayFactory) GetGateway(ctx context.Context, providerName string) (Gateway, error) {
	switch strings.ToLower(providerName) {
	case config.ProviderOpenAI:
		if f.openaiAPIKey == "" {
			return nil, fmt.Errorf("openai API key not configured (set OPENAI_API_KEY or CODEX_API_KEY)")
		}
		return NewBreakerGateway(NewOpenAIGateway(f.openaiAPIKey, f.openaiModel, f.webSearch).WithReasoningEffort(f.reasoning), f.breaker), nil

	case config.ProviderGemini:
		if f.geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini API key not configured")
		}
		gateway, err := NewGeminiGateway(ctx, f.geminiAPIKey, f.geminiModel)
		if err != nil {
			return nil, err
		}
		return NewBreakerGateway(gateway, f.breaker), nil

	case config.ProviderFallback:
		return NewFallbackGateway(), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s (allowed: openai, gemini, fallback)", providerName)
	}
}
