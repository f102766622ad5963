package llm

import (
	"context"
	"testing"

	"github.com/Conceptual-Machines/reelmate-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayFactory_GetGateway(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		provider  string
		wantName  string
		wantErr   string
		breakered bool
	}{
		{
			name:      "openai wrapped in breaker",
			cfg:       &config.Config{OpenAIAPIKey: "sk-test", Model: "gpt-5", WebSearch: true},
			provider:  "openai",
			wantName:  "openai",
			breakered: true,
		},
		{
			name:     "openai without key",
			cfg:      &config.Config{},
			provider: "openai",
			wantErr:  "openai API key not configured",
		},
		{
			name:     "gemini without key",
			cfg:      &config.Config{},
			provider: "gemini",
			wantErr:  "gemini API key not configured",
		},
		{
			name:     "fallback needs no key",
			cfg:      &config.Config{},
			provider: "Fallback",
			wantName: "fallback",
		},
		{
			name:     "unknown provider",
			cfg:      &config.Config{},
			provider: "anthropic",
			wantErr:  "unknown provider: anthropic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway, err := NewGatewayFactory(tt.cfg).GetGateway(context.Background(), tt.provider)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, gateway.Name())
			_, isBreaker := gateway.(*BreakerGateway)
			assert.Equal(t, tt.breakered, isBreaker)
		})
	}
}
