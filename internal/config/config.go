package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Agent provider names
const (
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderFallback = "fallback"
)

const (
	defaultModel             = "gpt-5"
	defaultGeminiModel       = "gemini-2.5-flash"
	defaultGenerationTimeout = 3 * time.Minute
	defaultRateLimitRPS      = 2.0
	defaultRateLimitBurst    = 5
)

// Config holds the application configuration.
// It is loaded once at startup and treated as read-only afterwards.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Agent credentials and model selection
	OpenAIAPIKey    string // OPENAI_API_KEY, or CODEX_API_KEY when unset
	GeminiAPIKey    string // Google Gemini API key
	Model           string // Model used by the OpenAI gateway
	GeminiModel     string // Model used by the Gemini gateway
	ProviderName    string // Explicit provider override (openai, gemini, fallback)
	WebSearch       bool   // Allow the hosted agent to search the web during review runs
	ReasoningEffort string // Reasoning mode for GPT-5 models (minimal, low, medium, high)
	GenerationTTL   time.Duration

	// HTTP surface
	FrontendOrigins []string
	RateLimitRPS    float64
	RateLimitBurst  int

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", getEnv("CODEX_API_KEY", "")),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		Model:             getEnv("CODEX_MODEL", defaultModel),
		GeminiModel:       getEnv("GEMINI_MODEL", defaultGeminiModel),
		ProviderName:      strings.ToLower(getEnv("AGENT_PROVIDER", "")),
		WebSearch:         getEnv("AGENT_WEB_SEARCH", "true") == "true",
		ReasoningEffort:   strings.ToLower(getEnv("AGENT_REASONING_EFFORT", "")),
		GenerationTTL:     getDuration("GENERATION_TIMEOUT", defaultGenerationTimeout),
		FrontendOrigins:   splitList(getEnv("FRONTEND_ORIGIN", "*")),
		RateLimitRPS:      getFloat("RATE_LIMIT_RPS", defaultRateLimitRPS),
		RateLimitBurst:    getInt("RATE_LIMIT_BURST", defaultRateLimitBurst),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || f <= 0 {
		return defaultValue
	}
	return f
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// HasAgentCredentials returns true if any hosted agent credential is configured
func (c *Config) HasAgentCredentials() bool {
	return c.OpenAIAPIKey != "" || c.GeminiAPIKey != ""
}

// AgentProvider resolves which gateway strategy serves generation requests.
// An explicit override wins; otherwise the first provider with a credential
// is used, and the local fallback covers environments without credentials.
func (c *Config) AgentProvider() string {
	switch c.ProviderName {
	case ProviderOpenAI, ProviderGemini, ProviderFallback:
		return c.ProviderName
	}
	if c.OpenAIAPIKey != "" {
		return ProviderOpenAI
	}
	if c.GeminiAPIKey != "" {
		return ProviderGemini
	}
	return ProviderFallback
}

// AgentModel returns the model identifier for the resolved provider
func (c *Config) AgentModel() string {
	switch c.AgentProvider() {
	case ProviderOpenAI:
		return c.Model
	case ProviderGemini:
		return c.GeminiModel
	default:
		return "local-fallback"
	}
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowsAnyOrigin reports whether CORS is open to every origin
func (c *Config) AllowsAnyOrigin() bool {
	for _, origin := range c.FrontendOrigins {
		if origin == "*" {
			return true
		}
	}
	return len(c.FrontendOrigins) == 0
}
