package llm

import (
	"context"
	"fmt"
	"iter"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	mimeTypeJSON       = "application/json"
	maxLogEventCount   = 5
	geminiUserRole     = "user"
)

// GeminiGateway runs agents on Google's Gemini API
type GeminiGateway struct {
	client *genai.Client
	model  string
}

// NewGeminiGateway creates a new Gemini gateway
func NewGeminiGateway(ctx context.Context, apiKey, model string) (*GeminiGateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGateway{
		client: client,
		model:  model,
	}, nil
}

// Name returns the provider name
func (g *GeminiGateway) Name() string {
	return providerNameGemini
}

// Model returns the model identifier
func (g *GeminiGateway) Model() string {
	return g.model
}

// Run implements a blocking generation using Gemini's API
func (g *GeminiGateway) Run(ctx context.Context, prompt string, schema *OutputSchema) (*RunResult, error) {
	startTime := time.Now()
	log.Printf("🎬 GEMINI RUN STARTED (Model: %s)", g.model)

	transaction := sentry.StartTransaction(ctx, "gemini.run")
	defer transaction.Finish()
	transaction.SetTag("model", g.model)
	transaction.SetTag("provider", providerNameGemini)

	result, err := g.client.Models.GenerateContent(ctx, g.model, buildGeminiContents(prompt), buildGeminiConfig(schema))
	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", time.Since(startTime), err)
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := chunkText(result)
	if strings.TrimSpace(text) == "" {
		transaction.SetTag("success", "false")
		return nil, &RunError{Message: "gemini response did not include any output text"}
	}

	usage := convertGeminiUsage(result.UsageMetadata)
	logUsageStats(providerNameGemini, usage)
	log.Printf("✅ GEMINI RUN COMPLETED in %v (%d chars)", time.Since(startTime), len(text))
	transaction.SetTag("success", "true")

	return &RunResult{Text: text, Usage: usage}, nil
}

// RunStreamed streams a Gemini generation. Gemini reports no tool or search
// items, so the run surfaces as one reasoning phase followed by the agent message.
func (g *GeminiGateway) RunStreamed(ctx context.Context, prompt string, schema *OutputSchema) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		startTime := time.Now()
		log.Printf("🚀 GEMINI STREAMING RUN: model=%s", g.model)

		transaction := sentry.StartTransaction(ctx, "gemini.run_stream")
		defer transaction.Finish()
		transaction.SetTag("model", g.model)
		transaction.SetTag("provider", providerNameGemini)
		transaction.SetTag("streaming", "true")

		if !yield(Event{Kind: EventTurnStarted}, nil) {
			return
		}
		if !yield(Event{Kind: EventItemStarted, Item: &Item{Type: ItemReasoning}}, nil) {
			return
		}

		var accumulated strings.Builder
		var usage *Usage
		eventCount := 0
		for chunk, err := range g.client.Models.GenerateContentStream(ctx, g.model, buildGeminiContents(prompt), buildGeminiConfig(schema)) {
			if err != nil {
				log.Printf("❌ GEMINI STREAMING ERROR: %v", err)
				transaction.SetTag("success", "false")
				yield(Event{}, fmt.Errorf("gemini stream error: %w", err))
				return
			}
			eventCount++

			text := chunkText(chunk)
			accumulated.WriteString(text)
			if eventCount <= maxLogEventCount {
				log.Printf("✅ Gemini chunk #%d: +%d chars (total: %d)", eventCount, len(text), accumulated.Len())
			}
			if chunk.UsageMetadata != nil {
				usage = convertGeminiUsage(chunk.UsageMetadata)
			}
		}

		if !yield(Event{Kind: EventItemCompleted, Item: &Item{Type: ItemReasoning}}, nil) {
			return
		}

		if strings.TrimSpace(accumulated.String()) == "" {
			transaction.SetTag("success", "false")
			yield(Event{Kind: EventTurnFailed, Error: "gemini response did not include any output text"}, nil)
			return
		}

		message := Event{Kind: EventItemCompleted, Item: &Item{Type: ItemAgentMessage, Text: accumulated.String()}}
		if !yield(message, nil) {
			return
		}

		logUsageStats(providerNameGemini, usage)
		log.Printf("✅ GEMINI STREAMING COMPLETE: %d chunks, %v duration", eventCount, time.Since(startTime))
		transaction.SetTag("success", "true")
		yield(Event{Kind: EventTurnCompleted, Usage: usage}, nil)
	}
}

// buildGeminiContents wraps the prompt as a single user turn
func buildGeminiContents(prompt string) []*genai.Content {
	return []*genai.Content{{
		Role:  geminiUserRole,
		Parts: []*genai.Part{{Text: prompt}},
	}}
}

func buildGeminiConfig(schema *OutputSchema) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if schema != nil {
		config.ResponseMIMEType = mimeTypeJSON
		config.ResponseSchema = convertSchemaToGemini(schema.Schema)
	}
	return config
}

// convertSchemaToGemini maps the subset of JSON Schema used by our output
// schemas onto Gemini's Schema type. Bounds are left to the sanitizer.
func convertSchemaToGemini(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{}
	switch schema["type"] {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}

	if properties, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(properties))
		for name, prop := range properties {
			if propSchema, ok := prop.(map[string]any); ok {
				out.Properties[name] = convertSchemaToGemini(propSchema)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = convertSchemaToGemini(items)
	}
	if required, ok := schema["required"].([]string); ok {
		out.Required = append([]string(nil), required...)
	}
	if enum, ok := schema["enum"].([]string); ok {
		out.Enum = append([]string(nil), enum...)
	}

	return out
}

func chunkText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func convertGeminiUsage(meta *genai.GenerateContentResponseUsageMetadata) *Usage {
	if meta == nil {
		return nil
	}
	return &Usage{
		InputTokens:     int64(meta.PromptTokenCount),
		OutputTokens:    int64(meta.CandidatesTokenCount),
		ReasoningTokens: int64(meta.ThoughtsTokenCount),
		TotalTokens:     int64(meta.TotalTokenCount),
	}
}
