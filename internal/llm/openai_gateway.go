package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/tidwall/gjson"
)

const (
	providerNameOpenAI = "openai"

	// OpenAI output item types
	openAIItemMessage      = "message"
	openAIItemWebSearch    = "web_search_call"
	openAIItemReasoning    = "reasoning"
	openAIItemMCPCall      = "mcp_call"
	openAIItemFunctionCall = "function_call"

	maxLogEventCountOpenAI = 5
)

// Only GPT-5 family models accept the reasoning parameter
var modelsWithReasoning = map[string]bool{
	"gpt-5":      true,
	"gpt-5-mini": true,
	"gpt-5-nano": true,
	"gpt-5.1":    true,
	"gpt-5.2":    true,
}

// OpenAIGateway runs agents on OpenAI's Responses API
type OpenAIGateway struct {
	client    *openai.Client
	model     string
	webSearch bool
	reasoning string
}

// NewOpenAIGateway creates a gateway for the given model. When webSearch is
// set, review runs may use the hosted web search tool.
func NewOpenAIGateway(apiKey, model string, webSearch bool, opts ...option.RequestOption) *OpenAIGateway {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAIGateway{
		client:    &client,
		model:     model,
		webSearch: webSearch,
	}
}

// WithReasoningEffort pins the reasoning mode for every run
func (g *OpenAIGateway) WithReasoningEffort(mode string) *OpenAIGateway {
	g.reasoning = mode
	return g
}

// Name returns the provider name
func (g *OpenAIGateway) Name() string {
	return providerNameOpenAI
}

// Model returns the model identifier
func (g *OpenAIGateway) Model() string {
	return g.model
}

// Run performs a blocking Responses API call and returns the output text
func (g *OpenAIGateway) Run(ctx context.Context, prompt string, schema *OutputSchema) (*RunResult, error) {
	startTime := time.Now()
	log.Printf("🎬 OPENAI RUN STARTED (Model: %s)", g.model)

	transaction := sentry.StartTransaction(ctx, "openai.run")
	defer transaction.Finish()
	transaction.SetTag("model", g.model)
	transaction.SetTag("provider", providerNameOpenAI)

	resp, err := g.client.Responses.New(ctx, g.buildRequestParams(prompt, schema))
	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", time.Since(startTime), err)
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if resp.Error.Message != "" {
		transaction.SetTag("success", "false")
		return nil, &RunError{Message: resp.Error.Message}
	}

	text := resp.OutputText()
	if strings.TrimSpace(text) == "" {
		transaction.SetTag("success", "false")
		return nil, &RunError{Message: "openai response did not include any output text"}
	}

	usage := convertOpenAIUsage(resp.Usage)
	logUsageStats(providerNameOpenAI, usage)
	log.Printf("✅ OPENAI RUN COMPLETED in %v (%d chars)", time.Since(startTime), len(text))
	transaction.SetTag("success", "true")

	return &RunResult{Text: text, Usage: usage}, nil
}

// RunStreamed streams a Responses API call as gateway events
func (g *OpenAIGateway) RunStreamed(ctx context.Context, prompt string, schema *OutputSchema) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		startTime := time.Now()
		log.Printf("🚀 OPENAI STREAMING RUN: model=%s", g.model)

		transaction := sentry.StartTransaction(ctx, "openai.run_stream")
		defer transaction.Finish()
		transaction.SetTag("model", g.model)
		transaction.SetTag("provider", providerNameOpenAI)
		transaction.SetTag("streaming", "true")

		stream := g.client.Responses.NewStreaming(ctx, g.buildRequestParams(prompt, schema))
		defer stream.Close()

		translator := newStreamTranslator()
		eventCount := 0
		for stream.Next() {
			event := stream.Current()
			eventCount++
			if eventCount <= maxLogEventCountOpenAI {
				log.Printf("📥 Stream event #%d: type=%s", eventCount, event.Type)
			}

			for _, out := range translator.translate(event) {
				if !yield(out, nil) {
					transaction.SetTag("success", "cancelled")
					return
				}
				if out.Kind == EventTurnFailed {
					transaction.SetTag("success", "false")
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			log.Printf("❌ Stream error: %v", err)
			transaction.SetTag("success", "false")
			yield(Event{}, fmt.Errorf("openai stream error: %w", err))
			return
		}
		if !translator.finished {
			transaction.SetTag("success", "false")
			yield(Event{}, errors.New("openai stream ended before the response completed"))
			return
		}

		log.Printf("✅ OPENAI STREAMING COMPLETE: %d events, %v duration", eventCount, time.Since(startTime))
		transaction.SetTag("success", "true")
	}
}

func (g *OpenAIGateway) buildRequestParams(prompt string, schema *OutputSchema) responses.ResponseNewParams {
	params := responses.ResponseNewParams{
		Model: g.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(prompt),
		},
	}

	if modelsWithReasoning[g.model] {
		params.Reasoning = shared.ReasoningParam{
			Effort: reasoningFor(schema, g.reasoning),
		}
	}

	if schema != nil {
		format := &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:   schema.Name,
			Schema: schema.Schema,
			Strict: openai.Bool(true),
		}
		if schema.Description != "" {
			format.Description = openai.String(schema.Description)
		}
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{OfJSONSchema: format},
		}
		log.Printf("📋 JSON SCHEMA CONFIGURED: %s", schema.Name)
	}

	// Web search only helps review runs; taste analysis works from the payload alone
	if g.webSearch && schema != nil && schema.Name == ReviewSchemaName {
		params.Tools = []responses.ToolUnionParam{
			responses.ToolParamOfWebSearchPreview(responses.WebSearchToolTypeWebSearchPreview),
		}
	}

	return params
}

// streamTranslator converts Responses API stream events into gateway events.
// It accumulates message deltas so the completed agent message carries full text.
type streamTranslator struct {
	messageText map[string]*strings.Builder
	sawMessage  bool
	finished    bool
}

func newStreamTranslator() *streamTranslator {
	return &streamTranslator{messageText: make(map[string]*strings.Builder)}
}

func (t *streamTranslator) translate(event responses.ResponseStreamEventUnion) []Event {
	switch event.Type {
	case "response.created":
		return []Event{{Kind: EventTurnStarted}}

	case "response.output_item.added":
		return t.itemEvent(EventItemStarted, event.Item)

	case "response.web_search_call.searching":
		return []Event{{Kind: EventItemUpdated, Item: &Item{ID: event.ItemID, Type: ItemWebSearch}}}

	case "response.output_text.delta":
		delta := event.AsResponseOutputTextDelta()
		b, ok := t.messageText[delta.ItemID]
		if !ok {
			b = &strings.Builder{}
			t.messageText[delta.ItemID] = b
		}
		b.WriteString(delta.Delta)
		return nil

	case "response.output_item.done":
		return t.itemEvent(EventItemCompleted, event.Item)

	case "response.completed":
		completed := event.AsResponseCompleted()
		t.finished = true
		var out []Event
		if !t.sawMessage {
			if text := completed.Response.OutputText(); text != "" {
				t.sawMessage = true
				out = append(out, Event{Kind: EventItemCompleted, Item: &Item{Type: ItemAgentMessage, Text: text}})
			}
		}
		usage := convertOpenAIUsage(completed.Response.Usage)
		logUsageStats(providerNameOpenAI, usage)
		return append(out, Event{Kind: EventTurnCompleted, Usage: usage})

	case "response.failed":
		failed := event.AsResponseFailed()
		t.finished = true
		message := failed.Response.Error.Message
		if message == "" {
			message = "openai response failed"
		}
		return []Event{{Kind: EventTurnFailed, Error: message}}

	case "response.incomplete":
		t.finished = true
		return []Event{{Kind: EventTurnFailed, Error: "openai response incomplete"}}

	case "error":
		errEvent := event.AsError()
		t.finished = true
		return []Event{{Kind: EventTurnFailed, Error: errEvent.Message}}
	}
	return nil
}

func (t *streamTranslator) itemEvent(kind EventKind, raw responses.ResponseOutputItemUnion) []Event {
	item := &Item{ID: raw.ID}

	switch raw.Type {
	case openAIItemMessage:
		item.Type = ItemAgentMessage
		if kind != EventItemCompleted {
			break
		}
		item.Text = t.messageTextFor(raw)
		if strings.TrimSpace(item.Text) == "" {
			// Refusals and empty messages do not count as a final answer
			return nil
		}
		t.sawMessage = true

	case openAIItemWebSearch:
		item.Type = ItemWebSearch
		item.Query = gjson.Get(raw.RawJSON(), "action.query").String()

	case openAIItemReasoning:
		item.Type = ItemReasoning

	case openAIItemMCPCall:
		item.Type = ItemToolCall
		item.Server = raw.ServerLabel
		item.Tool = raw.Name

	case openAIItemFunctionCall:
		item.Type = ItemToolCall
		item.Server = "function"
		item.Tool = raw.Name

	default:
		item.Type = ItemOther
	}

	return []Event{{Kind: kind, Item: item}}
}

// messageTextFor prefers the completed item's own content and falls back to streamed deltas
func (t *streamTranslator) messageTextFor(raw responses.ResponseOutputItemUnion) string {
	var parts []string
	for _, part := range gjson.Get(raw.RawJSON(), `content.#(type=="output_text")#.text`).Array() {
		parts = append(parts, part.String())
	}
	if text := strings.Join(parts, ""); text != "" {
		return text
	}
	if b, ok := t.messageText[raw.ID]; ok {
		return b.String()
	}
	return ""
}

func convertOpenAIUsage(usage responses.ResponseUsage) *Usage {
	if usage.TotalTokens == 0 && usage.InputTokens == 0 {
		return nil
	}
	return &Usage{
		InputTokens:     usage.InputTokens,
		OutputTokens:    usage.OutputTokens,
		ReasoningTokens: usage.OutputTokensDetails.ReasoningTokens,
		TotalTokens:     usage.TotalTokens,
	}
}

// logUsageStats logs token usage statistics
func logUsageStats(provider string, usage *Usage) {
	if usage == nil {
		return
	}
	log.Printf("📊 %s USAGE: input=%d, output=%d, reasoning=%d, total=%d",
		strings.ToUpper(provider), usage.InputTokens, usage.OutputTokens,
		usage.ReasoningTokens, usage.TotalTokens)
}
