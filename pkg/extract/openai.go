package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lifegraph-ai/lifegraph/pkg/types"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when the config names none.
const DefaultModel = "gpt-4o-mini"

// OpenAIConfig configures the LLM-backed extractor. BaseURL allows pointing
// at any OpenAI-compatible endpoint (Ollama, vLLM, a gateway).
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string

	// ContextProvider, when set, supplies known entity labels that are fed
	// to the model so it reuses them instead of inventing variants.
	ContextProvider func() []string
}

// OpenAIExtractor asks a chat-completion model for extraction batches.
type OpenAIExtractor struct {
	client          *openai.Client
	model           string
	contextProvider func() []string
	logger          *slog.Logger
}

// NewOpenAIExtractor creates an extractor backed by an OpenAI-compatible API.
func NewOpenAIExtractor(cfg OpenAIConfig, logger *slog.Logger) *OpenAIExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIExtractor{
		client:          openai.NewClientWithConfig(clientCfg),
		model:           model,
		contextProvider: cfg.ContextProvider,
		logger:          logger,
	}
}

// Extract implements Extractor.
func (e *OpenAIExtractor) Extract(ctx context.Context, text string, source types.SourceInfo) (*types.ExtractionResult, error) {
	var known []string
	if e.contextProvider != nil {
		known = e.contextProvider()
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(text, known)},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("extraction response had no choices")
	}

	result, err := ParseResponse(resp.Choices[0].Message.Content, source)
	if err != nil {
		e.logger.Warn("discarding unparsable extraction response", "source", source.ID, "error", err)
		return nil, err
	}
	e.logger.Debug("extraction complete",
		"source", source.ID, "nodes", len(result.Nodes), "edges", len(result.Edges))
	return result, nil
}
