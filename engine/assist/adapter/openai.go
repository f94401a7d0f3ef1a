package assistadapter

import (
	"context"
	"fmt"

	"github.com/substratehq/substrate/engine/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Config carries the provider settings for the completion client
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIAdapter adapts langchaingo's OpenAI client to the Client interface
type OpenAIAdapter struct {
	model     llms.Model
	modelName string
}

// NewOpenAIAdapter creates a chat completion client backed by OpenAI
func NewOpenAIAdapter(cfg Config) (*OpenAIAdapter, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating completion client: %w", err)
	}
	return &OpenAIAdapter{model: model, modelName: cfg.Model}, nil
}

// GenerateContent implements Client
func (a *OpenAIAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	resp, err := a.model.GenerateContent(ctx, convertMessages(req), buildCallOptions(req)...)
	if err != nil {
		return nil, ParseProviderError("openai", err)
	}
	return convertResponse(a.modelName, resp)
}

func convertMessages(req *Request) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.SystemPrompt))
	}
	for _, msg := range req.Messages {
		messages = append(messages, llms.TextParts(mapRole(msg.Role), msg.Content))
	}
	return messages
}

func mapRole(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

func buildCallOptions(req *Request) []llms.CallOption {
	var options []llms.CallOption
	if req.Temperature > 0 {
		options = append(options, llms.WithTemperature(req.Temperature))
	}
	if req.MaxTokens > 0 {
		options = append(options, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSONMode {
		options = append(options, llms.WithJSONMode())
	}
	return options
}

func convertResponse(modelName string, resp *llms.ContentResponse) (*Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, core.NewError(
			fmt.Errorf("provider returned no choices"),
			ErrCodeProvider,
			map[string]any{"provider": "openai"},
		)
	}
	choice := resp.Choices[0]
	out := &Response{
		Content: choice.Content,
		Model:   modelName,
	}
	if prompt, ok := choice.GenerationInfo["PromptTokens"].(int); ok {
		out.Usage.PromptTokens = prompt
	}
	if completion, ok := choice.GenerationInfo["CompletionTokens"].(int); ok {
		out.Usage.CompletionTokens = completion
	}
	return out, nil
}
