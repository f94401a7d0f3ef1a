package uc

import (
	"context"
	"strings"
	"time"

	"github.com/substratehq/substrate/engine/assist"
	assistadapter "github.com/substratehq/substrate/engine/assist/adapter"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/pkg/logger"
)

const (
	// maxPromptChars bounds the total conversation size accepted per request
	maxPromptChars = 32_000
	// maxMessages caps the number of turns carried into a single completion
	maxMessages = 50

	defaultMaxTokens = 1024
)

// CompleteInput is a chat completion request from an authenticated caller
type CompleteInput struct {
	SystemPrompt string                  `json:"system_prompt,omitempty"`
	Messages     []assistadapter.Message `json:"messages"`
	Temperature  float64                 `json:"temperature,omitempty"`
	MaxTokens    int                     `json:"max_tokens,omitempty"`
	JSONMode     bool                    `json:"json_mode,omitempty"`
}

// CompleteOutput carries the completion plus timing for the caller
type CompleteOutput struct {
	Content   string              `json:"content"`
	Model     string              `json:"model"`
	Usage     assistadapter.Usage `json:"usage"`
	LatencyMS int64               `json:"latency_ms"`
}

// Complete use case for generating a chat completion
type Complete struct {
	client   assistadapter.Client
	defaults Defaults
	userID   core.ID
	input    *CompleteInput
}

// NewComplete creates a new completion use case
func NewComplete(client assistadapter.Client, defaults Defaults, userID core.ID, input *CompleteInput) *Complete {
	return &Complete{client: client, defaults: defaults, userID: userID, input: input}
}

// Execute validates the conversation and requests a completion
func (uc *Complete) Execute(ctx context.Context) (*CompleteOutput, error) {
	log := logger.FromContext(ctx)

	if err := uc.validate(); err != nil {
		return nil, err
	}

	maxTokens := uc.input.MaxTokens
	if maxTokens <= 0 {
		maxTokens = uc.defaults.MaxTokens
	}
	temperature := uc.input.Temperature
	if temperature == 0 {
		temperature = uc.defaults.Temperature
	}
	req := &assistadapter.Request{
		SystemPrompt: uc.input.SystemPrompt,
		Messages:     uc.input.Messages,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		JSONMode:     uc.input.JSONMode,
	}

	start := time.Now()
	resp, err := uc.client.GenerateContent(ctx, req)
	if err != nil {
		log.Error("Completion request failed", "user_id", uc.userID, "error", err)
		return nil, err
	}
	latency := time.Since(start)
	log.Info("Completion generated",
		"user_id", uc.userID,
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"latency", latency,
	)
	return &CompleteOutput{
		Content:   resp.Content,
		Model:     resp.Model,
		Usage:     resp.Usage,
		LatencyMS: latency.Milliseconds(),
	}, nil
}

func (uc *Complete) validate() error {
	if len(uc.input.Messages) == 0 {
		return core.NewError(nil, assist.ErrCodeInvalidPrompt, nil)
	}
	if len(uc.input.Messages) > maxMessages {
		return core.NewError(nil, assist.ErrCodePromptTooLong, map[string]any{
			"max_messages": maxMessages,
		})
	}
	total := len(uc.input.SystemPrompt)
	for i, msg := range uc.input.Messages {
		switch msg.Role {
		case assistadapter.RoleUser, assistadapter.RoleAssistant, assistadapter.RoleSystem:
		default:
			return core.NewError(nil, assist.ErrCodeInvalidMessage, map[string]any{
				"index": i,
				"role":  msg.Role,
			})
		}
		if strings.TrimSpace(msg.Content) == "" {
			return core.NewError(nil, assist.ErrCodeInvalidMessage, map[string]any{
				"index": i,
			})
		}
		total += len(msg.Content)
	}
	if total > maxPromptChars {
		return core.NewError(nil, assist.ErrCodePromptTooLong, map[string]any{
			"max_chars": maxPromptChars,
		})
	}
	return nil
}
