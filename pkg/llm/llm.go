// Package llm defines the chat-completion boundary used by askframe and the
// backends that implement it.
package llm

import (
	"context"
	"strings"
	"time"
)

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat message.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// Request is a single chat completion call.
type Request struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Options  map[string]any `json:"options,omitempty"`
}

// Usage reports token accounting when the backend provides it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is a backend response. Message holds the first choice.
type Completion struct {
	ID      string  `json:"id,omitempty"`
	Model   string  `json:"model,omitempty"`
	Message Message `json:"message"`
	Usage   Usage   `json:"usage"`
	// Raw is the backend's own response value, for callers that need it.
	Raw any `json:"-"`
}

// Text returns the content of the first choice.
func (c *Completion) Text() string {
	if c == nil {
		return ""
	}
	return c.Message.Content
}

// Backend performs chat completions.
type Backend interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, req Request) (*Completion, error)

// Complete calls f.
func (f BackendFunc) Complete(ctx context.Context, req Request) (*Completion, error) {
	return f(ctx, req)
}

// ModelType selects the provider behind NewChatModel.
type ModelType string

const (
	ModelTypeUnknown   ModelType = ""
	ModelTypeOpenAI    ModelType = "openai"
	ModelTypeDeepSeek  ModelType = "deepseek"
	ModelTypeDashScope ModelType = "dashscope"
	ModelTypeARK       ModelType = "ark"
	ModelTypeOllama    ModelType = "ollama"
	ModelTypeClaude    ModelType = "claude"
)

// NewModelType maps provider names and common aliases to a ModelType.
func NewModelType(t string) ModelType {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "openai", "gpt":
		return ModelTypeOpenAI
	case "deepseek":
		return ModelTypeDeepSeek
	case "dashscope", "qwen", "tongyi":
		return ModelTypeDashScope
	case "ark", "doubao":
		return ModelTypeARK
	case "ollama":
		return ModelTypeOllama
	case "claude", "anthropic":
		return ModelTypeClaude
	}
	return ModelTypeUnknown
}

// ModelConfig describes how to reach a chat model.
type ModelConfig struct {
	APIType     ModelType     `json:"type" yaml:"type"`
	BaseURL     string        `json:"base_url" yaml:"base_url"`
	APIKey      string        `json:"api_key" yaml:"api_key"`
	ModelName   string        `json:"model_name" yaml:"model_name"`
	Temperature *float32      `json:"temperature" yaml:"temperature"`
	MaxTokens   int           `json:"max_tokens" yaml:"max_tokens"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
}
