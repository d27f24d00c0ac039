package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatGenerator is the part of an eino chat model the backend needs.
type ChatGenerator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// EinoBackend serves completions from an eino chat model.
type EinoBackend struct {
	chat ChatGenerator
}

// NewEinoBackend wraps an eino chat model.
func NewEinoBackend(chat ChatGenerator) *EinoBackend {
	return &EinoBackend{chat: chat}
}

// Complete implements Backend.
func (b *EinoBackend) Complete(ctx context.Context, req Request) (*Completion, error) {
	msgs := make([]*schema.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, toSchemaMessage(m))
	}

	opts, err := einoOptions(req)
	if err != nil {
		return nil, err
	}

	resp, err := b.chat.Generate(ctx, msgs, opts...)
	if err != nil {
		return nil, fmt.Errorf("eino generate: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("eino generate: empty response")
	}

	out := &Completion{
		Model:   req.Model,
		Message: Message{Role: RoleAssistant, Content: resp.Content},
		Raw:     resp,
	}
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		out.Usage = Usage{
			PromptTokens:     resp.ResponseMeta.Usage.PromptTokens,
			CompletionTokens: resp.ResponseMeta.Usage.CompletionTokens,
			TotalTokens:      resp.ResponseMeta.Usage.TotalTokens,
		}
	}
	return out, nil
}

func toSchemaMessage(m Message) *schema.Message {
	switch m.Role {
	case RoleSystem:
		return schema.SystemMessage(m.Content)
	case RoleAssistant:
		return schema.AssistantMessage(m.Content, nil)
	default:
		return schema.UserMessage(m.Content)
	}
}

// einoOptions maps the request model and completion options onto eino
// call options. Unknown option keys are rejected.
func einoOptions(req Request) ([]model.Option, error) {
	var opts []model.Option
	if req.Model != "" {
		opts = append(opts, model.WithModel(req.Model))
	}
	for key, v := range req.Options {
		switch key {
		case "temperature":
			f, ok := asFloat(v)
			if !ok {
				return nil, fmt.Errorf("option %s: expected a number, got %T", key, v)
			}
			opts = append(opts, model.WithTemperature(float32(f)))
		case "top_p":
			f, ok := asFloat(v)
			if !ok {
				return nil, fmt.Errorf("option %s: expected a number, got %T", key, v)
			}
			opts = append(opts, model.WithTopP(float32(f)))
		case "max_tokens":
			f, ok := asFloat(v)
			if !ok {
				return nil, fmt.Errorf("option %s: expected a number, got %T", key, v)
			}
			opts = append(opts, model.WithMaxTokens(int(f)))
		case "stop":
			stop, ok := asStrings(v)
			if !ok {
				return nil, fmt.Errorf("option %s: expected a list of strings, got %T", key, v)
			}
			opts = append(opts, model.WithStop(stop))
		default:
			return nil, fmt.Errorf("unsupported completion option %q", key)
		}
	}
	return opts, nil
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	}
	return 0, false
}

func asStrings(v any) ([]string, bool) {
	switch x := v.(type) {
	case string:
		return []string{x}, true
	case []string:
		return x, true
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// NewChatModel builds an eino chat model for the configured provider.
func NewChatModel(ctx context.Context, m ModelConfig) (ChatGenerator, error) {
	if m.MaxTokens == 0 {
		m.MaxTokens = 4096
	}
	if m.Timeout == 0 {
		m.Timeout = 600 * time.Second
	}

	switch m.APIType {
	case ModelTypeOpenAI:
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     m.BaseURL,
			APIKey:      m.APIKey,
			Model:       m.ModelName,
			Temperature: m.Temperature,
			MaxTokens:   &m.MaxTokens,
			Timeout:     m.Timeout,
		})
	case ModelTypeDeepSeek:
		// OpenAI-compatible endpoint
		baseURL := m.BaseURL
		if baseURL == "" {
			baseURL = "https://api.deepseek.com"
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     baseURL,
			APIKey:      m.APIKey,
			Model:       m.ModelName,
			Temperature: m.Temperature,
			MaxTokens:   &m.MaxTokens,
			Timeout:     m.Timeout,
		})
	case ModelTypeDashScope:
		baseURL := m.BaseURL
		if baseURL == "" {
			baseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
		}
		return qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
			BaseURL:     baseURL,
			APIKey:      m.APIKey,
			Model:       m.ModelName,
			Temperature: m.Temperature,
			MaxTokens:   &m.MaxTokens,
			Timeout:     m.Timeout,
		})
	case ModelTypeARK:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:     m.BaseURL,
			APIKey:      m.APIKey,
			Model:       m.ModelName,
			Temperature: m.Temperature,
			MaxTokens:   &m.MaxTokens,
		})
	case ModelTypeOllama:
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: m.BaseURL,
			Model:   m.ModelName,
		})
	case ModelTypeClaude:
		cfg := &claude.Config{
			APIKey:      m.APIKey,
			Model:       m.ModelName,
			Temperature: m.Temperature,
			MaxTokens:   m.MaxTokens,
		}
		if m.BaseURL != "" {
			cfg.BaseURL = &m.BaseURL
		}
		return claude.NewChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported model type %q", m.APIType)
	}
}
