package llm

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
)

// DefaultGenkitModel is the model used by NewGoogleAIBackend when none is given.
const DefaultGenkitModel = "googleai/gemini-2.0-flash"

// GenkitBackend serves completions through a Genkit instance and its
// registered model plugins.
type GenkitBackend struct {
	g *genkit.Genkit
}

// NewGenkitBackend wraps an initialized Genkit instance.
func NewGenkitBackend(g *genkit.Genkit) *GenkitBackend {
	return &GenkitBackend{g: g}
}

// NewGoogleAIBackend initializes Genkit with the Google AI plugin and returns
// a backend over it.
func NewGoogleAIBackend(ctx context.Context, apiKey, defaultModel string) (*GenkitBackend, error) {
	if defaultModel == "" {
		defaultModel = DefaultGenkitModel
	}
	g, err := genkit.Init(ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: apiKey}),
		genkit.WithDefaultModel(defaultModel),
	)
	if err != nil {
		return nil, fmt.Errorf("genkit initialization failed: %w", err)
	}
	return NewGenkitBackend(g), nil
}

// Complete implements Backend. Request options are passed through as the
// model config.
func (b *GenkitBackend) Complete(ctx context.Context, req Request) (*Completion, error) {
	if b.g == nil {
		return nil, fmt.Errorf("genkit backend is not initialized")
	}

	msgs := make([]*ai.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, ai.NewSystemTextMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, ai.NewModelTextMessage(m.Content))
		default:
			msgs = append(msgs, ai.NewUserTextMessage(m.Content))
		}
	}

	opts := []ai.GenerateOption{ai.WithMessages(msgs...)}
	if req.Model != "" {
		opts = append(opts, ai.WithModelName(req.Model))
	}
	if len(req.Options) > 0 {
		opts = append(opts, ai.WithConfig(req.Options))
	}

	resp, err := genkit.Generate(ctx, b.g, opts...)
	if err != nil {
		return nil, fmt.Errorf("genkit generate: %w", err)
	}

	out := &Completion{
		Model:   req.Model,
		Message: Message{Role: RoleAssistant, Content: resp.Text()},
		Raw:     resp,
	}
	if resp.Usage != nil {
		out.Usage = Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return out, nil
}
