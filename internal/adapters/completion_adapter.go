package adapters

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ZanzyTHEbar/askframe/internal/cache"
	"github.com/ZanzyTHEbar/askframe/pkg/llm"
)

// SystemInstruction is sent as the system message of every completion request.
const SystemInstruction = "Write the function in Go. Return only a single code block delimited by triple backticks " +
	"defining `func process`. Include every import the code needs. Do not include example usage."

// CompletionStats counts cache and backend activity.
type CompletionStats struct {
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	BackendCalls int64 `json:"backend_calls"`
}

// CompletionClient returns the completion for a prompt, asking the backend
// only when the prompt has not been seen before.
type CompletionClient struct {
	backend llm.Backend
	cache   cache.Cache
	group   singleflight.Group
	logger  *zap.SugaredLogger

	hits, misses, calls atomic.Int64
}

// NewCompletionClient creates a client over backend and c.
func NewCompletionClient(backend llm.Backend, c cache.Cache, logger *zap.SugaredLogger) *CompletionClient {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &CompletionClient{backend: backend, cache: c, logger: logger}
}

// Complete returns the cached completion for prompt, or requests one with the
// given model and options and caches it. The second result reports a cache hit.
func (c *CompletionClient) Complete(ctx context.Context, prompt, model string, options map[string]any) (*llm.Completion, bool, error) {
	fp := Fingerprint(prompt)

	if completion, ok := c.lookup(ctx, prompt); ok {
		c.hits.Add(1)
		c.logger.Debugw("completion cache hit", "prompt", fp)
		return completion, true, nil
	}

	// The shared request outlives any single waiter; each caller stops
	// waiting on its own context.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(prompt, func() (interface{}, error) {
		// a concurrent caller may have filled it
		if completion, ok := c.lookup(flightCtx, prompt); ok {
			return completion, nil
		}

		c.misses.Add(1)
		c.calls.Add(1)
		c.logger.Debugw("completion cache miss", "prompt", fp, "model", model)

		completion, err := c.backend.Complete(flightCtx, llm.Request{
			Model: model,
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: SystemInstruction},
				{Role: llm.RoleUser, Content: prompt},
			},
			Options: options,
		})
		if err != nil {
			return nil, fmt.Errorf("backend completion failed: %w", err)
		}
		if completion == nil {
			return nil, fmt.Errorf("backend returned no completion")
		}

		if err := c.cache.Set(flightCtx, prompt, completion); err != nil {
			c.logger.Warnw("failed to cache completion", "prompt", fp, "error", err)
		}
		return completion, nil
	})

	select {
	case <-ctx.Done():
		c.logger.Debugw("stopped waiting for completion", "prompt", fp, "error", ctx.Err())
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		if res.Shared {
			c.logger.Debugw("completion shared with concurrent caller", "prompt", fp)
		}
		return res.Val.(*llm.Completion), false, nil
	}
}

func (c *CompletionClient) lookup(ctx context.Context, prompt string) (*llm.Completion, bool) {
	v, err := c.cache.Get(ctx, prompt)
	if err != nil {
		return nil, false
	}
	completion, ok := v.(*llm.Completion)
	return completion, ok
}

// Stats returns a snapshot of the counters.
func (c *CompletionClient) Stats() CompletionStats {
	return CompletionStats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		BackendCalls: c.calls.Load(),
	}
}

// Fingerprint is a short stable identifier for a prompt, for logs.
func Fingerprint(prompt string) string {
	hasher := sha1.New()
	hasher.Write([]byte(prompt))
	return hex.EncodeToString(hasher.Sum(nil))[:12]
}
