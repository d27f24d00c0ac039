// Package askframe answers natural-language questions about tabular data by
// having a language model write a small Go program and running it against
// the data.
package askframe

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/askframe/internal/adapters"
	"github.com/ZanzyTHEbar/askframe/internal/cache"
	"github.com/ZanzyTHEbar/askframe/internal/eventbus"
	"github.com/ZanzyTHEbar/askframe/internal/executor"
	"github.com/ZanzyTHEbar/askframe/internal/prompt"
	"github.com/ZanzyTHEbar/askframe/pkg/frame"
	"github.com/ZanzyTHEbar/askframe/pkg/llm"
)

// Asker is the main entry point. It owns the completion cache, the program
// executor and the current configuration, and is safe for concurrent use.
type Asker struct {
	backend llm.Backend
	cache   Cache
	runner  Runner
	bus     eventbus.EventBus
	logger  *zap.SugaredLogger

	completions *adapters.CompletionClient
	executor    *executor.Executor
	ownedCache  *cache.InMemoryCache

	configMu sync.RWMutex
	config   Config

	// plots share the output file and the current figure
	plotMu sync.Mutex
}

// Option is a function that configures an Asker.
type Option func(*Asker)

// WithConfig sets the initial configuration.
func WithConfig(config Config) Option {
	return func(a *Asker) {
		a.config = config.clone()
	}
}

// WithCache replaces the default process-lifetime in-memory cache.
func WithCache(c Cache) Option {
	return func(a *Asker) {
		a.cache = c
	}
}

// WithRunner replaces the in-process interpreter that runs generated programs.
func WithRunner(r Runner) Option {
	return func(a *Asker) {
		a.runner = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(a *Asker) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithEventBus publishes a pipeline event for every stage of every call.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(a *Asker) {
		a.bus = bus
	}
}

// New creates an Asker that requests programs from backend.
func New(backend llm.Backend, options ...Option) (*Asker, error) {
	if backend == nil {
		return nil, NewConfigurationError("a language model backend is required", nil)
	}

	a := &Asker{
		backend: backend,
		config:  DefaultConfig(),
		logger:  zap.NewNop().Sugar(),
	}
	for _, option := range options {
		option(a)
	}

	if a.cache == nil {
		a.ownedCache = cache.NewInMemoryCache(0, cache.WithLogger(a.logger))
		a.cache = a.ownedCache
	}

	execOpts := []executor.ExecutorOption{executor.WithLogger(a.logger)}
	if a.runner != nil {
		execOpts = append(execOpts, executor.WithRunner(a.runner))
	}
	a.executor = executor.NewExecutor(execOpts...)
	a.completions = adapters.NewCompletionClient(backend, a.cache, a.logger)

	return a, nil
}

// Config returns a copy of the current configuration.
func (a *Asker) Config() Config {
	a.configMu.RLock()
	defer a.configMu.RUnlock()
	return a.config.clone()
}

// UpdateConfig applies fn to the configuration. Calls already in flight keep
// the configuration they started with.
func (a *Asker) UpdateConfig(fn func(*Config)) {
	a.configMu.Lock()
	defer a.configMu.Unlock()
	next := a.config.clone()
	fn(&next)
	a.config = next.clone()
}

// Stats reports cache and execution activity.
func (a *Asker) Stats() Stats {
	cs := a.completions.Stats()
	m := a.executor.Metrics()
	return Stats{
		CacheHits:     cs.Hits,
		CacheMisses:   cs.Misses,
		BackendCalls:  cs.BackendCalls,
		Runs:          m.RunsExecuted,
		RunsFailed:    m.RunsFailed,
		PlotsRendered: m.PlotsRendered,
	}
}

// Close releases the default cache. Injected caches and event buses are left
// to their owners.
func (a *Asker) Close() error {
	if a.ownedCache != nil {
		a.ownedCache.Close()
	}
	return nil
}

// Table returns the entry point for questions about t.
func (a *Asker) Table(t *frame.Table) *Accessor {
	return &Accessor{asker: a, arg: prompt.Arg{Kind: frame.KindTable, Value: t}}
}

// Series returns the entry point for questions about s.
func (a *Asker) Series(s *frame.Series) *Accessor {
	return &Accessor{asker: a, arg: prompt.Arg{Kind: frame.KindSeries, Value: s}}
}

// Index returns the entry point for questions about ix.
func (a *Asker) Index(ix *frame.Index) *Accessor {
	return &Accessor{asker: a, arg: prompt.Arg{Kind: frame.KindIndex, Value: ix}}
}

// Value returns the entry point for questions about an arbitrary value,
// which is described to the model by its Go syntax representation.
func (a *Asker) Value(v any) *Accessor {
	return &Accessor{asker: a, arg: prompt.Arg{Kind: frame.KindValue, Value: v}}
}

// For picks the accessor flavor from v's type.
func (a *Asker) For(v any) *Accessor {
	return &Accessor{asker: a, arg: prompt.NewArg(v)}
}
