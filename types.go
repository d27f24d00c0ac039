package askframe

import (
	"io"
	"maps"
	"os"
)

// DefaultModel is the model identifier sent when none is configured.
const DefaultModel = "gpt-3.5-turbo"

// Config holds the settings read by every call. Calls snapshot it on entry,
// so changes made with UpdateConfig apply from the next call.
type Config struct {
	// Verbose writes the raw model reply to Output before extraction.
	Verbose bool `yaml:"verbose"`
	// Mutable hands generated programs the caller's object instead of a copy.
	Mutable bool `yaml:"mutable"`

	Model             string         `yaml:"model"`
	CompletionOptions map[string]any `yaml:"completion_options"`

	// VerifyArtifact fails plot calls whose program did not write PlotFile.
	VerifyArtifact bool `yaml:"verify_artifact"`
	// PlotFile is the artifact name plot programs save, relative to the
	// working directory.
	PlotFile string `yaml:"plot_file"`

	Output io.Writer `yaml:"-"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Model:             DefaultModel,
		CompletionOptions: map[string]any{},
		PlotFile:          "output.png",
		Output:            os.Stdout,
	}
}

func (c Config) clone() Config {
	out := c
	out.CompletionOptions = maps.Clone(c.CompletionOptions)
	if out.Output == nil {
		out.Output = os.Stdout
	}
	if out.PlotFile == "" {
		out.PlotFile = "output.png"
	}
	return out
}

// Stats summarizes cache and execution activity since construction.
type Stats struct {
	CacheHits     int64
	CacheMisses   int64
	BackendCalls  int64
	Runs          int
	RunsFailed    int
	PlotsRendered int
}

// CallOption adjusts a single call.
type CallOption func(*callOptions)

type callOptions struct {
	mutable *bool
	verbose *bool
	args    []any
}

// WithMutable overrides Config.Mutable for one call.
func WithMutable(mutable bool) CallOption {
	return func(o *callOptions) {
		o.mutable = &mutable
	}
}

// WithVerbose overrides Config.Verbose for one call.
func WithVerbose(verbose bool) CallOption {
	return func(o *callOptions) {
		o.verbose = &verbose
	}
}

// WithArgs passes extra positional arguments to process after the data
// argument. Plot calls ignore them.
func WithArgs(args ...any) CallOption {
	return func(o *callOptions) {
		o.args = append(o.args, args...)
	}
}

func applyCallOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
