package askframe

import "context"

// Runner executes untrusted generated source and returns the value of
// process(args...). The default runs it in-process with no isolation.
type Runner interface {
	Run(ctx context.Context, source string, args []any) (any, error)
}

// Cache stores completions by exact prompt text. Get returns an error on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// Copier is implemented by plain values that can hand the pipeline a copy of
// themselves when the call is not mutable.
type Copier interface {
	Copy() any
}
