// Package generator is the text-generation collaborator: one bounded,
// blocking request per power per phase. A transport failure or timeout is the
// caller's cue to run the pipeline on empty input, never to abort the phase.
package generator

import "context"

// Request is one generation call. The deadline comes from ctx; MaxTokens
// bounds the response length.
type Request struct {
	Model     string
	System    string
	Prompt    string
	MaxTokens int
}

// Client produces raw text from a prompt. Implementations must respect ctx
// cancellation and return the response text verbatim, untrimmed of whatever
// wrapping the model produced; interpretation is not their job.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to the Client interface, for tests and dry runs.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
