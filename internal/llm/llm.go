// Package llm abstracts the model call. The pipeline treats generation
// as a black box — prompt in, text or chunk stream out — and owns no
// retry logic: a provider failure surfaces as a generic error to the
// caller.
package llm

import "context"

// Chunk is one increment of streamed output. Err, when set, terminates
// the stream; the channel is closed afterward either way.
type Chunk struct {
	Text string
	Err  error
}

// Generator produces model output for an assembled prompt. Both calls
// honor ctx cancellation without leaking the underlying connection.
type Generator interface {
	Generate(ctx context.Context, system, user string, temperature float64) (string, error)
	GenerateStream(ctx context.Context, system, user string, temperature float64) (<-chan Chunk, error)
}
