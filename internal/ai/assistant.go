package ai

import "context"

// Generator produces model output for a prompt. Implementations are expected
// to handle transient transport failures themselves; a returned error means
// the request ultimately failed.
type Generator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Embedder converts text into a fixed-length vector for similarity search.
// A failure is always reported as an error, never as an empty vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Model() string
}
