// Package embedding provides dense vector representations of catalog
// text for semantic similarity scoring.
package embedding

// Embedder converts text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
// Inputs are expected to be pre-normalized: lower-cased, accent-free,
// whitespace-separated tokens.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}
