package embedder

import (
	"context"
	"hash/fnv"
	"math"
)

// DeterministicEmbedder avoids network calls by hashing text into a unit vector.
type DeterministicEmbedder struct {
	dim int
}

// NewDeterministicEmbedder constructs the embedder.
func NewDeterministicEmbedder(dim int) *DeterministicEmbedder {
	if dim <= 0 {
		dim = 32
	}
	return &DeterministicEmbedder{dim: dim}
}

// EmbedQuery hashes a single text.
func (e *DeterministicEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

// EmbedDocuments hashes each text.
func (e *DeterministicEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vector(text)
	}
	return vectors, nil
}

func (e *DeterministicEmbedder) vector(text string) []float32 {
	vector := make([]float32, e.dim)
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(text))
	seed := hash.Sum64()
	var norm float64
	for j := 0; j < e.dim; j++ {
		seed = seed*1099511628211 + 1469598103934665603
		v := float64(seed%997)/997.0 - 0.5
		vector[j] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for j := range vector {
			vector[j] *= scale
		}
	}
	return vector
}
