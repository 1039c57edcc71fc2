package spotindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/yanqian/surf-report/internal/domain/spots"
)

// MemoryIndex is an in-process vector index for tests/dev.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	order     []string
	vectors   map[string]spots.SpotVector
}

// NewMemoryIndex constructs an empty index. dimension <= 0 disables the check.
func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{
		dimension: dimension,
		vectors:   make(map[string]spots.SpotVector),
	}
}

// Upsert stores copies of the vectors, replacing ids already present.
func (m *MemoryIndex) Upsert(_ context.Context, vectors []spots.SpotVector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range vectors {
		if m.dimension > 0 && len(v.Values) != m.dimension {
			return fmt.Errorf("vector %s has %d dimensions, index expects %d", v.ID, len(v.Values), m.dimension)
		}
		stored := spots.SpotVector{
			ID:       v.ID,
			Values:   append([]float32(nil), v.Values...),
			Metadata: make(map[string]string, len(v.Metadata)),
		}
		for k, val := range v.Metadata {
			stored.Metadata[k] = val
		}
		if _, ok := m.vectors[v.ID]; !ok {
			m.order = append(m.order, v.ID)
		}
		m.vectors[v.ID] = stored
	}
	return nil
}

// Query ranks the filtered vectors by cosine similarity.
func (m *MemoryIndex) Query(_ context.Context, q spots.IndexQuery) ([]spots.Match, error) {
	if m.dimension > 0 && len(q.Vector) != m.dimension {
		return nil, fmt.Errorf("query vector has %d dimensions, index expects %d", len(q.Vector), m.dimension)
	}
	fields := q.Filter.Fields()

	m.mu.RLock()
	var matches []spots.Match
	for _, id := range m.order {
		v := m.vectors[id]
		if !matchesFilter(v.Metadata, fields) {
			continue
		}
		match := spots.Match{ID: id, Score: cosine(q.Vector, v.Values)}
		if q.IncludeMetadata {
			match.Metadata = make(map[string]string, len(v.Metadata))
			for k, val := range v.Metadata {
				match.Metadata[k] = val
			}
		}
		matches = append(matches, match)
	}
	m.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if q.TopK > 0 && len(matches) > q.TopK {
		matches = matches[:q.TopK]
	}
	for i := range matches {
		matches[i].Score = clampScore(matches[i].Score)
	}
	return matches, nil
}

// Len reports how many vectors are stored.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}

func matchesFilter(meta, fields map[string]string) bool {
	for k, want := range fields {
		if meta[k] != want {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// clampScore maps a cosine similarity onto the [0, 1] relevance range.
func clampScore(score float64) float64 {
	switch {
	case math.IsNaN(score) || score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}

var _ spots.Index = (*MemoryIndex)(nil)
