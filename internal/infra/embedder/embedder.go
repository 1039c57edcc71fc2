package embedder

import (
	"github.com/yanqian/surf-report/internal/domain/catalog"
	"github.com/yanqian/surf-report/internal/domain/spots"
)

var (
	_ spots.Embedder   = (*OpenAIEmbedder)(nil)
	_ spots.Embedder   = (*GoogleEmbedder)(nil)
	_ spots.Embedder   = (*DeterministicEmbedder)(nil)
	_ catalog.Embedder = (*OpenAIEmbedder)(nil)
	_ catalog.Embedder = (*GoogleEmbedder)(nil)
	_ catalog.Embedder = (*DeterministicEmbedder)(nil)
)
