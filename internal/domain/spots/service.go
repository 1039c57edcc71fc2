package spots

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/yanqian/surf-report/pkg/errors"
)

// Service retrieves ranked surf spots for a free-text query.
type Service interface {
	Retrieve(ctx context.Context, q Query) ([]SpotRecord, error)
}

// Embedder turns query text into a vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Index is the vector store holding the spot catalog.
type Index interface {
	Query(ctx context.Context, q IndexQuery) ([]Match, error)
	Upsert(ctx context.Context, vectors []SpotVector) error
}

type service struct {
	cfg      Config
	embedder Embedder
	index    Index
	logger   *slog.Logger
}

// NewService wires the retriever.
func NewService(cfg Config, embedder Embedder, index Index, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		embedder: embedder,
		index:    index,
		logger:   logger.With("component", "spots.service"),
	}
}

func (s *service) Retrieve(ctx context.Context, q Query) ([]SpotRecord, error) {
	ctx, span := otel.Tracer("surf-report/spots").Start(ctx, "spots.Retrieve")
	defer span.End()

	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "query text is required", nil)
	}
	if q.TopK < 1 || q.TopK > MaxTopK {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("topK must be between 1 and %d", MaxTopK), nil)
	}
	filter, err := BuildFilter(q.Direction, q.Bottom)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("spots.direction", filter.Direction),
		attribute.String("spots.bottom", filter.Bottom),
		attribute.Int("spots.top_k", q.TopK),
	)

	vector, err := s.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	searchCtx, cancel := withTimeout(ctx, s.cfg.SearchTimeout)
	defer cancel()
	matches, err := s.index.Query(searchCtx, IndexQuery{
		Vector:          vector,
		TopK:            q.TopK,
		Filter:          filter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, apperrors.WrapUpstream(apperrors.CodeVectorSearch, "vector search failed", err)
	}

	records := make([]SpotRecord, 0, len(matches))
	for _, m := range matches {
		record, err := assemble(m)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RelevanceScore > records[j].RelevanceScore
	})
	if len(records) > q.TopK {
		records = records[:q.TopK]
	}

	span.SetAttributes(attribute.Int("spots.results", len(records)))
	s.logger.Info("spots retrieved",
		"direction", filter.Direction,
		"bottom", filter.Bottom,
		"top_k", q.TopK,
		"results", len(records),
	)
	return records, nil
}

func (s *service) embed(ctx context.Context, text string) ([]float32, error) {
	embedCtx, cancel := withTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()
	vector, err := s.embedder.EmbedQuery(embedCtx, text)
	if err != nil {
		return nil, apperrors.WrapUpstream(apperrors.CodeEmbedding, "embed query", err)
	}
	if s.cfg.Dimension > 0 && len(vector) != s.cfg.Dimension {
		return nil, apperrors.Wrap(apperrors.CodeConfig,
			fmt.Sprintf("embedding dimension %d does not match index dimension %d", len(vector), s.cfg.Dimension), nil)
	}
	return vector, nil
}

func assemble(m Match) (SpotRecord, error) {
	values := make(map[string]string, 4)
	for _, key := range []string{MetaName, MetaDescription, MetaDirection, MetaBottom} {
		v, ok := m.Metadata[key]
		if !ok {
			return SpotRecord{}, apperrors.Wrap(apperrors.CodeDataShape, fmt.Sprintf("match %s missing metadata %q", m.ID, key), nil)
		}
		values[key] = v
	}
	description := values[MetaDescription]
	return SpotRecord{
		SpotID:         m.ID,
		Name:           values[MetaName],
		Description:    description,
		WaveDirection:  values[MetaDirection],
		BottomType:     values[MetaBottom],
		RelevanceScore: m.Score,
		SurfLevel:      ExtractSurfLevel(description),
		CrowdFactor:    ExtractCrowdLevel(description),
	}, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
