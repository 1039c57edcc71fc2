package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yanqian/surf-report/internal/domain/spots"
	apperrors "github.com/yanqian/surf-report/pkg/errors"
)

// Service loads the spot catalog into the vector index.
type Service interface {
	Ingest(ctx context.Context) (IngestResult, error)
}

// Source yields raw catalog entries.
type Source interface {
	Load(ctx context.Context) ([]Entry, error)
}

// Embedder embeds catalog descriptions.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Writer persists embedded spots.
type Writer interface {
	Upsert(ctx context.Context, vectors []spots.SpotVector) error
}

type service struct {
	cfg      Config
	source   Source
	embedder Embedder
	writer   Writer
	logger   *slog.Logger
}

// NewService wires catalog ingestion.
func NewService(cfg Config, source Source, embedder Embedder, writer Writer, logger *slog.Logger) Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	return &service{
		cfg:      cfg,
		source:   source,
		embedder: embedder,
		writer:   writer,
		logger:   logger.With("component", "catalog.service"),
	}
}

type pending struct {
	vector spots.SpotVector
	text   string
}

func (s *service) Ingest(ctx context.Context) (IngestResult, error) {
	ctx, span := otel.Tracer("surf-report/catalog").Start(ctx, "catalog.Ingest")
	defer span.End()

	entries, err := s.source.Load(ctx)
	if err != nil {
		return IngestResult{}, apperrors.Wrap(apperrors.CodeCatalog, "load catalog", err)
	}
	result := IngestResult{Loaded: len(entries)}

	var batch []pending
	for i, entry := range entries {
		item, err := prepare(i, entry)
		if err != nil {
			result.Skipped++
			s.logger.Warn("catalog entry skipped", "position", i+1, "url", entry.URL, "error", err)
			continue
		}
		batch = append(batch, item)
		if len(batch) >= s.cfg.BatchSize {
			if err := s.flush(ctx, batch); err != nil {
				return result, err
			}
			result.Upserted += len(batch)
			batch = batch[:0]
		}
	}
	if err := s.flush(ctx, batch); err != nil {
		return result, err
	}
	result.Upserted += len(batch)

	span.SetAttributes(
		attribute.Int("catalog.loaded", result.Loaded),
		attribute.Int("catalog.upserted", result.Upserted),
		attribute.Int("catalog.skipped", result.Skipped),
	)
	s.logger.Info("catalog ingested", "loaded", result.Loaded, "upserted", result.Upserted, "skipped", result.Skipped)
	return result, nil
}

func (s *service) flush(ctx context.Context, batch []pending) error {
	if len(batch) == 0 {
		return nil
	}
	texts := make([]string, len(batch))
	for i, p := range batch {
		texts[i] = p.text
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return apperrors.WrapUpstream(apperrors.CodeEmbedding, "embed catalog batch", err)
	}
	if len(vectors) != len(batch) {
		return apperrors.Wrap(apperrors.CodeEmbedding, fmt.Sprintf("expected %d embeddings, got %d", len(batch), len(vectors)), nil)
	}
	out := make([]spots.SpotVector, len(batch))
	for i, p := range batch {
		if s.cfg.Dimension > 0 && len(vectors[i]) != s.cfg.Dimension {
			return apperrors.Wrap(apperrors.CodeConfig,
				fmt.Sprintf("embedding dimension %d does not match index dimension %d", len(vectors[i]), s.cfg.Dimension), nil)
		}
		v := p.vector
		v.Values = vectors[i]
		out[i] = v
	}
	if err := s.writer.Upsert(ctx, out); err != nil {
		return apperrors.WrapUpstream(apperrors.CodeVectorSearch, "upsert catalog batch", err)
	}
	return nil
}

// prepare validates one entry and builds its metadata. position is zero-based.
func prepare(position int, entry Entry) (pending, error) {
	d := entry.Details
	direction := spots.Canonicalize(d.DirectionOfWave)
	bottom := spots.Canonicalize(d.TypeOfBottom)
	if _, err := spots.BuildFilter(direction, bottom); err != nil {
		return pending{}, err
	}
	if strings.TrimSpace(d.SpotDescription) == "" {
		return pending{}, errors.New("missing spot description")
	}
	name := NameFromURL(entry.URL)
	if name == "" {
		return pending{}, fmt.Errorf("cannot derive spot name from url %q", entry.URL)
	}
	description := d.SpotDescription
	if needsEnrichment(d) {
		description = Enrich(d)
	}
	return pending{
		text: description,
		vector: spots.SpotVector{
			ID: strconv.Itoa(position + 1),
			Metadata: map[string]string{
				spots.MetaName:        name,
				spots.MetaDescription: description,
				spots.MetaDirection:   direction,
				spots.MetaBottom:      bottom,
				"url":                 entry.URL,
			},
		},
	}, nil
}

// NameFromURL returns the second-last path segment, so ".../spots/coxos/" yields "coxos".
func NameFromURL(raw string) string {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}
