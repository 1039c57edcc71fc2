package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/surf-report/internal/domain/catalog"
	"github.com/yanqian/surf-report/internal/domain/spots"
	"github.com/yanqian/surf-report/internal/infra/catalogsource"
	"github.com/yanqian/surf-report/internal/infra/config"
	"github.com/yanqian/surf-report/internal/infra/embedder"
	"github.com/yanqian/surf-report/internal/infra/llm/chatgpt"
	"github.com/yanqian/surf-report/internal/infra/llm/gemini"
	"github.com/yanqian/surf-report/internal/infra/spotindex"
	"github.com/yanqian/surf-report/internal/infra/tokenizer"
)

// Embedder embeds both search queries and catalog descriptions with one model,
// so that queries and documents share a vector space.
type Embedder interface {
	spots.Embedder
	catalog.Embedder
}

// CatalogSet provides everything needed to ingest the spot catalog. Both the
// API server and the ingest CLI build on it.
var CatalogSet = wire.NewSet(
	ProvideChatGPTClient,
	ProvideGeminiClient,
	ProvideTokenCounter,
	ProvideEmbedder,
	ProvideSpotIndex,
	ProvideCatalogSource,
	ProvideCatalogConfig,
	catalog.NewService,
	wire.Bind(new(spots.Embedder), new(Embedder)),
	wire.Bind(new(catalog.Embedder), new(Embedder)),
	wire.Bind(new(catalog.Writer), new(spots.Index)),
)

// ProvideChatGPTClient builds the OpenAI client used for generation and embeddings.
func ProvideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.Credentials.OpenAI, cfg.Report.OpenAIBaseURL)
}

// ProvideGeminiClient builds the Gemini client used for generation and embeddings.
func ProvideGeminiClient(cfg *config.Config) (*gemini.Client, error) {
	return gemini.NewClient(cfg.Credentials.Google, cfg.Report.GoogleBaseURL)
}

// ProvideTokenCounter resolves the tiktoken encoding shared by prompt accounting
// and embedding batches.
func ProvideTokenCounter(cfg *config.Config, logger *slog.Logger) (*tokenizer.Counter, error) {
	return tokenizer.NewCounter(cfg.Report.TokenEncoding, logger)
}

// ProvideEmbedder selects the embedding provider and checks its vector size
// against the index. A dedicated client is built when the embedding base URL
// differs from the generation one.
func ProvideEmbedder(cfg *config.Config, openai *chatgpt.Client, google *gemini.Client, counter *tokenizer.Counter, logger *slog.Logger) (Embedder, error) {
	switch cfg.Embedding.Provider {
	case "google":
		client := google
		if base := strings.TrimSpace(cfg.Embedding.GoogleBaseURL); base != "" && base != cfg.Report.GoogleBaseURL {
			dedicated, err := gemini.NewClient(cfg.Credentials.Google, base)
			if err != nil {
				return nil, err
			}
			client = dedicated
		}
		logger.Info("embedding provider selected", "provider", "google", "model", cfg.Embedding.Model)
		return verified(cfg, embedder.NewGoogleEmbedder(client, cfg.Embedding.Model))
	case "openai", "":
		client := openai
		if base := strings.TrimSpace(cfg.Embedding.OpenAIBaseURL); base != "" && base != cfg.Report.OpenAIBaseURL {
			dedicated, err := chatgpt.NewClient(cfg.Credentials.OpenAI, base)
			if err != nil {
				return nil, err
			}
			client = dedicated
		}
		logger.Info("embedding provider selected", "provider", "openai", "model", cfg.Embedding.Model)
		return verified(cfg, embedder.NewOpenAIEmbedder(client, cfg.Embedding.Model, cfg.SpotIndex.Dimension, counter, logger))
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Embedding.Provider)
	}
}

func verified(cfg *config.Config, e Embedder) (Embedder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Embedding)
	defer cancel()
	if err := CheckEmbeddingDimension(ctx, e, cfg.SpotIndex.Dimension); err != nil {
		return nil, err
	}
	return e, nil
}

// CheckEmbeddingDimension embeds a sample text and compares the vector length
// with the index dimension.
func CheckEmbeddingDimension(ctx context.Context, e spots.Embedder, dimension int) error {
	vector, err := e.EmbedQuery(ctx, "dimension check")
	if err != nil {
		return fmt.Errorf("embedding dimension check: %w", err)
	}
	if len(vector) != dimension {
		return fmt.Errorf("embedding model returns %d dimensions, spot index expects %d", len(vector), dimension)
	}
	return nil
}

// ProvideSpotIndex connects to the pgvector index, creating the table when missing.
// A failed connection or a dimension mismatch is fatal. The cleanup closes the pool.
func ProvideSpotIndex(cfg *config.Config, logger *slog.Logger) (spots.Index, func(), error) {
	if cfg.SpotIndex.Driver == "memory" {
		logger.Warn("using in-memory spot index, seed the catalog on start to get results")
		return spotindex.NewMemoryIndex(cfg.SpotIndex.Dimension), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.Credentials.VectorStore))
	if err != nil {
		return nil, nil, fmt.Errorf("parse vector store dsn: %w", err)
	}
	if cfg.SpotIndex.MaxConns > 0 {
		poolConfig.MaxConns = cfg.SpotIndex.MaxConns
	}
	if cfg.SpotIndex.MinConns > 0 {
		poolConfig.MinConns = cfg.SpotIndex.MinConns
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect vector store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping vector store: %w", err)
	}

	index, err := spotindex.NewPostgresIndex(pool, cfg.SpotIndex.Table, cfg.SpotIndex.Dimension)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := index.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("postgres spot index enabled", "table", cfg.SpotIndex.Table, "dimension", cfg.SpotIndex.Dimension)
	return index, func() {
		pool.Close()
		logger.Info("postgres pool closed")
	}, nil
}

// ProvideCatalogSource selects where the enriched catalog is read from.
func ProvideCatalogSource(cfg *config.Config, logger *slog.Logger) (catalog.Source, error) {
	if cfg.Catalog.Source == "object" {
		obj := cfg.Catalog.Object
		source, err := catalogsource.NewObjectSource(catalogsource.ObjectConfig{
			Endpoint:  obj.Endpoint,
			AccessKey: obj.AccessKey,
			SecretKey: obj.SecretKey,
			Bucket:    obj.Bucket,
			Region:    obj.Region,
			Key:       obj.Key,
		}, logger)
		if err != nil {
			return nil, err
		}
		return source, nil
	}
	return catalogsource.NewFileSource(cfg.Catalog.Path), nil
}

// ProvideCatalogConfig maps ingestion settings.
func ProvideCatalogConfig(cfg *config.Config) catalog.Config {
	return catalog.Config{
		BatchSize: cfg.Catalog.BatchSize,
		Dimension: cfg.SpotIndex.Dimension,
	}
}
