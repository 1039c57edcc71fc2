package embedder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/yanqian/surf-report/internal/infra/llm/chatgpt"
	"github.com/yanqian/surf-report/internal/infra/tokenizer"
)

const (
	maxInputTokens = 8191
	maxBatchTokens = 300_000
)

// OpenAIClient is the embeddings subset of the OpenAI client.
type OpenAIClient interface {
	CreateEmbedding(ctx context.Context, req chatgpt.EmbeddingRequest) (chatgpt.EmbeddingResponse, error)
}

// TokenCounter sizes embedding inputs.
type TokenCounter interface {
	Count(text string) int
}

type estimateCounter struct{}

func (estimateCounter) Count(text string) int { return tokenizer.Estimate(text) }

// OpenAIEmbedder calls the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client     OpenAIClient
	model      string
	dimensions int
	counter    TokenCounter
	logger     *slog.Logger
}

// NewOpenAIEmbedder constructs an embedder. dimensions is forwarded only to
// models that accept shortened vectors. A nil counter falls back to a character estimate.
func NewOpenAIEmbedder(client OpenAIClient, model string, dimensions int, counter TokenCounter, logger *slog.Logger) *OpenAIEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	if counter == nil {
		counter = estimateCounter{}
	}
	return &OpenAIEmbedder{
		client:     client,
		model:      strings.TrimSpace(model),
		dimensions: dimensions,
		counter:    counter,
		logger:     logger.With("component", "embedder.openai"),
	}
}

// EmbedQuery embeds a single search query.
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

// EmbedDocuments embeds texts in token-bounded batches, preserving order.
func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var (
		out         [][]float32
		batch       []string
		batchTokens int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		req := chatgpt.EmbeddingRequest{Model: e.model, Input: batch}
		if e.dimensions > 0 && strings.HasPrefix(e.model, "text-embedding-3") {
			req.Dimensions = e.dimensions
		}
		resp, err := e.client.CreateEmbedding(ctx, req)
		if err != nil {
			return fmt.Errorf("create embedding: %w", err)
		}
		if len(resp.Data) != len(batch) {
			return fmt.Errorf("embedding result count mismatch: expected %d, got %d", len(batch), len(resp.Data))
		}
		data := append([]chatgpt.EmbeddingData(nil), resp.Data...)
		sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })
		for _, item := range data {
			vec := make([]float32, len(item.Embedding))
			copy(vec, item.Embedding)
			out = append(out, vec)
		}
		batch = batch[:0]
		batchTokens = 0
		return nil
	}

	for _, text := range texts {
		tokens := e.counter.Count(text)
		if tokens > maxInputTokens {
			return nil, fmt.Errorf("text too large for embedding request: tokens=%d limit=%d", tokens, maxInputTokens)
		}
		if batchTokens+tokens > maxBatchTokens && len(batch) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		batch = append(batch, text)
		batchTokens += tokens
	}
	if err := flush(); err != nil {
		return nil, err
	}
	e.logger.Debug("embedded documents", "count", len(out), "model", e.model)
	return out, nil
}
