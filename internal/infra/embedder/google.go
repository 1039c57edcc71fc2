package embedder

import (
	"context"
	"fmt"
	"strings"

	"github.com/yanqian/surf-report/internal/infra/llm/gemini"
)

const googleBatchLimit = 100

// GoogleClient is the embeddings subset of the Gemini client.
type GoogleClient interface {
	EmbedContent(ctx context.Context, model string, req gemini.EmbedContentRequest) (gemini.EmbedContentResponse, error)
	BatchEmbedContents(ctx context.Context, model string, reqs []gemini.EmbedContentRequest) (gemini.BatchEmbedContentsResponse, error)
}

// GoogleEmbedder calls the Gemini embedding endpoints.
type GoogleEmbedder struct {
	client GoogleClient
	model  string
}

// NewGoogleEmbedder constructs the embedder.
func NewGoogleEmbedder(client GoogleClient, model string) *GoogleEmbedder {
	model = strings.TrimSpace(model)
	if model == "" {
		model = "models/embedding-001"
	}
	return &GoogleEmbedder{client: client, model: model}
}

// EmbedQuery embeds a search query.
func (e *GoogleEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.EmbedContent(ctx, e.model, gemini.EmbedContentRequest{
		Content:  gemini.TextContent("", text),
		TaskType: "RETRIEVAL_QUERY",
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	return resp.Embedding.Values, nil
}

// EmbedDocuments embeds catalog texts in batches of at most 100.
func (e *GoogleEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += googleBatchLimit {
		end := start + googleBatchLimit
		if end > len(texts) {
			end = len(texts)
		}
		reqs := make([]gemini.EmbedContentRequest, 0, end-start)
		for _, text := range texts[start:end] {
			reqs = append(reqs, gemini.EmbedContentRequest{
				Content:  gemini.TextContent("", text),
				TaskType: "RETRIEVAL_DOCUMENT",
			})
		}
		resp, err := e.client.BatchEmbedContents(ctx, e.model, reqs)
		if err != nil {
			return nil, fmt.Errorf("batch embed contents: %w", err)
		}
		if len(resp.Embeddings) != len(reqs) {
			return nil, fmt.Errorf("embedding result count mismatch: expected %d, got %d", len(reqs), len(resp.Embeddings))
		}
		for _, emb := range resp.Embeddings {
			out = append(out, emb.Values)
		}
	}
	return out, nil
}
