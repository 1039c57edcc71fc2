package embedder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/surf-report/internal/infra/llm/chatgpt"
	"github.com/yanqian/surf-report/internal/infra/llm/gemini"
)

type fakeOpenAI struct {
	calls []chatgpt.EmbeddingRequest
	err   error
}

func (f *fakeOpenAI) CreateEmbedding(_ context.Context, req chatgpt.EmbeddingRequest) (chatgpt.EmbeddingResponse, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return chatgpt.EmbeddingResponse{}, f.err
	}
	resp := chatgpt.EmbeddingResponse{}
	// reversed to check index ordering
	for i := len(req.Input) - 1; i >= 0; i-- {
		resp.Data = append(resp.Data, chatgpt.EmbeddingData{Index: i, Embedding: []float32{float32(len(req.Input[i]))}})
	}
	return resp, nil
}

func TestOpenAIEmbedderOrdersByIndex(t *testing.T) {
	client := &fakeOpenAI{}
	e := NewOpenAIEmbedder(client, "text-embedding-3-large", 3072, nil, nil)

	vectors, err := e.EmbedDocuments(context.Background(), []string{"a", "bbb", "cc"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{1}, {3}, {2}}, vectors)
	require.Equal(t, 3072, client.calls[0].Dimensions)

	v, err := e.EmbedQuery(context.Background(), "four")
	require.NoError(t, err)
	require.Equal(t, []float32{4}, v)
}

func TestOpenAIEmbedderSkipsDimensionsForLegacyModels(t *testing.T) {
	client := &fakeOpenAI{}
	e := NewOpenAIEmbedder(client, "text-embedding-ada-002", 1536, nil, nil)
	_, err := e.EmbedQuery(context.Background(), "x")
	require.NoError(t, err)
	require.Zero(t, client.calls[0].Dimensions)
}

func TestOpenAIEmbedderPropagatesErrors(t *testing.T) {
	e := NewOpenAIEmbedder(&fakeOpenAI{err: errors.New("status=401")}, "text-embedding-3-large", 0, nil, nil)
	_, err := e.EmbedQuery(context.Background(), "x")
	require.ErrorContains(t, err, "status=401")
}

type fixedTokens int

func (f fixedTokens) Count(string) int { return int(f) }

func TestOpenAIEmbedderBatchesByCountedTokens(t *testing.T) {
	client := &fakeOpenAI{}
	e := NewOpenAIEmbedder(client, "text-embedding-3-large", 0, fixedTokens(200_000/2), nil)

	vectors, err := e.EmbedDocuments(context.Background(), []string{"a", "bb", "ccc", "dddd"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{1}, {2}, {3}, {4}}, vectors)
	require.Len(t, client.calls, 2)
	require.Len(t, client.calls[0].Input, 3)
	require.Len(t, client.calls[1].Input, 1)
}

func TestOpenAIEmbedderRejectsOversizedInput(t *testing.T) {
	client := &fakeOpenAI{}
	e := NewOpenAIEmbedder(client, "text-embedding-3-large", 0, fixedTokens(9000), nil)

	_, err := e.EmbedQuery(context.Background(), "long description")
	require.ErrorContains(t, err, "tokens=9000")
	require.Empty(t, client.calls)
}

type fakeGoogle struct {
	batches [][]gemini.EmbedContentRequest
	query   gemini.EmbedContentRequest
}

func (f *fakeGoogle) EmbedContent(_ context.Context, _ string, req gemini.EmbedContentRequest) (gemini.EmbedContentResponse, error) {
	f.query = req
	return gemini.EmbedContentResponse{Embedding: gemini.ContentEmbedding{Values: []float32{1, 2, 3}}}, nil
}

func (f *fakeGoogle) BatchEmbedContents(_ context.Context, _ string, reqs []gemini.EmbedContentRequest) (gemini.BatchEmbedContentsResponse, error) {
	f.batches = append(f.batches, reqs)
	resp := gemini.BatchEmbedContentsResponse{}
	for range reqs {
		resp.Embeddings = append(resp.Embeddings, gemini.ContentEmbedding{Values: []float32{0}})
	}
	return resp, nil
}

func TestGoogleEmbedderBatches(t *testing.T) {
	client := &fakeGoogle{}
	e := NewGoogleEmbedder(client, "")
	texts := make([]string, 250)
	for i := range texts {
		texts[i] = "spot"
	}
	vectors, err := e.EmbedDocuments(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 250)
	require.Len(t, client.batches, 3)
	require.Len(t, client.batches[2], 50)
	require.Equal(t, "RETRIEVAL_DOCUMENT", client.batches[0][0].TaskType)

	v, err := e.EmbedQuery(context.Background(), "query")
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3}, v)
	require.Equal(t, "RETRIEVAL_QUERY", client.query.TaskType)
}

func TestDeterministicEmbedderIsStable(t *testing.T) {
	e := NewDeterministicEmbedder(8)
	a, err := e.EmbedQuery(context.Background(), "coxos")
	require.NoError(t, err)
	b, err := e.EmbedDocuments(context.Background(), []string{"coxos"})
	require.NoError(t, err)
	require.Len(t, a, 8)
	require.Equal(t, a, b[0])
}
