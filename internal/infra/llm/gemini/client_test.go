package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateContentSkipsThoughtParts(t *testing.T) {
	var got GenerateContentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/gemini-1.5-pro:generateContent", r.URL.Path)
		require.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [
				{"text": "thinking...", "thought": true},
				{"text": "Sunday "},
				{"text": "is bigger."}
			]}}],
			"usageMetadata": {"promptTokenCount": 80, "candidatesTokenCount": 12, "totalTokenCount": 92}
		}`))
	}))
	defer server.Close()

	client, err := NewClient("g-key", server.URL)
	require.NoError(t, err)
	temp := 0.4
	system := TextContent("", "be a surf reporter")
	resp, err := client.GenerateContent(context.Background(), "gemini-1.5-pro", GenerateContentRequest{
		Contents:          []Content{TextContent("user", "report please")},
		SystemInstruction: &system,
		GenerationConfig:  &GenerationConfig{Temperature: &temp},
		SafetySettings:    RelaxedSafety,
	})
	require.NoError(t, err)
	require.Equal(t, "be a surf reporter", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.SafetySettings, 2)

	text, ok := resp.Text()
	require.True(t, ok)
	require.Equal(t, "Sunday is bigger.", text)
	require.Equal(t, 92, resp.UsageMetadata.TotalTokenCount)
}

func TestGenerateContentNoCandidates(t *testing.T) {
	text, ok := GenerateContentResponse{}.Text()
	require.False(t, ok)
	require.Empty(t, text)
}

func TestBatchEmbedContents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/embedding-001:batchEmbedContents", r.URL.Path)
		var body batchEmbedContentsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Requests, 2)
		require.Equal(t, "models/embedding-001", body.Requests[0].Model)
		_, _ = w.Write([]byte(`{"embeddings":[{"values":[1,0]},{"values":[0,1]}]}`))
	}))
	defer server.Close()

	client, err := NewClient("g-key", server.URL)
	require.NoError(t, err)
	resp, err := client.BatchEmbedContents(context.Background(), "models/embedding-001", []EmbedContentRequest{
		{Content: TextContent("", "a")},
		{Content: TextContent("", "b")},
	})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 2)
	require.Equal(t, []float32{0, 1}, resp.Embeddings[1].Values)
}

func TestGenerateContentNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient("g-key", server.URL)
	require.NoError(t, err)
	_, err = client.GenerateContent(context.Background(), "gemini-1.5-pro", GenerateContentRequest{})
	require.ErrorContains(t, err, "status=429")
}
