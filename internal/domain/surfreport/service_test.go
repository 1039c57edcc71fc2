package surfreport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/surf-report/internal/domain/forecast"
	"github.com/yanqian/surf-report/internal/domain/report"
	"github.com/yanqian/surf-report/internal/domain/spots"
	"github.com/yanqian/surf-report/internal/infra/embedder"
	"github.com/yanqian/surf-report/internal/infra/llm/chatgpt"
	"github.com/yanqian/surf-report/internal/infra/spotindex"
	apperrors "github.com/yanqian/surf-report/pkg/errors"
)

const (
	testDimension = 16
	lisbon        = 1111026
)

func TestGenerateWeekendReport(t *testing.T) {
	llm := &echoOpenAI{}
	svc := newPipeline(t, llm, seededIndex(t))

	resp, err := svc.Generate(context.Background(), Request{
		Query:     "Fun right-handers with reef bottom",
		Direction: "Right",
		Bottom:    "Reef",
		TopK:      3,
	})
	require.NoError(t, err)
	require.Equal(t, StatusOK, resp.Status)
	require.Equal(t, "gpt-4o", resp.Model)
	require.NotEmpty(t, resp.Report)
	require.Contains(t, resp.Report, "Saturday: 1.5-2.0m")
	require.Contains(t, resp.Report, "Coxos")
	require.Len(t, resp.Forecast, 2)
	require.NotNil(t, resp.TokenUsage)

	require.Len(t, resp.Spots, 2)
	for _, s := range resp.Spots {
		require.Equal(t, "Right", s.WaveDirection)
		require.Equal(t, "Reef", s.BottomType)
	}
	require.GreaterOrEqual(t, resp.Spots[0].RelevanceScore, resp.Spots[1].RelevanceScore)

	require.Equal(t, 1, llm.calls)
	require.Equal(t, "Fun right-handers with reef bottom", llm.last.Input[1].Content[0].Text)
}

func TestGenerateNoSpotsSkipsForecastAndModel(t *testing.T) {
	llm := &echoOpenAI{}
	fetcher := &countingFetcher{}
	svc := newPipelineWithFetcher(t, llm, seededIndex(t), fetcher)

	resp, err := svc.Generate(context.Background(), Request{
		Query:     "mellow sandbar",
		Direction: "Left",
		Bottom:    "Sand with rocks",
	})
	require.NoError(t, err)
	require.Equal(t, StatusNoSpots, resp.Status)
	require.Empty(t, resp.Spots)
	require.Empty(t, resp.Report)
	require.Zero(t, llm.calls)
	require.Zero(t, fetcher.calls)
}

func TestGenerateEmptyGeneration(t *testing.T) {
	llm := &echoOpenAI{empty: true}
	svc := newPipeline(t, llm, seededIndex(t))

	resp, err := svc.Generate(context.Background(), Request{Query: "reef", Direction: "right", Bottom: "reef"})
	require.NoError(t, err)
	require.Equal(t, StatusEmptyReport, resp.Status)
	require.Equal(t, "", resp.Report)
	require.NotEmpty(t, resp.Spots)
}

func TestGenerateValidatesBeforeNetwork(t *testing.T) {
	llm := &echoOpenAI{}
	fetcher := &countingFetcher{}
	svc := newPipelineWithFetcher(t, llm, seededIndex(t), fetcher)

	hot := 1.2
	cases := []Request{
		{Query: "  ", Direction: "Right", Bottom: "Reef"},
		{Query: "q", Direction: "Right", Bottom: "Reef", Model: "gpt-2"},
		{Query: "q", Direction: "Right", Bottom: "Reef", Temperature: &hot},
		{Query: "q", Direction: "Right", Bottom: "Reef", TopK: spots.MaxTopK + 1},
		{Query: "q", Direction: "Both", Bottom: "Reef"},
		{Query: "q", Direction: "Right", Bottom: "Mud"},
	}
	for _, req := range cases {
		_, err := svc.Generate(context.Background(), req)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput), "request %+v: %v", req, err)
	}
	require.Zero(t, llm.calls)
	require.Zero(t, fetcher.calls)
}

func TestGenerateSurvivesMissingForecast(t *testing.T) {
	llm := &echoOpenAI{}
	fetcher := &countingFetcher{fail: true}
	svc := newPipelineWithFetcher(t, llm, seededIndex(t), fetcher)

	resp, err := svc.Generate(context.Background(), Request{Query: "reef", Direction: "Right", Bottom: "Reef"})
	require.NoError(t, err)
	require.Equal(t, StatusOK, resp.Status)
	require.Empty(t, resp.Forecast)
	require.Equal(t, 2, fetcher.calls)
	require.Equal(t, 1, llm.calls)
}

func TestSearchAppliesDefaultTopK(t *testing.T) {
	svc := newPipeline(t, &echoOpenAI{}, seededIndex(t))

	found, err := svc.Search(context.Background(), spots.Query{Text: "sand", Direction: "Left and right", Bottom: "Sand"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Carcavelos", found[0].Name)
}

func newPipeline(t *testing.T, llm *echoOpenAI, index spots.Index) Service {
	return newPipelineWithFetcher(t, llm, index, &countingFetcher{})
}

func newPipelineWithFetcher(t *testing.T, llm *echoOpenAI, index spots.Index, fetcher *countingFetcher) Service {
	t.Helper()
	logger := discardLogger()
	spotSvc := spots.NewService(spots.Config{Dimension: testDimension}, embedder.NewDeterministicEmbedder(testDimension), index, logger)
	forecastSvc := forecast.NewService(forecast.Config{LocationID: lisbon, DayOffsets: []int{1, 2}}, fetcher, nil, logger)
	composer := report.NewService(report.Config{DefaultModel: "gpt-4o", DefaultTemperature: 0.3}, llm, nil, wordCounter{}, logger)
	return NewService(Config{DefaultTopK: 3, DefaultModel: "gpt-4o", DefaultTemperature: 0.3}, spotSvc, forecastSvc, composer, logger)
}

func seededIndex(t *testing.T) spots.Index {
	t.Helper()
	emb := embedder.NewDeterministicEmbedder(testDimension)
	catalog := []map[string]string{
		spotMeta("Coxos", "Heavy right-hand point over reef. Expert surfers only. Crowds are high on good days.", "Right", "Reef"),
		spotMeta("Ribeira d'Ilhas", "Long right-hand reef break, suitable for intermediate surfers. Medium crowd.", "Right", "Reef"),
		spotMeta("Carcavelos", "Beach break with peaks going left and right. Beginners welcome.", "Left and right", "Sand"),
		spotMeta("Supertubos", "Hollow left-hand barrels over sand.", "Left", "Sand"),
	}
	descriptions := make([]string, len(catalog))
	for i, meta := range catalog {
		descriptions[i] = meta[spots.MetaDescription]
	}
	values, err := emb.EmbedDocuments(context.Background(), descriptions)
	require.NoError(t, err)

	index := spotindex.NewMemoryIndex(testDimension)
	vectors := make([]spots.SpotVector, len(catalog))
	for i, meta := range catalog {
		vectors[i] = spots.SpotVector{ID: fmt.Sprint(i + 1), Values: values[i], Metadata: meta}
	}
	require.NoError(t, index.Upsert(context.Background(), vectors))
	return index
}

func spotMeta(name, description, direction, bottom string) map[string]string {
	return map[string]string{
		spots.MetaName:        name,
		spots.MetaDescription: description,
		spots.MetaDirection:   direction,
		spots.MetaBottom:      bottom,
	}
}

// echoOpenAI answers with the forecast and spot sections of the prompt it was sent.
type echoOpenAI struct {
	empty bool
	calls int
	last  chatgpt.ResponseRequest
}

func (e *echoOpenAI) CreateResponse(_ context.Context, req chatgpt.ResponseRequest) (chatgpt.Response, error) {
	e.calls++
	e.last = req
	if e.empty {
		return chatgpt.Response{}, nil
	}
	prompt := req.Input[0].Content[0].Text
	var lines []string
	for _, line := range strings.Split(prompt, "\n") {
		if strings.Contains(line, "Wave Size") || strings.Contains(line, "Coxos") {
			lines = append(lines, line)
		}
	}
	return chatgpt.Response{Output: []chatgpt.OutputItem{{
		Type:    "message",
		Content: []chatgpt.OutputContent{{Type: "output_text", Text: strings.Join(lines, "\n")}},
	}}}, nil
}

type countingFetcher struct {
	fail  bool
	calls int
}

func (f *countingFetcher) FetchDay(_ context.Context, offset int) (forecast.DailyPayload, error) {
	f.calls++
	if f.fail {
		return forecast.DailyPayload{}, errors.New("status=503 body=unavailable")
	}
	date := map[int]string{1: "2024-07-06", 2: "2024-07-07"}[offset]
	return forecast.DailyPayload{
		ForecastDate: date,
		Locations: []forecast.LocationRecord{{
			GlobalIDLocal: lisbon,
			WaveHighMin:   "1.5",
			WaveHighMax:   "2.0",
			WavePeriodMin: "9",
			WavePeriodMax: "12",
			PredWaveDir:   "NW",
			SSTMin:        "17.5",
			SSTMax:        "18.9",
		}},
	}, nil
}

type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
