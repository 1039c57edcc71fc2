package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/surf-report/internal/domain/forecast"
	"github.com/yanqian/surf-report/internal/domain/spots"
	"github.com/yanqian/surf-report/internal/domain/surfreport"
	"github.com/yanqian/surf-report/internal/infra/config"
	apperrors "github.com/yanqian/surf-report/pkg/errors"
)

func TestRouter_GenerateReportSuccess(t *testing.T) {
	want := surfreport.Response{
		Status: surfreport.StatusOK,
		Report: "Saturday brings 1.5-2.0m of NW swell to Coxos.",
		Model:  "gpt-4o",
		Spots:  []spots.SpotRecord{{SpotID: "7", Name: "Coxos", RelevanceScore: 0.91}},
	}
	svc := &stubPipeline{
		generateFn: func(ctx context.Context, req surfreport.Request) (surfreport.Response, error) {
			require.Equal(t, "Fun right-handers with reef bottom", req.Query)
			require.Equal(t, "Right", req.Direction)
			require.Equal(t, 3, req.TopK)
			return want, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/reports",
		`{"query":"Fun right-handers with reef bottom","direction":"Right","bottom":"Reef","topK":3}`,
		newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	var got surfreport.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, want.Report, got.Report)
	require.Equal(t, "Coxos", got.Spots[0].Name)
}

func TestRouter_GenerateReportInvalidJSON(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/v1/reports", `{"query":123}`, newRouterUnderTest(t, &stubPipeline{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_ErrorCodeMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.Wrap(apperrors.CodeInvalidInput, "unknown wave direction \"both\"", nil), http.StatusBadRequest, apperrors.CodeInvalidInput},
		{apperrors.Wrap(apperrors.CodeUpstreamTimeout, "vector search failed", context.DeadlineExceeded), http.StatusGatewayTimeout, apperrors.CodeUpstreamTimeout},
		{apperrors.Wrap(apperrors.CodeLLM, "gpt-4o generation failed", nil), http.StatusBadGateway, apperrors.CodeLLM},
		{apperrors.Wrap(apperrors.CodeDataShape, "match 3 missing metadata", nil), http.StatusBadGateway, apperrors.CodeDataShape},
		{apperrors.Wrap(apperrors.CodeConfig, "dimension mismatch", nil), http.StatusInternalServerError, apperrors.CodeConfig},
		{context.Canceled, http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		svc := &stubPipeline{
			generateFn: func(context.Context, surfreport.Request) (surfreport.Response, error) {
				return surfreport.Response{}, tc.err
			},
		}
		recorder := performRequest(http.MethodPost, "/api/v1/reports", `{"query":"q","direction":"Right","bottom":"Reef"}`, newRouterUnderTest(t, svc))
		require.Equal(t, tc.status, recorder.Code, tc.code)
		errBody := decodeErrorBody(t, recorder.Body.Bytes())
		require.Equal(t, tc.code, errBody["error"]["code"])
		require.NotEmpty(t, errBody["error"]["requestId"])
	}
}

func TestRouter_SearchSpots(t *testing.T) {
	svc := &stubPipeline{
		searchFn: func(ctx context.Context, q spots.Query) ([]spots.SpotRecord, error) {
			require.Equal(t, "left", q.Direction)
			return nil, nil
		},
	}
	recorder := performRequest(http.MethodPost, "/api/v1/spots/search", `{"query":"mellow","direction":"left","bottom":"sand"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"spots":[]}`, recorder.Body.String())
}

func TestRouter_WeekendForecastAndOptions(t *testing.T) {
	svc := &stubPipeline{
		forecastFn: func(context.Context) []forecast.DayForecast {
			return []forecast.DayForecast{{Date: "2024-07-06", DayName: "saturday", SwellHeightMax: 2}}
		},
	}
	server := newRouterUnderTest(t, svc)

	recorder := performRequest(http.MethodGet, "/api/v1/forecast/weekend", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	var body struct {
		Days []forecast.DayForecast `json:"days"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Days, 1)
	require.Equal(t, "saturday", body.Days[0].DayName)

	recorder = performRequest(http.MethodGet, "/api/v1/options", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	var opts struct {
		Directions []string `json:"directions"`
		Bottoms    []string `json:"bottoms"`
		Models     []string `json:"models"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &opts))
	require.Equal(t, []string{"Right", "Left", "Left and right"}, opts.Directions)
	require.Equal(t, []string{"Reef", "Sand", "Sand with rocks"}, opts.Bottoms)
	require.Contains(t, opts.Models, "o3-mini")

	recorder = performRequest(http.MethodGet, "/healthz", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestRouter_RequestIDPropagates(t *testing.T) {
	server := newRouterUnderTest(t, &stubPipeline{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := NewRouter(cfg, NewHandler(&stubPipeline{}, surfreport.Config{}, newTestLogger()))

	first := performRequest(http.MethodGet, "/api/v1/options", "", server)
	require.Equal(t, http.StatusOK, first.Code)
	second := performRequest(http.MethodGet, "/api/v1/options", "", server)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, second.Body.Bytes())["error"]["code"])
}

func TestRouter_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	svc := &stubPipeline{
		searchFn: func(context.Context, spots.Query) ([]spots.SpotRecord, error) {
			attempts++
			if attempts == 1 {
				return nil, apperrors.Wrap(apperrors.CodeVectorSearch, "vector search failed", nil)
			}
			return []spots.SpotRecord{{SpotID: "1"}}, nil
		},
	}
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 2, Exclude: []string{"/api/v1/reports"}}
	server := NewRouter(cfg, NewHandler(svc, surfreport.Config{}, newTestLogger()))

	recorder := performRequest(http.MethodPost, "/api/v1/spots/search", `{"query":"x","direction":"Left","bottom":"Sand"}`, server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, 2, attempts)
}

func TestRouter_RetryKeepsRequestIDAndSkipsTimeouts(t *testing.T) {
	attempts := 0
	svc := &stubPipeline{
		searchFn: func(context.Context, spots.Query) ([]spots.SpotRecord, error) {
			attempts++
			return nil, apperrors.Wrap(apperrors.CodeUpstreamTimeout, "vector search failed", context.DeadlineExceeded)
		},
	}
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3}
	body := `{"query":"x","direction":"Left","bottom":"Sand"}`

	recorder := performRequest(http.MethodPost, "/api/v1/spots/search", body, NewRouter(cfg, NewHandler(svc, surfreport.Config{}, newTestLogger())))
	require.Equal(t, http.StatusGatewayTimeout, recorder.Code)
	require.Equal(t, 1, attempts)

	attempts = 0
	svc.searchFn = func(context.Context, spots.Query) ([]spots.SpotRecord, error) {
		attempts++
		return nil, apperrors.Wrap(apperrors.CodeEmbedding, "embed query", nil)
	}
	recorder = performRequest(http.MethodPost, "/api/v1/spots/search", body, NewRouter(cfg, NewHandler(svc, surfreport.Config{}, newTestLogger())))
	require.Equal(t, http.StatusBadGateway, recorder.Code)
	require.Equal(t, 3, attempts)
	requestID := recorder.Header().Get("X-Request-ID")
	require.NotEmpty(t, requestID)
	require.Equal(t, requestID, decodeErrorBody(t, recorder.Body.Bytes())["error"]["requestId"])
}

func TestRouter_CORS(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.AllowedOrigins = []string{"https://surf.example"}
	server := NewRouter(cfg, NewHandler(&stubPipeline{}, surfreport.Config{}, newTestLogger()))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/reports", nil)
	req.Header.Set("Origin", "https://surf.example")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://surf.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

func newRouterUnderTest(t *testing.T, svc surfreport.Service) *http.Server {
	t.Helper()
	defaults := surfreport.Config{DefaultTopK: 3, DefaultModel: "gpt-4o", DefaultTemperature: 0.3}
	return NewRouter(testConfig(), NewHandler(svc, defaults, newTestLogger()))
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubPipeline struct {
	generateFn func(ctx context.Context, req surfreport.Request) (surfreport.Response, error)
	searchFn   func(ctx context.Context, q spots.Query) ([]spots.SpotRecord, error)
	forecastFn func(ctx context.Context) []forecast.DayForecast
}

func (s *stubPipeline) Generate(ctx context.Context, req surfreport.Request) (surfreport.Response, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, req)
	}
	return surfreport.Response{Status: surfreport.StatusOK}, nil
}

func (s *stubPipeline) Search(ctx context.Context, q spots.Query) ([]spots.SpotRecord, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, q)
	}
	return nil, nil
}

func (s *stubPipeline) Forecast(ctx context.Context) []forecast.DayForecast {
	if s.forecastFn != nil {
		return s.forecastFn(ctx)
	}
	return nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
