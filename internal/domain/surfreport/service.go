package surfreport

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yanqian/surf-report/internal/domain/forecast"
	"github.com/yanqian/surf-report/internal/domain/report"
	"github.com/yanqian/surf-report/internal/domain/spots"
	apperrors "github.com/yanqian/surf-report/pkg/errors"
)

// Service runs the weekend report pipeline.
type Service interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Search(ctx context.Context, q spots.Query) ([]spots.SpotRecord, error)
	Forecast(ctx context.Context) []forecast.DayForecast
}

type service struct {
	cfg      Config
	spots    spots.Service
	forecast forecast.Service
	composer report.Service
	logger   *slog.Logger
}

// NewService wires the pipeline.
func NewService(cfg Config, spotSvc spots.Service, forecastSvc forecast.Service, composer report.Service, logger *slog.Logger) Service {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 3
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-4o"
	}
	return &service{
		cfg:      cfg,
		spots:    spotSvc,
		forecast: forecastSvc,
		composer: composer,
		logger:   logger.With("component", "surfreport.service"),
	}
}

func (s *service) Generate(ctx context.Context, req Request) (Response, error) {
	ctx, span := otel.Tracer("surf-report/surfreport").Start(ctx, "surfreport.Generate")
	defer span.End()
	start := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Response{}, recordFailure(span, apperrors.Wrap(apperrors.CodeInvalidInput, "query cannot be empty", nil))
	}
	topK := req.TopK
	if topK == 0 {
		topK = s.cfg.DefaultTopK
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.cfg.DefaultModel
	}
	if _, err := report.LookupProfile(model); err != nil {
		return Response{}, recordFailure(span, err)
	}
	temperature := s.cfg.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if temperature < 0 || temperature > 1 {
		return Response{}, recordFailure(span, apperrors.Wrap(apperrors.CodeInvalidInput, "temperature must be between 0 and 1", nil))
	}
	span.SetAttributes(attribute.String("report.model", model), attribute.Int("spots.top_k", topK))

	found, err := s.spots.Retrieve(ctx, spots.Query{
		Text:      query,
		Direction: req.Direction,
		Bottom:    req.Bottom,
		TopK:      topK,
	})
	if err != nil {
		return Response{}, recordFailure(span, err)
	}
	if len(found) == 0 {
		s.logger.Info("no spots matched", "direction", req.Direction, "bottom", req.Bottom)
		return Response{
			Status:     StatusNoSpots,
			Model:      model,
			Spots:      []spots.SpotRecord{},
			Forecast:   []forecast.DayForecast{},
			DurationMs: time.Since(start).Milliseconds(),
		}, nil
	}

	weekend := s.forecast.Weekend(ctx)

	out, err := s.composer.Compose(ctx, report.Input{
		Spots:       found,
		Forecast:    weekend,
		Query:       query,
		Model:       model,
		Temperature: &temperature,
	})
	if err != nil {
		return Response{}, recordFailure(span, err)
	}

	status := StatusOK
	if out.Empty {
		status = StatusEmptyReport
	}
	usage := out.TokenUsage
	resp := Response{
		Status:     status,
		Report:     out.Text,
		Model:      out.Model,
		Spots:      found,
		Forecast:   weekend.Days(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if !usage.IsZero() {
		resp.TokenUsage = &usage
	}
	span.SetAttributes(attribute.String("report.status", status))
	s.logger.Info("weekend report generated",
		"status", status,
		"model", resp.Model,
		"spots", len(found),
		"days", weekend.Len(),
		"duration_ms", resp.DurationMs,
	)
	return resp, nil
}

func (s *service) Search(ctx context.Context, q spots.Query) ([]spots.SpotRecord, error) {
	if q.TopK == 0 {
		q.TopK = s.cfg.DefaultTopK
	}
	return s.spots.Retrieve(ctx, q)
}

func (s *service) Forecast(ctx context.Context) []forecast.DayForecast {
	return s.forecast.Weekend(ctx).Days()
}

func recordFailure(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, apperrors.CodeOf(err))
	return err
}
