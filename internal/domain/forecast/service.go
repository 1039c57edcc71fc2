package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/yanqian/surf-report/pkg/errors"
	"github.com/yanqian/surf-report/pkg/util"
)

// Service exposes the weekend marine forecast.
type Service interface {
	Weekend(ctx context.Context) WeekendForecast
	Day(ctx context.Context, offset int) (DayForecast, error)
}

// Fetcher retrieves the raw provider document for a day offset.
type Fetcher interface {
	FetchDay(ctx context.Context, offset int) (DailyPayload, error)
}

// Cache stores normalized days between requests.
type Cache interface {
	Get(ctx context.Context, key string) (DayForecast, bool, error)
	Set(ctx context.Context, key string, day DayForecast, ttl time.Duration) error
}

type service struct {
	cfg     Config
	fetcher Fetcher
	cache   Cache
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires up the forecast domain. cache may be nil.
func NewService(cfg Config, fetcher Fetcher, cache Cache, logger *slog.Logger) Service {
	if len(cfg.DayOffsets) == 0 {
		cfg.DayOffsets = []int{1, 2}
	}
	return &service{
		cfg:     cfg,
		fetcher: fetcher,
		cache:   cache,
		logger:  logger.With("component", "forecast.service"),
		now:     util.NowUTC,
	}
}

func (s *service) Weekend(ctx context.Context) WeekendForecast {
	ctx, span := otel.Tracer("surf-report/forecast").Start(ctx, "forecast.Weekend")
	defer span.End()

	var weekend WeekendForecast
	for _, offset := range s.cfg.DayOffsets {
		day, err := s.Day(ctx, offset)
		if err != nil {
			s.logger.Warn("weekend forecast day failed", "day_offset", offset, "error", err)
			continue
		}
		weekend.Put(day)
	}
	span.SetAttributes(attribute.Int("forecast.days", weekend.Len()))
	s.logger.Info("weekend forecast assembled", "requested", len(s.cfg.DayOffsets), "days", weekend.Len())
	return weekend
}

func (s *service) Day(ctx context.Context, offset int) (DayForecast, error) {
	key := s.cacheKey(offset)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("forecast cache lookup failed", "key", key, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	fetchCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	payload, err := s.fetcher.FetchDay(fetchCtx, offset)
	if err != nil {
		return DayForecast{}, apperrors.WrapUpstream(apperrors.CodeForecast, fmt.Sprintf("fetch forecast day %d", offset), err)
	}
	entry, err := findLocation(payload, s.cfg.LocationID)
	if err != nil {
		return DayForecast{}, apperrors.Wrap(apperrors.CodeDataShape, fmt.Sprintf("forecast day %d", offset), err)
	}
	day, err := normalize(payload.ForecastDate, entry)
	if err != nil {
		return DayForecast{}, apperrors.Wrap(apperrors.CodeDataShape, fmt.Sprintf("forecast day %d", offset), err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, day, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("forecast cache save failed", "key", key, "error", err)
		}
	}
	return day, nil
}

// cacheKey scopes entries to the calendar day the offset was resolved on.
func (s *service) cacheKey(offset int) string {
	return fmt.Sprintf("%d:%d:%s", s.cfg.LocationID, offset, util.DateKey(s.now()))
}

func findLocation(payload DailyPayload, locationID int) (LocationRecord, error) {
	for _, loc := range payload.Locations {
		if loc.GlobalIDLocal == locationID {
			return loc, nil
		}
	}
	return LocationRecord{}, fmt.Errorf("no data for location %d", locationID)
}

func normalize(forecastDate string, entry LocationRecord) (DayForecast, error) {
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(forecastDate))
	if err != nil {
		return DayForecast{}, fmt.Errorf("parse forecast date %q: %w", forecastDate, err)
	}
	day := DayForecast{
		Date:                 date.Format(time.DateOnly),
		DayName:              strings.ToLower(date.Weekday().String()),
		PrimaryWaveDirection: entry.PredWaveDir,
	}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"waveHighMin", entry.WaveHighMin, &day.SwellHeightMin},
		{"waveHighMax", entry.WaveHighMax, &day.SwellHeightMax},
		{"wavePeriodMin", entry.WavePeriodMin, &day.SwellPeriodMin},
		{"wavePeriodMax", entry.WavePeriodMax, &day.SwellPeriodMax},
		{"sstMin", entry.SSTMin, &day.SeaSurfaceTempMin},
		{"sstMax", entry.SSTMax, &day.SeaSurfaceTempMax},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
		if err != nil {
			return DayForecast{}, fmt.Errorf("field %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return day, nil
}
