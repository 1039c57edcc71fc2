package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/surf-report/internal/domain/forecast"
	"github.com/yanqian/surf-report/internal/domain/report"
	"github.com/yanqian/surf-report/internal/domain/spots"
	"github.com/yanqian/surf-report/internal/domain/surfreport"
	"github.com/yanqian/surf-report/internal/infra/config"
	"github.com/yanqian/surf-report/internal/infra/forecastcache"
	"github.com/yanqian/surf-report/internal/infra/ipma"
)

func provideSpotsConfig(cfg *config.Config) spots.Config {
	return spots.Config{
		Dimension:     cfg.SpotIndex.Dimension,
		EmbedTimeout:  cfg.Timeouts.Embedding,
		SearchTimeout: cfg.Timeouts.VectorSearch,
	}
}

func provideForecastConfig(cfg *config.Config) forecast.Config {
	return forecast.Config{
		LocationID: cfg.Forecast.LocationID,
		DayOffsets: cfg.Forecast.DayOffsets,
		CacheTTL:   cfg.Forecast.CacheTTL,
		Timeout:    cfg.Timeouts.Forecast,
	}
}

func provideReportConfig(cfg *config.Config) report.Config {
	return report.Config{
		DefaultModel:       cfg.Report.DefaultModel,
		DefaultTemperature: cfg.Report.DefaultTemperature,
		MaxOutputTokens:    cfg.Report.MaxOutputTokens,
		PreviewChars:       cfg.Report.PreviewChars,
		Timeout:            cfg.Timeouts.Generation,
	}
}

func provideSurfReportConfig(cfg *config.Config) surfreport.Config {
	return surfreport.Config{
		DefaultTopK:        cfg.Report.DefaultTopK,
		DefaultModel:       cfg.Report.DefaultModel,
		DefaultTemperature: cfg.Report.DefaultTemperature,
	}
}

func provideIPMAClient(cfg *config.Config) *ipma.Client {
	return ipma.NewClient(cfg.Forecast.URLTemplate, cfg.Credentials.Weather)
}

// provideForecastCache prefers valkey and falls back to memory when it is unreachable.
// The cleanup closes the valkey client.
func provideForecastCache(cfg *config.Config, logger *slog.Logger) (forecast.Cache, func()) {
	if cfg.Forecast.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg.Forecast.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return forecastcache.NewMemoryCache(), func() {}
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return forecastcache.NewMemoryCache(), func() {}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("forecast valkey cache enabled", "addr", cfg.Forecast.Valkey.Addr)
			cache := forecastcache.NewValkeyCache(client, cfg.Forecast.Valkey.Prefix)
			return cache, cache.Close
		}
	}
	return forecastcache.NewMemoryCache(), func() {}
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(addr, "://") {
		opt, err = valkey.ParseURL(addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
