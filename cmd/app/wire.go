//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/surf-report/internal/bootstrap"
	"github.com/yanqian/surf-report/internal/domain/forecast"
	"github.com/yanqian/surf-report/internal/domain/report"
	"github.com/yanqian/surf-report/internal/domain/spots"
	"github.com/yanqian/surf-report/internal/domain/surfreport"
	"github.com/yanqian/surf-report/internal/infra/config"
	"github.com/yanqian/surf-report/internal/infra/ipma"
	"github.com/yanqian/surf-report/internal/infra/llm/chatgpt"
	"github.com/yanqian/surf-report/internal/infra/llm/gemini"
	"github.com/yanqian/surf-report/internal/infra/tokenizer"
	httpiface "github.com/yanqian/surf-report/internal/interface/http"
	"github.com/yanqian/surf-report/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		bootstrap.CatalogSet,
		provideSpotsConfig,
		provideForecastConfig,
		provideReportConfig,
		provideSurfReportConfig,
		provideIPMAClient,
		provideForecastCache,
		spots.NewService,
		forecast.NewService,
		report.NewService,
		surfreport.NewService,
		wire.Bind(new(forecast.Fetcher), new(*ipma.Client)),
		wire.Bind(new(report.OpenAIClient), new(*chatgpt.Client)),
		wire.Bind(new(report.GoogleClient), new(*gemini.Client)),
		wire.Bind(new(report.TokenCounter), new(*tokenizer.Counter)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
