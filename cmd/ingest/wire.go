//go:build wireinject
// +build wireinject

package main

import (
	"log/slog"

	"github.com/google/wire"

	"github.com/yanqian/surf-report/internal/bootstrap"
	"github.com/yanqian/surf-report/internal/infra/config"
)

func initializeIngester(cfg *config.Config, logger *slog.Logger) (*ingester, func(), error) {
	wire.Build(
		bootstrap.CatalogSet,
		newIngester,
	)
	return nil, nil, nil
}
