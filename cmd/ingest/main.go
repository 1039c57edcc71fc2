// Command ingest loads the enriched spot catalog into the vector index.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanqian/surf-report/internal/domain/catalog"
	"github.com/yanqian/surf-report/internal/infra/config"
	"github.com/yanqian/surf-report/pkg/logger"
)

type ingester struct {
	svc catalog.Service
}

func newIngester(svc catalog.Service) *ingester {
	return &ingester{svc: svc}
}

func main() {
	path := flag.String("path", "", "catalog JSON file; overrides catalog.path and forces the file source")
	objectKey := flag.String("object-key", "", "catalog object key; overrides catalog.object.key and forces the object source")
	batch := flag.Int("batch", 0, "embedding batch size")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	switch {
	case *path != "":
		cfg.Catalog.Source = "file"
		cfg.Catalog.Path = *path
	case *objectKey != "":
		cfg.Catalog.Source = "object"
		cfg.Catalog.Object.Key = *objectKey
	}
	if *batch > 0 {
		cfg.Catalog.BatchSize = *batch
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job, cleanup, err := initializeIngester(cfg, logger.New())
	if err != nil {
		log.Fatalf("failed to wire ingester: %v", err)
	}

	result, err := job.svc.Ingest(ctx)
	cleanup()
	if err != nil {
		log.Fatalf("ingest catalog: %v", err)
	}
	_ = json.NewEncoder(os.Stdout).Encode(result)
}
