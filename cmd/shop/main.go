package main

import (
	"context"
	"log"
	"os"

	"github.com/safar/shopkeeper/internal/app"
	"github.com/safar/shopkeeper/internal/cli"
	"github.com/safar/shopkeeper/internal/config"
	"github.com/safar/shopkeeper/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("Initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	svc, closeStore, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open shop", zap.Error(err))
	}
	defer closeStore()

	if err := cli.NewMenu(svc, os.Stdin, os.Stdout).Run(ctx); err != nil {
		logger.Error("shop menu stopped", zap.Error(err))
		closeStore()
		logger.Sync()
		os.Exit(1)
	}
}
