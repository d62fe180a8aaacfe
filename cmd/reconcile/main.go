package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/abduss/filegate/internal/config"
	"github.com/abduss/filegate/internal/file"
	"github.com/abduss/filegate/internal/logger"
	"github.com/abduss/filegate/internal/presigned"
	"github.com/abduss/filegate/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	apply := flag.Bool("apply", false, "delete orphaned metadata records instead of only reporting them")
	flag.Parse()

	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logg.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	objectClient, err := storage.NewObjectStoreClient(cfg.ObjectStore)
	if err != nil {
		logg.Fatal("connect object store", zap.Error(err))
	}

	reconciler := file.NewReconciler(file.NewRepository(dbPool), presigned.NewGateway(objectClient), logg, !*apply)
	report, err := reconciler.Sweep(ctx)
	if err != nil {
		logg.Error("sweep", zap.Error(err))
		os.Exit(1)
	}

	logg.Info("sweep finished",
		zap.Bool("applied", *apply),
		zap.Int("checked", report.Checked),
		zap.Int("orphans", len(report.Orphans)),
		zap.Int("removed", report.Removed),
		zap.Int("failed", report.Failed))
	if report.Failed > 0 {
		os.Exit(2)
	}
}
