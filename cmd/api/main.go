package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/filegate/internal/auth"
	"github.com/abduss/filegate/internal/config"
	"github.com/abduss/filegate/internal/file"
	"github.com/abduss/filegate/internal/logger"
	"github.com/abduss/filegate/internal/presigned"
	"github.com/abduss/filegate/internal/server"
	"github.com/abduss/filegate/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
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

	if err := storage.EnsureSchema(ctx, dbPool); err != nil {
		logg.Fatal("ensure schema", zap.Error(err))
	}

	objectClient, err := storage.NewObjectStoreClient(cfg.ObjectStore)
	if err != nil {
		logg.Fatal("connect object store", zap.Error(err))
	}

	if err := storage.EnsureBucket(ctx, objectClient, cfg.ObjectStore.Bucket, cfg.ObjectStore.Region); err != nil {
		logg.Fatal("ensure bucket", zap.Error(err))
	}

	verifier, err := auth.NewTokenVerifier(cfg.Identity)
	if err != nil {
		logg.Fatal("identity verifier", zap.Error(err))
	}

	fileRepo := file.NewRepository(dbPool)
	gateway := presigned.NewGateway(objectClient)
	fileService := file.NewService(fileRepo, gateway, cfg.ObjectStore.Bucket,
		file.WithStrictRegistration(cfg.Server.StrictObjectKeys))

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Dependencies{
		Config:      cfg,
		Logger:      logg,
		DB:          dbPool,
		ObjectStore: objectClient,
		Probe:       fileRepo,
		Verifier:    verifier,
		FileService: fileService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("FileGate API listening",
			zap.String("address", cfg.Server.Address()),
			zap.String("prefix", cfg.Server.Prefix),
			zap.String("bucket", cfg.ObjectStore.Bucket))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}
}
