package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"bond_dashboard/internal/app/config"
	"bond_dashboard/internal/app/di"
	"bond_dashboard/internal/app/router"
	infradb "bond_dashboard/internal/platform/db"
	"bond_dashboard/internal/platform/metrics"
	infraredis "bond_dashboard/internal/platform/redis"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// db
	db, err := infradb.Open(infradb.LoadConfigFromEnv(), cfg.DBConnectTimeout)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := infradb.Close(db); err != nil {
			log.Println("[ERROR] Failed to close database:", err)
		}
	}()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(context.Background(), infraredis.LoadConfig()); err != nil {
		log.Println("[WARN] Redis unavailable. Caching query results in process memory.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository, cache, usecase, handler
	rec := metrics.NewRecorder()
	bonds := di.NewBonds(db, rdb, cfg.CacheTTL, rec)

	// ルータ生成
	r := router.NewRouter(bonds.Handler, bonds.Store, rec.Handler(), router.Options{
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("[ERROR] Graceful shutdown failed:", err)
	}
}
