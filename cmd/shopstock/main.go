package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sahans/shopstock/internal/api"
	"github.com/sahans/shopstock/internal/config"
	"github.com/sahans/shopstock/internal/domain/items"
	"github.com/sahans/shopstock/internal/domain/logs"
	"github.com/sahans/shopstock/internal/domain/settings"
	httpx "github.com/sahans/shopstock/internal/infra/http"
	"github.com/sahans/shopstock/internal/infra/logger"
	"github.com/sahans/shopstock/internal/infra/metrics"
	"github.com/sahans/shopstock/internal/infra/notify"
	"github.com/sahans/shopstock/internal/infra/storage"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/subosito/gotenv"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func openStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (storage.KV, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		if err := runMigrations(cfg.Storage.DSN); err != nil {
			return nil, err
		}
		log.Info("migrations applied")
		return storage.OpenPostgres(ctx, cfg.Storage.DSN)
	case "memory":
		return storage.NewMemory(), nil
	default:
		return storage.OpenBadger(cfg.Storage.Path)
	}
}

func main() {
	_ = gotenv.Load()

	configPath := os.Getenv("APP_CONFIG")
	if configPath == "" {
		configPath = "config/example.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("storage open failed", "driver", cfg.Storage.Driver, "err", err)
		return
	}
	defer func() { _ = kv.Close() }()
	log.Info("storage ready", "driver", cfg.Storage.Driver)

	settingsStore, err := settings.Open(ctx, kv, log)
	if err != nil {
		log.Error("settings store failed", "err", err)
		return
	}
	itemsStore, err := items.Open(ctx, kv, log)
	if err != nil {
		log.Error("items store failed", "err", err)
		return
	}
	logsStore, err := logs.Open(ctx, kv, log)
	if err != nil {
		log.Error("logs store failed", "err", err)
		return
	}

	notifier, err := notify.New(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
	if err != nil {
		log.Error("notifier init failed", "err", err)
		return
	}
	if notifier != nil {
		log.Info("low stock alerts enabled", "chat_id", cfg.Telegram.ChatID)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	handlers := api.New(itemsStore, logsStore, settingsStore, notifier, m, log)

	srv := httpx.New(cfg.HTTP.Addr, handlers.Router(cfg.Metrics.Enabled))
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
