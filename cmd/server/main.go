package main

import (
	"log"
	"net/http"

	"github.com/psyvr/exposure/internal/api"
	"github.com/psyvr/exposure/internal/db"
	"github.com/psyvr/exposure/internal/middleware"
	"github.com/psyvr/exposure/internal/platform/config"
	"github.com/psyvr/exposure/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	middleware.SetSecret(cfg.JWTSecret)

	var store api.Store
	if cfg.SQLitePath != "" {
		sq, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			zlog.Fatal("open database", "path", cfg.SQLitePath, "err", err)
		}
		defer sq.Close()
		if err := db.RunMigrations(sq.DB(), cfg.MigrationsDir); err != nil {
			zlog.Fatal("run migrations", "err", err)
		}
		store = sq
		zlog.Info("using sqlite store", "path", cfg.SQLitePath)
	} else {
		store = api.NewMemoryStore()
		zlog.Warn("no VRT_SQLITE_PATH set, using in-memory store")
	}

	if cfg.SeedDemo {
		if err := db.SeedDemo(store); err != nil {
			zlog.Fatal("seed demo data", "err", err)
		}
		zlog.Info("demo data seeded")
	}

	mux := http.NewServeMux()
	api.NewRouter(store, zlog).Register(mux)

	handler := middleware.CORS(
		middleware.SecureHeaders(
			middleware.NoStore(
				middleware.LocaleMiddleware(
					middleware.WithAuth(mux)))))

	zlog.Info("server listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		zlog.Fatal("server error", "err", err)
	}
}
