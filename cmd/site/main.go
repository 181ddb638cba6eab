package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"Boutique/internal/api"
	"Boutique/internal/site"
	"Boutique/internal/storage"
	"Boutique/pkg/kit"
)

func main() {
	service := "site"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	addr := flags.String("addr", getenv("ADDR", ":8080"), "listen address")
	apiBase := flags.String("api", getenv("API_BASE_URL", "http://localhost:8090"), "remote API base URL")
	backend := flags.String("storage", getenv("STORAGE", "memory"), "client storage backend: memory|postgres|redis")
	dsn := flags.String("dsn", getenv("STORAGE_DSN", ""), "postgres DSN for the postgres backend")
	redisAddr := flags.String("redis", getenv("REDIS_ADDR", "localhost:6379"), "redis address for the redis backend")
	metricsEnabled := flags.Bool("metrics", getenv("METRICS_ENABLED", "") == "true", "expose /metrics")
	_ = flags.Parse(os.Args[1:])

	st, err := buildStorage(*backend, *dsn, *redisAddr)
	if err != nil {
		log.Fatal("storage init failed", zap.String("backend", *backend), zap.Error(err))
	}

	client := api.NewClient(*apiBase)

	s, err := site.NewServer(st, client, log)
	if err != nil {
		log.Fatal("server init failed", zap.Error(err))
	}
	client.Token = func() string { return s.Session.Token(context.Background()) }

	h := site.NewHandler(s, site.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: *metricsEnabled,
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	})

	if err := kit.RunHTTPServer(*addr, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func buildStorage(backend, dsn, redisAddr string) (storage.Storage, error) {
	switch backend {
	case "postgres":
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		pg := storage.NewPostgres(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		return pg, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		return storage.NewRedis(rdb), nil
	default:
		return storage.NewMemory(), nil
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
