package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"Boutique/internal/stubapi"
	"Boutique/pkg/kit"
)

func main() {
	service := "stubapi"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	addr := flags.String("addr", getenv("ADDR", ":8090"), "listen address")
	_ = flags.Parse(os.Args[1:])

	s, err := stubapi.NewServer(stubapi.Config{
		AdminUser:     getenv("ADMIN_USER", "admin"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),
		JWTSecret:     getenv("JWT_SECRET", "dev-secret"),
	}, log)
	if err != nil {
		log.Fatal("server init failed", zap.Error(err))
	}

	h := stubapi.NewHandler(s, stubapi.HTTPDeps{
		Log:      log,
		Service:  service,
		Registry: prometheus.NewRegistry(),
	})

	if err := kit.RunHTTPServer(*addr, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
