package main

import (
	"flag"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/klassbok/internal/app"
	"github.com/shrimpsizemoose/klassbok/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to start service: %v", err)
	}
	defer service.Close()

	router := handlers.NewRouter(service)

	logger.Info.Printf("Starting klassbok server on %s", service.Config.Server.Port)
	if service.Limiter.Enabled() {
		logger.Debug.Printf("Rate limit: %d requests per minute", service.Config.RateLimit.RequestsPerMinute)
	}
	if err := http.ListenAndServe(service.Config.Server.Port, router); err != nil {
		logger.Error.Fatalf("Klassbok server failed: %v", err)
	}
}
