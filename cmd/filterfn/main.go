// Command filterfn serves the word filter function locally through the
// Functions Framework.
package main

import (
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"go.uber.org/zap"

	"crosswarped.com/wordfilter/function"
	"crosswarped.com/wordfilter/internal/logging"
)

func main() {
	cfg := function.LoadConfig()
	log := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	defer log.Sync()

	funcframework.RegisterHTTPFunction("/filter-words", function.NewHandler(cfg, nil, log).ServeHTTP)

	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	hostname := ""
	if localOnly := os.Getenv("LOCAL_ONLY"); localOnly == "true" {
		hostname = "127.0.0.1"
	}
	log.Info("serving filter function", zap.String("host", hostname), zap.String("port", port), zap.String("table", cfg.Table))
	if err := funcframework.StartHostPort(hostname, port); err != nil {
		log.Fatal("funcframework.StartHostPort", zap.Error(err))
	}
}
