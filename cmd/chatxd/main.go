package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/chatx/chatx/internal/api"
	"github.com/chatx/chatx/internal/config"
	"github.com/chatx/chatx/internal/llm"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to chatx.toml")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = cfg.Model.APIKey
	}

	llmService, err := llm.New(
		cfg.Model.BaseURL,
		apiKey,
		cfg.Model.Name,
		cfg.Model.HistoryTokens,
		logger,
	)
	if err != nil {
		logger.Fatal("failed to initialize LLM service", zap.Error(err))
	}

	handler := api.NewHandler(llmService, cfg.Server.ImageDir, logger)

	http.HandleFunc("/api/chat", handler.HandleChat)
	http.HandleFunc("/api/image/", handler.HandleImage)
	http.HandleFunc("/api/health", handler.HandleHealth)

	logger.Info("Starting server",
		zap.String("addr", cfg.Server.ListenAddr),
		zap.String("model", cfg.Model.Name))
	if err := http.ListenAndServe(cfg.Server.ListenAddr, nil); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
