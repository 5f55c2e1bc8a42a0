package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"scm-agent/chatbot"
	"scm-agent/config"
	"scm-agent/database"
	"scm-agent/narrative"
	"scm-agent/predict"
	"scm-agent/stream"
	"scm-agent/web"
	"scm-agent/web/services"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	// Chat history persistence is optional
	var store *database.PostgresStore
	if cfg.DatabaseURL != "" {
		store, err = database.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to ensure database schema", zap.Error(err))
		}
	} else {
		logger.Info("No database configured, chat history will not be persisted")
	}

	generator := narrative.New(cfg, logger)
	predictor, err := predict.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize prediction client", zap.Error(err))
	}

	engine := chatbot.NewEngine(cfg, generator, predictor, logger)

	consumer := stream.New(cfg, logger)
	dataService := services.NewDataService(cfg, consumer, logger)
	chatService := services.NewChatService(engine, dataService, store, logger)

	// Warm the snapshot so the first question does not pay the fetch cost
	if _, err := dataService.Refresh(ctx); err != nil {
		logger.Warn("Initial data fetch failed, will retry on first question", zap.Error(err))
	}

	webServer := web.NewServer(chatService, dataService, logger, cfg)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting supply chain assistant web server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}
