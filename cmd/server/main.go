package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discord-quote-importer/internal/adapters/parser"
	"discord-quote-importer/internal/cache"
	"discord-quote-importer/internal/core/services"
	"discord-quote-importer/internal/discord"
	applog "discord-quote-importer/internal/log"
	"discord-quote-importer/internal/pkg/config"
	"discord-quote-importer/internal/server"
	"discord-quote-importer/internal/server/usecase"
	"discord-quote-importer/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализация логгера с маскированием токена Discord
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := applog.NewMaskedLogger(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// 3. Валидация конфигурации (после инициализации логгера)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// 4. Инициализация зависимостей
	store, err := storage.New(cfg.Storage.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open quote store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close quote store", "error", err)
		}
	}()

	guildClient := discord.New(cfg.Discord, discord.WithLogger(logger))

	taskStore := server.NewTaskStore()
	cacheStore := cache.NewCacheStore()
	taskStore.StartCleanupTicker(appCtx, time.Minute)
	cacheStore.StartCleanupTicker(appCtx, time.Duration(cfg.Import.CacheTTLMinutes)*time.Minute)

	parserSvc := parser.NewJsonParser()
	userSvc := services.NewUserInference(guildClient, services.WithUserLogger(logger))
	resolverSvc := services.NewMessageResolver(guildClient, services.WithResolverLogger(logger))
	quoterSvc := services.NewQuoterInference(guildClient, userSvc,
		services.WithMarkerEmoji(cfg.Import.MarkerEmoji),
		services.WithAnnouncerBotID(cfg.Import.AnnouncerBotID),
		services.WithReactionPageSize(cfg.Import.ReactionPageSize),
		services.WithHistoryScanLimit(cfg.Import.HistoryScanLimit),
		services.WithQuoterLogger(logger),
	)
	builderSvc := services.NewQuoteBuilder(userSvc)

	importer := usecase.NewImportQuotesUseCase(cfg, parserSvc, resolverSvc, quoterSvc, builderSvc, store, cacheStore, logger)

	// 5. Создание HTTP-сервера
	srv, err := server.New(cfg, importer, taskStore, store)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// 6. Запуск сервера и graceful shutdown
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		slog.Info("Starting server", "addr", cfg.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Signal received, shutting down...")

	// Сначала отменяем контекст приложения, чтобы остановить фоновые тикеры
	appCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	<-serverDone
	slog.Info("HTTP server stopped")

	slog.Info("Application exited gracefully")
	return nil
}
