package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"abby-server/internal/config"
	"abby-server/internal/domain/chat"
	"abby-server/internal/domain/conversation"
	"abby-server/internal/domain/profile"
	"abby-server/internal/domain/search"
	"abby-server/internal/infrastructure/llmclient"
	"abby-server/internal/infrastructure/logger"
	"abby-server/internal/infrastructure/observability"
	"abby-server/internal/infrastructure/uploads"
	"abby-server/internal/infrastructure/websearch"
	"abby-server/internal/interfaces/httpserver"
	"abby-server/internal/interfaces/httpserver/handlers"
	"abby-server/internal/interfaces/httpserver/routes"
)

func main() {
	// Local development convenience; production sets real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.GetLogger()
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		bootLog := logger.GetLogger()
		bootLog.Fatal().Err(err).Msg("configure logger")
	}

	ctx := context.Background()
	shutdownTracing, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("setup observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown tracing")
		}
	}()

	memories := chat.NewMemoryStore(cfg.MemoryWindow)
	conversations := conversation.NewService(memories)
	profiles := profile.NewService()

	model := llmclient.New(cfg.ModelBaseURL, cfg.ModelAPIKey, cfg.ModelName, cfg.ModelTimeout)
	chats := chat.NewService(memories, model, conversations)

	searchClient := websearch.NewClient(
		cfg.GoogleSearchAPIKey,
		cfg.GoogleSearchEngineID,
		cfg.SearchConnectTimeout,
		cfg.SearchReadTimeout,
		cfg.SearchResultLimit,
	)
	searches := search.NewService(searchClient, cfg.SearchResultLimit)
	storage := uploads.NewStorage(cfg.FileUploadDir)

	if !cfg.SearchConfigured() {
		log.Warn().Msg("web search credentials not set; search turns will degrade to an error digest")
	}

	chatHandler := handlers.NewChatHandler(chats, searches, storage, cfg, log)
	conversationHandler := handlers.NewConversationHandler(conversations, log)
	profileHandler := handlers.NewProfileHandler(profiles, log)

	apiRoutes := routes.NewRoutes(chatHandler, conversationHandler, profileHandler)
	server := httpserver.NewHTTPServer(apiRoutes, cfg, log)

	var eg errgroup.Group
	eg.Go(func() error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Info().Int("port", cfg.MetricsPort).Msg("metrics server listening")
		return http.ListenAndServe(fmt.Sprintf(":%d", cfg.MetricsPort), mux)
	})
	eg.Go(func() error {
		log.Info().Int("port", cfg.HTTPPort).Str("model", cfg.ModelName).Msg("http server listening")
		return server.Run()
	})

	if err := eg.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
