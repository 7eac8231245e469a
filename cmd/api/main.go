package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"trainforge/internal/extract"
	"trainforge/internal/generate"
	"trainforge/internal/history"
	"trainforge/internal/http/handlers"
	"trainforge/internal/http/httpapi"
	"trainforge/internal/infra"
	"trainforge/internal/infra/geoip"
	"trainforge/internal/media"
	"trainforge/internal/middleware"
	"trainforge/internal/providers/genai"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := history.Open(cfg.HistoryDBPath, cfg.HistoryLimit)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open history database")
	}
	defer store.Close()

	client, err := genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini client")
	}

	tools := media.New()
	if cfg.FFmpegPath != "" {
		tools.FFmpegPath = cfg.FFmpegPath
	}
	if cfg.FFprobePath != "" {
		tools.FFprobePath = cfg.FFprobePath
	}
	if cfg.PdftoppmPath != "" {
		tools.PdftoppmPath = cfg.PdftoppmPath
	}
	if !tools.HasPDFRenderer() {
		logger.Warn().Msg("pdftoppm not found; PDF pages will be text-only")
	}
	if !tools.HasVideoTools() {
		logger.Warn().Msg("ffmpeg/ffprobe not found; video uploads will be rejected")
	}

	app := handlers.NewApp(logger,
		store,
		extract.New(tools, logger),
		generate.NewSelector(client, logger),
		generate.NewOrchestrator(client, logger),
	)

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	router := httpapi.NewRouter(app, cfg, countryLookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("model", client.Model()).Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
