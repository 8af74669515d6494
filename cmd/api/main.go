package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"voicebot/internal/adapter/repo"
	"voicebot/internal/http/handlers"
	httpapi "voicebot/internal/http/httpapi"
	"voicebot/internal/infra"
	"voicebot/internal/infra/credentials"
	"voicebot/internal/infra/geoip"
	"voicebot/internal/ledger"
	"voicebot/internal/queue"
	"voicebot/internal/synth"
	"voicebot/internal/synth/silero"
)

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB pool (pgxpool)
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)

	led := ledger.New(
		repo.NewLimitRepository(runner, cfg.FreeLimit),
		repo.NewHistoryRepository(runner),
		ledger.Config{FloodInterval: cfg.FloodInterval, ResetWindow: cfg.ResetWindow},
		logger,
	)

	// Env wins; otherwise fall back to the key stored via cmd/ttstoken.
	apiKey := cfg.TTSAPIKey
	if apiKey == "" {
		stored, err := credentials.NewStore(runner).SileroAPIKey(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load stored tts api key")
		}
		apiKey = stored
	}

	catalog := synth.NewCatalog(cfg.DefaultLocale, cfg.MaxTextLength)
	tts, err := silero.NewClient(silero.Options{
		BaseURL:    cfg.TTSBaseURL,
		APIKey:     apiKey,
		Model:      cfg.TTSModel,
		SampleRate: cfg.SampleRate,
		HTTPClient: &http.Client{Timeout: cfg.TTSTimeout},
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure synthesizer")
	}

	manager := queue.NewManager(cfg.MaxConcurrentSynth, logger)
	defer manager.Close()

	notify := func(ctx context.Context, userID, message string) {
		logger.Info().Str("user_id", userID).Str("message", message).Msg("user notification")
	}

	app := handlers.NewApp(led, manager, tts, catalog, notify, logger)

	country, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	opts := httpapi.Options{
		Logger:          logger,
		RateLimitPerMin: cfg.RateLimitPerMin,
		MatchLanguage:   catalog.MatchLanguage,
	}
	if country != nil {
		opts.CountryLookup = country.CountryCode
	}
	router := httpapi.NewRouter(app, opts)

	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("server stopped")
}
