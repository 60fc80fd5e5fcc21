package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"smartrunai-edge/internal/config"
	"smartrunai-edge/internal/domain/ports/adapter"
	"smartrunai-edge/internal/domain/ports/repository"
	aiAdapters "smartrunai-edge/internal/infra/adapters/ai"
	"smartrunai-edge/internal/infra/adapters/notify"
	"smartrunai-edge/internal/infra/api"
	"smartrunai-edge/internal/infra/logging"
	"smartrunai-edge/internal/infra/metrics"
	"smartrunai-edge/internal/infra/ratelimit"
	red "smartrunai-edge/internal/infra/redis"
	"smartrunai-edge/internal/infra/sched"
	"smartrunai-edge/internal/infra/scrape"
	"smartrunai-edge/internal/infra/worker"
	"smartrunai-edge/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Config / logging ----
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Rate limit store ----
	limiter, closeStore, err := newRateStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("rate limit store")
	}
	defer closeStore()

	// ---- Website content ----
	scraper := scrape.New(cfg.Content, logger)
	cache := usecase.NewContentCache(scraper, cfg.Content.TTL, cfg.Content.RetryAfterFailure, time.Now, logger)
	state := usecase.NewEdgeState(limiter, cache, logger)
	warmer := sched.NewContentWarmer(cfg.Content.WarmInterval, cache, logger)
	go func() { _ = warmer.Run(ctx) }()

	// ---- Upstream ----
	upstream, err := aiAdapters.NewFromConfig(ctx, cfg.Upstream, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("upstream adapter")
	}
	logger.Info().
		Str("provider", upstream.Name()).
		Str("model", cfg.Upstream.ActiveModel()).
		Int("concurrent_limit", cfg.Upstream.ConcurrentLimit).
		Msg("upstream configured")

	// ---- Use cases ----
	gate := usecase.NewGatekeeper(state, usecase.DefaultFastRules(), logger)
	prompts := usecase.NewPromptBuilder(state, logger)
	chatUC := usecase.NewChatUseCase(gate, prompts, upstream, logger)

	alertPool := worker.NewPool(cfg.Contact.AlertWorkers, logger)
	alertPool.Start(ctx)
	defer alertPool.Stop()

	mailer := notify.NewResendMailer(cfg.Contact.ResendKey, cfg.Contact.ResendURL, logger)
	contactUC := usecase.NewContactUseCase(mailer, leadNotifier(cfg, alertPool, logger), cfg.Contact.From, cfg.Contact.To, cfg.Runtime.Dev, logger)

	// ---- HTTP ----
	srv := api.NewServer(cfg, chatUC, contactUC, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("chatbot relay listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown incomplete")
	}
}

func newRateStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (repository.RateLimitStore, func(), error) {
	if cfg.RateLimit.Backend == "redis" {
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("backend", "redis").Int("max", cfg.RateLimit.MaxRequests).Dur("window", cfg.RateLimit.Window).Msg("rate limiting")
		store := red.NewRateLimiter(client, cfg.Redis.KeyPrefix, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		return store, func() { _ = client.Close() }, nil
	}

	store := ratelimit.NewMemoryStore(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	go store.RunSweeper(ctx, cfg.RateLimit.SweepInterval)
	logger.Info().Str("backend", "memory").Int("max", cfg.RateLimit.MaxRequests).Dur("window", cfg.RateLimit.Window).Msg("rate limiting")
	return store, func() {}, nil
}

// leadNotifier returns the Telegram alert channel when configured, otherwise a
// logging no-op. A bad token is logged and does not stop the relay.
func leadNotifier(cfg *config.Config, pool *worker.Pool, logger *zerolog.Logger) adapter.LeadNotifier {
	if cfg.Contact.TelegramToken == "" {
		return &notify.Noop{Log: logger}
	}
	tg, err := notify.NewTelegramNotifier(cfg.Contact.TelegramToken, cfg.Contact.TelegramChatID, "", logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram lead alerts disabled")
		return &notify.Noop{Log: logger}
	}
	return notify.NewAsync(notify.Multi{tg}, pool)
}
