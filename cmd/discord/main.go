// cmd/discord/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keshon/lotr-bot/internal/authz"
	"github.com/keshon/lotr-bot/internal/bot"
	"github.com/keshon/lotr-bot/internal/cache"
	"github.com/keshon/lotr-bot/internal/check"
	"github.com/keshon/lotr-bot/internal/config"
	"github.com/keshon/lotr-bot/internal/customcmd"
	"github.com/keshon/lotr-bot/internal/discord"
	"github.com/keshon/lotr-bot/internal/logging"
	"github.com/keshon/lotr-bot/internal/storage"
	st "github.com/keshon/lotr-bot/internal/storagetypes"
	v "github.com/keshon/lotr-bot/internal/version"
	"github.com/keshon/lotr-bot/pkg/retry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("bot exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.New(cfg.Log, "bot.log")
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(logger)
	logger.Info("starting bot", slog.String("app", v.AppName), slog.String("version", v.BuildVersion))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backoff := retry.Default()
	backoff.MaxAttempts = cfg.StartupAttempts
	backoff.OnRetry = func(attempt int, err error, wait time.Duration) {
		logger.Warn("startup dependency not ready", slog.Int("attempt", attempt),
			slog.Duration("wait", wait), slog.Any("error", err))
	}

	var store st.Backend
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		s, err := storage.Open(ctx, cfg)
		store = s
		return err
	})
	if err != nil {
		return err
	}
	defer store.Close()

	var blacklist st.Blacklist = store
	if cfg.ValkeyAddr != "" {
		vk, err := cache.NewClient(cache.Config{Addr: cfg.ValkeyAddr, TTL: cfg.BlacklistCacheTTL})
		if err != nil {
			return err
		}
		defer vk.Close()
		if err := retry.Do(ctx, backoff, func(ctx context.Context) error { return cache.Ping(ctx, vk) }); err != nil {
			return err
		}
		blacklist = cache.NewBlacklist(store, vk, cfg.BlacklistCacheTTL, logger.With(slog.String("component", "cache")))
		logger.Info("blacklist cache enabled", slog.String("addr", cfg.ValkeyAddr))
	}

	client, err := discord.NewBot(cfg, store, logger.With(slog.String("component", "discord")))
	if err != nil {
		return err
	}
	session := client.Session()
	responder := discord.NewResponder(session)

	perms := discord.NewPermissions(session, store, logger)
	gate := authz.NewGate(cfg.OwnerID, perms, blacklist, logger.With(slog.String("component", "authz")))
	service := customcmd.NewService(store, gate, discord.NewRenderer(session), responder,
		logger.With(slog.String("component", "customcmd")))

	registry, runner := bot.Commands(bot.Deps{
		Service:       service,
		Settings:      store,
		Blacklist:     blacklist,
		History:       store,
		Auth:          gate,
		Responder:     responder,
		Names:         discord.NewNames(session),
		Limiter:       check.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		Logger:        logger,
		DefaultPrefix: cfg.DefaultPrefix,
	})
	client.Handle(registry, runner)
	logger.Info("commands registered", slog.Int("count", len(registry.GetAll())))

	errCh := make(chan error, 1)
	go func() {
		if err := client.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("received signal, shutting down", slog.String("signal", s.String()))
		cancel()
		<-errCh
	case err := <-errCh:
		cancel()
		if err != nil {
			return fmt.Errorf("discord bot error: %w", err)
		}
	}

	logger.Info("discord bot exited cleanly")
	return nil
}
