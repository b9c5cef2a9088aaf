package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"innbot/internal/platform/health"
	"innbot/internal/platform/httpserver"
	"innbot/internal/platform/logger"
	"innbot/internal/registry/handler"
	"innbot/internal/transport/telegram"
	httptransport "innbot/internal/transport/http"
	"innbot/pkg/platform/middleware/request"
)

const poolStatsInterval = 15 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP lookup API and, when a token is configured, the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
	cmd.Flags().String("addr", "", "HTTP listen address")
	_ = opts.v.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg := opts.cfg
	log := logger.New(cfg.Log.Level)

	log.Info("initializing innbot",
		"addr", cfg.HTTP.Addr,
		"environment", cfg.Environment,
		"cache_backend", cfg.Cache.Backend,
		"tracing_exporter", cfg.Tracing.Exporter,
		"telegram_enabled", cfg.Telegram.Token != "",
	)

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := a.close(shutdownCtx); err != nil {
			log.Error("failed to release resources", "error", err)
		}
	}()

	healthHandler := health.New(cfg.Environment)
	a.registerChecks(healthHandler)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		Metrics:        request.NewMetrics(a.registry),
		Gatherer:       a.registry,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		MaxBodyBytes:   request.DefaultMaxBodyBytes,
		Health:         healthHandler,
		API:            []httptransport.Registrar{handler.New(a.service, log)},
	})

	var bot *telegram.Bot
	if cfg.Telegram.Token != "" {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return err
		}
		api.Debug = cfg.Telegram.Debug
		log.Info("authorized on telegram", "bot_username", api.Self.UserName)

		bot = telegram.New(api, a.service,
			telegram.WithLogger(log),
			telegram.WithMetrics(telegram.NewMetrics(a.registry)),
			telegram.WithWorkers(cfg.Telegram.Workers),
			telegram.WithPollTimeout(cfg.Telegram.PollTimeout),
		)
	} else {
		log.Warn("telegram token not configured; serving HTTP only")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.New(cfg.HTTP, router, log).Run(gctx)
	})
	if bot != nil {
		g.Go(func() error {
			return bot.Run(gctx)
		})
	}

	if a.redis != nil {
		g.Go(func() error {
			ticker := time.NewTicker(poolStatsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					a.redis.RecordPoolStats()
				}
			}
		})
	}

	return g.Wait()
}
