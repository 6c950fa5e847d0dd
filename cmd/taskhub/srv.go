package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskhub/internal/config"
	"taskhub/internal/events"
	"taskhub/internal/server"
	"taskhub/internal/service"
	"taskhub/internal/storage"
)

const sessionPurgeInterval = 10 * time.Minute

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the taskhub API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := slog.Default()

	addr, err := server.ListenAddr(cfg.APIURL)
	if err != nil {
		return err
	}

	logger.Info("opening storage", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)
	st, err := storage.Open(ctx, storage.Options{
		Backend: cfg.Storage.Backend,
		Path:    cfg.Storage.Path,
		DSN:     cfg.Storage.DSN,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	svc := service.New(st, service.Config{
		CacheTTL:             cfg.CacheTTL,
		IDPrefix:             cfg.IDPrefix,
		ActivityLimit:        cfg.Collab.ActivityLimit,
		NotificationLimit:    cfg.Collab.NotificationLimit,
		DisableNotifications: cfg.Collab.DisableNotifications,
		SessionTTL:           cfg.SessionTTL,
		Logger:               logger,
	})

	if cfg.Events.AMQPURL != "" {
		publisher, err := events.DialAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange, logger.With("component", "amqp"))
		if err != nil {
			return fmt.Errorf("connect event broker: %w", err)
		}
		defer publisher.Close()
		svc.Bus.Subscribe("amqp", publisher)
		logger.Info("forwarding events", "exchange", publisher.Exchange())
	}

	go purgeSessions(ctx, svc, logger)

	srv := server.New(addr, svc, server.Options{
		Logger:      logger.With("component", "server"),
		StorageName: cfg.Storage.Backend,
	})
	return srv.ListenAndServe(ctx)
}

func purgeSessions(ctx context.Context, svc *service.Services, logger *slog.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := svc.SessionStore.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purge expired sessions", "error", err)
				continue
			}
			if purged > 0 {
				logger.Debug("purged expired sessions", "count", purged)
			}
		}
	}
}
