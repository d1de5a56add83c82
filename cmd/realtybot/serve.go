package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ent0n29/realtybot/internal/app"
)

const janitorInterval = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat widget HTTP and WebSocket API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := app.Build(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("cleanup failed", zap.Error(err))
		}
	}()
	logger.Info("speech output",
		zap.String("mode", res.Voice.Mode),
		zap.String("detail", res.Voice.Detail),
	)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           res.API.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	res.Sessions.StartJanitor(ctx, janitorInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
			_ = httpServer.Close()
		}
		return nil
	})

	err = g.Wait()
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
