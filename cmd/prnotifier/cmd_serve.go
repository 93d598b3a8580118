package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/RezaEskandarii/prnotifier/internal/message_broker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := newContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              c.Config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.Orchestrator.Start(ctx, c.Config.TickInterval)
	}()
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(c.Config.TokenRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweeper.Run(ctx)
			}
		}
	}()

	c.Logger.Info("prnotifier started",
		"metrics_addr", c.Config.MetricsAddr,
		"tick_interval", c.Config.TickInterval,
		"token_refresh_interval", c.Config.TokenRefreshInterval,
	)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = fmt.Errorf("metrics server: %w", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.Logger.Warn("metrics server shutdown", "err", err)
	}
	wg.Wait()
	c.Logger.Info("prnotifier stopped")
	return runErr
}

func runEvents(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := newContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if c.MessageBroker == nil {
		return errors.New("no message broker configured")
	}
	messages, err := c.MessageBroker.Consume(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for msg := range messages {
		event, err := message_broker.DecodeEvent(msg)
		if err != nil {
			c.Logger.Warn("skipping undecodable event", "err", err)
			continue
		}
		if err := printJSON(out, event); err != nil {
			return err
		}
	}
	return nil
}
