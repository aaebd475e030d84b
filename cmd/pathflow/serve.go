package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/pathflow"
	"github.com/aretw0/pathflow/internal/presentation/tui"
	httpAdapter "github.com/aretw0/pathflow/pkg/adapters/http"
	redisAdapter "github.com/aretw0/pathflow/pkg/adapters/redis"
	"github.com/aretw0/pathflow/pkg/observability"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve one editing session over HTTP",
	Long: `Loads the model fixture and exposes the command flows as a JSON API, with
an SSE stream of change events. With a redis block in the config, change events
are also published on a Redis channel and every mutating call takes a shared lock.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}

		metrics := observability.NewMetrics()
		sessionOpts := []pathflow.Option{pathflow.WithLifecycleHooks(metrics.Hooks())}
		var serverOpts []httpAdapter.Option

		if cfg.Redis != nil {
			client := backend.NewClient(&backend.Options{Addr: cfg.Redis.Addr})
			defer client.Close()

			pingCtx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
			err := client.Ping(pingCtx).Err()
			cancel()
			if err != nil {
				return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
			}

			publisher := redisAdapter.NewFromClient(client,
				redisAdapter.WithChannel(cfg.Redis.Channel),
				redisAdapter.WithHistory(cfg.Redis.Channel+":history", int64(cfg.Redis.History)),
			)
			if recent, err := publisher.Recent(cmd.Context()); err == nil && len(recent) > 0 {
				logger.Info("retained change events found", "count", len(recent), "channel", cfg.Redis.Channel)
			}
			sessionOpts = append(sessionOpts, pathflow.WithPublisher(publisher))
			serverOpts = append(serverOpts, httpAdapter.WithLocker(
				redisAdapter.NewLocker(client, "pathflow:"), cfg.Redis.LockKey, cfg.Redis.LockTTL,
			))
		}

		s, _, err := newSession(cfg, cfg.Model, logger, sessionOpts...)
		if err != nil {
			return err
		}

		if cfg.HTTP.Metrics {
			serverOpts = append(serverOpts, httpAdapter.WithMetricsHandler(metrics.Handler()))
		}
		serverOpts = append(serverOpts, httpAdapter.WithLogger(logger))
		server := httpAdapter.NewServer(s.Harness(), s.History(), serverOpts...)
		s.Subscribe(server.ChangeListener)

		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           server.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		tui.NewPrinter(cmd.OutOrStdout()).Banner()

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting pathflow server", "addr", srv.Addr, "model", cfg.Model)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("pathflow server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on (overrides the config)")
}
