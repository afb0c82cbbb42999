package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/ltdstatus/config"
	"github.com/jonwraymond/ltdstatus/observe"
	"github.com/jonwraymond/ltdstatus/server"
)

func newServeCommand(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *configFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().String("listen-addr", "", "listen address (default :5000)")
	return cmd
}

// runServe serves until ctx is done, then drains requests and flushes
// telemetry within cfg.ShutdownTimeout.
func runServe(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	a, err := newApp(ctx, cfg, logOut)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Addr:     cfg.ListenAddr,
		Checker:  a.checker,
		Metadata: server.DefaultMetadata(cfg.ServiceName, cfg.Version),
		Gatherer: a.registry,
		Logger:   a.logger,
	})
	if err != nil {
		return errors.Join(err, a.shutdown(context.Background()))
	}

	a.logger.Info(ctx, "starting ltdstatus",
		observe.F("base_url", cfg.BaseURL),
		observe.F("max_in_flight", cfg.MaxInFlight),
	)

	served := make(chan error, 1)
	go func() { served <- srv.Start() }()

	select {
	case err := <-served:
		return errors.Join(err, a.shutdown(context.Background()))
	case <-ctx.Done():
	}

	a.logger.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := shutdownContext(cfg)
	defer cancel()

	return errors.Join(
		srv.Shutdown(shutdownCtx),
		<-served,
		a.shutdown(shutdownCtx),
	)
}

func shutdownContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.ShutdownTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
}
