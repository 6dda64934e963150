package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dockerlab/demoapp/internal/config"
	"github.com/dockerlab/demoapp/internal/logging"
	"github.com/dockerlab/demoapp/internal/metrics"
	"github.com/dockerlab/demoapp/internal/server"
)

var (
	portFlag     int
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:           "demoapp",
	Short:         "Demo web service with structured logs and Prometheus metrics",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cmd.Flags().Changed("port") {
			cfg.Port = portFlag
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevelFlag
		}
		return run(cfg)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().IntVarP(&portFlag, "port", "p", 3000, "Port to listen on (overrides PORT)")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "info", "Log level (overrides LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log, err := logging.New(logging.Options{
		Service:     cfg.ServiceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		LokiHost:    cfg.LokiHost,
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = log.Close(ctx)
	}()
	defer log.Recover()

	reg := metrics.New()
	sampler, err := metrics.NewSampler(reg, cfg.MetricsInterval, log.Logger)
	if err != nil {
		return err
	}
	sampler.Start()
	defer func() { _ = sampler.Stop() }()

	srv := server.New(cfg, server.NewDeps(log, reg))
	ln, err := srv.Listen()
	if err != nil {
		return err
	}
	serverErrors := log.Go("http-server", func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	log.Info("Server started successfully",
		zap.Int("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case s := <-sig:
		log.Info("shutting down", zap.String("signal", s.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
