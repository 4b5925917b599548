package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acllite/go-acllite/gcnner"
	"github.com/acllite/go-acllite/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve GCN NER inference over HTTP",
	Long: "Starts the HTTP inference service configured through GCNNER_* " +
		"environment variables.  Runtimes are pooled across the configured " +
		"NPU devices.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {

	logger, err := zap.NewProduction()

	if err != nil {
		return err
	}

	defer logger.Sync()

	cfg := gcnner.LoadConfig()

	logger.Info("starting",
		zap.String("model", cfg.ModelPath),
		zap.Int32s("devices", cfg.DeviceIDs),
		zap.Int("pool_size", cfg.PoolSize),
	)

	engine, err := server.NewPoolEngine(cfg)

	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = server.New(cfg, engine, logger).Run(ctx)

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}
