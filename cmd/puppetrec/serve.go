package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/v0xg/puppetrec/internal/server"
	"go.uber.org/zap"
)

var address string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compile and recordings HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&address, "address", "", "Listen address (default: $PUPPETREC_ADDRESS or 127.0.0.1:8123)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if address != "" {
		cfg.Address = address
	}
	if !cfg.LogDev {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting puppetrec server", zap.String("address", cfg.Address))
	return server.NewServer(cfg, db, logger.Logger).Start(ctx)
}
