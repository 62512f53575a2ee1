package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"veritext/internal/model"
	"veritext/internal/server"
	"veritext/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analysis server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()

		cfg, err := loadConfig()
		if err != nil {
			logger.Fatal("Failed to load config", zap.Error(err))
		}

		adapter := model.NewAdapter(cfg.Model.VectorizerPath, cfg.Model.ClassifierPath, logger)
		if cfg.Model.PreloadOnStart {
			if err := adapter.Load(); err != nil {
				logger.Warn("Model artifacts not loadable at startup, prediction degraded until they appear", zap.Error(err))
			}
		}

		history := store.NewHistoryStore(logger)
		srv := server.NewServer(cfg, adapter, history, logger, logrus.New())

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if err := srv.Run(ctx, cfg.Server.Port); err != nil {
			logger.Error("Server stopped with error", zap.Error(err))
			return err
		}
		logger.Info("Server exited")
		return nil
	},
}
