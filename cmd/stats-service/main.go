package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "emailstats/cmd/stats-service/docs"
	"emailstats/internal/config"
	"emailstats/internal/constants"
	"emailstats/internal/logger"
	"emailstats/pkg/logging"
)

var (
	configFile string
)

// @title           Email Stats API
// @version         1.0
// @description     Hourly counts of mail received and sent by the home mailbox.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /

// @schemes   http https

func main() {
	rootCmd := &cobra.Command{
		Use:   "stats-service",
		Short: "Email statistics collector and query API",
		Long:  "Collects hourly mailbox statistics from Gmail and serves them over HTTP",
		RunE:  serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (required)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(collectCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the hourly collection scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx = logging.WithServiceName(ctx, constants.ServiceName)

			log.InfowCtx(ctx, "Starting Email Stats Service")

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.ErrorwCtx(ctx, "Failed to initialize application", "error", err)
				return err
			}

			if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.ErrorwCtx(ctx, "Service stopped with error", "error", err)
				return err
			}
			log.InfowCtx(ctx, "Service shutdown complete")
			return nil
		},
	}
}

func collectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Run a single collection cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx = logging.WithServiceName(ctx, constants.ServiceName)

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.ErrorwCtx(ctx, "Failed to initialize application", "error", err)
				return err
			}
			defer func() {
				if err := app.Shutdown(context.Background()); err != nil {
					log.WarnwCtx(ctx, "Shutdown finished with errors", "error", err)
				}
			}()

			res, err := app.collectOnce(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s received_home=%d received_other=%d sent_home=%d sent_other=%d\n",
				res.Record.Day,
				res.Record.Timestamp.Format("15:04:05.000Z07:00"),
				res.Record.ReceivedHome,
				res.Record.ReceivedOther,
				res.Record.SentHome,
				res.Record.SentOther,
			)
			return nil
		},
	}
}

func setup() (*config.Config, logger.Logger, error) {
	earlyLog := logging.NewEarlyLog()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return nil, nil, fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return nil, nil, err
	}

	if sugared, ok := log.(*logger.SugaredLogger); ok {
		sugared.SetServiceName(constants.ServiceName)
	}
	return cfg, log, nil
}
