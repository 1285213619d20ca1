package main

import (
	"context"
	"fmt"
	"os"

	"github.com/opentracing/opentracing-go"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"rate_bot/internal/modules/config"
	"rate_bot/internal/modules/health"
	"rate_bot/internal/modules/metrics"
	"rate_bot/internal/modules/oracle"
	"rate_bot/internal/modules/postgres"
	telegram "rate_bot/internal/modules/telegram_bot"
	"rate_bot/internal/modules/venue"
	"rate_bot/internal/runner"
	"rate_bot/internal/strategy"
	"rate_bot/pkg/logger"
	"rate_bot/pkg/tracing"
)

const serviceName = "rate-trading-bot"

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "rate_bot",
		Short: "Interest rate futures trading bot",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start trading on the configured accounts",
		RunE:  run,
	}
	runCmd.Flags().StringVar(&cfgFile, "config", "", "YAML config file (overrides CONFIG_FILE)")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if cfgFile != "" {
		if err := os.Setenv("CONFIG_FILE", cfgFile); err != nil {
			return err
		}
	}
	logger.SetServiceName(serviceName)
	tracing.SetServiceName(serviceName)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return ctx
			},
			func(cfg *config.Config) (*zap.Logger, error) {
				return logger.New(cfg.LogLevel)
			},
			func(lc fx.Lifecycle, cfg *config.Config) (opentracing.Tracer, error) {
				tracer, closer, err := tracing.InitTracer(tracing.Config{
					Host: cfg.Jaeger.Host,
					Port: cfg.Jaeger.Port,
				})
				if err != nil {
					return nil, err
				}
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error {
						closer()
						return nil
					},
				})
				return tracer, nil
			},
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		config.Module(),
		metrics.Module(),
		health.Module(),
		venue.Module(),
		oracle.Module(),
		strategy.Module(),
		postgres.Module(),
		telegram.Module(),
		runner.Module(),
		fx.Invoke(func(opentracing.Tracer) {}),
	)

	if err := app.Err(); err != nil {
		return err
	}
	// Run блокируется до SIGINT/SIGTERM и сам зовёт Stop
	app.Run()
	return nil
}
