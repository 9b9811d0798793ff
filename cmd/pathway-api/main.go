// Package main provides the Pathway API server.
package main

import (
	"context"
	"os"

	"github.com/dukex/pathway/pkg/cmd"
	"github.com/dukex/pathway/pkg/log"
	"github.com/dukex/pathway/pkg/metrics"
	"github.com/dukex/pathway/pkg/otelhelper"
	"github.com/dukex/pathway/pkg/reminders"
	"github.com/dukex/pathway/pkg/services"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "pathway-api",
		Usage:                 "Track employee onboarding and offboarding workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Persistence URL (a directory, file://, postgres:// or redis://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers, used with --event-bus=kafka",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "reminder-schedule",
				Usage:   "Cron expression for the overdue task scan",
				Value:   reminders.DefaultSchedule,
				Sources: cli.EnvVars("REMINDER_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "next-task-strategy",
				Usage:   "Task announced after a completion (positional, available)",
				Value:   string(services.NextTaskPositional),
				Sources: cli.EnvVars("NEXT_TASK_STRATEGY"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.FloatFlag{
				Name:    "otel-sample-ratio",
				Usage:   "Fraction of traces exported (0 or 1 exports all)",
				Value:   1,
				Sources: cli.EnvVars("OTEL_SAMPLE_RATIO"),
			},
			&cli.StringFlag{
				Name:    "environment",
				Usage:   "Deployment environment reported on traces",
				Sources: cli.EnvVars("ENVIRONMENT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: run,
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	err := log.Setup(command.String("log-level"), command.String("log-format"))
	if err != nil {
		return err
	}

	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing Pathway API")

	strategy, err := services.ParseNextTaskStrategy(command.String("next-task-strategy"))
	if err != nil {
		return err
	}

	tracer := otelhelper.NoopTracer()

	if command.Bool("otel-enabled") {
		otelTracer, shutdown, err := otelhelper.NewTracer(ctx, otelhelper.TracerConfig{
			ServiceName: "pathway-api",
			Environment: command.String("environment"),
			SampleRatio: command.Float("otel-sample-ratio"),
		})
		if err != nil {
			return err
		}

		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
			}
		}()

		tracer = otelTracer
	}

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		err := persistence.Close(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(cmd.EventBusConfig{
		Provider:    command.String("event-bus"),
		Brokers:     command.String("kafka-brokers"),
		ServiceName: "pathway-api",
		OTELEnabled: command.Bool("otel-enabled"),
	}, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	err = registerEventLoggers(ctx, eventBus, log.WithModule("events"))
	if err != nil {
		return err
	}

	opts := services.Options{
		Persistence:      persistence,
		EventBus:         eventBus,
		Logger:           logger,
		Tracer:           tracer,
		Metrics:          metrics.New(),
		NextTaskStrategy: strategy,
	}

	scheduler, err := reminders.NewScheduler(command.String("reminder-schedule"), services.NewReminders(opts), logger)
	if err != nil {
		return err
	}

	err = scheduler.Start(ctx)
	if err != nil {
		return err
	}

	defer scheduler.Stop()

	api := NewAPI(logger, opts)

	err = api.Start(command.Int("port"))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to start API server", "error", err)
	}

	return nil
}
