package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"cicd-notifier/internal/config"
	"cicd-notifier/internal/di"
	"cicd-notifier/internal/timewindow"
)

// Event carries the local wall-clock time the caller wants to wait until.
type Event struct {
	TargetLocalTime string `json:"targetLocalTime"`
}

type Handler struct {
	utcOffset int
	baseTime  timewindow.LocalTime
}

func NewHandler(cfg *config.Config) (*Handler, error) {
	offset, base, err := cfg.RequireWindow()
	if err != nil {
		return nil, err
	}
	return &Handler{utcOffset: offset, baseTime: base}, nil
}

// HandleWaitingTime returns the number of seconds a wait state should sleep
// so that it wakes at the target local time within the current day window.
func (h *Handler) HandleWaitingTime(ctx context.Context, evt *Event) (int64, error) {
	logger := zerolog.Ctx(ctx)

	target, err := timewindow.ParseLocalTime(evt.TargetLocalTime)
	if err != nil {
		logger.Error().
			Err(err).
			Str("target_local_time", evt.TargetLocalTime).
			Msg("Invalid target local time")
		return 0, err
	}

	seconds, err := timewindow.SecondsUntil(time.Now(), h.utcOffset, target, h.baseTime)
	if err != nil {
		logger.Error().
			Err(err).
			Str("target_local_time", evt.TargetLocalTime).
			Msg("Failed to calculate waiting time")
		return 0, err
	}

	logger.Info().
		Str("target_local_time", evt.TargetLocalTime).
		Int64("waiting_seconds", seconds).
		Msg("Calculated waiting time")
	return seconds, nil
}

func main() {
	logger := di.ProvideLogger().With().Str("lambda", "calculate-waiting-time").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		// Lambda mode
		handler, err := NewHandler(cfg)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to create handler")
			os.Exit(1)
		}

		wrappedHandler := func(ctx context.Context, evt *Event) (int64, error) {
			ctx = logger.WithContext(ctx)
			return handler.HandleWaitingTime(ctx, evt)
		}
		lambda.Start(wrappedHandler)
		return
	}

	// CLI mode
	app := &cli.App{
		Name:  "calculate-waiting-time",
		Usage: "Calculate the seconds until a local wall-clock time in the current day window",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "target",
				Usage:    "Target local time as 24-hour HH:MM",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			ctx := logger.WithContext(context.Background())

			handler, err := NewHandler(cfg)
			if err != nil {
				return fmt.Errorf("failed to create handler: %w", err)
			}

			seconds, err := handler.HandleWaitingTime(ctx, &Event{
				TargetLocalTime: c.String("target"),
			})
			if err != nil {
				return err
			}

			fmt.Println(seconds)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
