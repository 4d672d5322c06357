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
	"cicd-notifier/internal/historycheck"
	"cicd-notifier/internal/timewindow"
)

// Event names the state machine whose history is checked.
type Event struct {
	StateMachineARN string `json:"stateMachineArn"`
}

type Handler struct {
	checker   *historycheck.Checker
	utcOffset int
	baseTime  timewindow.LocalTime
}

func NewHandler(ctx context.Context, cfg *config.Config) (*Handler, error) {
	region, err := cfg.RequireRegion()
	if err != nil {
		return nil, err
	}
	offset, base, err := cfg.RequireWindow()
	if err != nil {
		return nil, err
	}

	awsConfig, err := di.ProvideAWSConfig(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &Handler{
		checker:   historycheck.NewChecker(di.ProvideStepFunctions(awsConfig)),
		utcOffset: offset,
		baseTime:  base,
	}, nil
}

// HandleHistoryCheck returns 1 when the state machine has already executed
// inside the current day window and 0 otherwise, matching the numeric
// contract of the Step Functions choice state that consumes the result.
func (h *Handler) HandleHistoryCheck(ctx context.Context, evt *Event) (int, error) {
	logger := zerolog.Ctx(ctx)

	windowStart, err := timewindow.WindowStart(time.Now(), h.utcOffset, h.baseTime)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to compute window start")
		return 0, err
	}

	executed, err := h.checker.HasExecutedInWindow(ctx, evt.StateMachineARN, windowStart)
	if err != nil {
		logger.Error().
			Err(err).
			Str("state_machine_arn", evt.StateMachineARN).
			Msg("Failed to check execution history")
		return 0, err
	}

	if executed {
		return 1, nil
	}
	return 0, nil
}

func main() {
	logger := di.ProvideLogger().With().Str("lambda", "same-day-execution-history-check").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		// Lambda mode
		handler, err := NewHandler(context.Background(), cfg)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to create handler")
			os.Exit(1)
		}

		wrappedHandler := func(ctx context.Context, evt *Event) (int, error) {
			ctx = logger.WithContext(ctx)
			return handler.HandleHistoryCheck(ctx, evt)
		}
		lambda.Start(wrappedHandler)
		return
	}

	// CLI mode
	app := &cli.App{
		Name:  "same-day-execution-history-check",
		Usage: "Check whether a state machine has executed in the current day window",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "state-machine-arn",
				Usage:    "ARN of the state machine to check",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			ctx := logger.WithContext(context.Background())

			handler, err := NewHandler(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to create handler: %w", err)
			}

			result, err := handler.HandleHistoryCheck(ctx, &Event{
				StateMachineARN: c.String("state-machine-arn"),
			})
			if err != nil {
				return err
			}

			fmt.Println(result)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
