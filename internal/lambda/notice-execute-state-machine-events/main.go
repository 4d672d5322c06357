package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"cicd-notifier/internal/config"
	"cicd-notifier/internal/di"
	"cicd-notifier/internal/event"
	apperrors "cicd-notifier/internal/errors"
	"cicd-notifier/internal/notice"
	"cicd-notifier/internal/slack"
)

type Handler struct {
	region       string
	utcOffset    int
	sender       *slack.Sender
	fallbackURLs []string
}

func NewHandler(ctx context.Context, cfg *config.Config) (*Handler, error) {
	region, err := cfg.RequireRegion()
	if err != nil {
		return nil, err
	}
	offset, err := cfg.RequireUTCOffset()
	if err != nil {
		return nil, err
	}

	awsConfig, err := di.ProvideAWSConfig(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	store := di.ProvideParameterStore(awsConfig, cfg.Env, di.DisableSSM(cfg.DisableSSM))
	notify, err := store.GetNotifyConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notify config: %w", err)
	}

	return &Handler{
		region:       region,
		utcOffset:    offset,
		sender:       slack.NewSender(),
		fallbackURLs: notify.WebhookURLs,
	}, nil
}

func (h *Handler) HandleStateMachineEvent(ctx context.Context, evt *event.StateMachineEvent) error {
	logger := zerolog.Ctx(ctx)

	message := notice.NormalizeStateMachine(h.region, h.utcOffset, &evt.OriginalEvent.Detail)

	urls := evt.SlackWebhookURLs
	if len(urls) == 0 {
		urls = h.fallbackURLs
	}
	if len(urls) == 0 {
		logger.Error().
			Interface("event", evt.OriginalEvent).
			Msg("No webhook URLs configured for Step Functions notification")
		return apperrors.ErrNoDestinationRef
	}

	results, err := slack.Broadcast(ctx, h.sender, urls, message)
	if err != nil {
		return err
	}

	logger.Info().
		Int("deliveries", len(results)).
		Str("execution_arn", evt.OriginalEvent.Detail.ExecutionARN).
		Str("status", evt.OriginalEvent.Detail.Status).
		Msg("Step Functions notification delivered")
	return nil
}

func main() {
	logger := di.ProvideLogger().With().Str("lambda", "notice-execute-state-machine-events").Logger()

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

		wrappedHandler := func(ctx context.Context, evt *event.StateMachineEvent) error {
			ctx = logger.WithContext(ctx)
			return handler.HandleStateMachineEvent(ctx, evt)
		}
		lambda.Start(wrappedHandler)
		return
	}

	// CLI mode
	app := &cli.App{
		Name:  "notice-execute-state-machine-events",
		Usage: "Send a Slack notification for a Step Functions execution status change",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "event",
				Usage:    "Path to a JSON file containing the invocation payload",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "webhook",
				Usage: "Webhook URL overriding the event's slackWebhookUrls",
			},
		},
		Action: func(c *cli.Context) error {
			ctx := logger.WithContext(context.Background())

			handler, err := NewHandler(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to create handler: %w", err)
			}

			raw, err := os.ReadFile(c.String("event"))
			if err != nil {
				return fmt.Errorf("failed to read event file: %w", err)
			}

			var evt event.StateMachineEvent
			if err := json.Unmarshal(raw, &evt); err != nil {
				return fmt.Errorf("failed to parse event file: %w", err)
			}

			if urls := c.StringSlice("webhook"); len(urls) > 0 {
				evt.SlackWebhookURLs = urls
			}

			return handler.HandleStateMachineEvent(ctx, &evt)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
