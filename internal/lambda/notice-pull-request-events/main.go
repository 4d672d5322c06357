package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awscc "github.com/aws/aws-sdk-go-v2/service/codecommit"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"cicd-notifier/internal/codecommit"
	"cicd-notifier/internal/config"
	"cicd-notifier/internal/di"
	"cicd-notifier/internal/event"
	"cicd-notifier/internal/notice"
	"cicd-notifier/internal/routing"
	"cicd-notifier/internal/services"
	"cicd-notifier/internal/slack"
)

type Handler struct {
	enricher notice.Enricher
	sender   *slack.Sender
	fallback routing.Table
}

func NewHandler(ctx context.Context, cfg *config.Config) (*Handler, error) {
	region, err := cfg.RequireRegion()
	if err != nil {
		return nil, err
	}

	container, err := di.New(cfg.Env,
		di.WithDisableSSM(cfg.DisableSSM),
		di.WithProviders(
			func() (aws.Config, error) { return di.ProvideAWSConfig(ctx, region) },
			di.ProvideCodeCommit,
			di.ProvideParameterStore,
			func(client *awscc.Client) *codecommit.Service { return codecommit.New(client) },
			func(store services.ParameterStore) (*services.NotifyConfig, error) {
				return store.GetNotifyConfig(ctx)
			},
			func(svc *codecommit.Service, notify *services.NotifyConfig) *Handler {
				return &Handler{
					enricher: svc,
					sender:   slack.NewSender(),
					fallback: notify.RoutingTable,
				}
			},
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build container: %w", err)
	}

	var handler *Handler
	if err := container.Invoke(func(h *Handler) { handler = h }); err != nil {
		return nil, fmt.Errorf("failed to wire handler: %w", err)
	}
	return handler, nil
}

func (h *Handler) HandlePullRequestEvent(ctx context.Context, evt *event.PullRequestEvent) error {
	logger := zerolog.Ctx(ctx)

	normalized, err := notice.NormalizePullRequest(ctx, h.enricher, &evt.OriginalEvent)
	if err != nil {
		logger.Error().
			Err(err).
			Interface("event", evt.OriginalEvent).
			Msg("Failed to normalize pull request event")
		return err
	}

	table := routing.FromNoticeTargets(evt.NoticeTargets)
	if len(table) == 0 {
		table = h.fallback
	}

	endpoints, err := table.Resolve(normalized.DestinationReference)
	if err != nil {
		logger.Error().
			Err(err).
			Str("destination_reference", normalized.DestinationReference).
			Interface("message", normalized.Message).
			Msg("No route for destination reference")
		return err
	}

	results, err := slack.Broadcast(ctx, h.sender, endpoints, normalized.Message)
	if err != nil {
		return err
	}

	logger.Info().
		Int("deliveries", len(results)).
		Str("destination_reference", normalized.DestinationReference).
		Msg("Pull request notification delivered")
	return nil
}

func main() {
	logger := di.ProvideLogger().With().Str("lambda", "notice-pull-request-events").Logger()

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

		wrappedHandler := func(ctx context.Context, evt *event.PullRequestEvent) error {
			ctx = logger.WithContext(ctx)
			return handler.HandlePullRequestEvent(ctx, evt)
		}
		lambda.Start(wrappedHandler)
		return
	}

	// CLI mode
	app := &cli.App{
		Name:  "notice-pull-request-events",
		Usage: "Send a Slack notification for a CodeCommit pull request event",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "event",
				Usage:    "Path to a JSON file containing the invocation payload",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "targets",
				Usage: "Path to a YAML routing table overriding the event's noticeTargets",
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

			var evt event.PullRequestEvent
			if err := json.Unmarshal(raw, &evt); err != nil {
				return fmt.Errorf("failed to parse event file: %w", err)
			}

			if path := c.String("targets"); path != "" {
				table, err := routing.Load(path)
				if err != nil {
					return err
				}
				evt.NoticeTargets = nil
				for ref, urls := range table {
					evt.NoticeTargets = append(evt.NoticeTargets, map[string][]string{ref: urls})
				}
			}

			return handler.HandlePullRequestEvent(ctx, &evt)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
