package slack

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"golang.org/x/sync/errgroup"

	apperrors "cicd-notifier/internal/errors"
)

// DeliveryResult records the outcome of one webhook POST within a broadcast.
type DeliveryResult struct {
	Endpoint   string
	DeliveryID string
	Err        error
}

// Broadcast posts the message to every endpoint concurrently. Delivery is
// best effort: a failing endpoint never cancels the others. The returned
// results carry one entry per endpoint in input order; if any delivery
// failed the error wraps ErrPartialDeliveryFailed.
func Broadcast(ctx context.Context, sender *Sender, endpoints []string, message Message) ([]DeliveryResult, error) {
	logger := zerolog.Ctx(ctx)

	results := make([]DeliveryResult, len(endpoints))

	var group errgroup.Group
	for i, endpoint := range endpoints {
		i, endpoint := i, endpoint
		deliveryID := ksuid.New().String()
		results[i] = DeliveryResult{Endpoint: endpoint, DeliveryID: deliveryID}

		group.Go(func() error {
			sendCtx := logger.With().Str("delivery_id", deliveryID).Logger().WithContext(ctx)
			results[i].Err = sender.Post(sendCtx, endpoint, message)
			return nil
		})
	}
	// Goroutines record their own outcome and never return an error, so Wait
	// is a pure join.
	_ = group.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Error().
				Err(r.Err).
				Str("delivery_id", r.DeliveryID).
				Str("endpoint", r.Endpoint).
				Msg("Webhook delivery failed")
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%w: %d of %d", apperrors.ErrPartialDeliveryFailed, failed, len(endpoints))
	}
	return results, nil
}
