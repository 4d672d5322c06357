// Package historycheck answers whether a state machine has already executed
// within the current day window. It is invoked on a schedule to keep a
// once-per-day pipeline from running twice.
package historycheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	apperrors "cicd-notifier/internal/errors"
)

// API is the subset of the Step Functions client the checker consumes.
type API interface {
	ListExecutions(ctx context.Context, params *sfn.ListExecutionsInput, optFns ...func(*sfn.Options)) (*sfn.ListExecutionsOutput, error)
}

// Checker queries Step Functions execution history. Read-only; holds no
// state between invocations.
type Checker struct {
	client API
}

// NewChecker creates a Checker around an existing client.
func NewChecker(client API) *Checker {
	return &Checker{client: client}
}

// HasExecutedInWindow reports whether any execution of the state machine
// started at or after windowStart. Executions are listed most recent first
// and the scan stops at the first qualifying one. A query failure is returned
// as an error, never silently reported as "not yet executed".
func (c *Checker) HasExecutedInWindow(ctx context.Context, stateMachineARN string, windowStart time.Time) (bool, error) {
	logger := zerolog.Ctx(ctx)

	if stateMachineARN == "" {
		return false, apperrors.ErrStateMachineRequired
	}

	out, err := c.client.ListExecutions(ctx, &sfn.ListExecutionsInput{
		StateMachineArn: aws.String(stateMachineARN),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return false, fmt.Errorf("ListExecutions failed with %s: %w", apiErr.ErrorCode(), err)
		}
		return false, fmt.Errorf("ListExecutions failed: %w", err)
	}

	for _, execution := range out.Executions {
		if execution.StartDate == nil {
			continue
		}
		started := *execution.StartDate
		if started.Equal(windowStart) || started.After(windowStart) {
			logger.Info().
				Str("state_machine_arn", stateMachineARN).
				Str("execution_arn", aws.ToString(execution.ExecutionArn)).
				Time("started", started).
				Time("window_start", windowStart).
				Msg("Found execution inside the current window")
			return true, nil
		}
		// Executions are newest first: everything after this one is older.
		break
	}

	logger.Info().
		Str("state_machine_arn", stateMachineARN).
		Time("window_start", windowStart).
		Int("executions_seen", len(out.Executions)).
		Msg("No execution inside the current window")
	return false, nil
}
