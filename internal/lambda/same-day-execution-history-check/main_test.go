package main

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cicd-notifier/internal/errors"
	"cicd-notifier/internal/historycheck"
	"cicd-notifier/internal/timewindow"
)

type fakeSFN struct {
	executions []types.ExecutionListItem
}

func (f *fakeSFN) ListExecutions(ctx context.Context, params *sfn.ListExecutionsInput, optFns ...func(*sfn.Options)) (*sfn.ListExecutionsOutput, error) {
	return &sfn.ListExecutionsOutput{Executions: f.executions}, nil
}

func newTestHandler(client *fakeSFN) *Handler {
	return &Handler{
		checker:   historycheck.NewChecker(client),
		utcOffset: 9,
		baseTime:  timewindow.LocalTime{Hour: 7, Minute: 30},
	}
}

func TestHandleHistoryCheck_ReturnsOneWhenExecutedToday(t *testing.T) {
	started := time.Now().UTC()
	handler := newTestHandler(&fakeSFN{
		executions: []types.ExecutionListItem{
			{
				ExecutionArn: aws.String("arn:aws:states:ap-northeast-1:123456789012:execution:deploy:abc"),
				StartDate:    &started,
			},
		},
	})

	result, err := handler.HandleHistoryCheck(context.Background(), &Event{
		StateMachineARN: "arn:aws:states:ap-northeast-1:123456789012:stateMachine:deploy",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result)
}

func TestHandleHistoryCheck_ReturnsZeroWhenNoExecutionInWindow(t *testing.T) {
	started := time.Now().UTC().Add(-48 * time.Hour)
	handler := newTestHandler(&fakeSFN{
		executions: []types.ExecutionListItem{
			{
				ExecutionArn: aws.String("arn:aws:states:ap-northeast-1:123456789012:execution:deploy:old"),
				StartDate:    &started,
			},
		},
	})

	result, err := handler.HandleHistoryCheck(context.Background(), &Event{
		StateMachineARN: "arn:aws:states:ap-northeast-1:123456789012:stateMachine:deploy",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result)
}

func TestHandleHistoryCheck_FailsWithoutStateMachineARN(t *testing.T) {
	handler := newTestHandler(&fakeSFN{})

	_, err := handler.HandleHistoryCheck(context.Background(), &Event{})
	assert.ErrorIs(t, err, apperrors.ErrStateMachineRequired)
}
