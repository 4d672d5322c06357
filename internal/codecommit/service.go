// Package codecommit wraps the CodeCommit query API used to enrich
// pull-request events with state not carried in the event payload.
package codecommit

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/codecommit"
	"github.com/aws/smithy-go"

	apperrors "cicd-notifier/internal/errors"
	"cicd-notifier/internal/slack"
)

// API is the subset of the CodeCommit client consumed by the service.
type API interface {
	GetPullRequest(ctx context.Context, params *codecommit.GetPullRequestInput, optFns ...func(*codecommit.Options)) (*codecommit.GetPullRequestOutput, error)
	GetCommentsForPullRequest(ctx context.Context, params *codecommit.GetCommentsForPullRequestInput, optFns ...func(*codecommit.Options)) (*codecommit.GetCommentsForPullRequestOutput, error)
}

// PullRequestSummary is the canonical pull-request state fetched for display.
// Free-text members are already truncated to the Slack character limit.
type PullRequestSummary struct {
	PullRequestID        string
	Title                string
	Status               string
	IsMerged             string
	SourceReference      string
	DestinationReference string
}

// Comment is the file location and content of a single pull-request comment.
type Comment struct {
	FilePath string
	Content  string
}

// Service performs read-only enrichment queries against CodeCommit.
type Service struct {
	client API
}

// New creates a Service around an existing client.
func New(client API) *Service {
	return &Service{client: client}
}

// NewFromRegion creates a Service with a client bound to the given region.
func NewFromRegion(ctx context.Context, region string) (*Service, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return New(codecommit.NewFromConfig(cfg)), nil
}

// PullRequestSummary fetches the pull request and flattens the members the
// notification needs. Missing optional members render as "undefined", the
// same placeholder the notification uses for unresolved repositories.
func (s *Service) PullRequestSummary(ctx context.Context, pullRequestID string) (*PullRequestSummary, error) {
	out, err := s.client.GetPullRequest(ctx, &codecommit.GetPullRequestInput{
		PullRequestId: aws.String(pullRequestID),
	})
	if err != nil {
		return nil, wrapAPIError("GetPullRequest", err)
	}

	pr := out.PullRequest
	if pr == nil {
		return nil, fmt.Errorf("GetPullRequest returned no pull request for id %s", pullRequestID)
	}

	summary := &PullRequestSummary{
		PullRequestID:        aws.ToString(pr.PullRequestId),
		Title:                slack.Truncate(aws.ToString(pr.Title)),
		Status:               string(pr.PullRequestStatus),
		IsMerged:             "undefined",
		SourceReference:      "undefined",
		DestinationReference: "undefined",
	}

	for _, target := range pr.PullRequestTargets {
		if target.SourceReference != nil && summary.SourceReference == "undefined" {
			summary.SourceReference = slack.Truncate(aws.ToString(target.SourceReference))
		}
		if target.DestinationReference != nil && summary.DestinationReference == "undefined" {
			summary.DestinationReference = slack.Truncate(aws.ToString(target.DestinationReference))
		}
		if target.MergeMetadata != nil && summary.IsMerged == "undefined" {
			summary.IsMerged = strconv.FormatBool(target.MergeMetadata.IsMerged)
		}
	}

	return summary, nil
}

// FindComment locates the comment with the given id within the pull request's
// comment threads. The first matching comment wins; its thread supplies the
// file path. Pages through results until found.
func (s *Service) FindComment(ctx context.Context, pullRequestID, commentID string) (*Comment, error) {
	input := &codecommit.GetCommentsForPullRequestInput{
		PullRequestId: aws.String(pullRequestID),
	}

	for {
		out, err := s.client.GetCommentsForPullRequest(ctx, input)
		if err != nil {
			return nil, wrapAPIError("GetCommentsForPullRequest", err)
		}

		for _, thread := range out.CommentsForPullRequestData {
			for _, comment := range thread.Comments {
				if aws.ToString(comment.CommentId) != commentID {
					continue
				}

				found := &Comment{
					FilePath: "undefined",
					Content:  slack.Truncate(aws.ToString(comment.Content)),
				}
				if thread.Location != nil && thread.Location.FilePath != nil {
					found.FilePath = slack.Truncate(aws.ToString(thread.Location.FilePath))
				}
				return found, nil
			}
		}

		if out.NextToken == nil {
			return nil, fmt.Errorf("%w: comment id %s in pull request %s", apperrors.ErrCommentNotFound, commentID, pullRequestID)
		}
		input.NextToken = out.NextToken
	}
}

func wrapAPIError(operation string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s failed with %s: %w", operation, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}
