// Package notice turns upstream CI/CD events into Slack messages. Each
// normalizer produces the header and ordered field list for one event family;
// building and sending the message are left to slack.
package notice

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"cicd-notifier/internal/codecommit"
	"cicd-notifier/internal/event"
	"cicd-notifier/internal/slack"
)

// Enricher is the read-only CodeCommit query surface the pull-request
// normalizer depends on.
type Enricher interface {
	PullRequestSummary(ctx context.Context, pullRequestID string) (*codecommit.PullRequestSummary, error)
	FindComment(ctx context.Context, pullRequestID, commentID string) (*codecommit.Comment, error)
}

// PullRequest is a normalized pull-request notification: the message to send
// and the destination reference that routes it.
type PullRequest struct {
	Message              slack.Message
	DestinationReference string
}

// NormalizePullRequest classifies the event, enriches it from CodeCommit, and
// builds the notification message. The enrichment queries are blocking: the
// canonical pull-request state and the comment lookup both gate the result.
func NormalizePullRequest(ctx context.Context, enricher Enricher, evt *event.Envelope[event.PullRequestDetail]) (*PullRequest, error) {
	logger := zerolog.Ctx(ctx)

	detail := &evt.Detail
	kind := detail.Classify()

	summary, err := enricher.PullRequestSummary(ctx, detail.PullRequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to enrich pull request %s: %w", detail.PullRequestID, err)
	}

	fields := []slack.Field{
		{Label: "AWS Management Console URL", Value: slack.Truncate(detail.ConsoleURL())},
		{Label: "Caller User ARN", Value: slack.Truncate(detail.CallerUserARN)},
		{Label: "Pull Request ID", Value: summary.PullRequestID},
		{Label: "Pull Request Title", Value: summary.Title},
		{Label: "Pull Request Status", Value: summary.Status},
		{Label: "isMerged Status", Value: summary.IsMerged},
		{Label: "Destination Reference", Value: summary.DestinationReference},
		{Label: "Source Reference", Value: summary.SourceReference},
	}

	if kind == event.KindCommentCreated || kind == event.KindCommentUpdated {
		comment, err := enricher.FindComment(ctx, detail.PullRequestID, *detail.CommentID)
		if err != nil {
			return nil, fmt.Errorf("failed to enrich comment %s: %w", *detail.CommentID, err)
		}
		fields = append(fields,
			slack.Field{Label: "File", Value: comment.FilePath},
			slack.Field{Label: "Comment", Value: comment.Content},
		)
	}

	if kind == event.KindApprovalState {
		fields = append(fields, slack.Field{Label: "Approval Status", Value: *detail.ApprovalStatus})
	}

	title := pullRequestTitle(detail, kind)
	logger.Info().
		Str("kind", kind.String()).
		Str("pull_request_id", detail.PullRequestID).
		Str("destination_reference", summary.DestinationReference).
		Msg("Normalized pull request event")

	return &PullRequest{
		Message:              slack.NewMessage(title, fields).WithBody(detail.NotificationBody),
		DestinationReference: summary.DestinationReference,
	}, nil
}

// pullRequestTitle picks the header wording. The upstream event tag is more
// specific than the classified kind (the base pull-request shape covers
// creation, source-branch updates, and status changes), so the tag wins when
// it is recognized.
func pullRequestTitle(detail *event.PullRequestDetail, kind event.Kind) string {
	repository := detail.RepositoryDisplayName()

	switch detail.Event {
	case "commentOnPullRequestCreated":
		return fmt.Sprintf("The pull request in the %s repository has been commented", repository)
	case "commentOnPullRequestUpdated":
		return fmt.Sprintf("The %s repository pull request comments has been updated", repository)
	case "pullRequestCreated":
		return fmt.Sprintf("The pull request has been created in the %s repository", repository)
	case "pullRequestSourceBranchUpdated":
		return fmt.Sprintf("The source branch of the pull request in the %s repository has been updated", repository)
	case "pullRequestStatusChanged":
		return fmt.Sprintf("The status of the %s repository pull request has changed", repository)
	case "pullRequestMergeStatusUpdated":
		return fmt.Sprintf("The merge status of the %s repository pull request has changed", repository)
	case "pullRequestApprovalStateChanged":
		return fmt.Sprintf("The approval status of the %s repository pull request has changed", repository)
	}

	switch kind {
	case event.KindCommentCreated:
		return fmt.Sprintf("The pull request in the %s repository has been commented", repository)
	case event.KindCommentUpdated:
		return fmt.Sprintf("The %s repository pull request comments has been updated", repository)
	case event.KindApprovalState:
		return fmt.Sprintf("The approval status of the %s repository pull request has changed", repository)
	case event.KindMergeStatus:
		return fmt.Sprintf("The merge status of the %s repository pull request has changed", repository)
	default:
		return fmt.Sprintf("The status of the %s repository pull request has changed", repository)
	}
}
