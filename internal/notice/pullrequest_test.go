package notice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cicd-notifier/internal/codecommit"
	"cicd-notifier/internal/event"
	"cicd-notifier/internal/slack"
)

type fakeEnricher struct {
	summary    *codecommit.PullRequestSummary
	summaryErr error
	comment    *codecommit.Comment
	commentErr error

	commentCalls int
}

func (f *fakeEnricher) PullRequestSummary(_ context.Context, _ string) (*codecommit.PullRequestSummary, error) {
	return f.summary, f.summaryErr
}

func (f *fakeEnricher) FindComment(_ context.Context, _, _ string) (*codecommit.Comment, error) {
	f.commentCalls++
	return f.comment, f.commentErr
}

func strPtr(s string) *string { return &s }

func baseEnricher() *fakeEnricher {
	return &fakeEnricher{
		summary: &codecommit.PullRequestSummary{
			PullRequestID:        "42",
			Title:                "fix: flaky retry",
			Status:               "OPEN",
			IsMerged:             "false",
			SourceReference:      "refs/heads/feature/x",
			DestinationReference: "refs/heads/main",
		},
		comment: &codecommit.Comment{
			FilePath: "internal/retry/retry.go",
			Content:  "should this be jittered?",
		},
	}
}

func prEnvelope(detail event.PullRequestDetail) *event.Envelope[event.PullRequestDetail] {
	detail.PullRequestID = "42"
	detail.CallerUserARN = "arn:aws:iam::123456789012:user/alice"
	if detail.NotificationBody == "" {
		detail.NotificationBody = "A pull request event occurred. https://console.aws.amazon.com/codesuite/codecommit"
	}
	return &event.Envelope[event.PullRequestDetail]{
		Source: "aws.codecommit",
		Detail: detail,
	}
}

func fieldValue(t *testing.T, msg slack.Message, label string) string {
	t.Helper()
	for _, f := range msg.Fields() {
		if f.Label == label {
			return f.Value
		}
	}
	t.Fatalf("field %q not found", label)
	return ""
}

func TestNormalizePullRequest_BaseVariant(t *testing.T) {
	enricher := baseEnricher()
	evt := prEnvelope(event.PullRequestDetail{
		Event:           "pullRequestCreated",
		RepositoryNames: []string{"svc-api"},
	})

	got, err := NormalizePullRequest(context.Background(), enricher, evt)
	require.NoError(t, err)

	assert.Equal(t, "The pull request has been created in the svc-api repository", got.Message.Title())
	assert.Equal(t, "refs/heads/main", got.DestinationReference)
	assert.Equal(t, 0, enricher.commentCalls, "base variant must not query comments")

	assert.Equal(t, "https://console.aws.amazon.com/codesuite/codecommit", fieldValue(t, got.Message, "AWS Management Console URL"))
	assert.Equal(t, "arn:aws:iam::123456789012:user/alice", fieldValue(t, got.Message, "Caller User ARN"))
	assert.Equal(t, "42", fieldValue(t, got.Message, "Pull Request ID"))
	assert.Equal(t, "OPEN", fieldValue(t, got.Message, "Pull Request Status"))
	assert.Equal(t, "false", fieldValue(t, got.Message, "isMerged Status"))
	assert.Equal(t, "refs/heads/main", fieldValue(t, got.Message, "Destination Reference"))
	assert.Equal(t, "refs/heads/feature/x", fieldValue(t, got.Message, "Source Reference"))
}

func TestNormalizePullRequest_CommentVariant(t *testing.T) {
	enricher := baseEnricher()
	evt := prEnvelope(event.PullRequestDetail{
		Event:          "commentOnPullRequestCreated",
		RepositoryName: "svc-api",
		CommentID:      strPtr("c-2"),
		DisplayName:    strPtr("alice"),
		EmailAddress:   strPtr("alice@example.com"),
	})

	got, err := NormalizePullRequest(context.Background(), enricher, evt)
	require.NoError(t, err)

	assert.Equal(t, "The pull request in the svc-api repository has been commented", got.Message.Title())
	assert.Equal(t, 1, enricher.commentCalls)
	assert.Equal(t, "internal/retry/retry.go", fieldValue(t, got.Message, "File"))
	assert.Equal(t, "should this be jittered?", fieldValue(t, got.Message, "Comment"))
}

func TestNormalizePullRequest_ApprovalVariant(t *testing.T) {
	enricher := baseEnricher()
	evt := prEnvelope(event.PullRequestDetail{
		Event:           "pullRequestApprovalStateChanged",
		RepositoryNames: []string{"svc-api"},
		ApprovalStatus:  strPtr("APPROVE"),
	})

	got, err := NormalizePullRequest(context.Background(), enricher, evt)
	require.NoError(t, err)

	assert.Equal(t, "The approval status of the svc-api repository pull request has changed", got.Message.Title())
	assert.Equal(t, "APPROVE", fieldValue(t, got.Message, "Approval Status"))
	assert.Equal(t, 0, enricher.commentCalls)
}

func TestNormalizePullRequest_MergeVariant(t *testing.T) {
	enricher := baseEnricher()
	evt := prEnvelope(event.PullRequestDetail{
		Event:           "pullRequestMergeStatusUpdated",
		RepositoryNames: []string{"svc-api"},
		MergeOption:     strPtr("SQUASH_MERGE"),
	})

	got, err := NormalizePullRequest(context.Background(), enricher, evt)
	require.NoError(t, err)
	assert.Equal(t, "The merge status of the svc-api repository pull request has changed", got.Message.Title())
}

func TestNormalizePullRequest_RepositoryNamePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		detail event.PullRequestDetail
		want   string
	}{
		{
			name:   "plural wins",
			detail: event.PullRequestDetail{Event: "pullRequestCreated", RepositoryNames: []string{"a", "b"}, RepositoryName: "c"},
			want:   "The pull request has been created in the a,b repository",
		},
		{
			name:   "singular fallback",
			detail: event.PullRequestDetail{Event: "pullRequestCreated", RepositoryName: "c"},
			want:   "The pull request has been created in the c repository",
		},
		{
			name:   "undefined placeholder",
			detail: event.PullRequestDetail{Event: "pullRequestCreated"},
			want:   "The pull request has been created in the undefined repository",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePullRequest(context.Background(), baseEnricher(), prEnvelope(tt.detail))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Message.Title())
		})
	}
}

func TestNormalizePullRequest_UnknownEventTagFallsBackToKind(t *testing.T) {
	enricher := baseEnricher()
	evt := prEnvelope(event.PullRequestDetail{
		Event:           "somethingNew",
		RepositoryNames: []string{"svc-api"},
		ApprovalStatus:  strPtr("REVOKE"),
	})

	got, err := NormalizePullRequest(context.Background(), enricher, evt)
	require.NoError(t, err)
	assert.Equal(t, "The approval status of the svc-api repository pull request has changed", got.Message.Title())
}

func TestNormalizePullRequest_EnrichmentFailure(t *testing.T) {
	enricher := &fakeEnricher{summaryErr: errors.New("throttled")}
	evt := prEnvelope(event.PullRequestDetail{Event: "pullRequestCreated"})

	_, err := NormalizePullRequest(context.Background(), enricher, evt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to enrich pull request")
}

func TestNormalizePullRequest_CommentLookupFailure(t *testing.T) {
	enricher := baseEnricher()
	enricher.commentErr = errors.New("access denied")
	evt := prEnvelope(event.PullRequestDetail{
		Event:     "commentOnPullRequestUpdated",
		CommentID: strPtr("c-2"),
	})

	_, err := NormalizePullRequest(context.Background(), enricher, evt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to enrich comment")
}

func TestNormalizePullRequest_BodyAttached(t *testing.T) {
	evt := prEnvelope(event.PullRequestDetail{
		Event:            "pullRequestCreated",
		NotificationBody: "alice created a pull request. https://console.aws.amazon.com/x",
	})

	got, err := NormalizePullRequest(context.Background(), baseEnricher(), evt)
	require.NoError(t, err)

	last := got.Message.Blocks[len(got.Message.Blocks)-1]
	require.NotNil(t, last.Text)
	assert.Equal(t, "```alice created a pull request. https://console.aws.amazon.com/x```", last.Text.Text)
}
