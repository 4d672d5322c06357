// Package event defines the inbound event envelopes delivered by the event
// bus and classifies CodeCommit pull-request detail payloads into a closed
// set of variants.
//
// Ref: https://docs.aws.amazon.com/codecommit/latest/userguide/monitoring-events.html
package event

import "strings"

// Envelope is the standard event-bus envelope common to every upstream event.
type Envelope[D any] struct {
	Version    string   `json:"version"`
	ID         string   `json:"id"`
	DetailType string   `json:"detail-type"`
	Source     string   `json:"source"`
	Account    string   `json:"account"`
	Time       string   `json:"time"`
	Region     string   `json:"region"`
	Resources  []string `json:"resources"`
	Detail     D        `json:"detail"`
}

// Kind identifies which pull-request event variant a detail payload is.
type Kind int

const (
	KindUnknown Kind = iota
	KindCommentCreated
	KindCommentUpdated
	KindPullRequest
	KindMergeStatus
	KindApprovalState
)

func (k Kind) String() string {
	switch k {
	case KindCommentCreated:
		return "commentOnPullRequestCreated"
	case KindCommentUpdated:
		return "commentOnPullRequestUpdated"
	case KindPullRequest:
		return "pullRequest"
	case KindMergeStatus:
		return "pullRequestMergeStatusUpdated"
	case KindApprovalState:
		return "pullRequestApprovalStateChanged"
	default:
		return "unknown"
	}
}

// PullRequestDetail is the union of the five CodeCommit pull-request detail
// shapes. The upstream source has no single reliable type tag, so optional
// members are pointers and Classify tests their presence.
type PullRequestDetail struct {
	Event            string `json:"event"`
	NotificationBody string `json:"notificationBody"`
	CallerUserARN    string `json:"callerUserArn"`
	PullRequestID    string `json:"pullRequestId"`

	RepositoryName  string   `json:"repositoryName,omitempty"`
	RepositoryNames []string `json:"repositoryNames,omitempty"`
	RepositoryID    string   `json:"repositoryId,omitempty"`

	// Comment variants.
	CommentID      *string `json:"commentId,omitempty"`
	DisplayName    *string `json:"displayName,omitempty"`
	EmailAddress   *string `json:"emailAddress,omitempty"`
	InReplyTo      string  `json:"inReplyTo,omitempty"`
	AfterCommitID  string  `json:"afterCommitId,omitempty"`
	BeforeCommitID string  `json:"beforeCommitId,omitempty"`

	// Pull-request variants.
	Author               string  `json:"author,omitempty"`
	Title                string  `json:"title,omitempty"`
	Description          string  `json:"description,omitempty"`
	CreationDate         string  `json:"creationDate,omitempty"`
	LastModifiedDate     string  `json:"lastModifiedDate,omitempty"`
	PullRequestStatus    string  `json:"pullRequestStatus,omitempty"`
	IsMerged             string  `json:"isMerged,omitempty"`
	MergeOption          *string `json:"mergeOption,omitempty"`
	ApprovalStatus       *string `json:"approvalStatus,omitempty"`
	SourceCommit         string  `json:"sourceCommit,omitempty"`
	DestinationCommit    string  `json:"destinationCommit,omitempty"`
	SourceReference      string  `json:"sourceReference,omitempty"`
	DestinationReference string  `json:"destinationReference,omitempty"`
	RevisionID           string  `json:"revisionId,omitempty"`
}

// Classify determines the variant by key presence, in fixed precedence:
// commentId, then approvalStatus, then mergeOption, else the base
// pull-request shape. Exactly one variant applies per event.
func (d *PullRequestDetail) Classify() Kind {
	switch {
	case d.CommentID != nil:
		if d.DisplayName != nil || d.EmailAddress != nil {
			return KindCommentCreated
		}
		return KindCommentUpdated
	case d.ApprovalStatus != nil:
		return KindApprovalState
	case d.MergeOption != nil:
		return KindMergeStatus
	default:
		return KindPullRequest
	}
}

// RepositoryDisplayName resolves the repository name for display:
// repositoryNames joined, then the singular repositoryName, then the literal
// "undefined".
func (d *PullRequestDetail) RepositoryDisplayName() string {
	if len(d.RepositoryNames) > 0 {
		return strings.Join(d.RepositoryNames, ",")
	}
	if d.RepositoryName != "" {
		return d.RepositoryName
	}
	return "undefined"
}

// ConsoleURL extracts the management console link embedded at the tail of the
// notification body.
func (d *PullRequestDetail) ConsoleURL() string {
	if idx := strings.Index(d.NotificationBody, "https://"); idx >= 0 {
		return d.NotificationBody[idx:]
	}
	return d.NotificationBody
}

// CodeBuildDetail is the build-state-change payload emitted by CodeBuild.
// Ref: https://docs.aws.amazon.com/codebuild/latest/userguide/sample-build-notifications.html
type CodeBuildDetail struct {
	BuildStatus           string               `json:"build-status"`
	ProjectName           string               `json:"project-name"`
	BuildID               string               `json:"build-id"`
	AdditionalInformation *CodeBuildAdditional `json:"additional-information,omitempty"`
}

type CodeBuildAdditional struct {
	BuildComplete  bool   `json:"build-complete"`
	Initiator      string `json:"initiator"`
	BuildStartTime string `json:"build-start-time"`
	Logs           struct {
		GroupName  string `json:"group-name"`
		StreamName string `json:"stream-name"`
		DeepLink   string `json:"deep-link"`
	} `json:"logs"`
}

// StateMachineDetail is the execution-status-change payload emitted by Step
// Functions. Start and stop dates are epoch milliseconds; either may be
// absent while the execution runs.
type StateMachineDetail struct {
	ExecutionARN    string `json:"executionArn"`
	StateMachineARN string `json:"stateMachineArn"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	StartDate       *int64 `json:"startDate"`
	StopDate        *int64 `json:"stopDate"`
}

// PullRequestEvent is the invocation payload for the pull-request notifier:
// the original bus event plus the branch routing table injected at deploy
// time.
type PullRequestEvent struct {
	OriginalEvent Envelope[PullRequestDetail] `json:"originalEvent"`
	NoticeTargets []map[string][]string       `json:"noticeTargets"`
}

// CodeBuildEvent is the invocation payload for the CodeBuild notifier.
type CodeBuildEvent struct {
	OriginalEvent    Envelope[CodeBuildDetail] `json:"originalEvent"`
	SlackWebhookURLs []string                  `json:"slackWebhookUrls"`
}

// StateMachineEvent is the invocation payload for the Step Functions
// execution notifier.
type StateMachineEvent struct {
	OriginalEvent    Envelope[StateMachineDetail] `json:"originalEvent"`
	SlackWebhookURLs []string                     `json:"slackWebhookUrls"`
}
