package notice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cicd-notifier/internal/event"
)

func TestNormalizeCodeBuild(t *testing.T) {
	detail := &event.CodeBuildDetail{
		BuildStatus: "SUCCEEDED",
		ProjectName: "svc-api-build",
		BuildID:     "arn:aws:codebuild:ap-northeast-1:123456789012:build/svc-api-build:7e9c4f0a",
	}

	msg := NormalizeCodeBuild("ap-northeast-1", "123456789012", detail)

	assert.Equal(t, "CodeBuild Build State has changed to SUCCEEDED", msg.Title())
	assert.Equal(t,
		"https://console.aws.amazon.com/codesuite/codebuild/123456789012/projects/svc-api-build/build/svc-api-build:7e9c4f0a?region=ap-northeast-1",
		fieldValue(t, msg, "AWS Management Console URL"))
	assert.Equal(t, "svc-api-build", fieldValue(t, msg, "Project Name"))
	assert.Equal(t, "arn:aws:codebuild:ap-northeast-1:123456789012:build/svc-api-build:7e9c4f0a", fieldValue(t, msg, "Build ARN"))
	assert.Equal(t, "SUCCEEDED", fieldValue(t, msg, "Build Status"))
}

func TestBuildPath(t *testing.T) {
	tests := []struct {
		name    string
		buildID string
		project string
		want    string
	}{
		{
			name:    "strips arn prefix",
			buildID: "arn:aws:codebuild:us-east-1:1:build/proj:uuid",
			project: "proj",
			want:    "proj:uuid",
		},
		{
			name:    "project not in id",
			buildID: "arn:aws:codebuild:us-east-1:1:build/other:uuid",
			project: "proj",
			want:    "arn:aws:codebuild:us-east-1:1:build/other:uuid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildPath(tt.buildID, tt.project))
		})
	}
}
