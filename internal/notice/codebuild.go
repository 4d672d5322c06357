package notice

import (
	"fmt"
	"strings"

	"cicd-notifier/internal/event"
	"cicd-notifier/internal/slack"
)

// NormalizeCodeBuild builds the notification for a CodeBuild build-state
// change. The console URL is reconstructed from the account, project, and
// build id since the event does not carry it.
func NormalizeCodeBuild(region, account string, detail *event.CodeBuildDetail) slack.Message {
	consoleURL := fmt.Sprintf(
		"https://console.aws.amazon.com/codesuite/codebuild/%s/projects/%s/build/%s?region=%s",
		account, detail.ProjectName, buildPath(detail.BuildID, detail.ProjectName), region,
	)

	title := fmt.Sprintf("CodeBuild Build State has changed to %s", detail.BuildStatus)
	fields := []slack.Field{
		{Label: "AWS Management Console URL", Value: slack.Truncate(consoleURL)},
		{Label: "Project Name", Value: detail.ProjectName},
		{Label: "Build ARN", Value: slack.Truncate(detail.BuildID)},
		{Label: "Build Status", Value: detail.BuildStatus},
	}

	return slack.NewMessage(title, fields)
}

// buildPath strips the ARN prefix from a build id, leaving the
// "project:uuid" path segment the console expects.
func buildPath(buildID, projectName string) string {
	if idx := strings.Index(buildID, projectName); idx >= 0 {
		return buildID[idx:]
	}
	return buildID
}
