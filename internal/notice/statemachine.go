package notice

import (
	"fmt"
	"strconv"
	"time"

	"cicd-notifier/internal/event"
	"cicd-notifier/internal/slack"
	"cicd-notifier/internal/timewindow"
)

const executionDateFormat = "2006/01/02 15:04:05"

// NormalizeStateMachine builds the notification for a Step Functions
// execution status change. Start and stop timestamps render in the configured
// offset; either may be absent while the execution is still running.
func NormalizeStateMachine(region string, utcOffsetHours int, detail *event.StateMachineDetail) slack.Message {
	zone := timewindow.Zone(utcOffsetHours)

	consoleURL := fmt.Sprintf(
		"https://console.aws.amazon.com/states/home?region=%s#/executions/details/%s",
		region, detail.ExecutionARN,
	)

	title := fmt.Sprintf("The status of Step Functions Execution has changed to %s", detail.Status)
	fields := []slack.Field{
		{Label: "AWS Management Console URL", Value: slack.Truncate(consoleURL)},
		{Label: "StateMachine ARN", Value: slack.Truncate(detail.StateMachineARN)},
		{Label: "Execution ARN", Value: slack.Truncate(detail.ExecutionARN)},
		{Label: "Execution Name", Value: slack.Truncate(detail.Name)},
		{Label: "Execution Status", Value: detail.Status},
		{Label: "Start Date", Value: formatEpochMillis(detail.StartDate, zone)},
		{Label: "Stop Date", Value: formatEpochMillis(detail.StopDate, zone)},
		{Label: "Duration Seconds", Value: durationSeconds(detail.StartDate, detail.StopDate)},
	}

	return slack.NewMessage(title, fields)
}

func formatEpochMillis(millis *int64, zone *time.Location) string {
	if millis == nil {
		return "undefined"
	}
	return time.UnixMilli(*millis).In(zone).Format(executionDateFormat)
}

func durationSeconds(start, stop *int64) string {
	if start == nil || stop == nil {
		return "undefined"
	}
	return strconv.FormatInt((*stop-*start+500)/1000, 10)
}
