package errors

import "errors"

var (
	ErrRegionRequired        = errors.New("REGION environment variable is required")
	ErrAccountRequired       = errors.New("ACCOUNT environment variable is required")
	ErrInvalidUTCOffset      = errors.New("UTC_OFFSET must be an integer between -12 and 14")
	ErrInvalidLocalTime      = errors.New("local time must match 24-hour HH:MM format")
	ErrStateMachineRequired  = errors.New("state machine ARN is required")
	ErrNoRouteForReference   = errors.New("no notification route configured for destination reference")
	ErrNoDestinationRef      = errors.New("pull request has no destination reference")
	ErrCommentNotFound       = errors.New("comment not found in pull request comment threads")
	ErrPartialDeliveryFailed = errors.New("one or more webhook deliveries failed")
)
