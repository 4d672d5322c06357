// Package timewindow implements the rolling "business day" arithmetic shared by
// the execution-history checker and the waiting-time calculator. The day does
// not roll over at midnight UTC but at a configurable local time-of-day under a
// fixed UTC offset.
package timewindow

import (
	"fmt"
	"regexp"
	"time"

	apperrors "cicd-notifier/internal/errors"
)

// localTimePattern accepts 24-hour wall clock times, e.g. "07:30" or "23:59".
var localTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// LocalTime is a wall clock time-of-day without a date or zone.
type LocalTime struct {
	Hour   int
	Minute int
}

// ParseLocalTime parses a strict 24-hour "HH:MM" string.
func ParseLocalTime(s string) (LocalTime, error) {
	if !localTimePattern.MatchString(s) {
		return LocalTime{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidLocalTime, s)
	}

	var t LocalTime
	if _, err := fmt.Sscanf(s, "%02d:%02d", &t.Hour, &t.Minute); err != nil {
		return LocalTime{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidLocalTime, s)
	}
	return t, nil
}

func (t LocalTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ValidateUTCOffset checks that the offset falls in the range of real-world
// time zones, UTC-12 through UTC+14.
func ValidateUTCOffset(hours int) error {
	if hours < -12 || hours > 14 {
		return fmt.Errorf("%w: got %d", apperrors.ErrInvalidUTCOffset, hours)
	}
	return nil
}

// Zone returns the fixed-offset location for the given UTC offset in hours.
func Zone(utcOffsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", utcOffsetHours), utcOffsetHours*60*60)
}

// WindowStart returns the UTC instant at which the current day window began.
// The window is anchored at base local time: when the current local time is
// before base, the window started at base on the previous calendar day.
func WindowStart(now time.Time, utcOffsetHours int, base LocalTime) (time.Time, error) {
	if err := ValidateUTCOffset(utcOffsetHours); err != nil {
		return time.Time{}, err
	}

	localNow := now.In(Zone(utcOffsetHours))
	anchor := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), base.Hour, base.Minute, 0, 0, localNow.Location())
	if localNow.Before(anchor) {
		anchor = anchor.Add(-24 * time.Hour)
	}
	return anchor.UTC(), nil
}

// SecondsUntil returns the number of seconds from now until the next
// occurrence of target on the rolling schedule anchored at base. A target at
// or before the window anchor belongs to the next day and is rolled forward
// 24 hours; the result is never negative. When now is exactly the target
// instant, SecondsUntil returns 0.
func SecondsUntil(now time.Time, utcOffsetHours int, target, base LocalTime) (int64, error) {
	if err := ValidateUTCOffset(utcOffsetHours); err != nil {
		return 0, err
	}

	localNow := now.In(Zone(utcOffsetHours))
	anchor := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), base.Hour, base.Minute, 0, 0, localNow.Location())
	if localNow.Before(anchor) {
		anchor = anchor.Add(-24 * time.Hour)
	}

	at := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), target.Hour, target.Minute, 0, 0, localNow.Location())
	if !at.After(anchor) {
		at = at.Add(24 * time.Hour)
	}
	// The target may still sit between the anchor and now; keep the result
	// forward-looking rather than returning a negative duration.
	if at.Before(localNow) {
		at = at.Add(24 * time.Hour)
	}

	return int64(at.Sub(localNow) / time.Second), nil
}
