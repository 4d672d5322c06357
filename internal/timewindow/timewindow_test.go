package timewindow

import (
	"testing"
	"time"
)

func mustLocalTime(t *testing.T, s string) LocalTime {
	t.Helper()
	lt, err := ParseLocalTime(s)
	if err != nil {
		t.Fatalf("ParseLocalTime(%q) failed: %v", s, err)
	}
	return lt
}

func TestParseLocalTime(t *testing.T) {
	tests := []struct {
		input   string
		want    LocalTime
		wantErr bool
	}{
		{input: "00:00", want: LocalTime{0, 0}},
		{input: "07:30", want: LocalTime{7, 30}},
		{input: "23:59", want: LocalTime{23, 59}},
		{input: "24:00", wantErr: true},
		{input: "7:30", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "", wantErr: true},
		{input: "07:30:00", wantErr: true},
		{input: "ab:cd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLocalTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseLocalTime(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLocalTime(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLocalTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateUTCOffset(t *testing.T) {
	for _, valid := range []int{-12, -8, 0, 9, 14} {
		if err := ValidateUTCOffset(valid); err != nil {
			t.Errorf("ValidateUTCOffset(%d) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []int{-13, 15, 100} {
		if err := ValidateUTCOffset(invalid); err == nil {
			t.Errorf("ValidateUTCOffset(%d) = nil, want error", invalid)
		}
	}
}

func TestWindowStart(t *testing.T) {
	base := LocalTime{Hour: 7, Minute: 30}

	tests := []struct {
		name      string
		now       string // RFC3339
		utcOffset int
		want      string // RFC3339, UTC
	}{
		{
			// Local time before the anchor: window started yesterday.
			name:      "before base rolls back one day",
			now:       "2024-01-15T06:00:00+09:00",
			utcOffset: 9,
			want:      "2024-01-13T22:30:00Z", // 2024-01-14T07:30:00+09:00
		},
		{
			name:      "after base stays on same day",
			now:       "2024-01-15T08:00:00+09:00",
			utcOffset: 9,
			want:      "2024-01-14T22:30:00Z", // 2024-01-15T07:30:00+09:00
		},
		{
			name:      "exactly at base stays on same day",
			now:       "2024-01-15T07:30:00+09:00",
			utcOffset: 9,
			want:      "2024-01-14T22:30:00Z",
		},
		{
			name:      "negative offset",
			now:       "2024-06-01T05:00:00-08:00",
			utcOffset: -8,
			want:      "2024-05-31T15:30:00Z", // 2024-05-31T07:30:00-08:00
		},
		{
			name:      "input in UTC converts to local before comparing",
			now:       "2024-01-14T21:00:00Z", // 06:00 on Jan 15 at +09:00
			utcOffset: 9,
			want:      "2024-01-13T22:30:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := time.Parse(time.RFC3339, tt.now)
			if err != nil {
				t.Fatalf("parse now: %v", err)
			}
			want, err := time.Parse(time.RFC3339, tt.want)
			if err != nil {
				t.Fatalf("parse want: %v", err)
			}

			got, err := WindowStart(now, tt.utcOffset, base)
			if err != nil {
				t.Fatalf("WindowStart() error: %v", err)
			}
			if !got.Equal(want) {
				t.Errorf("WindowStart() = %s, want %s", got.Format(time.RFC3339), want.Format(time.RFC3339))
			}
		})
	}
}

func TestWindowStart_InvalidOffset(t *testing.T) {
	_, err := WindowStart(time.Now(), 15, LocalTime{Hour: 7, Minute: 30})
	if err == nil {
		t.Fatal("WindowStart() with offset 15 should fail")
	}
}

func TestSecondsUntil(t *testing.T) {
	base := LocalTime{Hour: 7, Minute: 30}

	tests := []struct {
		name      string
		now       string
		utcOffset int
		target    LocalTime
		want      int64
	}{
		{
			name:      "target later today",
			now:       "2024-01-15T08:00:00+09:00",
			utcOffset: 9,
			target:    LocalTime{Hour: 23, Minute: 30},
			want:      15*60*60 + 30*60,
		},
		{
			// Target at or before the anchor belongs to the next day.
			name:      "target before base rolls forward",
			now:       "2024-01-15T08:00:00+09:00",
			utcOffset: 9,
			target:    LocalTime{Hour: 7, Minute: 0},
			want:      23 * 60 * 60,
		},
		{
			name:      "target equal to base rolls forward",
			now:       "2024-01-15T07:30:00+09:00",
			utcOffset: 9,
			target:    LocalTime{Hour: 7, Minute: 30},
			want:      24 * 60 * 60,
		},
		{
			// Now is exactly the target instant: 0, no roll.
			name:      "exactly at target returns zero",
			now:       "2024-01-15T23:30:00+09:00",
			utcOffset: 9,
			target:    LocalTime{Hour: 23, Minute: 30},
			want:      0,
		},
		{
			// Target already passed within the window: next occurrence, never negative.
			name:      "target already passed stays forward-looking",
			now:       "2024-01-15T09:00:00+09:00",
			utcOffset: 9,
			target:    LocalTime{Hour: 8, Minute: 0},
			want:      23 * 60 * 60,
		},
		{
			// Before the anchor the window is yesterday's, so a pre-base target
			// lands later this morning.
			name:      "before base with pre-base target",
			now:       "2024-01-15T06:00:00+09:00",
			utcOffset: 9,
			target:    LocalTime{Hour: 7, Minute: 0},
			want:      60 * 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := time.Parse(time.RFC3339, tt.now)
			if err != nil {
				t.Fatalf("parse now: %v", err)
			}

			got, err := SecondsUntil(now, tt.utcOffset, tt.target, base)
			if err != nil {
				t.Fatalf("SecondsUntil() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("SecondsUntil() = %d, want %d", got, tt.want)
			}
			if got < 0 {
				t.Errorf("SecondsUntil() = %d, must never be negative", got)
			}
		})
	}
}

func TestSecondsUntil_InvalidOffset(t *testing.T) {
	_, err := SecondsUntil(time.Now(), -13, LocalTime{Hour: 23, Minute: 30}, LocalTime{Hour: 7, Minute: 30})
	if err == nil {
		t.Fatal("SecondsUntil() with offset -13 should fail")
	}
}
