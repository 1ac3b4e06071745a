package service

import (
	"testing"
	"time"

	"quietblock-api/core/errors"
	"quietblock-api/modules/quietblock/entity"
)

func rangeAt(base time.Time, startMin, endMin int) entity.TimeRange {
	return entity.TimeRange{
		Start: base.Add(time.Duration(startMin) * time.Minute),
		End:   base.Add(time.Duration(endMin) * time.Minute),
	}
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a    entity.TimeRange
		b    entity.TimeRange
		want bool
	}{
		{"identical", rangeAt(base, 0, 60), rangeAt(base, 0, 60), true},
		{"partial overlap", rangeAt(base, 0, 60), rangeAt(base, 30, 90), true},
		{"contained", rangeAt(base, 0, 120), rangeAt(base, 30, 60), true},
		{"touching endpoints", rangeAt(base, 60, 120), rangeAt(base, 120, 180), false},
		{"disjoint", rangeAt(base, 0, 60), rangeAt(base, 90, 150), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps(a, b) = %v, want %v", got, tt.want)
			}
			// overlap is symmetric
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlaps(b, a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateTimeRange(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		wantCode errors.ErrorCode
	}{
		{"valid one hour", now.Add(time.Hour), now.Add(2 * time.Hour), ""},
		{"exactly 15 minutes", now.Add(time.Hour), now.Add(time.Hour + 15*time.Minute), ""},
		{"exactly 8 hours", now.Add(time.Hour), now.Add(9 * time.Hour), ""},
		{"start equals end", now.Add(time.Hour), now.Add(time.Hour), errors.ErrInvalidRange},
		{"start after end", now.Add(2 * time.Hour), now.Add(time.Hour), errors.ErrInvalidRange},
		{"ends in the past", now.Add(-2 * time.Hour), now.Add(-time.Hour), errors.ErrPastEnd},
		{"ends exactly now", now.Add(-time.Hour), now, errors.ErrPastEnd},
		{"14 minutes", now.Add(time.Hour), now.Add(time.Hour + 14*time.Minute), errors.ErrTooShort},
		{"8 hours 1 minute", now.Add(time.Hour), now.Add(9*time.Hour + time.Minute), errors.ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ValidateTimeRange(tt.start, tt.end, now)
			if tt.wantCode == "" {
				if appErr != nil {
					t.Fatalf("ValidateTimeRange() = %v, want nil", appErr)
				}
				return
			}
			if appErr == nil {
				t.Fatalf("ValidateTimeRange() = nil, want code %s", tt.wantCode)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("ValidateTimeRange() code = %s, want %s", appErr.Code, tt.wantCode)
			}
		})
	}
}

// An inverted range in the past must report the range error, not the
// past error: checks run in a fixed order.
func TestValidateTimeRangeErrorOrder(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	appErr := ValidateTimeRange(now.Add(-time.Hour), now.Add(-2*time.Hour), now)
	if appErr == nil || appErr.Code != errors.ErrInvalidRange {
		t.Fatalf("ValidateTimeRange() = %v, want %s", appErr, errors.ErrInvalidRange)
	}
}

func TestSameCalendarDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		loc   *time.Location
		want  bool
	}{
		{
			"same day utc",
			time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 10, 17, 0, 0, 0, time.UTC),
			time.UTC,
			true,
		},
		{
			"crosses utc midnight",
			time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 11, 1, 0, 0, 0, time.UTC),
			time.UTC,
			false,
		},
		{
			// 19:30 and 20:30 UTC are 01:00 and 02:00 next day in IST
			"crosses utc midnight but not local",
			time.Date(2025, 6, 10, 19, 30, 0, 0, time.UTC),
			time.Date(2025, 6, 10, 20, 30, 0, 0, time.UTC),
			ist,
			true,
		},
		{
			// 17:30 and 19:00 UTC straddle IST midnight
			"same utc day but crosses local midnight",
			time.Date(2025, 6, 10, 17, 30, 0, 0, time.UTC),
			time.Date(2025, 6, 10, 19, 0, 0, 0, time.UTC),
			ist,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameCalendarDay(tt.start, tt.end, tt.loc); got != tt.want {
				t.Errorf("SameCalendarDay() = %v, want %v", got, tt.want)
			}
		})
	}
}
