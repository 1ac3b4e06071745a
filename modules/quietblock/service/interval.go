package service

import (
	"fmt"
	"time"

	"quietblock-api/core/constants"
	"quietblock-api/core/errors"
	"quietblock-api/modules/quietblock/entity"
)

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints (a.End == b.Start) do not overlap. Every conflict test in
// the service goes through this function.
func Overlaps(a, b entity.TimeRange) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// ValidateTimeRange checks a candidate interval against the duration
// rules. Checks run in a fixed order (range, past, too-short, too-long)
// so the reported error is deterministic.
func ValidateTimeRange(start, end, now time.Time) *errors.AppError {
	if !start.Before(end) {
		return errors.NewAppError(errors.ErrInvalidRange, "start time must be before end time", nil)
	}
	if !end.After(now) {
		return errors.NewAppError(errors.ErrPastEnd, "block must end in the future", nil)
	}
	d := end.Sub(start)
	if d < constants.MinBlockDuration {
		return errors.NewAppError(errors.ErrTooShort,
			fmt.Sprintf("block must be at least %d minutes", int(constants.MinBlockDuration/time.Minute)), nil)
	}
	if d > constants.MaxBlockDuration {
		return errors.NewAppError(errors.ErrTooLong,
			fmt.Sprintf("block must be at most %d hours", int(constants.MaxBlockDuration/time.Hour)), nil)
	}
	return nil
}

// SameCalendarDay reports whether start and end fall on the same calendar
// date in loc. Blocks may not cross local midnight; this is a product
// rule, kept as an explicit named check so it can be revisited.
func SameCalendarDay(start, end time.Time, loc *time.Location) bool {
	sy, sm, sd := start.In(loc).Date()
	ey, em, ed := end.In(loc).Date()
	return sy == ey && sm == em && sd == ed
}
