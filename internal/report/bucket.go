package report

import (
	"fmt"
	"time"

	"finboard/internal/core"
)

// BucketStart returns the chronological start of the time bucket that
// contains d for the given frame. Weeks start on Sunday.
func BucketStart(d core.Date, frame core.TimeFrame) time.Time {
	t := d.Time
	switch frame {
	case core.Daily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case core.Weekly:
		start := t.AddDate(0, 0, -int(t.Weekday()))
		return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	case core.Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case core.Yearly:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BucketKey formats the bucket label shown in reports and exports.
func BucketKey(d core.Date, frame core.TimeFrame) string {
	start := BucketStart(d, frame)
	switch frame {
	case core.Weekly:
		return start.Format("2006-01-02")
	case core.Monthly:
		return start.Format("2006-01")
	case core.Yearly:
		return fmt.Sprintf("%d", start.Year())
	}
	return start.Format("2006-01-02")
}
