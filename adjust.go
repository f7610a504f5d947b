package board

import (
	"time"

	"fahrplan.dev/board/model"
)

// An offset past 24h belongs to the service day before the calendar
// day it occurs on: a 25:30:00 departure seen from reference date D
// ran as part of day D-1's service.
func serviceDay(ref time.Time, offset time.Duration) time.Time {
	days := int(offset / (24 * time.Hour))
	return model.Midnight(ref).AddDate(0, 0, -days)
}

// The absolute wall-clock moment of a stop event: midnight of its
// service day plus the offset. This single value drives both the
// horizon filter and the board ordering.
func adjustedTime(ref time.Time, offset time.Duration) time.Time {
	return serviceDay(ref, offset).Add(offset)
}
