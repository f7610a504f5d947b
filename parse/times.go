package parse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Error reports a malformed date or time string encountered while
// mapping raw schedule data. It carries the offending value so
// callers can surface it.
type Error struct {
	Value string
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parsing %q: %s", e.Value, e.Msg)
}

// Offset parses a "H:MM:SS" stop time into a duration past midnight
// of the service day. Hours are unbounded above 23: "25:30:00" is a
// valid offset belonging to the previous day's service.
func Offset(s string) (time.Duration, error) {
	split := strings.Split(s, ":")
	if len(split) != 3 {
		return 0, &Error{Value: s, Msg: fmt.Sprintf("found %d parts, want 3", len(split))}
	}

	hms := [3]int{}
	for i, str := range split {
		j, err := strconv.Atoi(str)
		if err != nil {
			return 0, &Error{Value: s, Msg: fmt.Sprintf("non-integer in pos %d", i)}
		}
		if j < 0 {
			return 0, &Error{Value: s, Msg: fmt.Sprintf("negative value in pos %d", i)}
		}
		hms[i] = j
	}

	if hms[1] > 59 {
		return 0, &Error{Value: s, Msg: "invalid minute"}
	}
	if hms[2] > 59 {
		return 0, &Error{Value: s, Msg: "invalid second"}
	}

	return time.Duration(hms[0])*time.Hour +
		time.Duration(hms[1])*time.Minute +
		time.Duration(hms[2])*time.Second, nil
}

// Date parses a YYYYMMDD calendar date as midnight UTC.
func Date(s string) (time.Time, error) {
	t, err := time.ParseInLocation("20060102", s, time.UTC)
	if err != nil {
		return time.Time{}, &Error{Value: s, Msg: "not a YYYYMMDD date"}
	}
	return t, nil
}
