package model

import (
	"time"
)

// Holds all external facing types and constants.

// Selects which stop time offset drives a board: the arrival offset
// or the departure offset.
type BoardType int

const (
	BoardTypeDepartures BoardType = iota
	BoardTypeArrivals
)

func (bt BoardType) String() string {
	if bt == BoardTypeArrivals {
		return "arrivals"
	}
	return "departures"
}

// Exception types as they appear in calendar_dates: 1 adds service on
// a date, 2 removes it.
type ExceptionType int8

const (
	ExceptionAdded   ExceptionType = 1
	ExceptionRemoved ExceptionType = 2
)

// A date specific override of a service's weekly pattern.
type ServiceException struct {
	Date time.Time
	Type ExceptionType
}

// A service calendar: the set of dates on which a group of trips
// operates. Start/End are inclusive, date-only, in UTC. Weekday is a
// bitmask over time.Weekday, so 1<<time.Monday for Monday service.
type Service struct {
	ID         int
	Start      time.Time
	End        time.Time
	Weekday    int8
	Exceptions []ServiceException
}

// Reports whether the service runs on the given date. Exceptions win
// over the weekly rule, and are not clipped by the Start/End window.
// If a date somehow carries more than one exception, the last one
// appended during index construction wins.
func (s *Service) IsAvailable(date time.Time) bool {
	date = Midnight(date)

	matched := false
	var typ ExceptionType
	for _, e := range s.Exceptions {
		if e.Date.Equal(date) {
			matched = true
			typ = e.Type
		}
	}
	if matched {
		return typ == ExceptionAdded
	}

	if date.Before(s.Start) || date.After(s.End) {
		return false
	}
	return s.Weekday&(1<<date.Weekday()) != 0
}

// A scheduled visit of a trip at a stop. Arrival and Departure are
// offsets past midnight of the trip's service day and may exceed 24h
// for trips continuing past midnight.
type StopEvent struct {
	TripID    string
	ServiceID int
	Arrival   time.Duration
	Departure time.Duration
	ShortName string
	Headsign  string
}

// Returns the offset relevant to the given board type.
func (ev *StopEvent) Offset(bt BoardType) time.Duration {
	if bt == BoardTypeArrivals {
		return ev.Arrival
	}
	return ev.Departure
}

// One line of a rendered board: the stop event plus its adjusted
// wall-clock time as seen from the requested reference moment.
type Entry struct {
	TripID    string
	ServiceID int
	ShortName string
	Headsign  string
	When      time.Time
}

type Station struct {
	StopID string
	Name   string
}

// One stop of a trip, in stop sequence order.
type TripStop struct {
	StopName  string
	Arrival   time.Duration
	Departure time.Duration
}

// Truncates a timestamp to midnight of its calendar day, preserving
// nothing but the date. All calendar math in this module is UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
