package storage

import (
	"fahrplan.dev/board/model"
)

// Raw rows as they come out of a schedule store. Dates are YYYYMMDD
// strings and stop times "HH:MM:SS" strings; parsing into typed
// values happens in the board package, so malformed data fails loudly
// at the point of use instead of silently defaulting.

// One row of the flat service/exception join: the base weekly pattern
// plus at most one exception. Services with several exceptions appear
// once per exception, services without any exactly once with a nil
// Exception.
type ServiceRow struct {
	ServiceID int

	// Weekday flags in Monday..Sunday order, matching the order
	// the raw feed supplies them.
	Weekday [7]bool

	StartDate string
	EndDate   string

	Exception *ExceptionRow
}

type ExceptionRow struct {
	ServiceID int
	Date      string
	Type      int8
}

// A stop_time joined with its trip, scoped to one stop.
type StopEventRow struct {
	TripID        string
	ServiceID     int
	ArrivalTime   string
	DepartureTime string
	ShortName     string
	Headsign      string
}

type StopRow struct {
	ID   string
	Name string
}

type TripRow struct {
	ID        string
	ServiceID int
	ShortName string
	Headsign  string
}

type StopTimeRow struct {
	TripID        string
	StopID        string
	StopSequence  uint32
	ArrivalTime   string
	DepartureTime string
}

// A stop_time joined with its stop, scoped to one trip.
type TripStopRow struct {
	StopName      string
	ArrivalTime   string
	DepartureTime string
}

type Reader interface {
	// The full service/exception join, one row per pairing. Read
	// once at startup to build the calendar index.
	ServiceRows() ([]ServiceRow, error)

	// Stop events for all stops whose id matches the given
	// prefix. The caller filters and orders; this is a plain
	// fetch.
	StopEvents(stopPrefix string) ([]StopEventRow, error)

	// Stations whose name contains query, grouped by name with
	// the smallest stop id per name. An empty query lists all
	// stations.
	Stations(query string) ([]model.Station, error)

	// Stop rows of a trip in stop_sequence order.
	TripStops(tripID string) ([]TripStopRow, error)
}

// Writes a schedule during feed import.
//
// As stop_times tends to be very large, BeginStopTimes() and
// EndStopTimes() are called before and after all calls to
// WriteStopTime(), allowing transactions/batching/whathaveyou.
type Writer interface {
	// Writes the base pattern only; svc.Exception is ignored.
	// Exceptions go through WriteServiceException.
	WriteService(svc *ServiceRow) error
	WriteServiceException(e *ExceptionRow) error
	WriteStop(stop *StopRow) error
	WriteTrip(trip *TripRow) error
	WriteStopTime(st *StopTimeRow) error
	BeginStopTimes() error
	EndStopTimes() error
	Close() error
}

type Storage interface {
	Reader
	Writer
}
