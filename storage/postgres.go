package storage

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"fahrplan.dev/board/model"
)

const PSQLStopTimeBatchSize = 5000

type PSQLStorage struct {
	db *sql.DB

	stopTimeBuf []StopTimeRow
}

// Creates a new Postgres Storage using the provided connection string.
//
// If clearDB is true, the database will be cleared on startup. You
// probably only want this for testing.
func NewPSQLStorage(connStr string, clearDB bool) (*PSQLStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if clearDB {
		_, err = db.Exec(`
DROP TABLE IF EXISTS service;
DROP TABLE IF EXISTS service_exception;
DROP TABLE IF EXISTS stop;
DROP TABLE IF EXISTS trip;
DROP TABLE IF EXISTS stop_time;
`)
		if err != nil {
			return nil, fmt.Errorf("clearing db: %w", err)
		}
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS service (
    service_id INTEGER PRIMARY KEY,
    monday INTEGER NOT NULL,
    tuesday INTEGER NOT NULL,
    wednesday INTEGER NOT NULL,
    thursday INTEGER NOT NULL,
    friday INTEGER NOT NULL,
    saturday INTEGER NOT NULL,
    sunday INTEGER NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS service_exception (
    service_id INTEGER NOT NULL,
    date TEXT NOT NULL,
    exception_type INTEGER NOT NULL,
    PRIMARY KEY (service_id, date)
);

CREATE TABLE IF NOT EXISTS stop (
    stop_id TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trip (
    trip_id TEXT PRIMARY KEY,
    service_id INTEGER NOT NULL,
    short_name TEXT NOT NULL,
    headsign TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS stop_time (
    trip_id TEXT NOT NULL,
    stop_id TEXT NOT NULL,
    stop_sequence INTEGER NOT NULL,
    arrival_time TEXT NOT NULL,
    departure_time TEXT NOT NULL,
    PRIMARY KEY (trip_id, stop_sequence)
);

CREATE INDEX IF NOT EXISTS stop_time_stop_id ON stop_time (stop_id);`)
	if err != nil {
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &PSQLStorage{db: db}, nil
}

func (s *PSQLStorage) WriteService(svc *ServiceRow) error {
	flags := [7]int{}
	for i, set := range svc.Weekday {
		if set {
			flags[i] = 1
		}
	}

	_, err := s.db.Exec(`
INSERT INTO service (service_id, monday, tuesday, wednesday, thursday, friday, saturday, sunday, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		svc.ServiceID,
		flags[0], flags[1], flags[2], flags[3], flags[4], flags[5], flags[6],
		svc.StartDate,
		svc.EndDate,
	)
	if err != nil {
		return fmt.Errorf("inserting service: %w", err)
	}

	return nil
}

func (s *PSQLStorage) WriteServiceException(e *ExceptionRow) error {
	_, err := s.db.Exec(`
INSERT INTO service_exception (service_id, date, exception_type)
VALUES ($1, $2, $3)`,
		e.ServiceID,
		e.Date,
		e.Type,
	)
	if err != nil {
		return fmt.Errorf("inserting service exception: %w", err)
	}

	return nil
}

func (s *PSQLStorage) WriteStop(stop *StopRow) error {
	_, err := s.db.Exec(`INSERT INTO stop (stop_id, name) VALUES ($1, $2)`, stop.ID, stop.Name)
	if err != nil {
		return fmt.Errorf("inserting stop: %w", err)
	}

	return nil
}

func (s *PSQLStorage) WriteTrip(trip *TripRow) error {
	_, err := s.db.Exec(`
INSERT INTO trip (trip_id, service_id, short_name, headsign)
VALUES ($1, $2, $3, $4)`,
		trip.ID,
		trip.ServiceID,
		trip.ShortName,
		trip.Headsign,
	)
	if err != nil {
		return fmt.Errorf("inserting trip: %w", err)
	}

	return nil
}

func (s *PSQLStorage) BeginStopTimes() error {
	return nil
}

func (s *PSQLStorage) WriteStopTime(st *StopTimeRow) error {
	s.stopTimeBuf = append(s.stopTimeBuf, *st)

	if len(s.stopTimeBuf) >= PSQLStopTimeBatchSize {
		err := s.flushStopTimes()
		if err != nil {
			return fmt.Errorf("flushing stop_times: %w", err)
		}
	}

	return nil
}

func (s *PSQLStorage) EndStopTimes() error {
	if len(s.stopTimeBuf) > 0 {
		err := s.flushStopTimes()
		if err != nil {
			return fmt.Errorf("flushing stop_times: %w", err)
		}
	}
	return nil
}

func (s *PSQLStorage) flushStopTimes() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(pq.CopyIn(
		"stop_time", "trip_id", "stop_id", "stop_sequence", "arrival_time", "departure_time",
	))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, st := range s.stopTimeBuf {
		_, err = stmt.Exec(
			st.TripID,
			st.StopID,
			st.StopSequence,
			st.ArrivalTime,
			st.DepartureTime,
		)
		if err != nil {
			return fmt.Errorf("COPY stop_time: %w", err)
		}
	}

	_, err = stmt.Exec()
	if err != nil {
		return fmt.Errorf("executing statement: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	s.stopTimeBuf = nil

	return nil
}

// Close finalizes the write phase. The connection stays open for
// reads.
func (s *PSQLStorage) Close() error {
	_, err := s.db.Exec(`ANALYZE`)
	if err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}

	return nil
}

func (s *PSQLStorage) ServiceRows() ([]ServiceRow, error) {
	rows, err := s.db.Query(`
SELECT
    s.service_id,
    s.monday, s.tuesday, s.wednesday, s.thursday, s.friday, s.saturday, s.sunday,
    s.start_date,
    s.end_date,
    se.date,
    se.exception_type
FROM service s
LEFT JOIN service_exception se ON se.service_id = s.service_id
ORDER BY s.service_id, se.date`)
	if err != nil {
		return nil, fmt.Errorf("querying services: %w", err)
	}
	defer rows.Close()

	serviceRows := []ServiceRow{}
	for rows.Next() {
		var row ServiceRow
		flags := [7]int{}
		var excDate sql.NullString
		var excType sql.NullInt64

		err = rows.Scan(
			&row.ServiceID,
			&flags[0], &flags[1], &flags[2], &flags[3], &flags[4], &flags[5], &flags[6],
			&row.StartDate,
			&row.EndDate,
			&excDate,
			&excType,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning service row: %w", err)
		}

		for i, f := range flags {
			row.Weekday[i] = f != 0
		}

		if excDate.Valid {
			row.Exception = &ExceptionRow{
				ServiceID: row.ServiceID,
				Date:      excDate.String,
				Type:      int8(excType.Int64),
			}
		}

		serviceRows = append(serviceRows, row)
	}

	return serviceRows, rows.Err()
}

func (s *PSQLStorage) StopEvents(stopPrefix string) ([]StopEventRow, error) {
	rows, err := s.db.Query(`
SELECT
    st.arrival_time,
    st.departure_time,
    t.trip_id,
    t.service_id,
    t.short_name,
    t.headsign
FROM stop_time st
INNER JOIN trip t ON t.trip_id = st.trip_id
WHERE st.stop_id LIKE $1`,
		escapeLike(stopPrefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("querying stop events: %w", err)
	}
	defer rows.Close()

	events := []StopEventRow{}
	for rows.Next() {
		var ev StopEventRow
		err = rows.Scan(
			&ev.ArrivalTime,
			&ev.DepartureTime,
			&ev.TripID,
			&ev.ServiceID,
			&ev.ShortName,
			&ev.Headsign,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning stop event: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

func (s *PSQLStorage) Stations(query string) ([]model.Station, error) {
	pattern := "%"
	if query != "" {
		pattern = "%" + escapeLike(query) + "%"
	}

	rows, err := s.db.Query(`
SELECT MIN(stop_id), name
FROM stop
WHERE name LIKE $1
GROUP BY name
ORDER BY name`,
		pattern)
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	stations := []model.Station{}
	for rows.Next() {
		var st model.Station
		err = rows.Scan(&st.StopID, &st.Name)
		if err != nil {
			return nil, fmt.Errorf("scanning station: %w", err)
		}
		stations = append(stations, st)
	}

	return stations, rows.Err()
}

func (s *PSQLStorage) TripStops(tripID string) ([]TripStopRow, error) {
	rows, err := s.db.Query(`
SELECT
    stop.name,
    st.arrival_time,
    st.departure_time
FROM stop_time st
INNER JOIN stop ON stop.stop_id = st.stop_id
WHERE st.trip_id = $1
ORDER BY st.stop_sequence`,
		tripID)
	if err != nil {
		return nil, fmt.Errorf("querying trip stops: %w", err)
	}
	defer rows.Close()

	stops := []TripStopRow{}
	for rows.Next() {
		var ts TripStopRow
		err = rows.Scan(&ts.StopName, &ts.ArrivalTime, &ts.DepartureTime)
		if err != nil {
			return nil, fmt.Errorf("scanning trip stop: %w", err)
		}
		stops = append(stops, ts)
	}

	return stops, rows.Err()
}
