package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"fahrplan.dev/board/model"
)

type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

type SQLiteStorage struct {
	SQLiteConfig

	db *sql.DB

	stopTimeInsert *sql.Stmt
	stopTimeTx     *sql.Tx
}

func NewSQLiteStorage(cfg ...SQLiteConfig) (*SQLiteStorage, error) {
	onDisk := false
	directory := ""
	if len(cfg) > 0 {
		onDisk = cfg[0].OnDisk
		directory = cfg[0].Directory
	}

	sourceName := ":memory:"
	if onDisk {
		sourceName = directory + "/board.db"
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
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
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &SQLiteStorage{
		SQLiteConfig: SQLiteConfig{
			OnDisk:    onDisk,
			Directory: directory,
		},
		db: db,
	}, nil
}

func (s *SQLiteStorage) WriteService(svc *ServiceRow) error {
	flags := [7]int{}
	for i, set := range svc.Weekday {
		if set {
			flags[i] = 1
		}
	}

	_, err := s.db.Exec(`
INSERT INTO service (service_id, monday, tuesday, wednesday, thursday, friday, saturday, sunday, start_date, end_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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

func (s *SQLiteStorage) WriteServiceException(e *ExceptionRow) error {
	_, err := s.db.Exec(`
INSERT INTO service_exception (service_id, date, exception_type)
VALUES (?, ?, ?)`,
		e.ServiceID,
		e.Date,
		e.Type,
	)
	if err != nil {
		return fmt.Errorf("inserting service exception: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) WriteStop(stop *StopRow) error {
	_, err := s.db.Exec(`INSERT INTO stop (stop_id, name) VALUES (?, ?)`, stop.ID, stop.Name)
	if err != nil {
		return fmt.Errorf("inserting stop: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) WriteTrip(trip *TripRow) error {
	_, err := s.db.Exec(`
INSERT INTO trip (trip_id, service_id, short_name, headsign)
VALUES (?, ?, ?, ?)`,
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

func (s *SQLiteStorage) BeginStopTimes() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning stop_time transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
INSERT INTO stop_time (trip_id, stop_id, stop_sequence, arrival_time, departure_time)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing stop_time insert: %w", err)
	}

	s.stopTimeTx = tx
	s.stopTimeInsert = stmt

	return nil
}

func (s *SQLiteStorage) WriteStopTime(st *StopTimeRow) error {
	if s.stopTimeInsert == nil {
		return fmt.Errorf("WriteStopTime called outside Begin/EndStopTimes")
	}

	_, err := s.stopTimeInsert.Exec(
		st.TripID,
		st.StopID,
		st.StopSequence,
		st.ArrivalTime,
		st.DepartureTime,
	)
	if err != nil {
		return fmt.Errorf("inserting stop_time: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) EndStopTimes() error {
	if s.stopTimeTx == nil {
		return fmt.Errorf("EndStopTimes called before BeginStopTimes")
	}

	err := s.stopTimeTx.Commit()
	if err != nil {
		return fmt.Errorf("committing stop_times: %w", err)
	}

	s.stopTimeInsert = nil
	s.stopTimeTx = nil

	return nil
}

// Close finalizes the write phase. The connection stays open for
// reads.
func (s *SQLiteStorage) Close() error {
	_, err := s.db.Exec(`ANALYZE;`)
	if err != nil {
		return fmt.Errorf("analyzing database: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) ServiceRows() ([]ServiceRow, error) {
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

func (s *SQLiteStorage) StopEvents(stopPrefix string) ([]StopEventRow, error) {
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
WHERE st.stop_id LIKE ? ESCAPE '\'`,
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

func (s *SQLiteStorage) Stations(query string) ([]model.Station, error) {
	pattern := "%"
	if query != "" {
		pattern = "%" + escapeLike(query) + "%"
	}

	rows, err := s.db.Query(`
SELECT MIN(stop_id), name
FROM stop
WHERE name LIKE ? ESCAPE '\'
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

func (s *SQLiteStorage) TripStops(tripID string) ([]TripStopRow, error) {
	rows, err := s.db.Query(`
SELECT
    stop.name,
    st.arrival_time,
    st.departure_time
FROM stop_time st
INNER JOIN stop ON stop.stop_id = st.stop_id
WHERE st.trip_id = ?
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

// Escapes LIKE wildcards in user supplied fragments. Backslash is the
// escape character on both sqlite and postgres when declared.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
