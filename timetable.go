package board

import (
	"time"

	"github.com/pkg/errors"

	"fahrplan.dev/board/model"
	"fahrplan.dev/board/parse"
	"fahrplan.dev/board/storage"
)

// Timetable answers board queries against a schedule store. Open
// builds the service calendar index eagerly; after that a Timetable
// is read-only and safe for concurrent use.
type Timetable struct {
	store    storage.Storage
	services ServiceIndex
}

func Open(store storage.Storage) (*Timetable, error) {
	rows, err := store.ServiceRows()
	if err != nil {
		return nil, errors.Wrap(err, "fetching service rows")
	}

	services, err := BuildServiceIndex(rows)
	if err != nil {
		return nil, err
	}

	return &Timetable{
		store:    store,
		services: services,
	}, nil
}

// Board returns the ordered upcoming stop events for stops matching
// the given id prefix, as seen at the reference moment. An empty stop
// id short-circuits to an empty board without touching the store.
func (t *Timetable) Board(stopID string, bt model.BoardType, at time.Time) ([]model.Entry, error) {
	if stopID == "" {
		return []model.Entry{}, nil
	}

	rows, err := t.store.StopEvents(stopID)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching stop events for '%s'", stopID)
	}

	return assembleBoard(rows, at, bt, t.services)
}

func (t *Timetable) Departures(stopID string, at time.Time) ([]model.Entry, error) {
	return t.Board(stopID, model.BoardTypeDepartures, at)
}

func (t *Timetable) Arrivals(stopID string, at time.Time) ([]model.Entry, error) {
	return t.Board(stopID, model.BoardTypeArrivals, at)
}

// Stations searches stations by name fragment. An empty query lists
// all stations.
func (t *Timetable) Stations(query string) ([]model.Station, error) {
	stations, err := t.store.Stations(query)
	if err != nil {
		return nil, errors.Wrap(err, "fetching stations")
	}
	return stations, nil
}

// TripStops returns the stops of a trip in stop sequence order. An
// unknown trip id resolves to an empty result.
func (t *Timetable) TripStops(tripID string) ([]model.TripStop, error) {
	rows, err := t.store.TripStops(tripID)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching stops for trip '%s'", tripID)
	}

	stops := []model.TripStop{}
	for _, row := range rows {
		arrival, err := parse.Offset(row.ArrivalTime)
		if err != nil {
			return nil, errors.Wrapf(err, "trip '%s' arrival_time", tripID)
		}
		departure, err := parse.Offset(row.DepartureTime)
		if err != nil {
			return nil, errors.Wrapf(err, "trip '%s' departure_time", tripID)
		}
		stops = append(stops, model.TripStop{
			StopName:  row.StopName,
			Arrival:   arrival,
			Departure: departure,
		})
	}

	return stops, nil
}
