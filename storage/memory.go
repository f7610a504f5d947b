package storage

import (
	"sort"
	"strings"

	"fahrplan.dev/board/model"
)

// In memory implementation of Storage. Used in tests and small tools;
// the sqlite and postgres backends are the deployment shapes.

type MemoryStorage struct {
	services   map[int]*ServiceRow
	exceptions map[int][]*ExceptionRow
	stops      map[string]*StopRow
	trips      map[string]*TripRow
	stopTimes  map[string][]*StopTimeRow // by stop id
	tripTimes  map[string][]*StopTimeRow // by trip id
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		services:   map[int]*ServiceRow{},
		exceptions: map[int][]*ExceptionRow{},
		stops:      map[string]*StopRow{},
		trips:      map[string]*TripRow{},
		stopTimes:  map[string][]*StopTimeRow{},
		tripTimes:  map[string][]*StopTimeRow{},
	}
}

func (s *MemoryStorage) WriteService(svc *ServiceRow) error {
	cp := *svc
	cp.Exception = nil
	s.services[svc.ServiceID] = &cp
	return nil
}

func (s *MemoryStorage) WriteServiceException(e *ExceptionRow) error {
	cp := *e
	s.exceptions[e.ServiceID] = append(s.exceptions[e.ServiceID], &cp)
	return nil
}

func (s *MemoryStorage) WriteStop(stop *StopRow) error {
	cp := *stop
	s.stops[stop.ID] = &cp
	return nil
}

func (s *MemoryStorage) WriteTrip(trip *TripRow) error {
	cp := *trip
	s.trips[trip.ID] = &cp
	return nil
}

func (s *MemoryStorage) BeginStopTimes() error {
	return nil
}

func (s *MemoryStorage) WriteStopTime(st *StopTimeRow) error {
	cp := *st
	s.stopTimes[st.StopID] = append(s.stopTimes[st.StopID], &cp)
	s.tripTimes[st.TripID] = append(s.tripTimes[st.TripID], &cp)
	return nil
}

func (s *MemoryStorage) EndStopTimes() error {
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}

func (s *MemoryStorage) ServiceRows() ([]ServiceRow, error) {
	ids := make([]int, 0, len(s.services))
	for id := range s.services {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	rows := []ServiceRow{}
	for _, id := range ids {
		base := *s.services[id]
		excs := s.exceptions[id]
		if len(excs) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, e := range excs {
			row := base
			ecp := *e
			row.Exception = &ecp
			rows = append(rows, row)
		}
	}

	return rows, nil
}

func (s *MemoryStorage) StopEvents(stopPrefix string) ([]StopEventRow, error) {
	stopIDs := []string{}
	for id := range s.stops {
		if strings.HasPrefix(id, stopPrefix) {
			stopIDs = append(stopIDs, id)
		}
	}
	sort.Strings(stopIDs)

	events := []StopEventRow{}
	for _, stopID := range stopIDs {
		for _, st := range s.stopTimes[stopID] {
			trip := s.trips[st.TripID]
			if trip == nil {
				continue
			}
			events = append(events, StopEventRow{
				TripID:        st.TripID,
				ServiceID:     trip.ServiceID,
				ArrivalTime:   st.ArrivalTime,
				DepartureTime: st.DepartureTime,
				ShortName:     trip.ShortName,
				Headsign:      trip.Headsign,
			})
		}
	}

	return events, nil
}

func (s *MemoryStorage) Stations(query string) ([]model.Station, error) {
	byName := map[string]string{}
	for id, stop := range s.stops {
		if query != "" && !strings.Contains(stop.Name, query) {
			continue
		}
		if prev, found := byName[stop.Name]; !found || id < prev {
			byName[stop.Name] = id
		}
	}

	stations := []model.Station{}
	for name, id := range byName {
		stations = append(stations, model.Station{StopID: id, Name: name})
	}
	sort.Slice(stations, func(i, j int) bool {
		return stations[i].Name < stations[j].Name
	})

	return stations, nil
}

func (s *MemoryStorage) TripStops(tripID string) ([]TripStopRow, error) {
	sts := append([]*StopTimeRow{}, s.tripTimes[tripID]...)
	sort.Slice(sts, func(i, j int) bool {
		return sts[i].StopSequence < sts[j].StopSequence
	})

	stops := []TripStopRow{}
	for _, st := range sts {
		name := st.StopID
		if stop := s.stops[st.StopID]; stop != nil {
			name = stop.Name
		}
		stops = append(stops, TripStopRow{
			StopName:      name,
			ArrivalTime:   st.ArrivalTime,
			DepartureTime: st.DepartureTime,
		})
	}

	return stops, nil
}
