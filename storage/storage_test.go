package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildStorage(t *testing.T, backend string) Storage {
	t.Helper()

	switch backend {
	case "memory":
		return NewMemoryStorage()
	case "sqlite":
		s, err := NewSQLiteStorage()
		require.NoError(t, err)
		return s
	}

	t.Fatalf("unknown backend: %s", backend)
	return nil
}

func forBackends(t *testing.T, f func(t *testing.T, s Storage)) {
	for _, backend := range []string{"memory", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			f(t, buildStorage(t, backend))
		})
	}
}

func TestServiceRowsJoin(t *testing.T) {
	forBackends(t, func(t *testing.T, s Storage) {
		require.NoError(t, s.WriteService(&ServiceRow{
			ServiceID: 1,
			Weekday:   [7]bool{true, false, true, false, true, false, false},
			StartDate: "20240101",
			EndDate:   "20241231",
		}))
		require.NoError(t, s.WriteService(&ServiceRow{
			ServiceID: 2,
			Weekday:   [7]bool{false, false, false, false, false, true, true},
			StartDate: "20240301",
			EndDate:   "20240331",
		}))
		require.NoError(t, s.WriteServiceException(&ExceptionRow{ServiceID: 1, Date: "20240610", Type: 2}))
		require.NoError(t, s.WriteServiceException(&ExceptionRow{ServiceID: 1, Date: "20240615", Type: 1}))

		rows, err := s.ServiceRows()
		require.NoError(t, err)
		require.Len(t, rows, 3)

		// One row per service/exception pairing, base fields
		// repeated; exception-free services have a nil
		// Exception.
		seen := map[int]int{}
		for _, row := range rows {
			seen[row.ServiceID]++
			switch row.ServiceID {
			case 1:
				assert.Equal(t, [7]bool{true, false, true, false, true, false, false}, row.Weekday)
				assert.Equal(t, "20240101", row.StartDate)
				assert.Equal(t, "20241231", row.EndDate)
				require.NotNil(t, row.Exception)
				assert.Equal(t, 1, row.Exception.ServiceID)
			case 2:
				assert.Nil(t, row.Exception)
			}
		}
		assert.Equal(t, map[int]int{1: 2, 2: 1}, seen)
	})
}

func TestStopEventsPrefix(t *testing.T) {
	forBackends(t, func(t *testing.T, s Storage) {
		require.NoError(t, s.WriteStop(&StopRow{ID: "8000001", Name: "Hauptbahnhof"}))
		require.NoError(t, s.WriteStop(&StopRow{ID: "8000002", Name: "Ostbahnhof"}))
		require.NoError(t, s.WriteStop(&StopRow{ID: "9000001", Name: "Flughafen"}))
		require.NoError(t, s.WriteTrip(&TripRow{ID: "t1", ServiceID: 1, ShortName: "ICE 1", Headsign: "Munich"}))

		require.NoError(t, s.BeginStopTimes())
		require.NoError(t, s.WriteStopTime(&StopTimeRow{
			TripID: "t1", StopID: "8000001", StopSequence: 1,
			ArrivalTime: "06:58:00", DepartureTime: "07:00:00",
		}))
		require.NoError(t, s.WriteStopTime(&StopTimeRow{
			TripID: "t1", StopID: "8000002", StopSequence: 2,
			ArrivalTime: "07:20:00", DepartureTime: "07:22:00",
		}))
		require.NoError(t, s.WriteStopTime(&StopTimeRow{
			TripID: "t1", StopID: "9000001", StopSequence: 3,
			ArrivalTime: "07:50:00", DepartureTime: "07:50:00",
		}))
		require.NoError(t, s.EndStopTimes())

		events, err := s.StopEvents("8000001")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "t1", events[0].TripID)
		assert.Equal(t, 1, events[0].ServiceID)
		assert.Equal(t, "06:58:00", events[0].ArrivalTime)
		assert.Equal(t, "07:00:00", events[0].DepartureTime)
		assert.Equal(t, "ICE 1", events[0].ShortName)
		assert.Equal(t, "Munich", events[0].Headsign)

		events, err = s.StopEvents("80000")
		require.NoError(t, err)
		assert.Len(t, events, 2)

		events, err = s.StopEvents("555")
		require.NoError(t, err)
		assert.Empty(t, events)

		// LIKE wildcards in the prefix are literals, not
		// patterns
		events, err = s.StopEvents("%")
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestStationsGrouping(t *testing.T) {
	forBackends(t, func(t *testing.T, s Storage) {
		// Two platforms of the same station share a name; the
		// smallest stop id represents the group.
		require.NoError(t, s.WriteStop(&StopRow{ID: "8000002", Name: "Hauptbahnhof"}))
		require.NoError(t, s.WriteStop(&StopRow{ID: "8000001", Name: "Hauptbahnhof"}))
		require.NoError(t, s.WriteStop(&StopRow{ID: "9000001", Name: "Flughafen"}))

		stations, err := s.Stations("")
		require.NoError(t, err)
		require.Len(t, stations, 2)
		assert.Equal(t, "Flughafen", stations[0].Name)
		assert.Equal(t, "Hauptbahnhof", stations[1].Name)
		assert.Equal(t, "8000001", stations[1].StopID)

		stations, err = s.Stations("Haupt")
		require.NoError(t, err)
		require.Len(t, stations, 1)
		assert.Equal(t, "8000001", stations[0].StopID)

		stations, err = s.Stations("nope")
		require.NoError(t, err)
		assert.Empty(t, stations)
	})
}

func TestTripStopsOrder(t *testing.T) {
	forBackends(t, func(t *testing.T, s Storage) {
		require.NoError(t, s.WriteStop(&StopRow{ID: "a", Name: "First"}))
		require.NoError(t, s.WriteStop(&StopRow{ID: "b", Name: "Second"}))
		require.NoError(t, s.WriteTrip(&TripRow{ID: "t1", ServiceID: 1, ShortName: "X", Headsign: "Y"}))

		require.NoError(t, s.BeginStopTimes())
		// Written out of order on purpose
		require.NoError(t, s.WriteStopTime(&StopTimeRow{
			TripID: "t1", StopID: "b", StopSequence: 2,
			ArrivalTime: "08:00:00", DepartureTime: "08:01:00",
		}))
		require.NoError(t, s.WriteStopTime(&StopTimeRow{
			TripID: "t1", StopID: "a", StopSequence: 1,
			ArrivalTime: "07:00:00", DepartureTime: "07:01:00",
		}))
		require.NoError(t, s.EndStopTimes())

		stops, err := s.TripStops("t1")
		require.NoError(t, err)
		require.Len(t, stops, 2)
		assert.Equal(t, "First", stops[0].StopName)
		assert.Equal(t, "Second", stops[1].StopName)

		stops, err = s.TripStops("nope")
		require.NoError(t, err)
		assert.Empty(t, stops)
	})
}
