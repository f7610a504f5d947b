package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"fahrplan.dev/board/storage"
)

type TripCSV struct {
	TripID    string `csv:"trip_id"`
	ServiceID int    `csv:"service_id"`
	ShortName string `csv:"trip_short_name"`
	Headsign  string `csv:"trip_headsign"`
}

// Returns the set of all trip IDs seen. Every trip must reference a
// known service; a dangling service_id here would otherwise surface
// as a data integrity error on every board query.
func ParseTrips(
	writer storage.Writer,
	data io.Reader,
	services map[int]bool,
) (map[string]bool, error) {

	tripCsv := []*TripCSV{}
	if err := gocsv.Unmarshal(data, &tripCsv); err != nil {
		return nil, fmt.Errorf("unmarshaling trips csv: %w", err)
	}

	trips := map[string]bool{}

	for _, t := range tripCsv {
		if t.TripID == "" {
			return nil, fmt.Errorf("empty trip_id")
		}
		if trips[t.TripID] {
			return nil, fmt.Errorf("repeated trip_id '%s'", t.TripID)
		}
		if !services[t.ServiceID] {
			return nil, fmt.Errorf("trip '%s' references unknown service_id '%d'", t.TripID, t.ServiceID)
		}
		trips[t.TripID] = true

		err := writer.WriteTrip(&storage.TripRow{
			ID:        t.TripID,
			ServiceID: t.ServiceID,
			ShortName: t.ShortName,
			Headsign:  t.Headsign,
		})
		if err != nil {
			return nil, fmt.Errorf("writing trip: %w", err)
		}
	}

	return trips, nil
}
