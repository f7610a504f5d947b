package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"fahrplan.dev/board/storage"
)

type StopCSV struct {
	StopID string `csv:"stop_id"`
	Name   string `csv:"stop_name"`
}

// Returns the set of all stop IDs seen.
func ParseStops(writer storage.Writer, data io.Reader) (map[string]bool, error) {
	stopCsv := []*StopCSV{}
	if err := gocsv.Unmarshal(data, &stopCsv); err != nil {
		return nil, fmt.Errorf("unmarshaling stops csv: %w", err)
	}

	stops := map[string]bool{}

	for _, s := range stopCsv {
		if s.StopID == "" {
			return nil, fmt.Errorf("empty stop_id")
		}
		if stops[s.StopID] {
			return nil, fmt.Errorf("repeated stop_id '%s'", s.StopID)
		}
		stops[s.StopID] = true

		err := writer.WriteStop(&storage.StopRow{
			ID:   s.StopID,
			Name: s.Name,
		})
		if err != nil {
			return nil, fmt.Errorf("writing stop: %w", err)
		}
	}

	return stops, nil
}
