package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"fahrplan.dev/board/storage"
)

type CalendarCSV struct {
	ServiceID int    `csv:"service_id"`
	StartDate string `csv:"start_date"`
	EndDate   string `csv:"end_date"`
	Monday    int8   `csv:"monday"`
	Tuesday   int8   `csv:"tuesday"`
	Wednesday int8   `csv:"wednesday"`
	Thursday  int8   `csv:"thursday"`
	Friday    int8   `csv:"friday"`
	Saturday  int8   `csv:"saturday"`
	Sunday    int8   `csv:"sunday"`
}

// Returns the set of all service IDs seen.
func ParseCalendar(writer storage.Writer, data io.Reader) (map[int]bool, error) {
	calendarCsv := []*CalendarCSV{}
	if err := gocsv.Unmarshal(data, &calendarCsv); err != nil {
		return nil, fmt.Errorf("unmarshaling calendar csv: %w", err)
	}

	knownServices := map[int]bool{}

	for _, c := range calendarCsv {
		if knownServices[c.ServiceID] {
			return nil, fmt.Errorf("repeated service_id '%d'", c.ServiceID)
		}
		knownServices[c.ServiceID] = true

		names := [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
		values := [7]int8{c.Monday, c.Tuesday, c.Wednesday, c.Thursday, c.Friday, c.Saturday, c.Sunday}

		// Flags stay in Monday..Sunday order all the way down.
		flags := [7]bool{}
		for i, v := range values {
			if v == 1 {
				flags[i] = true
			} else if v != 0 {
				return nil, fmt.Errorf("invalid %s value '%d'", names[i], v)
			}
		}

		if _, err := Date(c.StartDate); err != nil {
			return nil, fmt.Errorf("service %d start_date: %w", c.ServiceID, err)
		}
		if _, err := Date(c.EndDate); err != nil {
			return nil, fmt.Errorf("service %d end_date: %w", c.ServiceID, err)
		}
		if c.StartDate > c.EndDate {
			return nil, fmt.Errorf("service %d start_date after end_date", c.ServiceID)
		}

		err := writer.WriteService(&storage.ServiceRow{
			ServiceID: c.ServiceID,
			Weekday:   flags,
			StartDate: c.StartDate,
			EndDate:   c.EndDate,
		})
		if err != nil {
			return nil, fmt.Errorf("writing service: %w", err)
		}
	}

	return knownServices, nil
}
