package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"fahrplan.dev/board/storage"
)

type CalendarDateCSV struct {
	ServiceID     int    `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int8   `csv:"exception_type"`
}

func ParseCalendarDates(writer storage.Writer, data io.Reader, services map[int]bool) error {
	calendarDateCsv := []*CalendarDateCSV{}
	if err := gocsv.Unmarshal(data, &calendarDateCsv); err != nil {
		return fmt.Errorf("unmarshaling calendar_dates csv: %w", err)
	}

	knownServiceDate := map[string]bool{}

	for _, cd := range calendarDateCsv {
		if cd.ExceptionType < 1 || cd.ExceptionType > 2 {
			return fmt.Errorf("illegal exception_type: '%d'", cd.ExceptionType)
		}

		if !services[cd.ServiceID] {
			return fmt.Errorf("exception references unknown service_id '%d'", cd.ServiceID)
		}

		if _, err := Date(cd.Date); err != nil {
			return fmt.Errorf("service %d exception date: %w", cd.ServiceID, err)
		}

		serviceDate := fmt.Sprintf("%s-%d", cd.Date, cd.ServiceID)
		if knownServiceDate[serviceDate] {
			return fmt.Errorf("duplicate service/date: '%s'", serviceDate)
		}
		knownServiceDate[serviceDate] = true

		err := writer.WriteServiceException(&storage.ExceptionRow{
			ServiceID: cd.ServiceID,
			Date:      cd.Date,
			Type:      cd.ExceptionType,
		})
		if err != nil {
			return fmt.Errorf("writing service exception: %w", err)
		}
	}

	return nil
}
