package parse

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"fahrplan.dev/board/storage"
)

// ParseFeed loads a zipped schedule feed into the given writer. The
// zip holds GTFS style CSV files; stops, trips, stop_times and
// calendar are required, calendar_dates is optional.
func ParseFeed(writer storage.Writer, buf []byte) error {
	file := map[string]io.ReadCloser{
		"stops.txt":          nil,
		"trips.txt":          nil,
		"stop_times.txt":     nil,
		"calendar.txt":       nil,
		"calendar_dates.txt": nil,
	}

	defer func() {
		for _, rc := range file {
			if rc != nil {
				rc.Close()
			}
		}
	}()

	r, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return fmt.Errorf("unzipping: %w", err)
	}

	for _, f := range r.File {
		// There should not be any subdirectories. But, some
		// agencies don't care.
		if f.FileInfo().IsDir() {
			continue
		}
		path := strings.Split(f.Name, "/")
		fName := path[len(path)-1]

		if _, found := file[fName]; !found {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening %s: %w", f.Name, err)
		}

		file[fName] = rc
	}

	for _, required := range []string{"stops.txt", "trips.txt", "stop_times.txt", "calendar.txt"} {
		if file[required] == nil {
			return fmt.Errorf("missing %s", required)
		}
	}

	// LazyCSVReader required (at least) to survive sloppy use of
	// quotes. The BOM reader strips unicode BOMs if present.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})

	services, err := ParseCalendar(writer, file["calendar.txt"])
	if err != nil {
		return fmt.Errorf("parsing calendar.txt: %w", err)
	}

	if file["calendar_dates.txt"] != nil {
		// Exceptions must attach to a service with a base
		// calendar row. The service index is built from that
		// join, so an exception-only service would be
		// invisible to it.
		err := ParseCalendarDates(writer, file["calendar_dates.txt"], services)
		if err != nil {
			return fmt.Errorf("parsing calendar_dates.txt: %w", err)
		}
	}

	stops, err := ParseStops(writer, file["stops.txt"])
	if err != nil {
		return fmt.Errorf("parsing stops.txt: %w", err)
	}

	trips, err := ParseTrips(writer, file["trips.txt"], services)
	if err != nil {
		return fmt.Errorf("parsing trips.txt: %w", err)
	}

	err = writer.BeginStopTimes()
	if err != nil {
		return fmt.Errorf("beginning stop_times: %w", err)
	}
	err = ParseStopTimes(writer, file["stop_times.txt"], trips, stops)
	if err != nil {
		return fmt.Errorf("parsing stop_times.txt: %w", err)
	}
	err = writer.EndStopTimes()
	if err != nil {
		return fmt.Errorf("ending stop_times: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return fmt.Errorf("closing writer: %w", err)
	}

	return nil
}
