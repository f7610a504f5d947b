package parse

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fahrplan.dev/board/storage"
)

func feedZip(t *testing.T, files map[string][]string) []byte {
	t.Helper()

	if files["calendar.txt"] == nil {
		files["calendar.txt"] = []string{
			"service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday",
			"1,20240101,20241231,1,1,1,1,1,0,0",
		}
	}
	if files["stops.txt"] == nil {
		files["stops.txt"] = []string{"stop_id,stop_name", "s1,Hauptbahnhof"}
	}
	if files["trips.txt"] == nil {
		files["trips.txt"] = []string{"trip_id,service_id,trip_short_name,trip_headsign", "t1,1,ICE 1,Munich"}
	}
	if files["stop_times.txt"] == nil {
		files["stop_times.txt"] = []string{
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
			"t1,s1,1,06:58:00,07:00:00",
		}
	}

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for filename, content := range files {
		f, err := w.Create(filename)
		require.NoError(t, err)
		_, err = f.Write([]byte(strings.Join(content, "\n")))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

func TestParseFeed(t *testing.T) {
	s := storage.NewMemoryStorage()

	err := ParseFeed(s, feedZip(t, map[string][]string{
		"calendar.txt": {
			"service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday",
			"1,20240101,20241231,1,1,1,1,1,0,0",
			"2,20240101,20241231,0,0,0,0,0,1,1",
		},
		"calendar_dates.txt": {
			"service_id,date,exception_type",
			"1,20240615,1",
			"1,20240612,2",
		},
		"stops.txt": {
			"stop_id,stop_name",
			"s1,Hauptbahnhof",
			"s2,Ostbahnhof",
		},
		"trips.txt": {
			"trip_id,service_id,trip_short_name,trip_headsign",
			"t1,1,ICE 1,Munich",
			"t2,2,N 1,Airport",
		},
		"stop_times.txt": {
			"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
			"t1,s1,1,06:58:00,07:00:00",
			"t1,s2,2,07:20:00,07:22:00",
			"t2,s1,1,25:30:00,25:30:00",
		},
	}))
	require.NoError(t, err)

	rows, err := s.ServiceRows()
	require.NoError(t, err)
	// Service 1 once per exception, service 2 once
	require.Len(t, rows, 3)

	events, err := s.StopEvents("s1")
	require.NoError(t, err)
	assert.Len(t, events, 2)

	stops, err := s.TripStops("t1")
	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.Equal(t, "Ostbahnhof", stops[1].StopName)
}

func TestParseFeedMissingFile(t *testing.T) {
	s := storage.NewMemoryStorage()

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	require.NoError(t, w.Close())

	err := ParseFeed(s, buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestParseFeedValidations(t *testing.T) {
	for _, tc := range []struct {
		name  string
		files map[string][]string
		want  string
	}{
		{
			name: "bad weekday flag",
			files: map[string][]string{
				"calendar.txt": {
					"service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday",
					"1,20240101,20241231,2,0,0,0,0,0,0",
				},
			},
			want: "invalid monday value",
		},
		{
			name: "bad start date",
			files: map[string][]string{
				"calendar.txt": {
					"service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday",
					"1,2024-01-01,20241231,1,0,0,0,0,0,0",
				},
			},
			want: "start_date",
		},
		{
			name: "window inverted",
			files: map[string][]string{
				"calendar.txt": {
					"service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday",
					"1,20241231,20240101,1,0,0,0,0,0,0",
				},
			},
			want: "start_date after end_date",
		},
		{
			name: "repeated service",
			files: map[string][]string{
				"calendar.txt": {
					"service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday",
					"1,20240101,20241231,1,0,0,0,0,0,0",
					"1,20240101,20241231,0,1,0,0,0,0,0",
				},
			},
			want: "repeated service_id",
		},
		{
			name: "bad exception type",
			files: map[string][]string{
				"calendar_dates.txt": {
					"service_id,date,exception_type",
					"1,20240615,3",
				},
			},
			want: "illegal exception_type",
		},
		{
			name: "exception for unknown service",
			files: map[string][]string{
				"calendar_dates.txt": {
					"service_id,date,exception_type",
					"9,20240615,1",
				},
			},
			want: "unknown service_id",
		},
		{
			name: "duplicate exception date",
			files: map[string][]string{
				"calendar_dates.txt": {
					"service_id,date,exception_type",
					"1,20240615,1",
					"1,20240615,2",
				},
			},
			want: "duplicate service/date",
		},
		{
			name: "trip references unknown service",
			files: map[string][]string{
				"trips.txt": {
					"trip_id,service_id,trip_short_name,trip_headsign",
					"t1,9,ICE 1,Munich",
				},
			},
			want: "unknown service_id",
		},
		{
			name: "stop_time references unknown trip",
			files: map[string][]string{
				"stop_times.txt": {
					"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
					"t9,s1,1,06:58:00,07:00:00",
				},
			},
			want: "unknown trip_id",
		},
		{
			name: "stop_time references unknown stop",
			files: map[string][]string{
				"stop_times.txt": {
					"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
					"t1,s9,1,06:58:00,07:00:00",
				},
			},
			want: "unknown stop_id",
		},
		{
			name: "malformed stop time",
			files: map[string][]string{
				"stop_times.txt": {
					"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
					"t1,s1,1,06:60:00,07:00:00",
				},
			},
			want: "arrival_time",
		},
		{
			name: "duplicate stop_sequence",
			files: map[string][]string{
				"stop_times.txt": {
					"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
					"t1,s1,1,06:58:00,07:00:00",
					"t1,s1,1,07:20:00,07:22:00",
				},
			},
			want: "duplicate stop_sequence",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := ParseFeed(storage.NewMemoryStorage(), feedZip(t, tc.files))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
