package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffset(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want time.Duration
	}{
		{"00:00:00", 0},
		{"07:00:00", 7 * time.Hour},
		{"09:15:30", 9*time.Hour + 15*time.Minute + 30*time.Second},
		{"23:59:59", 23*time.Hour + 59*time.Minute + 59*time.Second},

		// Hours are unbounded above 23
		{"24:00:00", 24 * time.Hour},
		{"25:30:00", 25*time.Hour + 30*time.Minute},
		{"112:10:00", 112*time.Hour + 10*time.Minute},

		// Single digit hours appear in the wild
		{"7:05:00", 7*time.Hour + 5*time.Minute},
	} {
		got, err := Offset(tc.in)
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestOffsetMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"07:00",
		"07:00:00:00",
		"xx:00:00",
		"07:-1:00",
		"07:60:00",
		"07:00:60",
		"07:0x:00",
	} {
		_, err := Offset(in)
		require.Error(t, err, in)

		var perr *Error
		require.ErrorAs(t, err, &perr, in)
		assert.Equal(t, in, perr.Value, in)
	}
}

func TestDate(t *testing.T) {
	d, err := Date("20240610")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, time.Monday, d.Weekday())

	for _, in := range []string{"", "2024-06-10", "20241301", "junk"} {
		_, err := Date(in)
		require.Error(t, err, in)

		var perr *Error
		require.ErrorAs(t, err, &perr, in)
	}
}
