package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var tripCmd = &cobra.Command{
	Use:   "trip <trip_id>",
	Short: "Lists the stops of a trip in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrip,
}

func runTrip(cmd *cobra.Command, args []string) error {
	tt, err := openTimetable()
	if err != nil {
		return err
	}

	stops, err := tt.TripStops(args[0])
	if err != nil {
		return err
	}

	for _, s := range stops {
		fmt.Printf("%s - %s  %s\n", offsetClock(s.Arrival), offsetClock(s.Departure), s.StopName)
	}

	return nil
}

func offsetClock(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) - h*60
	return fmt.Sprintf("%02d:%02d", h, m)
}
