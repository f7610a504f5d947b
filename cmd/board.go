package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fahrplan.dev/board/model"
)

var departuresCmd = &cobra.Command{
	Use:   "departures <stop_id>",
	Short: "Lists upcoming departures for a stop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(args[0], model.BoardTypeDepartures)
	},
}

var arrivalsCmd = &cobra.Command{
	Use:   "arrivals <stop_id>",
	Short: "Lists upcoming arrivals for a stop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(args[0], model.BoardTypeArrivals)
	},
}

var atFlag string

func init() {
	for _, c := range []*cobra.Command{departuresCmd, arrivalsCmd} {
		c.Flags().StringVarP(&atFlag, "at", "a", "", "Reference time (2006-01-02T15:04:05, default now)")
	}
}

func referenceTime() (time.Time, error) {
	if atFlag == "" {
		return time.Now().UTC(), nil
	}
	at, err := time.Parse("2006-01-02T15:04:05", atFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at value '%s'", atFlag)
	}
	return at, nil
}

func runBoard(stopID string, bt model.BoardType) error {
	at, err := referenceTime()
	if err != nil {
		return err
	}

	tt, err := openTimetable()
	if err != nil {
		return err
	}

	entries, err := tt.Board(stopID, bt, at)
	if err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Printf("%s  %-8s %s\n", e.When.Format("02 Jan 15:04"), e.ShortName, e.Headsign)
	}

	return nil
}
