package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stationsCmd = &cobra.Command{
	Use:   "stations [query]",
	Short: "Searches stations by name",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStations,
}

func runStations(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	tt, err := openTimetable()
	if err != nil {
		return err
	}

	stations, err := tt.Stations(query)
	if err != nil {
		return err
	}

	for _, s := range stations {
		fmt.Printf("%s  %s\n", s.StopID, s.Name)
	}

	return nil
}
