package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fahrplan.dev/board"
	"fahrplan.dev/board/storage"
)

var rootCmd = &cobra.Command{
	Use:          "board",
	Short:        "Stop board tool",
	Long:         "Imports schedule feeds and renders stop boards",
	SilenceUsage: true,
}

var (
	dbDir       string
	postgresURL string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbDir, "db", "", ".", "Directory holding the sqlite database")
	rootCmd.PersistentFlags().StringVarP(&postgresURL, "postgres", "", "", "Postgres connection string (overrides --db)")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(departuresCmd)
	rootCmd.AddCommand(arrivalsCmd)
	rootCmd.AddCommand(stationsCmd)
	rootCmd.AddCommand(tripCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func openStorage() (storage.Storage, error) {
	if postgresURL != "" {
		return storage.NewPSQLStorage(postgresURL, false)
	}
	return storage.NewSQLiteStorage(storage.SQLiteConfig{OnDisk: true, Directory: dbDir})
}

func openTimetable() (*board.Timetable, error) {
	s, err := openStorage()
	if err != nil {
		return nil, err
	}
	return board.Open(s)
}
