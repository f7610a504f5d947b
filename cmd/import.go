package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fahrplan.dev/board/parse"
)

var importCmd = &cobra.Command{
	Use:   "import <feed.zip>",
	Short: "Loads a zipped schedule feed into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	buf, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading feed: %w", err)
	}

	s, err := openStorage()
	if err != nil {
		return err
	}

	if err := parse.ParseFeed(s, buf); err != nil {
		return err
	}

	fmt.Println("feed imported")
	return nil
}
