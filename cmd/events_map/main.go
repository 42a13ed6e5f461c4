// Package main provides the entry point for the events map builder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "events_map",
	Short: "Ballot events map builder",
	Long:  "Converts the events spreadsheet into the static JSON document consumed by the map page, geocoding each unique location once and caching results across runs.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
