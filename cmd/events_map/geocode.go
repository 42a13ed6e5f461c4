package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BMANick25-26/Ballot-Events/internal/config"
	"github.com/BMANick25-26/Ballot-Events/internal/geocode"
	"github.com/BMANick25-26/Ballot-Events/internal/parsing"
)

var geocodeCommand = &cobra.Command{
	Use:   "geocode <location>",
	Short: "Resolve a single location through the cache and Nominatim",
	Long: `Resolves one free-text location exactly the way a build would: cache
first, then a country-biased Nominatim lookup with a raw fallback. The
outcome is persisted to the cache unless --no-cache is given, so a failed
lookup stays sticky for subsequent builds.`,
	Args: cobra.ExactArgs(1),
	RunE: runGeocodeCmd,
}

var (
	geocodeCache       string
	geocodeUserAgent   string
	geocodeCountryBias string
	geocodeNoCache     bool
)

func init() {
	geocodeCommand.Flags().StringVarP(&geocodeCache, "cache", "c", "", "Path to the geocode cache file")
	geocodeCommand.Flags().StringVar(&geocodeUserAgent, "user-agent", "", "User-Agent sent to Nominatim")
	geocodeCommand.Flags().StringVar(&geocodeCountryBias, "country-bias", "", "Country appended to the first lookup attempt")
	geocodeCommand.Flags().BoolVar(&geocodeNoCache, "no-cache", false, "Do not persist the lookup outcome")

	rootCmd.AddCommand(geocodeCommand)
}

func runGeocodeCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	location := args[0]

	defaults := config.Defaults()
	cachePath := geocodeCache
	if cachePath == "" {
		cachePath = os.Getenv("GEOCODE_CACHE")
	}
	if cachePath == "" {
		cachePath = defaults.Cache
	}
	userAgent := geocodeUserAgent
	if userAgent == "" {
		userAgent = os.Getenv("NOMINATIM_USER_AGENT")
	}
	countryBias := geocodeCountryBias
	if !cmd.Flags().Changed("country-bias") {
		countryBias = defaults.CountryBias
	}

	cache := geocode.LoadCache(cachePath)
	client := geocode.NewClient(&geocode.Options{UserAgent: userAgent})
	resolver := geocode.NewResolver(cache, client, defaults.Delay(), countryBias)

	key := parsing.CanonicalLocationKey(location)
	entry, fromCache, err := resolver.Resolve(ctx, key, location)
	if err != nil {
		return fmt.Errorf("geocoding failed: %w", err)
	}

	source := "lookup"
	if fromCache {
		source = "cache"
	}
	if entry.Found() {
		fmt.Fprintf(os.Stdout, "%s -> %.6f, %.6f (%s)\n", location, *entry.Lat, *entry.Lon, source)
		if entry.DisplayName != "" {
			fmt.Fprintf(os.Stdout, "  %s\n", entry.DisplayName)
		}
	} else {
		fmt.Fprintf(os.Stdout, "%s -> no result (%s)\n", location, source)
	}

	if !geocodeNoCache {
		if err := cache.Save(); err != nil {
			return fmt.Errorf("failed to persist cache: %w", err)
		}
	}
	return nil
}
