package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BMANick25-26/Ballot-Events/internal/config"
	"github.com/BMANick25-26/Ballot-Events/internal/pipeline"
)

var buildCommand = &cobra.Command{
	Use:   "build",
	Short: "Run the full build: spreadsheet -> geocoded events JSON",
	Long: `Loads every sheet of the events spreadsheet, normalizes rows into event
records, resolves each distinct location through the geocode cache (querying
Nominatim only for locations never seen before), and writes the output JSON.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values; environment variables (EXCEL_PATH,
GEOCODE_CACHE, EVENTS_OUT, NOMINATIM_USER_AGENT) fill remaining gaps.`,
	RunE: runBuildCmd,
}

var (
	buildConfigPath   string
	buildExcel        string
	buildCache        string
	buildOut          string
	buildUserAgent    string
	buildBaseURL      string
	buildCountryBias  string
	buildDelayMS      int
	buildTimeoutSec   int
	buildSkipValidate bool
	buildVerbose      bool
)

func init() {
	// Config file flag (processed first)
	buildCommand.Flags().StringVar(&buildConfigPath, "config", "", "Path to config JSON file (values can be overridden by other flags)")

	buildCommand.Flags().StringVarP(&buildExcel, "excel", "x", "", "Path to the source spreadsheet")
	buildCommand.Flags().StringVarP(&buildCache, "cache", "c", "", "Path to the geocode cache file")
	buildCommand.Flags().StringVarP(&buildOut, "out", "o", "", "Path to the output events JSON")
	buildCommand.Flags().StringVar(&buildUserAgent, "user-agent", "", "User-Agent sent to Nominatim (identify yourself per the usage policy)")
	buildCommand.Flags().StringVar(&buildBaseURL, "base-url", "", "Nominatim endpoint override")
	buildCommand.Flags().StringVar(&buildCountryBias, "country-bias", "", "Country appended to the first lookup attempt for each location")
	buildCommand.Flags().IntVar(&buildDelayMS, "delay-ms", 0, "Minimum milliseconds between external geocoding calls")
	buildCommand.Flags().IntVar(&buildTimeoutSec, "timeout-sec", 0, "HTTP timeout per geocoding call, in seconds")
	buildCommand.Flags().BoolVar(&buildSkipValidate, "skip-validate", false, "Skip schema validation of the written output")
	buildCommand.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "Print detailed build information")

	rootCmd.AddCommand(buildCommand)
}

func runBuildCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if buildConfigPath != "" {
		loadedCfg, err := config.LoadConfig(buildConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
		if buildVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", buildConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority).
	// Only override if the flag was explicitly set.
	if cmd.Flags().Changed("excel") {
		cfg.Excel = buildExcel
	}
	if cmd.Flags().Changed("cache") {
		cfg.Cache = buildCache
	}
	if cmd.Flags().Changed("out") {
		cfg.Out = buildOut
	}
	if cmd.Flags().Changed("user-agent") {
		cfg.UserAgent = buildUserAgent
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = buildBaseURL
	}
	if cmd.Flags().Changed("country-bias") {
		cfg.CountryBias = buildCountryBias
	}
	if cmd.Flags().Changed("delay-ms") {
		cfg.DelayMS = buildDelayMS
	}
	if cmd.Flags().Changed("timeout-sec") {
		cfg.TimeoutSec = buildTimeoutSec
	}
	if cmd.Flags().Changed("skip-validate") {
		cfg.SkipValidate = buildSkipValidate
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = buildVerbose
	}

	// Step 3: Environment fallbacks for unset values
	if cfg.Excel == "" {
		cfg.Excel = os.Getenv("EXCEL_PATH")
	}
	if cfg.Cache == "" {
		cfg.Cache = os.Getenv("GEOCODE_CACHE")
	}
	if cfg.Out == "" {
		cfg.Out = os.Getenv("EVENTS_OUT")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = os.Getenv("NOMINATIM_USER_AGENT")
	}

	// Step 4: Apply defaults and validate
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := pipeline.RunOptions{
		ExcelPath:    cfg.Excel,
		CachePath:    cfg.Cache,
		OutPath:      cfg.Out,
		UserAgent:    cfg.UserAgent,
		BaseURL:      cfg.BaseURL,
		Timeout:      cfg.Timeout(),
		Delay:        cfg.Delay(),
		CountryBias:  cfg.CountryBias,
		SkipValidate: cfg.SkipValidate,
		Verbose:      cfg.Verbose,
	}

	_, err := pipeline.Run(ctx, opts)
	return err
}
