package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BMANick25-26/Ballot-Events/internal/schemas"
)

var validateCommand = &cobra.Command{
	Use:   "validate <events.json>",
	Short: "Validate an events document against the output schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidateCmd,
}

var validateSchemaPath string

func init() {
	validateCommand.Flags().StringVar(&validateSchemaPath, "schema", "", "Path to the events schema (defaults to the bundled schemas/events.schema.json)")

	rootCmd.AddCommand(validateCommand)
}

func runValidateCmd(_ *cobra.Command, args []string) error {
	jsonPath := args[0]

	schemaPath := validateSchemaPath
	if schemaPath == "" {
		schemaPath = schemas.ResolveSchemaPath(schemas.EventsSchemaRelPath)
	}
	if schemaPath == "" {
		return fmt.Errorf("events schema not found; pass --schema explicitly")
	}

	if err := schemas.ValidateJSON(schemaPath, jsonPath); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s is valid\n", jsonPath)
	return nil
}
