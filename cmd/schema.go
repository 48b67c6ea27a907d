package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"rackops/feature/schema"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// schemaCmd checks the Racktables tables rackops depends on
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check that the Racktables tables and columns used by rackops exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}

		db, err := e.connect()
		if err != nil {
			return err
		}
		defer e.close(db)

		report, err := schema.Check(cmd.Context(), db)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}

		if !report.Matched {
			e.logger.Warn("Schema mismatch", zap.Int("errors", len(report.Errors)))
			return fmt.Errorf("schema check failed with %d errors", len(report.Errors))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(schemaCmd)
}
