package cmd

import (
	"encoding/json"
	"fmt"

	"rewrite-manager/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkJSON bool

// checkCmd groups preflight checks.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Preflight checks against the catalog database",
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Verify the catalog and url_rewrite tables have the expected columns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		a, err := newApp(ctx, "check-schema")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := integrity.NewService(a.db, a.logger).CheckSchema(ctx)
		if err != nil {
			return err
		}

		if checkJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		}

		if !report.Matched {
			return fmt.Errorf("schema check failed")
		}
		a.logger.Info("Schema check passed", zap.Int("tables", len(report.Tables)))
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the report as JSON")
	checkCmd.AddCommand(schemaCmd)
	RootCmd.AddCommand(checkCmd)
}
