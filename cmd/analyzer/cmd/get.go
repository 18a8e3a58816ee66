package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-statement-pipeline/cmd/analyzer/config"
	"golang-statement-pipeline/internal/reporter"
	"golang-statement-pipeline/internal/store"
	"golang-statement-pipeline/pkg/logger"
)

var (
	getStatementID string
	getDBPath      string
)

// getCmd retrieves a previously processed statement from the database.
var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Retrieve a processed statement from the database",
	Long: `Get loads a previously processed statement by ID from the sqlite
database and renders it in the requested output format.

Examples:
  analyzer get --id 6f1c9a2e-1b2d-4c3e-9f8a-7e6d5c4b3a21 --db statements.db
  analyzer get --id 6f1c9a2e-... --db statements.db --output-format json`,

	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVar(&getStatementID, "id", "", "statement ID (required)")
	getCmd.Flags().StringVar(&getDBPath, "db", "", "sqlite database path (required)")
	getCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "text", "output format: text, json, csv")
	getCmd.Flags().BoolVar(&includeTransactions, "include-transactions", false, "include the full transaction listing in the report")

	getCmd.MarkFlagRequired("id")
	getCmd.MarkFlagRequired("db")
}

func runGet(cmd *cobra.Command, args []string) error {
	if getStatementID == "" {
		return fmt.Errorf("id is required")
	}
	if getDBPath == "" {
		return fmt.Errorf("db is required")
	}
	format, err := reporter.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(config.CreateLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobalLogger(log)

	sqliteStore, err := store.NewSQLiteStore(getDBPath, log)
	if err != nil {
		return err
	}
	defer sqliteStore.Close()

	statement, err := sqliteStore.Get(context.Background(), getStatementID)
	if err != nil {
		return err
	}

	generator, err := reporter.NewSafeReportGenerator(
		config.CreateReportConfig(format, includeTransactions), log)
	if err != nil {
		return err
	}

	if err := generator.GenerateReportSafely(statement, os.Stdout); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Retrieved statement %s (%s)\n",
			statement.StatementID, statement.Status)
	}

	return nil
}
