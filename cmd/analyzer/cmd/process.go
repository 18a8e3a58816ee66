package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-statement-pipeline/cmd/analyzer/config"
	"golang-statement-pipeline/internal/classify"
	"golang-statement-pipeline/internal/insights"
	"golang-statement-pipeline/internal/pipeline"
	"golang-statement-pipeline/internal/reporter"
	"golang-statement-pipeline/internal/store"
	"golang-statement-pipeline/pkg/logger"
)

// Flags for the process command
var (
	inputFile           string
	fileType            string
	outputFormat        string
	outputFile          string
	databasePath        string
	disableAI           bool
	apiKey              string
	modelName           string
	includeTransactions bool
	showProgress        bool
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a bank statement file",
	Long: `Process extracts transactions from a bank statement export, classifies
them into spending categories, and produces an analysis report.

The file format is inferred from the file extension unless --file-type is
given. Classification uses the Gemini API when an API key is configured
(--api-key or GEMINI_API_KEY); otherwise a keyword fallback is used.

Examples:
  # Basic processing with text output
  analyzer process --file statement.csv

  # JSON report to a file, persisted to a local database
  analyzer process --file statement.xlsx \
    --output-format json --output-file report.json --db statements.db

  # Without the external classifier
  analyzer process --file statement.pdf --no-ai

  # Include the full transaction listing in the report
  analyzer process --file statement.csv --include-transactions`,

	PreRunE: validateProcessFlags,
	RunE:    runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	// Required flags
	processCmd.Flags().StringVarP(&inputFile, "file", "i", "", "path to the statement file (required)")

	// Input flags
	processCmd.Flags().StringVarP(&fileType, "file-type", "t", "", "file type: csv, tsv, xlsx, pdf, txt (default: from extension)")

	// Output flags
	processCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "text", "output format: text, json, csv")
	processCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	processCmd.Flags().BoolVar(&includeTransactions, "include-transactions", false, "include the full transaction listing in the report")

	// Persistence flags
	processCmd.Flags().StringVar(&databasePath, "db", "", "sqlite database path for persisting results (optional)")

	// Classification flags
	processCmd.Flags().BoolVar(&disableAI, "no-ai", false, "disable the external classifier; use keyword fallback only")
	processCmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	processCmd.Flags().StringVar(&modelName, "model", classify.DefaultModelName, "Gemini model name")
	processCmd.Flags().DurationP("timeout", "", 0, "overall processing deadline (default 5m)")

	// UI flags
	processCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")

	// Mark required flags
	processCmd.MarkFlagRequired("file")

	// Bind flags to viper
	viper.BindPFlag("file", processCmd.Flags().Lookup("file"))
	viper.BindPFlag("file-type", processCmd.Flags().Lookup("file-type"))
	viper.BindPFlag("output-format", processCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", processCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("db", processCmd.Flags().Lookup("db"))
	viper.BindPFlag("no-ai", processCmd.Flags().Lookup("no-ai"))
	viper.BindPFlag("api-key", processCmd.Flags().Lookup("api-key"))
	viper.BindPFlag("model", processCmd.Flags().Lookup("model"))
	viper.BindPFlag("timeout", processCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("include-transactions", processCmd.Flags().Lookup("include-transactions"))
	viper.BindPFlag("progress", processCmd.Flags().Lookup("progress"))
}

func validateProcessFlags(cmd *cobra.Command, args []string) error {
	inputFile = viper.GetString("file")
	outputFile = viper.GetString("output-file")

	if inputFile == "" {
		return fmt.Errorf("file is required")
	}

	if err := validateFileExists(inputFile, "statement file"); err != nil {
		return err
	}

	if _, err := reporter.ParseOutputFormat(viper.GetString("output-format")); err != nil {
		return fmt.Errorf("invalid output format '%s'. Valid formats: text, json, csv", viper.GetString("output-format"))
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadProcessConfig()
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(config.CreateLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobalLogger(log)

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Processing statement...\n")
		fmt.Fprintf(os.Stderr, "File: %s\n", cfg.FilePath)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", cfg.OutputFormat)
		if cfg.OutputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", cfg.OutputFile)
		}
		if !cfg.AIEnabled() {
			fmt.Fprintf(os.Stderr, "External classifier disabled; using keyword fallback\n")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	data, err := os.ReadFile(cfg.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read statement file: %w", err)
	}

	resolvedType := cfg.FileType
	if resolvedType == "" {
		resolvedType = strings.TrimPrefix(filepath.Ext(cfg.FilePath), ".")
	}

	options := pipeline.Options{
		Classify:   config.CreateClassifyConfig(),
		SourceName: filepath.Base(cfg.FilePath),
		Logger:     log,
	}

	if cfg.AIEnabled() {
		classifier, err := classify.NewGeminiClassifier(ctx, cfg.APIKey, cfg.Model, log)
		if err != nil {
			return err
		}
		options.Classifier = classifier

		generator, err := insights.NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model, log)
		if err != nil {
			return err
		}
		options.InsightGenerator = generator
	}

	if cfg.DatabasePath != "" {
		sqliteStore, err := store.NewSQLiteStore(cfg.DatabasePath, log)
		if err != nil {
			return err
		}
		defer sqliteStore.Close()
		options.Store = sqliteStore
	}

	processor, err := pipeline.NewProcessor(options)
	if err != nil {
		return err
	}

	if cfg.ShowProgress {
		fmt.Fprintf(os.Stderr, "Processing %s...\n", filepath.Base(cfg.FilePath))
	}

	statement, err := processor.ProcessStatement(ctx, data, resolvedType)
	if err != nil {
		return err
	}

	// Generate report
	reportConfig := config.CreateReportConfig(cfg.OutputFormat, cfg.IncludeTransactions)
	generator, err := reporter.NewSafeReportGenerator(reportConfig, log)
	if err != nil {
		return err
	}

	if cfg.OutputFile != "" {
		if err := generator.WriteReportFile(statement, cfg.OutputFile); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
	} else {
		if err := generator.GenerateReportSafely(statement, os.Stdout); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
	}

	// Show completion message
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nProcessing completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Statement ID: %s\n", statement.StatementID)
		fmt.Fprintf(os.Stderr, "Bank: %s\n", statement.BankName)
		fmt.Fprintf(os.Stderr, "Processed %d transactions in %dms.\n",
			len(statement.Transactions), statement.ProcessingTime)
	}

	return nil
}
