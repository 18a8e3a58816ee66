// Package config builds typed runtime configuration for the analyzer CLI
// from viper-bound flags, config files, and environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"golang-statement-pipeline/internal/classify"
	"golang-statement-pipeline/internal/reporter"
	"golang-statement-pipeline/pkg/logger"
)

// ProcessConfig carries everything the process command needs.
type ProcessConfig struct {
	FilePath     string
	FileType     string
	OutputFormat reporter.OutputFormat
	OutputFile   string

	DatabasePath string

	// Classification settings
	DisableAI bool
	APIKey    string
	Model     string

	// Overall deadline for one statement run.
	Timeout time.Duration

	IncludeTransactions bool
	ShowProgress        bool
}

// LoadProcessConfig reads the process command configuration from viper.
// Flag, config file, and environment values have already been merged by
// the time this runs.
func LoadProcessConfig() (*ProcessConfig, error) {
	format, err := reporter.ParseOutputFormat(viper.GetString("output-format"))
	if err != nil {
		return nil, err
	}

	cfg := &ProcessConfig{
		FilePath:            viper.GetString("file"),
		FileType:            viper.GetString("file-type"),
		OutputFormat:        format,
		OutputFile:          viper.GetString("output-file"),
		DatabasePath:        viper.GetString("db"),
		DisableAI:           viper.GetBool("no-ai"),
		APIKey:              viper.GetString("api-key"),
		Model:               viper.GetString("model"),
		Timeout:             viper.GetDuration("timeout"),
		IncludeTransactions: viper.GetBool("include-transactions"),
		ShowProgress:        viper.GetBool("progress"),
	}

	if cfg.Model == "" {
		cfg.Model = classify.DefaultModelName
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration values.
func (c *ProcessConfig) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("file is required")
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1s, got %v", c.Timeout)
	}
	return nil
}

// AIEnabled reports whether the external classifier should be used.
// --no-ai wins; otherwise an API key must be present.
func (c *ProcessConfig) AIEnabled() bool {
	return !c.DisableAI && c.APIKey != ""
}

// CreateClassifyConfig builds the classification configuration with CLI
// overrides applied.
func CreateClassifyConfig() classify.Config {
	cfg := classify.DefaultConfig()

	if v := viper.GetInt("grouping-threshold"); v > 0 {
		cfg.GroupingThreshold = v
	}
	if v := viper.GetInt("max-ai-calls"); v > 0 {
		cfg.MaxDirectClassifications = v
	}

	return cfg
}

// CreateReportConfig builds the reporter configuration for the selected
// output format.
func CreateReportConfig(format reporter.OutputFormat, includeTransactions bool) *reporter.ReportConfig {
	cfg := reporter.DefaultReportConfig()
	cfg.Format = format
	cfg.IncludeTransactions = includeTransactions
	return cfg
}

// CreateLoggerConfig builds the logger configuration from global flags.
// Logs go to stderr so report output on stdout stays clean.
func CreateLoggerConfig() *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Output = logger.StderrOutput

	if viper.GetBool("verbose") {
		cfg.Level = logger.DebugLevel
	} else {
		cfg.Level = logger.WarnLevel
	}

	if viper.GetString("log-format") == "json" {
		cfg.Format = logger.JSONFormat
	} else {
		cfg.Format = logger.TextFormat
	}

	return cfg
}
