package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"golang-statement-pipeline/internal/classify"
	"golang-statement-pipeline/internal/reporter"
	"golang-statement-pipeline/pkg/logger"
)

func setViper(t *testing.T, settings map[string]interface{}) {
	t.Helper()
	viper.Reset()
	for key, value := range settings {
		viper.Set(key, value)
	}
	t.Cleanup(viper.Reset)
}

func TestLoadProcessConfigDefaults(t *testing.T) {
	setViper(t, map[string]interface{}{
		"file":          "statement.csv",
		"output-format": "text",
	})

	cfg, err := LoadProcessConfig()
	if err != nil {
		t.Fatalf("LoadProcessConfig failed: %v", err)
	}

	if cfg.FilePath != "statement.csv" {
		t.Errorf("unexpected file path: %s", cfg.FilePath)
	}
	if cfg.OutputFormat != reporter.FormatText {
		t.Errorf("unexpected output format: %s", cfg.OutputFormat)
	}
	if cfg.Model != classify.DefaultModelName {
		t.Errorf("expected default model, got %s", cfg.Model)
	}
	if cfg.Timeout != 5*time.Minute {
		t.Errorf("expected default timeout 5m, got %v", cfg.Timeout)
	}
}

func TestLoadProcessConfigOverrides(t *testing.T) {
	setViper(t, map[string]interface{}{
		"file":                 "statement.xlsx",
		"file-type":            "xlsx",
		"output-format":        "json",
		"output-file":          "report.json",
		"db":                   "statements.db",
		"no-ai":                true,
		"api-key":              "test-key",
		"model":                "gemini-2.5-flash",
		"timeout":              "90s",
		"include-transactions": true,
	})

	cfg, err := LoadProcessConfig()
	if err != nil {
		t.Fatalf("LoadProcessConfig failed: %v", err)
	}

	if cfg.FileType != "xlsx" {
		t.Errorf("unexpected file type: %s", cfg.FileType)
	}
	if cfg.OutputFormat != reporter.FormatJSON {
		t.Errorf("unexpected output format: %s", cfg.OutputFormat)
	}
	if cfg.DatabasePath != "statements.db" {
		t.Errorf("unexpected database path: %s", cfg.DatabasePath)
	}
	if cfg.Model != "gemini-2.5-flash" {
		t.Errorf("unexpected model: %s", cfg.Model)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("unexpected timeout: %v", cfg.Timeout)
	}
	if !cfg.IncludeTransactions {
		t.Error("expected include-transactions to be set")
	}
}

func TestLoadProcessConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]interface{}
	}{
		{
			name: "missing file",
			settings: map[string]interface{}{
				"output-format": "text",
			},
		},
		{
			name: "invalid output format",
			settings: map[string]interface{}{
				"file":          "statement.csv",
				"output-format": "yaml",
			},
		},
		{
			name: "timeout too short",
			settings: map[string]interface{}{
				"file":          "statement.csv",
				"output-format": "text",
				"timeout":       "100ms",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setViper(t, tt.settings)
			if _, err := LoadProcessConfig(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAIEnabled(t *testing.T) {
	tests := []struct {
		name      string
		disableAI bool
		apiKey    string
		want      bool
	}{
		{name: "key present", apiKey: "key", want: true},
		{name: "no key", want: false},
		{name: "disabled despite key", disableAI: true, apiKey: "key", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ProcessConfig{DisableAI: tt.disableAI, APIKey: tt.apiKey}
			if got := cfg.AIEnabled(); got != tt.want {
				t.Errorf("AIEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateClassifyConfig(t *testing.T) {
	setViper(t, map[string]interface{}{})
	cfg := CreateClassifyConfig()
	if cfg != classify.DefaultConfig() {
		t.Errorf("expected defaults without overrides, got %+v", cfg)
	}

	setViper(t, map[string]interface{}{
		"grouping-threshold": 50,
		"max-ai-calls":       10,
	})
	cfg = CreateClassifyConfig()
	if cfg.GroupingThreshold != 50 {
		t.Errorf("unexpected grouping threshold: %d", cfg.GroupingThreshold)
	}
	if cfg.MaxDirectClassifications != 10 {
		t.Errorf("unexpected max direct classifications: %d", cfg.MaxDirectClassifications)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("overridden config should be valid: %v", err)
	}
}

func TestCreateReportConfig(t *testing.T) {
	cfg := CreateReportConfig(reporter.FormatCSV, true)
	if cfg.Format != reporter.FormatCSV {
		t.Errorf("unexpected format: %s", cfg.Format)
	}
	if !cfg.IncludeTransactions {
		t.Error("expected include transactions")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("report config should be valid: %v", err)
	}
}

func TestCreateLoggerConfig(t *testing.T) {
	setViper(t, map[string]interface{}{"verbose": true, "log-format": "json"})
	cfg := CreateLoggerConfig()
	if cfg.Level != logger.DebugLevel {
		t.Errorf("expected debug level when verbose, got %s", cfg.Level)
	}
	if cfg.Format != logger.JSONFormat {
		t.Errorf("expected json format, got %s", cfg.Format)
	}
	if cfg.Output != logger.StderrOutput {
		t.Errorf("logs must go to stderr, got %s", cfg.Output)
	}

	setViper(t, map[string]interface{}{})
	cfg = CreateLoggerConfig()
	if cfg.Level != logger.WarnLevel {
		t.Errorf("expected warn level by default, got %s", cfg.Level)
	}
}
