// =============================================================================
// Freight Accrual Coder - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration: where reports are picked up and written, where the reference
// tables come from, and the few tunables of the resolution pipeline.
//
// CONFIGURATION SOURCES (later wins):
//   1. Built-in defaults (setDefaults)
//   2. The YAML file named by --config (default: config.yaml)
//   3. Environment variables prefixed with ACCRUAL_
//      (e.g. ACCRUAL_REFERENCES_SOURCE=sheets, ACCRUAL_LOG_LEVEL=debug)
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for accrual / weekly batch reports.
	// Default: "./input"
	InputDir string `yaml:"input_dir" mapstructure:"input_dir"`

	// OutputDir receives the enriched workbooks and the run summary.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	// InputArchiveDir receives reports once they were processed successfully.
	// Only used when ArchiveInputs is true.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir" mapstructure:"input_archive_dir"`

	// ArchiveInputs moves processed reports to InputArchiveDir.
	// Default: false
	ArchiveInputs bool `yaml:"archive_inputs" mapstructure:"archive_inputs"`

	// InputPatterns are the glob patterns matched against file names in InputDir.
	InputPatterns []string `yaml:"input_patterns" mapstructure:"input_patterns"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`

	// LogFormat is "console" or "json".
	LogFormat string `yaml:"log_format" mapstructure:"log_format"`

	// =========================================================================
	// INPUT / OUTPUT SETTINGS
	// =========================================================================

	// InputSheet is the worksheet read from Excel reports. Empty means the
	// first sheet.
	InputSheet string `yaml:"input_sheet" mapstructure:"input_sheet"`

	// CSVSettings applies to .csv and .txt reports.
	CSVSettings CSVSettings `yaml:"csv_settings" mapstructure:"csv_settings"`

	// OutputFormat is "xlsx", "csv" or "xml" (accrual batch for bulk upload).
	OutputFormat string `yaml:"output_format" mapstructure:"output_format"`

	// OutputNameFormat defines the output file name.
	// Placeholders:
	//   {name}      - Input file name without extension
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	// The extension for OutputFormat is appended when missing.
	OutputNameFormat string `yaml:"output_name_format" mapstructure:"output_name_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of reports processed at once.
	// The reference index is shared read-only between them.
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`

	// ContinueOnError keeps processing other reports when one fails.
	ContinueOnError bool `yaml:"continue_on_error" mapstructure:"continue_on_error"`

	// CostCenterDecimals renders numeric cost centers with a fixed number of
	// decimals (312.1 -> 312.10000). 0 keeps the reference text untouched.
	CostCenterDecimals int `yaml:"cost_center_decimals" mapstructure:"cost_center_decimals"`

	// MatrixFile optionally replaces the built-in coding matrix.
	MatrixFile string `yaml:"matrix_file" mapstructure:"matrix_file"`

	// =========================================================================
	// REFERENCE DATA
	// =========================================================================

	// References locates the three reference tables.
	References ReferenceConfig `yaml:"references" mapstructure:"references"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing delimited reports.
type CSVSettings struct {
	// Delimiter is the field separator. Empty means: "," for .csv files and
	// sniffing ("\t", "|", ",", ";") for .txt files.
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`

	// Encoding is "auto", "utf-8", "windows-1252" or "utf-16".
	// "auto" decodes UTF-16 when NUL bytes are present, UTF-8 when valid and
	// Windows-1252 otherwise.
	Encoding string `yaml:"encoding" mapstructure:"encoding"`
}

// =============================================================================
// REFERENCE CONFIGURATION STRUCTURE
// =============================================================================

// ReferenceConfig tells the reference-data provider where to read from.
type ReferenceConfig struct {
	// Source is "file" or "sheets".
	Source string `yaml:"source" mapstructure:"source"`

	// LocationsFile is the location directory (address + code).
	LocationsFile string `yaml:"locations_file" mapstructure:"locations_file"`

	// MasterFile is the master location table (code + type + profit/cost center).
	MasterFile string `yaml:"master_file" mapstructure:"master_file"`

	// CodesFile is the allowed location codes list.
	CodesFile string `yaml:"codes_file" mapstructure:"codes_file"`

	// SpreadsheetURL is a Google Sheets workbook shared for reading.
	SpreadsheetURL string `yaml:"spreadsheet_url" mapstructure:"spreadsheet_url"`

	// LocationsTab, MasterTab and CodesTab are worksheet gids in the workbook.
	LocationsTab string `yaml:"locations_tab" mapstructure:"locations_tab"`
	MasterTab    string `yaml:"master_tab" mapstructure:"master_tab"`
	CodesTab     string `yaml:"codes_tab" mapstructure:"codes_tab"`

	// Timeout bounds each sheet download.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// OverlayFile optionally adds pending rows on top of the loaded tables.
	OverlayFile string `yaml:"overlay_file" mapstructure:"overlay_file"`
}

// Reference source kinds.
const (
	SourceFile   = "file"
	SourceSheets = "sheets"
)

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "ACCRUAL"

// Load reads the configuration.
//
// PARAMETERS:
//   - configPath: The path to the YAML configuration file.
//   - required: Fail when the file does not exist. When false a missing file
//     means "defaults plus environment".
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string, required bool) (*MainConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		_, statErr := os.Stat(configPath)
		switch {
		case statErr == nil:
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		case errors.Is(statErr, os.ErrNotExist) && !required:
			// Defaults and environment only.
		default:
			return nil, fmt.Errorf("failed to read config file: %w", statErr)
		}
	}

	var cfg MainConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&cfg)

	if err := validateMainConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is configured.
// Directories are not created.
func Default() *MainConfig {
	v := viper.New()
	setDefaults(v)
	var cfg MainConfig
	_ = v.Unmarshal(&cfg)
	applyMainConfigDefaults(&cfg)
	return &cfg
}

// setDefaults registers every key with viper so environment overrides reach
// Unmarshal even when the file does not mention the key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input_dir", "./input")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("input_archive_dir", "./input_archive")
	v.SetDefault("archive_inputs", false)
	v.SetDefault("input_patterns", []string{"*.xlsx", "*.xlsm", "*.csv", "*.txt"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("input_sheet", "")
	v.SetDefault("csv_settings.delimiter", "")
	v.SetDefault("csv_settings.encoding", "auto")
	v.SetDefault("output_format", "xlsx")
	v.SetDefault("output_name_format", "{name}_coded_{timestamp}")
	v.SetDefault("max_concurrency", 4)
	v.SetDefault("continue_on_error", true)
	v.SetDefault("cost_center_decimals", 5)
	v.SetDefault("matrix_file", "")
	v.SetDefault("references.source", SourceFile)
	v.SetDefault("references.locations_file", "./reference/my_location_table.xlsx")
	v.SetDefault("references.master_file", "./reference/master_location_table.xlsx")
	v.SetDefault("references.codes_file", "./reference/all_location_codes.xlsx")
	v.SetDefault("references.spreadsheet_url", "")
	v.SetDefault("references.locations_tab", "0")
	v.SetDefault("references.master_tab", "")
	v.SetDefault("references.codes_tab", "")
	v.SetDefault("references.timeout", 30*time.Second)
	v.SetDefault("references.overlay_file", "")
}

// applyMainConfigDefaults fills values that are invalid when left zero.
func applyMainConfigDefaults(config *MainConfig) {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 1
	}
	if config.OutputFormat == "" {
		config.OutputFormat = "xlsx"
	}
	config.OutputFormat = strings.ToLower(config.OutputFormat)
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = "auto"
	}
	if config.References.Source == "" {
		config.References.Source = SourceFile
	}
	config.References.Source = strings.ToLower(config.References.Source)
	if config.References.Timeout <= 0 {
		config.References.Timeout = 30 * time.Second
	}
	if config.CostCenterDecimals < 0 {
		config.CostCenterDecimals = 0
	}
}

// validateMainConfig validates the main configuration and creates the working
// directories.
func validateMainConfig(config *MainConfig) error {
	switch config.OutputFormat {
	case "xlsx", "csv", "xml":
	default:
		return fmt.Errorf("unsupported output_format %q (want xlsx, csv or xml)", config.OutputFormat)
	}

	switch config.References.Source {
	case SourceFile:
		if config.References.MasterFile == "" || config.References.CodesFile == "" {
			return fmt.Errorf("references.master_file and references.codes_file are required for the file source")
		}
	case SourceSheets:
		if config.References.SpreadsheetURL == "" {
			return fmt.Errorf("references.spreadsheet_url is required for the sheets source")
		}
	default:
		return fmt.Errorf("unsupported references.source %q (want %s or %s)", config.References.Source, SourceFile, SourceSheets)
	}

	dirs := []string{config.InputDir, config.OutputDir}
	if config.ArchiveInputs {
		dirs = append(dirs, config.InputArchiveDir)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}
