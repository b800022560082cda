// =============================================================================
// Freight Accrual Coder - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'process', 'validate') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (accrual)
//   ├── processCmd (accrual process)
//   ├── validateCmd (accrual validate)
//   └── versionCmd (accrual version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration through Viper
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/freight-accrual-coder/internal/config"
	"github.com/ginjaninja78/freight-accrual-coder/internal/logger"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose forces debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "accrual",
	Short: "Freight Accrual Coder - Resolve location codes and the responsible party of freight accruals",

	Long: `Freight Accrual Coder reads weekly freight accrual reports and codes every
shipment: it resolves the consignor and consignee location codes, decides the
responsible party and fills in the profit center, cost center and GL account.

Key Features:
  - Excel (.xlsx/.xlsm) and delimited (.csv/.txt) reports
  - Reference tables from local files or a shared Google Sheets workbook
  - Replaceable coding matrix (YAML)
  - Concurrent processing of several reports
  - Automation accuracy against the profit center already in the report

Example Usage:
  accrual process                        # Code every report in the input directory
  accrual process --file weekly.xlsx     # Code a single report
  accrual process --config ./prod.yaml   # Use a custom configuration file
  accrual validate                       # Check the reference tables only`,

	// Execute prints errors itself; processing errors do not print the usage.
	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadConfig loads the main configuration. The default config.yaml may be
// absent; a path given explicitly with --config must exist.
func loadConfig(cmd *cobra.Command) (*config.MainConfig, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newLogger builds the structured logger for the configuration.
func newLogger(cfg *config.MainConfig) logger.Logger {
	return logger.NewStructured(cfg.LogLevel, cfg.LogFormat)
}
