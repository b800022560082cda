// =============================================================================
// Freight Accrual Coder - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It loads the configuration, the
// reference tables and the coding matrix exactly like 'process' does, prints
// every finding and exits without touching any report.
//
// COMMAND USAGE:
//   accrual validate
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/freight-accrual-coder/internal/matrix"
	"github.com/ginjaninja78/freight-accrual-coder/internal/validation"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration, reference tables and coding matrix",
	Long: `The validate command loads the reference tables and the coding matrix and
reports missing columns, empty tables and reference collisions. Nothing is
processed or written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command) error {
	mainConfig, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := newLogger(mainConfig)
	defer log.Sync()

	fmt.Println("=== Freight Accrual Coder - Validation ===")

	refs, err := loadReferences(cmd.Context(), mainConfig, log)
	if refs != nil && refs.validation != nil {
		printIssues(refs.validation)
	}
	if err != nil {
		return err
	}

	stats := refs.index.Stats()
	fmt.Printf("\nReference source:   %s\n", refs.source)
	if refs.pending > 0 {
		fmt.Printf("Overlay rows:       %d\n", refs.pending)
	}
	fmt.Printf("Allowed codes:      %d\n", stats.Codes)
	fmt.Printf("Addresses:          %d (%d collision(s))\n", stats.Addresses, stats.AddressCollisions)
	fmt.Printf("Type codes:         %d (%d collision(s))\n", stats.Types, stats.TypeCollisions)
	fmt.Printf("Financial entries:  %d (%d collision(s))\n", stats.FinancialEntries, stats.FinancialCollisions)

	m, err := matrix.Load(mainConfig.MatrixFile)
	if err != nil {
		return fmt.Errorf("failed to load coding matrix: %w", err)
	}
	special, directions := m.Len()
	name := mainConfig.MatrixFile
	if name == "" {
		name = "built-in"
	}
	fmt.Printf("Coding matrix:      %s (%d special pair(s), %d direction(s))\n", name, special, directions)

	fmt.Println("\nConfiguration is valid.")
	return nil
}

// printIssues prints the validation findings, errors first.
func printIssues(result *validation.Result) {
	if len(result.Issues) == 0 {
		fmt.Println("No reference data issues found.")
		return
	}

	fmt.Printf("Reference data: %d error(s), %d warning(s)\n", result.ErrorCount, result.WarningCount)
	for _, severity := range []string{validation.SeverityError, validation.SeverityWarning} {
		for _, issue := range result.Issues {
			if issue.Severity == severity {
				fmt.Printf("  %s\n", issue)
			}
		}
	}
}
