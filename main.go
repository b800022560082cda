// =============================================================================
// Freight Accrual Coder - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Freight Accrual Coder CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   accrual process       - Code every report in the input directory
//   accrual validate      - Check the reference tables and the coding matrix
//   accrual version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Location code resolution, coding matrix, reference
//                      data and report I/O (not for external import)
//   - pkg/           : Shared file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/freight-accrual-coder/cmd"
)

func main() {
	cmd.Execute()
}
