// =============================================================================
// Freight Accrual Coder - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version and build information.
//
// COMMAND USAGE:
//   accrual version
//
// OUTPUT:
//   Freight Accrual Coder
//   Version:    1.2.0
//   Build Date: 2026-10-01
//   Go Version: go1.22.0
//   Matrix:     v1 (3 special pair(s), 20 direction(s))
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/ginjaninja78/freight-accrual-coder/internal/matrix"
	"github.com/spf13/cobra"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/freight-accrual-coder/cmd.Version=1.2.0'"

// Version is the application version.
// Set at build time using ldflags.
var Version = "1.2.0"

// BuildDate is the date the application was built.
// Set at build time using ldflags.
var BuildDate = "unknown"

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, Go runtime version and the built-in coding matrix.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Freight Accrual Coder")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Go Version: %s\n", runtime.Version())

		m, err := matrix.Default()
		if err != nil {
			fmt.Printf("Matrix:     invalid (%v)\n", err)
			return
		}
		special, directions := m.Len()
		fmt.Printf("Matrix:     v%d (%d special pair(s), %d direction(s))\n", m.Version(), special, directions)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the version command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}
