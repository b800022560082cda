// =============================================================================
// Freight Accrual Coder - Process Command
// =============================================================================
//
// This file defines the 'process' command, which is the main command for
// coding freight accrual reports. It orchestrates the entire run.
//
// COMMAND USAGE:
//   accrual process [flags]
//
// FLAGS:
//   --dry-run        : Code the reports without writing or archiving anything
//   --file           : Path to a specific report to process
//   --output-format  : Override the configured output format (xlsx, csv or xml)
//
// PROCESSING PIPELINE:
//   1. Load the configuration
//   2. Load and check the reference tables, build the reference index
//   3. Load the coding matrix
//   4. Discover the reports in the input directory
//   5. For each report (concurrently):
//      a. Read the report
//      b. Resolve codes, decide the responsible party, fill financials
//      c. Write the coded report
//      d. Archive the report
//   6. Write the run summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ginjaninja78/freight-accrual-coder/internal/config"
	"github.com/ginjaninja78/freight-accrual-coder/internal/converter"
	"github.com/ginjaninja78/freight-accrual-coder/internal/logger"
	"github.com/ginjaninja78/freight-accrual-coder/internal/matrix"
	"github.com/ginjaninja78/freight-accrual-coder/internal/pipeline"
	"github.com/ginjaninja78/freight-accrual-coder/internal/tableio"
	"github.com/ginjaninja78/freight-accrual-coder/pkg/utils"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun codes the reports without writing output files.
var dryRun bool

// filePath is the path to a specific report to process.
var filePath string

// outputFormat overrides the configured output format.
var outputFormat string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Code freight accrual reports",
	Long: `The process command scans the input directory for accrual reports and codes
every shipment against the reference tables.

Reports are processed concurrently. The reference index is built once and shared
by every report; errors in one report do not affect the others unless
continue_on_error is false.

On successful processing:
  - The coded report is placed in the output directory
  - The original report is moved to the input archive (archive_inputs)
  - A summary report is generated

On error:
  - The error is listed in the summary report
  - The original report remains in the input directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Code the reports without writing output files or archiving",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Path to a specific report to process instead of scanning the input directory",
	)

	processCmd.Flags().StringVar(
		&outputFormat,
		"output-format",
		"",
		"Output format, xlsx, csv or xml (default from config)",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess is the main function that orchestrates the run.
func runProcess(cmd *cobra.Command) error {
	startTime := time.Now()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Println("=== Freight Accrual Coder ===")
	fmt.Println("Loading configuration...")

	mainConfig, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if outputFormat != "" {
		switch strings.ToLower(outputFormat) {
		case tableio.FormatXLSX, tableio.FormatCSV, tableio.FormatXML:
			mainConfig.OutputFormat = strings.ToLower(outputFormat)
		default:
			return fmt.Errorf("unsupported output format %q (want xlsx, csv or xml)", outputFormat)
		}
	}

	log := newLogger(mainConfig)
	defer log.Sync()

	runID := uuid.New().String()
	log = log.WithFields(map[string]interface{}{"run_id": runID})

	// =========================================================================
	// STEP 2: LOAD REFERENCE DATA
	// =========================================================================

	fmt.Println("Loading reference data...")

	refs, err := loadReferences(ctx, mainConfig, log)
	if err != nil {
		if refs != nil && refs.validation != nil {
			printIssues(refs.validation)
		}
		return err
	}

	stats := refs.index.Stats()
	fmt.Printf("Loaded %d allowed code(s), %d address(es) from %s\n", stats.Codes, stats.Addresses, refs.source)
	if n := len(refs.validation.Warnings()); n > 0 {
		fmt.Printf("Reference data has %d warning(s); run 'accrual validate' for details\n", n)
	}

	// =========================================================================
	// STEP 3: LOAD CODING MATRIX
	// =========================================================================

	m, err := matrix.Load(mainConfig.MatrixFile)
	if err != nil {
		return fmt.Errorf("failed to load coding matrix: %w", err)
	}
	special, directions := m.Len()
	log.Debug("coding matrix loaded", map[string]interface{}{
		"file":       mainConfig.MatrixFile,
		"special":    special,
		"directions": directions,
	})

	p := pipeline.New(refs.index, m, mainConfig.CostCenterDecimals, log)

	// =========================================================================
	// STEP 4: DISCOVER INPUT FILES
	// =========================================================================

	files := utils.NewFileManager(
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.ArchiveInputs && !dryRun,
	)
	if !dryRun {
		if err := files.EnsureDirectories(); err != nil {
			return err
		}
	}

	inputFiles, err := inputReports(files, mainConfig)
	if err != nil {
		return err
	}
	if len(inputFiles) == 0 {
		fmt.Println("No reports found in the input directory.")
		return nil
	}

	fmt.Printf("Found %d report(s) to process\n", len(inputFiles))

	// =========================================================================
	// STEP 5: PROCESS FILES CONCURRENTLY
	// =========================================================================

	fmt.Println("Processing reports...")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := processReports(runCtx, cancel, inputFiles, mainConfig, p, files, log)

	// =========================================================================
	// STEP 6: COLLECT RESULTS AND GENERATE SUMMARY
	// =========================================================================

	summary := utils.ProcessingSummary{
		RunID:          runID,
		StartTime:      startTime,
		Reference:      refs.source,
		ReferenceCodes: stats.Codes,
		Collisions:     stats.Collisions(),
		TotalFiles:     len(inputFiles),
	}

	for result := range results {
		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
			})
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(result.FilePath), result.Error)
			continue
		}

		coding := result.Stats.Coding
		summary.SuccessfulFiles++
		summary.TotalRows += coding.Rows
		summary.Unknown += coding.Unknown
		summary.ThirdParty += coding.ThirdParty
		summary.NonCintasFinals += coding.NonCintasFinals
		summary.Wiped += coding.Wiped
		summary.Overrides += coding.OverridesApplied
		summary.Accurate += coding.Accurate
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   result.FilePath,
			OutputFile:  result.OutputFile,
			ArchivePath: result.ArchivePath,
			Rows:        coding.Rows,
			Unknown:     coding.Unknown,
			Accurate:    coding.Accurate,
			ProcessTime: result.Stats.ProcessingTime,
		})

		target := result.OutputFile
		if dryRun {
			target = "(dry run)"
		}
		fmt.Printf("  ✓ %s -> %s (%d rows)\n", filepath.Base(result.FilePath), target, coding.Rows)
	}
	summary.EndTime = time.Now()

	// =========================================================================
	// STEP 7: PRINT SUMMARY
	// =========================================================================

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total reports:   %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	fmt.Printf("Rows coded:      %d\n", summary.TotalRows)
	fmt.Printf("Accuracy:        %.1f%%\n", summary.AccuracyRate())
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	if !dryRun {
		path, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir)
		if err != nil {
			log.Warn("failed to write summary log", map[string]interface{}{"error": err.Error()})
		} else {
			fmt.Printf("Summary:         %s\n", path)
		}
	}

	if summary.FailedFiles > 0 && !mainConfig.ContinueOnError {
		return fmt.Errorf("%d of %d report(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// inputReports returns the reports of the run: the --file report, or the
// reports discovered in the input directory.
func inputReports(files *utils.FileManager, mainConfig *config.MainConfig) ([]string, error) {
	if filePath == "" {
		inputFiles, err := files.DiscoverInputFiles(mainConfig.InputPatterns...)
		if err != nil {
			return nil, fmt.Errorf("failed to discover input files: %w", err)
		}
		return inputFiles, nil
	}

	if !utils.FileExists(filePath) {
		return nil, fmt.Errorf("report %s does not exist", filePath)
	}
	if !tableio.Supported(filePath) {
		return nil, fmt.Errorf("unsupported report type %q (want .xlsx, .xlsm, .csv or .txt)", filepath.Ext(filePath))
	}
	return []string{filePath}, nil
}

// processReports codes the reports with at most MaxConcurrency jobs at once.
// The returned channel is closed once every report has a result.
//
// When ContinueOnError is false the first failure cancels the run; reports
// that had not started yet fail with the cancellation.
func processReports(
	ctx context.Context,
	cancel context.CancelFunc,
	inputFiles []string,
	mainConfig *config.MainConfig,
	p *pipeline.Pipeline,
	files *utils.FileManager,
	log logger.Logger,
) <-chan converter.Result {
	var wg sync.WaitGroup

	results := make(chan converter.Result, len(inputFiles))

	limit := mainConfig.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	for _, file := range inputFiles {
		wg.Add(1)

		go func(filePath string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results <- converter.Result{
					FilePath: filePath,
					Error:    fmt.Errorf("skipped: %w", err),
				}
				return
			}

			conv := converter.New(filePath, mainConfig, p, files, log,
				converter.WithDryRun(dryRun),
			)
			result := conv.Run(ctx)
			if !result.Success && !mainConfig.ContinueOnError {
				cancel()
			}
			results <- result
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
