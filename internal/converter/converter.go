// =============================================================================
// Freight Accrual Coder - Converter Module
// =============================================================================
//
// This module orchestrates the coding of a single accrual report, from reading
// the file to writing the enriched workbook.
//
// CONVERSION PIPELINE:
//   1. Read the report (xlsx, xlsm, csv or txt)
//   2. Check that the report names at least one party
//   3. Run the coding pipeline over every record
//   4. Write the coded report to the output directory
//   5. Archive the processed report
//
// CONCURRENCY:
//   Each report is processed in its own goroutine. A Converter owns its table;
//   the pipeline and its reference index are shared read-only.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/freight-accrual-coder/internal/config"
	"github.com/ginjaninja78/freight-accrual-coder/internal/logger"
	"github.com/ginjaninja78/freight-accrual-coder/internal/pipeline"
	"github.com/ginjaninja78/freight-accrual-coder/internal/tableio"
	"github.com/ginjaninja78/freight-accrual-coder/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single report.
type Result struct {
	// FilePath is the path to the report that was processed.
	FilePath string

	// OutputFile is the path to the coded report.
	// This is empty if processing failed or on a dry run.
	OutputFile string

	// ArchivePath is where the report was moved to, if it was archived.
	ArchivePath string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Coding holds the per-record outcome counts of the pipeline.
	Coding pipeline.Stats

	// MissingFields lists canonical fields the report had no column for.
	MissingFields []string

	// ProcessingTime is the time taken to process the report.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the coding of a single report.
type Converter struct {
	filePath   string
	mainConfig *config.MainConfig
	pipeline   *pipeline.Pipeline
	files      *utils.FileManager
	logger     logger.Logger

	// outputFormat overrides mainConfig.OutputFormat when set.
	outputFormat string

	// dryRun skips writing and archiving.
	dryRun bool
}

// Option customizes a Converter.
type Option func(*Converter)

// WithDryRun codes the report without writing or archiving anything.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) { c.dryRun = dryRun }
}

// WithOutputFormat overrides the configured output format.
func WithOutputFormat(format string) Option {
	return func(c *Converter) { c.outputFormat = format }
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - filePath: The path to the report.
//   - mainConfig: The main application configuration.
//   - p: The coding pipeline shared by all reports of the run.
//   - files: The file manager used for output naming and archival.
//   - log: Logger, nil discards.
//
// RETURNS:
//   - A new Converter instance.
func New(filePath string, mainConfig *config.MainConfig, p *pipeline.Pipeline, files *utils.FileManager, log logger.Logger, opts ...Option) *Converter {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	c := &Converter{
		filePath:   filePath,
		mainConfig: mainConfig,
		pipeline:   p,
		files:      files,
		logger:     log.WithFields(map[string]interface{}{"file": filepath.Base(filePath)}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the coding pipeline for the report.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run(ctx context.Context) (result Result) {
	startTime := time.Now()
	result = Result{FilePath: c.filePath}
	defer func() { result.Stats.ProcessingTime = time.Since(startTime) }()

	c.logger.Info("processing report", nil)

	// =========================================================================
	// STEP 1: READ REPORT
	// =========================================================================

	report, err := tableio.Read(c.filePath, tableio.ReadOptions{
		Sheet: c.mainConfig.InputSheet,
		CSV:   c.mainConfig.CSVSettings,
	})
	if err != nil {
		result.Error = fmt.Errorf("failed to read report: %w", err)
		return result
	}

	c.logger.Debug("report read", map[string]interface{}{
		"rows":    report.Len(),
		"columns": len(report.Headers),
	})

	// =========================================================================
	// STEP 2: CHECK PARTY COLUMNS
	// =========================================================================
	// Missing address fields only degrade the lookups. A report without any
	// party name column cannot be coded at all.

	missing := pipeline.MissingFields(report)
	result.Stats.MissingFields = missing
	if contains(missing, pipeline.ColConsignor) && contains(missing, pipeline.ColConsignee) {
		result.Error = fmt.Errorf("report has neither a consignor nor a consignee column")
		return result
	}
	if len(missing) > 0 {
		c.logger.Warn("report is missing canonical fields", map[string]interface{}{
			"missing": missing,
		})
	}

	if err := ctx.Err(); err != nil {
		result.Error = fmt.Errorf("processing cancelled: %w", err)
		return result
	}

	// =========================================================================
	// STEP 3: CODE RECORDS
	// =========================================================================

	coded, err := c.pipeline.Run(report)
	if err != nil {
		result.Error = fmt.Errorf("failed to code report: %w", err)
		return result
	}
	result.Stats.Coding = coded.Stats

	if c.dryRun {
		c.logger.Info("dry run, nothing written", map[string]interface{}{"rows": coded.Stats.Rows})
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUT FILE
	// =========================================================================

	outputPath, err := c.writeOutput(coded)
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.OutputFile = outputPath
	c.logger.Info("wrote coded report", map[string]interface{}{"output": outputPath})

	// =========================================================================
	// STEP 5: ARCHIVE REPORT
	// =========================================================================

	archivePath, err := c.files.ArchiveInputFile(c.filePath)
	if err != nil {
		// Log the error but don't fail the processing.
		c.logger.Warn("failed to archive report", map[string]interface{}{"error": err.Error()})
	} else if archivePath != c.filePath {
		result.ArchivePath = archivePath
	}

	result.Success = true
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// format returns the effective output format.
func (c *Converter) format() string {
	if c.outputFormat != "" {
		return c.outputFormat
	}
	return c.mainConfig.OutputFormat
}

// writeOutput writes the coded report to the output directory.
//
// FILE NAMING:
//   The output file is named according to OutputNameFormat in the main
//   configuration; see utils.GenerateOutputFileName for the placeholders.
func (c *Converter) writeOutput(coded *pipeline.Result) (string, error) {
	format := c.format()
	fileName := utils.GenerateOutputFileName(c.mainConfig.OutputNameFormat, tableio.Extension(format), c.filePath)
	outputPath := filepath.Join(c.mainConfig.OutputDir, fileName)

	if err := tableio.Write(coded.Table, outputPath, format); err != nil {
		return "", err
	}

	return outputPath, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
