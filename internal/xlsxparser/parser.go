// =============================================================================
// Freight Accrual Coder - XLSX Parser
// =============================================================================
//
// This module reads Excel workbooks (.xlsx, .xlsm) into a types.Table and
// writes enriched tables back to a workbook.
//
// SHEET LAYOUT (Expected):
//   The first non-empty row is the header row; every following non-empty row
//   is a data row.
//
//   | Loc Code | Loc_Address    | Loc_City    | Loc_ST | Zip_Code |
//   |----------|----------------|-------------|--------|----------|
//   | 0095     | 100 Main St    | Springfield | IL     | 62701    |
//   | 011K     | 6800 Cintas Bl | Mason       | OH     | 45040    |
//
// Cell values are read as displayed (formatted), so "0095" stored as text
// stays "0095". On write every cell is a string cell, which keeps leading zeros
// and fixed-decimal cost centers intact when the workbook is re-opened.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/freight-accrual-coder/internal/csvparser"
	"github.com/ginjaninja78/freight-accrual-coder/internal/types"
	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is used for written workbooks when no name is given.
const DefaultSheetName = "Sheet1"

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads one worksheet of an Excel workbook.
//
// PARAMETERS:
//   - filePath: The path to the workbook.
//   - sheet: The worksheet name. Empty selects the first sheet.
//
// RETURNS:
//   - The parsed table.
//   - An error if the file cannot be opened or the sheet does not exist.
func Parse(filePath, sheet string) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	table, err := parseFile(f, sheet)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// ParseReader reads one worksheet of a workbook streamed from r.
func ParseReader(r io.Reader, sheet string) (*types.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFile(f, sheet)
}

// SheetNames lists the worksheets of a workbook in tab order.
func SheetNames(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func parseFile(f *excelize.File, sheet string) (*types.Table, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return buildTable(rows)
}

// buildTable turns sheet rows into a table. GetRows trims trailing empty cells,
// so short rows are padded with "".
func buildTable(rows [][]string) (*types.Table, error) {
	start := 0
	for start < len(rows) && isRowEmpty(rows[start]) {
		start++
	}
	if start >= len(rows) {
		return nil, fmt.Errorf("sheet is empty")
	}

	headers := csvparser.CleanHeaders(rows[start])
	table := types.NewTable(headers...)

	for _, cells := range rows[start+1:] {
		if isRowEmpty(cells) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = strings.TrimSpace(cells[i])
			} else {
				row[h] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// =============================================================================
// WRITER
// =============================================================================

// Write saves the table as a single-sheet workbook. Every cell, the header
// row included, is written as a string.
//
// PARAMETERS:
//   - table: The table to write, in header order.
//   - filePath: The destination path (.xlsx).
//   - sheet: The worksheet name. Empty means DefaultSheetName.
func Write(table *types.Table, filePath, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}

	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range table.Rows {
		cells := make([]interface{}, len(table.Headers))
		for i, h := range table.Headers {
			cells[i] = row[h]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
