// =============================================================================
// Freight Accrual Coder - Table I/O
// =============================================================================
//
// Picks the reader or writer for a file by its extension:
//   .xlsx / .xlsm -> xlsxparser
//   .csv / .txt   -> csvparser (.txt with delimiter sniffing)
//
// =============================================================================

package tableio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/freight-accrual-coder/internal/config"
	"github.com/ginjaninja78/freight-accrual-coder/internal/csvparser"
	"github.com/ginjaninja78/freight-accrual-coder/internal/types"
	"github.com/ginjaninja78/freight-accrual-coder/internal/xlsxparser"
	"github.com/ginjaninja78/freight-accrual-coder/internal/xmlwriter"
)

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatXML  = "xml"
)

// ReadOptions controls how a file is read.
type ReadOptions struct {
	// Sheet is the worksheet read from workbooks. Empty means the first sheet.
	Sheet string

	// CSV applies to .csv and .txt files.
	CSV config.CSVSettings
}

// Supported reports whether Read can handle the file.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".csv", ".txt":
		return true
	}
	return false
}

// Read loads a table from path.
func Read(path string, opts ReadOptions) (*types.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return xlsxparser.Parse(path, opts.Sheet)
	case ".csv", ".txt":
		return csvparser.Parse(path, opts.CSV)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .xlsx, .xlsm, .csv or .txt)", ext)
	}
}

// Write saves a table in the given format.
func Write(table *types.Table, path, format string) error {
	switch strings.ToLower(format) {
	case FormatXLSX, "":
		return xlsxparser.Write(table, path, "")
	case FormatCSV:
		return csvparser.Write(table, path)
	case FormatXML:
		return xmlwriter.Write(table, path)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// Extension returns the file extension, with the dot, for an output format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ".csv"
	case FormatXML:
		return ".xml"
	}
	return ".xlsx"
}
