// =============================================================================
// Freight Accrual Coder - XML Writer Module
// =============================================================================
//
// This module writes a coded report as an XML accrual batch for bulk upload
// into the general ledger.
//
// XML STRUCTURE:
//   <?xml version="1.0" encoding="UTF-8"?>
//   <AccrualBatch source="weekly.xlsx">
//     <Accrual n="1">
//       <ProfitCenterEJ>G5900</ProfitCenterEJ>
//       <CostCenterEJ>312.10000</CostCenterEJ>
//       <AccountEJ>621000</AccountEJ>
//       ...
//     </Accrual>
//   </AccrualBatch>
//
// ELEMENT NAMES:
//   Column headers become PascalCase element names: every run of letters and
//   digits is a word, everything else is dropped ("Account # EJ" ->
//   "AccountEJ"). Names that would start with a digit get an "F" prefix and
//   duplicates get a numeric suffix.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/ginjaninja78/freight-accrual-coder/internal/types"
)

// =============================================================================
// GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for customizing XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation (e.g., "  " or "\t").
	// Empty writes everything on one line.
	Indent string

	// IncludeXMLDeclaration adds <?xml version="1.0" encoding="UTF-8"?>.
	IncludeXMLDeclaration bool

	// RootElement is the document element. Default: "AccrualBatch".
	RootElement string

	// RecordElement wraps each row. Default: "Accrual".
	RecordElement string

	// IndexAttribute carries the 1-based row number on each record.
	// Empty omits it.
	IndexAttribute string

	// Columns restricts and orders the exported columns. Empty exports
	// every column in table order; unknown columns are exported blank.
	Columns []string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		RootElement:           "AccrualBatch",
		RecordElement:         "Accrual",
		IndexAttribute:        "n",
	}
}

// =============================================================================
// MAIN GENERATION FUNCTIONS
// =============================================================================

// Generate renders the table with the default options.
func Generate(table *types.Table) ([]byte, error) {
	return GenerateWithOptions(table, DefaultGenerateOptions())
}

// GenerateWithOptions renders the table as an XML document.
//
// PARAMETERS:
//   - table: The coded report.
//   - options: Generation options.
//
// RETURNS:
//   - The XML document.
//   - An error if encoding fails.
func GenerateWithOptions(table *types.Table, options GenerateOptions) ([]byte, error) {
	if table == nil {
		return nil, fmt.Errorf("no table to write")
	}
	if options.RootElement == "" {
		options.RootElement = "AccrualBatch"
	}
	if options.RecordElement == "" {
		options.RecordElement = "Accrual"
	}

	columns := options.Columns
	if len(columns) == 0 {
		columns = table.Headers
	}
	names := ElementNames(columns)

	var buffer bytes.Buffer
	if options.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}

	enc := xml.NewEncoder(&buffer)
	enc.Indent("", options.Indent)

	root := xml.StartElement{Name: xml.Name{Local: options.RootElement}}
	if table.SourceFile != "" {
		root.Attr = append(root.Attr, xml.Attr{Name: xml.Name{Local: "source"}, Value: filepath.Base(table.SourceFile)})
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, fmt.Errorf("failed to encode root element: %w", err)
	}

	for i := 0; i < table.Len(); i++ {
		record := xml.StartElement{Name: xml.Name{Local: options.RecordElement}}
		if options.IndexAttribute != "" {
			record.Attr = []xml.Attr{{Name: xml.Name{Local: options.IndexAttribute}, Value: strconv.Itoa(i + 1)}}
		}
		if err := enc.EncodeToken(record); err != nil {
			return nil, fmt.Errorf("failed to encode record %d: %w", i+1, err)
		}

		for c, column := range columns {
			field := xml.StartElement{Name: xml.Name{Local: names[c]}}
			if err := enc.EncodeElement(table.Get(i, column), field); err != nil {
				return nil, fmt.Errorf("failed to encode record %d field %q: %w", i+1, column, err)
			}
		}

		if err := enc.EncodeToken(record.End()); err != nil {
			return nil, fmt.Errorf("failed to encode record %d: %w", i+1, err)
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, fmt.Errorf("failed to encode root element: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush XML: %w", err)
	}
	buffer.WriteString("\n")

	return buffer.Bytes(), nil
}

// Write renders the table with the default options and writes it to path.
func Write(table *types.Table, path string) error {
	data, err := Generate(table)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// ElementNames maps column headers to unique XML element names.
func ElementNames(headers []string) []string {
	names := make([]string, len(headers))
	used := make(map[string]int, len(headers))

	for i, h := range headers {
		name := elementName(h)
		used[name]++
		if n := used[name]; n > 1 {
			name += strconv.Itoa(n)
		}
		names[i] = name
	}
	return names
}

func elementName(header string) string {
	var b strings.Builder
	for _, word := range strings.FieldsFunc(header, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}

	name := b.String()
	switch {
	case name == "":
		return "Field"
	case unicode.IsDigit([]rune(name)[0]):
		return "F" + name
	}
	return name
}
