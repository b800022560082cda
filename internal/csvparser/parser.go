// =============================================================================
// Freight Accrual Coder - Delimited Text Parser
// =============================================================================
//
// This module reads delimited report exports (.csv, .txt) into a types.Table.
// Exports reach us from several upstream systems, so the parser copes with:
//   - Unknown delimiters (tab, pipe, comma, semicolon) for .txt files
//   - UTF-16 exports (SAP text downloads carry NUL bytes)
//   - Windows-1252 bytes that are not valid UTF-8
//   - A UTF-8 byte order mark
//   - Ragged rows and stray quotes
//
// The first row is the header row. Empty rows are skipped.
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/freight-accrual-coder/internal/config"
	"github.com/ginjaninja78/freight-accrual-coder/internal/types"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffOrder is the order delimiters are tried for .txt files.
var sniffOrder = []rune{'\t', '|', ',', ';'}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a delimited file and returns the parsed table.
//
// PARAMETERS:
//   - filePath: The path to the .csv or .txt file.
//   - settings: Delimiter and encoding settings.
//
// RETURNS:
//   - The parsed table.
//   - An error if the file cannot be read or parsed.
func Parse(filePath string, settings config.CSVSettings) (*types.Table, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	sniff := strings.EqualFold(filepath.Ext(filePath), ".txt")
	table, err := ParseBytes(raw, settings, sniff)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// ParseReader reads all of r and parses it like ParseBytes.
func ParseReader(r io.Reader, settings config.CSVSettings, sniff bool) (*types.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return ParseBytes(raw, settings, sniff)
}

// ParseBytes decodes and parses delimited data.
//
// When settings.Delimiter is empty, sniff selects between trying the common
// delimiters in order (first one yielding more than one column wins) and
// plain comma.
func ParseBytes(raw []byte, settings config.CSVSettings, sniff bool) (*types.Table, error) {
	text, err := Decode(raw, settings.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}

	if d := delimiterFromSetting(settings.Delimiter); d != 0 {
		return parseText(text, d)
	}
	if !sniff {
		return parseText(text, ',')
	}

	for _, d := range sniffOrder {
		table, err := parseText(text, d)
		if err != nil {
			continue
		}
		if len(table.Headers) > 1 {
			return table, nil
		}
	}

	// Last resort: one column per line.
	return parseText(text, '\x00')
}

// =============================================================================
// DECODING
// =============================================================================

// Decode converts raw bytes to a UTF-8 string.
//
// ENCODINGS:
//   - "utf-8"        : bytes are taken as-is
//   - "windows-1252" : decoded with the Windows-1252 code page
//   - "utf-16"       : decoded as UTF-16 (BOM-aware, little endian default)
//   - "auto" / ""    : UTF-16 when NUL bytes are present, else UTF-8 when
//                      valid, else Windows-1252
func Decode(raw []byte, encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "utf-8", "utf8":
		return stripBOM(string(raw)), nil
	case "windows-1252", "cp1252", "latin1", "iso-8859-1":
		return decodeWith(raw, charmap.Windows1252.NewDecoder())
	case "utf-16", "utf16":
		return decodeWith(raw, utf16Decoder())
	case "", "auto":
	default:
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}

	if bytes.IndexByte(raw, 0x00) >= 0 {
		if len(raw)%2 == 0 {
			if text, err := decodeWith(raw, utf16Decoder()); err == nil {
				return text, nil
			}
		}
		raw = bytes.ReplaceAll(raw, []byte{0x00}, nil)
	}
	if utf8.Valid(raw) {
		return stripBOM(string(raw)), nil
	}
	return decodeWith(raw, charmap.Windows1252.NewDecoder())
}

func utf16Decoder() transform.Transformer {
	return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
}

func decodeWith(raw []byte, t transform.Transformer) (string, error) {
	out, _, err := transform.Bytes(t, raw)
	if err != nil {
		return "", err
	}
	return stripBOM(string(out)), nil
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}

// =============================================================================
// READER CONFIGURATION
// =============================================================================

// delimiterFromSetting maps the configured delimiter to a rune. 0 means unset.
func delimiterFromSetting(setting string) rune {
	switch setting {
	case "":
		return 0
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	case ",", "comma":
		return ','
	default:
		r, _ := utf8.DecodeRuneInString(setting)
		return r
	}
}

// parseText parses text with the given delimiter. A NUL delimiter reads each
// line as a single field.
func parseText(text string, delimiter rune) (*types.Table, error) {
	var records [][]string

	if delimiter == '\x00' {
		for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
			records = append(records, []string{line})
		}
	} else {
		reader := csv.NewReader(strings.NewReader(text))
		reader.Comma = delimiter
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true
		reader.TrimLeadingSpace = true

		var err error
		records, err = reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
	}

	return buildTable(records)
}

// buildTable turns raw records into a table: first non-empty record is the
// header row, following non-empty records are data.
func buildTable(records [][]string) (*types.Table, error) {
	start := 0
	for start < len(records) && isRowEmpty(records[start]) {
		start++
	}
	if start >= len(records) {
		return nil, fmt.Errorf("file is empty")
	}

	headers := CleanHeaders(records[start])
	table := types.NewTable(headers...)

	for _, record := range records[start+1:] {
		if isRowEmpty(record) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			} else {
				row[h] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// CleanHeaders trims header values, names empty headers Column_N and makes
// duplicates unique by suffixing ".1", ".2", ... in order of appearance.
func CleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	seen := make(map[string]int, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(stripBOM(header))
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		if n, dup := seen[header]; dup {
			seen[header] = n + 1
			header = fmt.Sprintf("%s.%d", header, n+1)
		} else {
			seen[header] = 0
		}
		cleaned[i] = header
	}

	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// WRITER
// =============================================================================

// Write writes the table as comma-separated UTF-8 text in header order.
func Write(table *types.Table, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteTo(file, table); err != nil {
		return err
	}
	return file.Close()
}

// WriteTo writes the table as CSV to w.
func WriteTo(w io.Writer, table *types.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(table.Headers))
	for _, row := range table.Rows {
		for i, h := range table.Headers {
			record[i] = row[h]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
