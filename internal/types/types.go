// =============================================================================
// Freight Accrual Coder - Shared Types
// =============================================================================
//
// This package contains the in-memory table shared by the readers, the writers
// and the pipeline, kept here to avoid import cycles. Types defined here are
// used by:
//   - csvparser / xlsxparser (produce tables)
//   - refdata (reads reference tables)
//   - pipeline (reads the report, appends derived columns)
//
// =============================================================================

package types

import (
	"regexp"
	"sort"
	"strings"
)

// =============================================================================
// TABLE
// =============================================================================

// Table is an ordered, fully materialized tabular data set.
// Column order is kept in Headers; every row holds a value for every header
// (missing cells are "").
type Table struct {
	// Headers lists the column names in output order.
	Headers []string

	// Rows contains the data rows as header -> value maps.
	Rows []map[string]string

	// SourceFile is the path (or URL) the table was read from, for messages.
	SourceFile string
}

// NewTable creates an empty table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: append([]string(nil), headers...)}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the table has a column named exactly name.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// AddRow appends a row. Values for unknown headers add new columns, in
// sorted order.
func (t *Table) AddRow(values map[string]string) {
	var extra []string
	for k := range values {
		if !t.HasColumn(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		t.ensureColumn(k)
	}

	row := make(map[string]string, len(t.Headers))
	for _, h := range t.Headers {
		row[h] = values[h]
	}
	t.Rows = append(t.Rows, row)
}

// Get returns the cell at row i of column name, "" when absent.
func (t *Table) Get(i int, name string) string {
	return t.Rows[i][name]
}

// Set writes a cell, adding the column (blank for other rows) if needed.
// Existing columns keep their position, so a re-run overwrites in place.
func (t *Table) Set(i int, name, value string) {
	t.ensureColumn(name)
	t.Rows[i][name] = value
}

// AddColumn adds a blank column if it does not exist yet.
func (t *Table) AddColumn(name string) {
	t.ensureColumn(name)
}

// Column returns all values of a column in row order.
func (t *Table) Column(name string) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[name]
	}
	return values
}

// MoveToFront reorders the headers so that the listed columns that exist come
// first, in the given order, followed by every other column in its current order.
func (t *Table) MoveToFront(first ...string) {
	front := make([]string, 0, len(first))
	taken := make(map[string]bool, len(first))
	for _, name := range first {
		if t.HasColumn(name) && !taken[name] {
			front = append(front, name)
			taken[name] = true
		}
	}
	rest := make([]string, 0, len(t.Headers))
	for _, h := range t.Headers {
		if !taken[h] {
			rest = append(rest, h)
		}
	}
	t.Headers = append(front, rest...)
}

// Clone returns a deep copy so callers can enrich without touching the source.
func (t *Table) Clone() *Table {
	out := &Table{
		Headers:    append([]string(nil), t.Headers...),
		Rows:       make([]map[string]string, len(t.Rows)),
		SourceFile: t.SourceFile,
	}
	for i, row := range t.Rows {
		cp := make(map[string]string, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

func (t *Table) ensureColumn(name string) {
	if t.HasColumn(name) {
		return
	}
	t.Headers = append(t.Headers, name)
	for _, row := range t.Rows {
		row[name] = ""
	}
}

// =============================================================================
// COLUMN ALIASES
// =============================================================================

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeHeader folds a header for alias matching: lowercase, with every
// non-alphanumeric character removed ("Ship From Name" -> "shipfromname").
func NormalizeHeader(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

// FindColumn returns the first existing header matching one of the candidates
// (compared with NormalizeHeader). The candidate order decides, not the table
// order.
func (t *Table) FindColumn(candidates ...string) (string, bool) {
	byNorm := make(map[string]string, len(t.Headers))
	for _, h := range t.Headers {
		key := NormalizeHeader(h)
		if _, seen := byNorm[key]; !seen {
			byNorm[key] = h
		}
	}
	for _, c := range candidates {
		if h, ok := byNorm[NormalizeHeader(c)]; ok {
			return h, true
		}
	}
	return "", false
}
