// =============================================================================
// Freight Accrual Coder - Reference Validation
// =============================================================================
//
// This module checks the reference tables before the index is built.
//
// VALIDATION STRATEGY:
//   1. Structure: mandatory columns must exist. Missing mandatory columns are
//      fatal and returned as *MissingColumnError values joined together.
//   2. Structure: optional columns may be missing. Each missing optional
//      column is a warning; the lookups depending on it find nothing.
//   3. Content: rows that cannot take part in any lookup (blank Loc Code)
//      are counted as warnings.
//
//   | Table            | Mandatory        | Optional                                |
//   |------------------|------------------|-----------------------------------------|
//   | master_location  | Loc Code         | Type Code, ProfitCtr, Cost Center       |
//   | all_codes        | (any one column) |                                         |
//   | my_location      |                  | Loc Code, Loc_Address, Loc_City, Loc_ST |
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/freight-accrual-coder/internal/locode"
	"github.com/ginjaninja78/freight-accrual-coder/internal/refdata"
	"github.com/ginjaninja78/freight-accrual-coder/internal/types"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// Severity levels of an Issue.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// MissingColumnError names a mandatory reference column that is absent.
type MissingColumnError struct {
	Table  string
	Column string
}

// Error implements the error interface.
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("reference table %s is missing mandatory column %q", e.Table, e.Column)
}

// Issue is a single validation finding.
type Issue struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Table is the reference table key.
	Table string

	// Column is the column concerned, if any.
	Column string

	// Message is a human-readable description.
	Message string
}

// String renders the issue for console output.
func (i Issue) String() string {
	if i.Column != "" {
		return fmt.Sprintf("[%s] %s.%s: %s", strings.ToUpper(i.Severity), i.Table, i.Column, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(i.Severity), i.Table, i.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the findings of ValidateTables.
type Result struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Issues lists errors and warnings in check order.
	Issues []Issue

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int
}

func (r *Result) add(issue Issue) {
	r.Issues = append(r.Issues, issue)
	if issue.Severity == SeverityError {
		r.ErrorCount++
	} else {
		r.WarningCount++
	}
}

// Warnings returns the warning issues.
func (r *Result) Warnings() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidateTables checks the reference tables.
//
// RETURNS:
//   - The full result, warnings included. Never nil.
//   - nil, or the joined *MissingColumnError values of every fatal problem.
func ValidateTables(tables *refdata.Tables) (*Result, error) {
	result := &Result{}
	var fatal []error

	if tables == nil {
		tables = &refdata.Tables{}
	}

	// Master location table.
	master := tables.Master
	if master == nil || !hasAny(master, refdata.LocCodeColumns) {
		err := &MissingColumnError{Table: refdata.KeyMaster, Column: "Loc Code"}
		fatal = append(fatal, err)
		result.add(Issue{Severity: SeverityError, Table: refdata.KeyMaster, Column: "Loc Code", Message: "mandatory column missing"})
	} else {
		optional(result, master, refdata.KeyMaster, "Type Code", refdata.TypeCodeColumns, "final types default to NON-CINTAS")
		optional(result, master, refdata.KeyMaster, "ProfitCtr", refdata.ProfitCenterColumns, "profit centers stay blank")
		optional(result, master, refdata.KeyMaster, "Cost Center", refdata.CostCenterColumns, "cost centers stay blank")
		blankCodes(result, refdata.KeyMaster, len(tables.MasterRows()), countBlank(tables.MasterRows(), func(r refdata.MasterRow) string { return r.Code }))
	}

	// Allowed codes list.
	if _, ok := tables.CodesColumn(); !ok {
		err := &MissingColumnError{Table: refdata.KeyCodes, Column: "Codes"}
		fatal = append(fatal, err)
		result.add(Issue{Severity: SeverityError, Table: refdata.KeyCodes, Column: "Codes", Message: "codes list has no columns"})
	} else if len(tables.CodeValues()) == 0 {
		result.add(Issue{Severity: SeverityWarning, Table: refdata.KeyCodes, Message: "codes list is empty, no code will validate"})
	}

	// Location directory.
	locations := tables.Locations
	if locations == nil || len(locations.Headers) == 0 {
		result.add(Issue{Severity: SeverityWarning, Table: refdata.KeyLocations, Message: "location directory is empty, address lookup disabled"})
	} else {
		optional(result, locations, refdata.KeyLocations, "Loc Code", refdata.LocCodeColumns, "address lookup finds nothing")
		optional(result, locations, refdata.KeyLocations, "Loc_Address", refdata.LocAddressColumns, "address lookup finds nothing")
		optional(result, locations, refdata.KeyLocations, "Loc_City", refdata.LocCityColumns, "address lookup finds nothing")
		optional(result, locations, refdata.KeyLocations, "Loc_ST", refdata.LocStateColumns, "address lookup finds nothing")
	}

	result.IsValid = result.ErrorCount == 0
	return result, errors.Join(fatal...)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func hasAny(table *types.Table, aliases []string) bool {
	_, ok := table.FindColumn(aliases...)
	return ok
}

func optional(result *Result, table *types.Table, key, column string, aliases []string, effect string) {
	if hasAny(table, aliases) {
		return
	}
	result.add(Issue{
		Severity: SeverityWarning,
		Table:    key,
		Column:   column,
		Message:  "column missing, " + effect,
	})
}

func countBlank[T any](rows []T, code func(T) string) int {
	n := 0
	for _, r := range rows {
		if locode.IsBlank(code(r)) {
			n++
		}
	}
	return n
}

func blankCodes(result *Result, key string, total, blank int) {
	if blank == 0 {
		return
	}
	result.add(Issue{
		Severity: SeverityWarning,
		Table:    key,
		Column:   "Loc Code",
		Message:  fmt.Sprintf("%d of %d rows have a blank code and are ignored", blank, total),
	})
}
