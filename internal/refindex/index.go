// =============================================================================
// Freight Accrual Coder - Reference Index
// =============================================================================
//
// The Index is built once per run from the reference tables and is read-only
// afterwards, so one Index can be shared by every report processed in the run.
//
// LOOKUPS:
//   - IsAllowed:       is a token a known location code (raw or canonical)?
//   - ResolveAddress:  address key -> canonical code (location directory)
//   - KnownAddress:    is an address key part of the location directory?
//   - TypeOf:          canonical code -> type code (master table)
//   - Financials:      canonical code -> profit / cost center (master table)
//
// DUPLICATES:
//   The first row wins for every keyed lookup. Later rows carrying a different
//   value for the same key are counted as collisions and logged, so the data
//   owners can clean up the reference tables.
//
// =============================================================================

package refindex

import (
	"strings"

	"github.com/ginjaninja78/freight-accrual-coder/internal/locode"
	"github.com/ginjaninja78/freight-accrual-coder/internal/logger"
	"github.com/ginjaninja78/freight-accrual-coder/internal/refdata"
)

// Financials are the accounting attributes of a location.
type Financials struct {
	ProfitCenter string
	CostCenter   string
}

// Stats summarizes an Index.
type Stats struct {
	Codes               int
	Addresses           int
	Types               int
	FinancialEntries    int
	AddressCollisions   int
	TypeCollisions      int
	FinancialCollisions int
}

// Collisions returns the total number of collisions.
func (s Stats) Collisions() int {
	return s.AddressCollisions + s.TypeCollisions + s.FinancialCollisions
}

// Index answers the reference lookups of the resolution pipeline.
type Index struct {
	codesRaw       map[string]struct{}
	codes4         map[string]struct{}
	addresses      map[string]string
	knownAddresses map[string]struct{}
	types          map[string]string
	financials     map[string]Financials
	stats          Stats
}

// New builds the index. A nil logger discards collision messages.
func New(tables *refdata.Tables, log logger.Logger) *Index {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if tables == nil {
		tables = &refdata.Tables{}
	}

	ix := &Index{
		codesRaw:       make(map[string]struct{}),
		codes4:         make(map[string]struct{}),
		addresses:      make(map[string]string),
		knownAddresses: make(map[string]struct{}),
		types:          make(map[string]string),
		financials:     make(map[string]Financials),
	}

	ix.buildCodes(tables.CodeValues())
	ix.buildAddresses(tables.LocationRows(), log)
	ix.buildMaster(tables.MasterRows(), log)

	ix.stats.Codes = len(ix.codes4)
	ix.stats.Addresses = len(ix.addresses)
	ix.stats.Types = len(ix.types)
	ix.stats.FinancialEntries = len(ix.financials)

	log.Debug("reference index built", map[string]interface{}{
		"codes":      ix.stats.Codes,
		"addresses":  ix.stats.Addresses,
		"types":      ix.stats.Types,
		"collisions": ix.stats.Collisions(),
	})

	return ix
}

// =============================================================================
// BUILDERS
// =============================================================================

func (ix *Index) buildCodes(values []string) {
	for _, v := range values {
		raw := strings.ToUpper(strings.TrimSpace(v))
		if locode.IsBlank(raw) {
			continue
		}
		ix.codesRaw[raw] = struct{}{}
		if c, ok := locode.Normalize(raw); ok {
			ix.codes4[c] = struct{}{}
		}
	}
}

func (ix *Index) buildAddresses(rows []refdata.LocationRow, log logger.Logger) {
	for _, r := range rows {
		key, ok := CombineAddress(r.Street, r.City, r.State)
		if !ok {
			continue
		}
		ix.knownAddresses[key] = struct{}{}

		code, ok := locode.Normalize(r.Code)
		if !ok {
			continue
		}
		if existing, seen := ix.addresses[key]; seen {
			if existing != code {
				ix.stats.AddressCollisions++
				log.Warn("duplicate address in location directory", map[string]interface{}{
					"address": key,
					"kept":    existing,
					"ignored": code,
				})
			}
			continue
		}
		ix.addresses[key] = code
	}
}

func (ix *Index) buildMaster(rows []refdata.MasterRow, log logger.Logger) {
	for _, r := range rows {
		code, ok := locode.Normalize(r.Code)
		if !ok {
			continue
		}

		if !locode.IsBlank(r.TypeCode) {
			typ := strings.ToUpper(strings.TrimSpace(r.TypeCode))
			if existing, seen := ix.types[code]; !seen {
				ix.types[code] = typ
			} else if existing != typ {
				ix.stats.TypeCollisions++
				log.Warn("conflicting type codes in master table", map[string]interface{}{
					"code":    code,
					"kept":    existing,
					"ignored": typ,
				})
			}
		}

		fin := Financials{
			ProfitCenter: blankIfNaN(r.ProfitCenter),
			CostCenter:   blankIfNaN(r.CostCenter),
		}
		if existing, seen := ix.financials[code]; !seen {
			ix.financials[code] = fin
		} else if existing != fin {
			ix.stats.FinancialCollisions++
			log.Warn("conflicting financial attributes in master table", map[string]interface{}{
				"code":       code,
				"kept_pc":    existing.ProfitCenter,
				"kept_cc":    existing.CostCenter,
				"ignored_pc": fin.ProfitCenter,
				"ignored_cc": fin.CostCenter,
			})
		}
	}
}

func blankIfNaN(v string) string {
	if locode.IsBlank(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// =============================================================================
// LOOKUPS
// =============================================================================

// IsAllowed validates a token against the allowed codes list. A token is
// accepted when its canonical form, or its raw uppercased form, is listed.
// The canonical form is returned either way.
func (ix *Index) IsAllowed(token string) (string, bool) {
	canonical, ok := locode.Normalize(token)
	if !ok {
		return "", false
	}
	if _, listed := ix.codes4[canonical]; listed {
		return canonical, true
	}
	raw := strings.ToUpper(strings.TrimSpace(token))
	if _, listed := ix.codesRaw[raw]; listed {
		return canonical, true
	}
	return "", false
}

// TypeOf returns the type code of a location code.
func (ix *Index) TypeOf(code string) (string, bool) {
	c, ok := locode.Normalize(code)
	if !ok {
		return "", false
	}
	typ, ok := ix.types[c]
	return typ, ok
}

// Financials returns the accounting attributes of a location code.
func (ix *Index) Financials(code string) (Financials, bool) {
	c, ok := locode.Normalize(code)
	if !ok {
		return Financials{}, false
	}
	fin, ok := ix.financials[c]
	return fin, ok
}

// Stats returns the index summary.
func (ix *Index) Stats() Stats {
	return ix.stats
}
