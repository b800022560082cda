// =============================================================================
// Freight Accrual Coder - Reference Tables
// =============================================================================
//
// The resolution pipeline depends on three reference tables:
//
//   | Table      | Key columns                                  | Used for                       |
//   |------------|----------------------------------------------|--------------------------------|
//   | Locations  | Loc Code, Loc_Address, Loc_City, Loc_ST      | address -> code lookup         |
//   | Master     | Loc Code, Type Code, ProfitCtr, Cost Center  | type, profit and cost center   |
//   | Codes      | Codes (or the first column)                  | allowed location codes         |
//
// Column names are matched through the alias lists below, so exports that
// spell a header slightly differently ("Loc_Code", "LOC CODE") still resolve.
// A missing optional column yields blank values, which downstream lookups
// treat as "no match".
//
// =============================================================================

package refdata

import (
	"strings"

	"github.com/ginjaninja78/freight-accrual-coder/internal/types"
)

// =============================================================================
// TABLE KEYS
// =============================================================================

// Table keys, as used by the overlay file and in messages.
const (
	KeyLocations = "my_location"
	KeyMaster    = "master_location"
	KeyCodes     = "all_codes"
)

// Keys lists the table keys in load order.
var Keys = []string{KeyLocations, KeyMaster, KeyCodes}

// =============================================================================
// COLUMN ALIASES
// =============================================================================

var (
	LocCodeColumns      = []string{"Loc Code", "Location Code", "Site Code"}
	LocAddressColumns   = []string{"Loc_Address", "Loc Address", "Address"}
	LocCityColumns      = []string{"Loc_City", "Loc City", "City"}
	LocStateColumns     = []string{"Loc_ST", "Loc State", "State"}
	LocZipColumns       = []string{"Zip_Code", "Zip Code", "Zip"}
	LocCountryColumns   = []string{"C_C", "Country", "Country Code"}
	TypeCodeColumns     = []string{"Type Code", "TypeCode", "Loc Type"}
	ProfitCenterColumns = []string{"ProfitCtr", "Profit Center", "Profit Ctr"}
	CostCenterColumns   = []string{"Cost Center", "CostCtr", "Cost Ctr"}
	CodesColumns        = []string{"Codes", "Code", "LOC_CODE", "Loc Code", "loc_code"}
)

// =============================================================================
// TYPED ROWS
// =============================================================================

// LocationRow is one entry of the location directory.
type LocationRow struct {
	Code    string
	Street  string
	City    string
	State   string
	Zip     string
	Country string
}

// MasterRow is one entry of the master location table.
type MasterRow struct {
	Code         string
	TypeCode     string
	ProfitCenter string
	CostCenter   string
}

// Tables holds the three reference tables as loaded.
type Tables struct {
	Locations *types.Table
	Master    *types.Table
	Codes     *types.Table
}

// Get returns the table for a key, nil for unknown keys.
func (t *Tables) Get(key string) *types.Table {
	switch key {
	case KeyLocations:
		return t.Locations
	case KeyMaster:
		return t.Master
	case KeyCodes:
		return t.Codes
	}
	return nil
}

func (t *Tables) set(key string, table *types.Table) {
	switch key {
	case KeyLocations:
		t.Locations = table
	case KeyMaster:
		t.Master = table
	case KeyCodes:
		t.Codes = table
	}
}

// Clone deep-copies every table.
func (t *Tables) Clone() *Tables {
	out := &Tables{}
	for _, key := range Keys {
		if table := t.Get(key); table != nil {
			out.set(key, table.Clone())
		}
	}
	return out
}

// LocationRows maps the location directory to typed rows, in table order.
func (t *Tables) LocationRows() []LocationRow {
	if t.Locations == nil {
		return nil
	}
	tbl := t.Locations
	code, _ := tbl.FindColumn(LocCodeColumns...)
	street, _ := tbl.FindColumn(LocAddressColumns...)
	city, _ := tbl.FindColumn(LocCityColumns...)
	state, _ := tbl.FindColumn(LocStateColumns...)
	zip, _ := tbl.FindColumn(LocZipColumns...)
	country, _ := tbl.FindColumn(LocCountryColumns...)

	rows := make([]LocationRow, 0, tbl.Len())
	for _, r := range tbl.Rows {
		rows = append(rows, LocationRow{
			Code:    cell(r, code),
			Street:  cell(r, street),
			City:    cell(r, city),
			State:   cell(r, state),
			Zip:     cell(r, zip),
			Country: cell(r, country),
		})
	}
	return rows
}

// MasterRows maps the master location table to typed rows, in table order.
func (t *Tables) MasterRows() []MasterRow {
	if t.Master == nil {
		return nil
	}
	tbl := t.Master
	code, _ := tbl.FindColumn(LocCodeColumns...)
	typeCode, _ := tbl.FindColumn(TypeCodeColumns...)
	pc, _ := tbl.FindColumn(ProfitCenterColumns...)
	cc, _ := tbl.FindColumn(CostCenterColumns...)

	rows := make([]MasterRow, 0, tbl.Len())
	for _, r := range tbl.Rows {
		rows = append(rows, MasterRow{
			Code:         cell(r, code),
			TypeCode:     cell(r, typeCode),
			ProfitCenter: cell(r, pc),
			CostCenter:   cell(r, cc),
		})
	}
	return rows
}

// CodesColumn returns the column holding the allowed codes: the first alias
// present, else the first column. ok is false for a table without columns.
func (t *Tables) CodesColumn() (string, bool) {
	if t.Codes == nil || len(t.Codes.Headers) == 0 {
		return "", false
	}
	for _, name := range CodesColumns {
		if t.Codes.HasColumn(name) {
			return name, true
		}
	}
	return t.Codes.Headers[0], true
}

// CodeValues returns the non-blank raw values of the codes column.
func (t *Tables) CodeValues() []string {
	col, ok := t.CodesColumn()
	if !ok {
		return nil
	}
	values := make([]string, 0, t.Codes.Len())
	for _, v := range t.Codes.Column(col) {
		if strings.TrimSpace(v) != "" {
			values = append(values, v)
		}
	}
	return values
}

func cell(row map[string]string, column string) string {
	if column == "" {
		return ""
	}
	return strings.TrimSpace(row[column])
}
