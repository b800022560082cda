package pipeline

import "github.com/ginjaninja78/freight-accrual-coder/internal/types"

// =============================================================================
// CANONICAL FIELDS
// =============================================================================

// Canonical field names written to every processed report.
const (
	ColConsignor          = "Consignor"
	ColConsignee          = "Consignee"
	ColOriginAddress      = "Origin Address"
	ColOriginCity         = "Origin City"
	ColOriginState        = "Origin State"
	ColDestinationAddress = "Destination Address"
	ColDestinationCity    = "Destination City"
	ColDestinationState   = "Destination State"

	ColCarrierName  = "Carrier Name"
	ColProfitCenter = "Profit Center"
)

type fieldAliases struct {
	canonical string
	aliases   []string
}

// FieldAliases maps each canonical field to the upstream column names it is
// read from. The first alias present in the report wins.
var FieldAliases = []fieldAliases{
	{ColConsignor, []string{
		"Consignor", "Origin Facility", "Shipper", "Ship From Name", "Origin Name", "Org Name",
		"Origin Company", "Org Company", "ShipFromName", "OrgName",
	}},
	{ColConsignee, []string{
		"Consignee", "Destination Facility", "Receiver", "Ship To Name", "Destination Name", "Dest Name",
		"Dest Company", "Destination Company", "ShipToName", "DestName",
	}},
	{ColOriginAddress, []string{
		"Origin Address", "Origin Address1", "Origin Addresss", "Org Address", "Org Address1",
		"Ship From Address", "Ship From Address1", "Shipper Address", "Shipper Address1",
	}},
	{ColOriginCity, []string{"Origin City", "Org City", "Ship From City", "Shipper City"}},
	{ColOriginState, []string{
		"Origin State", "Origin State Code", "Org State", "Org State Code",
		"Ship From State", "Ship From State Code",
	}},
	{ColDestinationAddress, []string{
		"Destination Address", "Destination Address1", "Dest Address", "Dest Address1",
		"Ship To Address", "Ship To Address1", "Receiver Address", "Receiver Address1",
	}},
	{ColDestinationCity, []string{"Destination City", "Dest City", "Ship To City", "Receiver City"}},
	{ColDestinationState, []string{
		"Destination State", "Destination State Code", "Dest State", "Dest State Code",
		"Ship To State", "Ship To State Code",
	}},
}

// Type-code columns. Both must be present for their codes to be used.
var (
	OrgTypeColumns  = []string{"Org Type Code", "Org Loc Code", "Origin Type Code", "OrgTypeCode"}
	DestTypeColumns = []string{"Dest Type Code", "Dest Loc Code", "Destination Type Code", "DestTypeCode"}
)

// =============================================================================
// DERIVED COLUMNS
// =============================================================================

const (
	ColConsignorCombined   = "Consignor_Combined_Address"
	ColConsigneeCombined   = "Consignee_Combined_Address"
	ColExtractedConsignor  = "Extracted Consignor Code"
	ColExtractedConsignee  = "Extracted Consignee Code"
	ColOrgTypeConsignor    = "Org Type Consignor Code"
	ColDestTypeConsignee   = "Dest Type Consignee Code"
	ColAddrLookupConsignor = "Addr_Lookup_Consignor_Code"
	ColAddrLookupConsignee = "Addr_Lookup_Consignee_Code"
	ColFinalConsignorCode  = "Final Consignor Code"
	ColFinalConsigneeCode  = "Final Consignee Code"
	ColFinalConsignorType  = "Final Consignor Type"
	ColFinalConsigneeType  = "Final Consignee Type"
	ColResponsibleParty    = "Responsible Party"
	ColProfitCenterEJ      = "Profit Center EJ"
	ColCostCenterEJ        = "Cost Center EJ"
	ColAccountEJ           = "Account # EJ"
	ColAutomationAccuracy  = "Automation Accuracy"
)

type derivedColumn struct {
	name  string
	value func(*Record) string
}

// derivedColumns are written in this order, so a first run appends them in
// this order and a re-run overwrites them in place.
var derivedColumns = []derivedColumn{
	{ColConsignorCombined, func(r *Record) string { return r.Resolution.Consignor.CombinedAddress }},
	{ColConsigneeCombined, func(r *Record) string { return r.Resolution.Consignee.CombinedAddress }},
	{ColExtractedConsignor, func(r *Record) string { return r.Resolution.Consignor.Extracted }},
	{ColExtractedConsignee, func(r *Record) string { return r.Resolution.Consignee.Extracted }},
	{ColOrgTypeConsignor, func(r *Record) string { return r.Resolution.Consignor.TypeField }},
	{ColDestTypeConsignee, func(r *Record) string { return r.Resolution.Consignee.TypeField }},
	{ColAddrLookupConsignor, func(r *Record) string { return r.Resolution.Consignor.AddressLookup }},
	{ColAddrLookupConsignee, func(r *Record) string { return r.Resolution.Consignee.AddressLookup }},
	{ColFinalConsignorCode, func(r *Record) string { return r.Resolution.Consignor.Final }},
	{ColFinalConsigneeCode, func(r *Record) string { return r.Resolution.Consignee.Final }},
	{ColFinalConsignorType, func(r *Record) string { return r.Resolution.Consignor.Type }},
	{ColFinalConsigneeType, func(r *Record) string { return r.Resolution.Consignee.Type }},
	{ColResponsibleParty, func(r *Record) string { return r.Decision.Code }},
	{ColProfitCenterEJ, func(r *Record) string { return r.Financials.ProfitCenter }},
	{ColCostCenterEJ, func(r *Record) string { return r.Financials.CostCenter }},
	{ColAccountEJ, func(r *Record) string { return r.Financials.Account }},
	{ColAutomationAccuracy, func(r *Record) string { return r.Accuracy }},
}

// DerivedColumns returns the names of the columns the pipeline adds.
func DerivedColumns() []string {
	names := make([]string, len(derivedColumns))
	for i, c := range derivedColumns {
		names[i] = c.name
	}
	return names
}

// FrontColumns lead the output, in this order, when present.
var FrontColumns = []string{
	ColProfitCenter,
	"Cost Center",
	"Account #",
	ColAutomationAccuracy,
	ColProfitCenterEJ,
	ColCostCenterEJ,
	ColAccountEJ,
}

// standardize writes the canonical fields of every row from their first
// matching alias. Fields without any alias in the report are left blank.
func standardize(t *types.Table) {
	for _, f := range FieldAliases {
		src, found := t.FindColumn(f.aliases...)
		t.AddColumn(f.canonical)
		for i := range t.Rows {
			v := ""
			if found {
				v = t.Get(i, src)
			}
			t.Set(i, f.canonical, v)
		}
	}
}

// MissingFields lists the canonical fields for which the report has no alias.
func MissingFields(t *types.Table) []string {
	var missing []string
	for _, f := range FieldAliases {
		if _, ok := t.FindColumn(f.aliases...); !ok {
			missing = append(missing, f.canonical)
		}
	}
	return missing
}
