package pipeline

import (
	"testing"

	"github.com/ginjaninja78/freight-accrual-coder/internal/locode"
	"github.com/ginjaninja78/freight-accrual-coder/internal/logger"
	"github.com/ginjaninja78/freight-accrual-coder/internal/matrix"
	"github.com/ginjaninja78/freight-accrual-coder/internal/refdata"
	"github.com/ginjaninja78/freight-accrual-coder/internal/refindex"
	"github.com/ginjaninja78/freight-accrual-coder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()

	loc := types.NewTable("Loc Code", "Loc_Address", "Loc_City", "Loc_ST")
	loc.AddRow(map[string]string{"Loc Code": "0095", "Loc_Address": "100 Main St", "Loc_City": "Springfield", "Loc_ST": "IL"})
	loc.AddRow(map[string]string{"Loc Code": "0K35", "Loc_Address": "55 Dock Rd", "Loc_City": "Valdez", "Loc_ST": "AK"})

	master := types.NewTable("Loc Code", "Type Code", "ProfitCtr", "Cost Center")
	master.AddRow(map[string]string{"Loc Code": "95", "Type Code": "US DC", "ProfitCtr": "G5900", "Cost Center": "312.1"})
	master.AddRow(map[string]string{"Loc Code": "0K35", "Type Code": "US DC", "ProfitCtr": "P1100", "Cost Center": "77"})
	master.AddRow(map[string]string{"Loc Code": "222", "Type Code": "MM", "ProfitCtr": "P2222", "Cost Center": "5.5"})
	master.AddRow(map[string]string{"Loc Code": "097H", "Type Code": "CA DC", "ProfitCtr": "P9700", "Cost Center": "1"})

	codes := types.NewTable("Codes")
	for _, c := range []string{"95", "0K35", "222", "097H"} {
		codes.AddRow(map[string]string{"Codes": c})
	}

	ix := refindex.New(&refdata.Tables{Locations: loc, Master: master, Codes: codes}, nil)
	m, err := matrix.Default()
	require.NoError(t, err)

	return New(ix, m, 5, logger.NewTestLogger(t))
}

func testReport() *types.Table {
	report := types.NewTable(
		"Shipper", "Ship To Name",
		"Ship From Address", "Ship From City", "Ship From State",
		"Dest Address", "Dest City", "Dest State",
		"Carrier Name", "Profit Center",
	)
	report.SourceFile = "weekly.xlsx"
	report.AddRow(map[string]string{
		"Shipper": "CINTAS 222", "Ship To Name": "CINTAS LOC 95",
		"Dest Address": "100 Main St", "Dest City": "Springfield", "Dest State": "IL",
		"Profit Center": "G5900",
	})
	report.AddRow(map[string]string{
		"Shipper": "Acme Corp", "Ship To Name": "Valdez terminal",
		"Ship From Address": "1 Nowhere", "Ship From City": "Gary", "Ship From State": "IN",
		"Profit Center": "P1000",
	})
	report.AddRow(map[string]string{"Shipper": "Vendor", "Ship To Name": "Customer"})
	report.AddRow(map[string]string{
		"Shipper": "Random 222", "Ship To Name": "CINTAS 097H",
		"Ship From Address": "1 Nowhere", "Ship From City": "Gary", "Ship From State": "IN",
		"Carrier Name": "Omnitrans Freight",
	})
	return report
}

func TestRun_CodesReport(t *testing.T) {
	p := testPipeline(t)

	res, err := p.Run(testReport())
	require.NoError(t, err)
	out := res.Table

	tests := []struct {
		row                  int
		consignor, consignee string
		rp, pc, cc, account  string
		accuracy             string
	}{
		{0, "0222", "0095", "0095", "G5900", "312.10000", "621000", "1"},
		{1, locode.NonCintas, "0K35", "0K35", "P1100", "77.00000", "621000", "0"},
		{2, locode.NonCintas, locode.NonCintas, locode.ThirdParty, "", "", "621020", "0"},
		{3, locode.NonCintas, "097H", "097H", "P9700", "1.00000", "621000", "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.consignor, out.Get(tt.row, ColFinalConsignorCode), "row %d", tt.row)
		assert.Equal(t, tt.consignee, out.Get(tt.row, ColFinalConsigneeCode), "row %d", tt.row)
		assert.Equal(t, tt.rp, out.Get(tt.row, ColResponsibleParty), "row %d", tt.row)
		assert.Equal(t, tt.pc, out.Get(tt.row, ColProfitCenterEJ), "row %d", tt.row)
		assert.Equal(t, tt.cc, out.Get(tt.row, ColCostCenterEJ), "row %d", tt.row)
		assert.Equal(t, tt.account, out.Get(tt.row, ColAccountEJ), "row %d", tt.row)
		assert.Equal(t, tt.accuracy, out.Get(tt.row, ColAutomationAccuracy), "row %d", tt.row)
	}

	assert.Equal(t, "MM", out.Get(0, ColFinalConsignorType))
	assert.Equal(t, "US DC", out.Get(0, ColFinalConsigneeType))
	assert.Equal(t, "100SPRINGFIELDIL", out.Get(0, ColConsigneeCombined))
	assert.Equal(t, "0095", out.Get(0, ColAddrLookupConsignee))
	assert.Equal(t, "", out.Get(3, ColExtractedConsignor), "wiped")
	assert.Equal(t, "Acme Corp", out.Get(1, ColConsignor))
	assert.Equal(t, "Gary", out.Get(1, ColOriginCity))

	assert.Equal(t, Stats{
		Rows:             4,
		NonCintasFinals:  4,
		ThirdParty:       1,
		Wiped:            1,
		OverridesApplied: 1,
		Accurate:         1,
		Rules: map[matrix.Rule]int{
			matrix.RuleMatrix:           1,
			matrix.RuleSpecialConsignee: 1,
			matrix.RuleSpecialTypes:     1,
			matrix.RuleCarrier:          1,
		},
	}, res.Stats)
}

func TestRun_ColumnOrder(t *testing.T) {
	p := testPipeline(t)

	res, err := p.Run(testReport())
	require.NoError(t, err)
	headers := res.Table.Headers

	assert.Equal(t, []string{
		"Profit Center", "Automation Accuracy", "Profit Center EJ", "Cost Center EJ", "Account # EJ",
	}, headers[:5])

	// Input columns, then canonical fields, then derived columns.
	assert.Equal(t, "Shipper", headers[5])
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	assert.Less(t, idx["Carrier Name"], idx[ColConsignor])
	assert.Less(t, idx[ColDestinationState], idx[ColConsignorCombined])

	derived := DerivedColumns()
	for i := 1; i < len(derived); i++ {
		if idx[derived[i]] < 5 || idx[derived[i-1]] < 5 {
			continue
		}
		assert.Less(t, idx[derived[i-1]], idx[derived[i]], derived[i])
	}
	assert.Len(t, headers, 10+len(FieldAliases)+len(derived))
}

func TestRun_Idempotent(t *testing.T) {
	p := testPipeline(t)

	first, err := p.Run(testReport())
	require.NoError(t, err)
	second, err := p.Run(first.Table)
	require.NoError(t, err)

	assert.Equal(t, first.Table.Headers, second.Table.Headers)
	assert.Equal(t, first.Table.Rows, second.Table.Rows)
	assert.Equal(t, first.Stats, second.Stats)
}

func TestRun_DoesNotModifyInput(t *testing.T) {
	p := testPipeline(t)
	report := testReport()
	before := report.Clone()

	_, err := p.Run(report)
	require.NoError(t, err)
	assert.Equal(t, before, report)
}

func TestRun_TypeFieldsNeedBothColumns(t *testing.T) {
	p := testPipeline(t)

	both := types.NewTable("Consignor", "Consignee", "Org Type Code", "Dest Type Code")
	both.AddRow(map[string]string{"Consignor": "Vendor", "Consignee": "Customer", "Org Type Code": "95"})

	res, err := p.Run(both)
	require.NoError(t, err)
	assert.Equal(t, "0095", res.Table.Get(0, ColOrgTypeConsignor))
	assert.Equal(t, "0095", res.Table.Get(0, ColFinalConsignorCode))
	assert.Equal(t, "0095", res.Table.Get(0, ColResponsibleParty))

	single := types.NewTable("Consignor", "Consignee", "OrgTypeCode")
	single.AddRow(map[string]string{"Consignor": "Vendor", "Consignee": "Customer", "OrgTypeCode": "95"})

	res, err = p.Run(single)
	require.NoError(t, err)
	assert.Equal(t, "", res.Table.Get(0, ColOrgTypeConsignor))
	assert.Equal(t, locode.ThirdParty, res.Table.Get(0, ColResponsibleParty))
}

func TestRun_WithoutProfitCenterColumn(t *testing.T) {
	p := testPipeline(t)

	report := types.NewTable("Consignor", "Consignee")
	report.AddRow(map[string]string{"Consignor": "CINTAS 222", "Consignee": "CINTAS 95"})

	res, err := p.Run(report)
	require.NoError(t, err)
	assert.Equal(t, "0", res.Table.Get(0, ColAutomationAccuracy))
	assert.Equal(t, ColAutomationAccuracy, res.Table.Headers[0])
	assert.False(t, res.Table.HasColumn(ColProfitCenter))
}

func TestRun_EmptyReport(t *testing.T) {
	p := testPipeline(t)

	res, err := p.Run(types.NewTable("Shipper"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.Rows)
	for _, c := range DerivedColumns() {
		assert.True(t, res.Table.HasColumn(c), c)
	}
	for _, f := range FieldAliases {
		assert.True(t, res.Table.HasColumn(f.canonical), f.canonical)
	}

	_, err = p.Run(nil)
	assert.Error(t, err)
}

func TestProcess_SingleRecord(t *testing.T) {
	p := testPipeline(t)

	rec := Record{Consignor: "CINTAS 222", Consignee: "Receiving", DestinationAddress: "55 Dock Rd", DestinationCity: "Valdez", DestinationState: "AK"}
	p.Process(&rec, false, false)

	assert.Equal(t, "0K35", rec.Resolution.Consignee.AddressLookup)
	assert.Equal(t, "0K35", rec.Resolution.Consignee.Final)
	assert.Equal(t, "0K35", rec.Decision.Code)
	assert.Equal(t, "P1100", rec.Financials.ProfitCenter)
	assert.Equal(t, "0", rec.Accuracy)
}

func TestMissingFields(t *testing.T) {
	assert.Empty(t, MissingFields(testReport()))

	report := types.NewTable("ship_from_name", "Dest City")
	assert.Equal(t, []string{
		ColConsignee, ColOriginAddress, ColOriginCity, ColOriginState, ColDestinationAddress, ColDestinationState,
	}, MissingFields(report))
}
