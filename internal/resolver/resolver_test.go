package resolver

import (
	"testing"

	"github.com/ginjaninja78/freight-accrual-coder/internal/locode"
	"github.com/ginjaninja78/freight-accrual-coder/internal/refdata"
	"github.com/ginjaninja78/freight-accrual-coder/internal/refindex"
	"github.com/ginjaninja78/freight-accrual-coder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()

	loc := types.NewTable("Loc Code", "Loc_Address", "Loc_City", "Loc_ST")
	loc.AddRow(map[string]string{"Loc Code": "0095", "Loc_Address": "100 Main St", "Loc_City": "Springfield", "Loc_ST": "IL"})
	loc.AddRow(map[string]string{"Loc Code": "0K35", "Loc_Address": "55 Dock Rd", "Loc_City": "Valdez", "Loc_ST": "AK"})
	loc.AddRow(map[string]string{"Loc Code": "0500", "Loc_Address": "Suite 10", "Loc_City": "Mississauga", "Loc_ST": "ON"})

	master := types.NewTable("Loc Code", "Type Code")
	master.AddRow(map[string]string{"Loc Code": "0095", "Type Code": "US DC"})
	master.AddRow(map[string]string{"Loc Code": "0K35", "Type Code": "US DC"})
	master.AddRow(map[string]string{"Loc Code": "0222", "Type Code": "MM"})
	master.AddRow(map[string]string{"Loc Code": "097H", "Type Code": "CA DC"})

	codes := types.NewTable("Codes")
	for _, c := range []string{"95", "0K35", "222", "0333", "0500", "097H", "067N", "0021"} {
		codes.AddRow(map[string]string{"Codes": c})
	}

	ix := refindex.New(&refdata.Tables{Locations: loc, Master: master, Codes: codes}, nil)
	return New(ix, refindex.CombineAddress)
}

func TestResolve_PrecedenceTextFirst(t *testing.T) {
	r := newResolver(t)

	res := r.Resolve(Input{
		Consignor: Party{Name: "CINTAS 222", Street: "100 Main St", City: "Springfield", State: "IL", TypeField: "333"},
		Consignee: Party{Name: "ACME"},
		TypeFieldsPresent: true,
	})

	assert.Equal(t, "0222", res.Consignor.Extracted)
	assert.Equal(t, "0333", res.Consignor.TypeField)
	assert.Equal(t, "0095", res.Consignor.AddressLookup)
	assert.Equal(t, "0222", res.Consignor.Final)
	assert.Equal(t, "MM", res.Consignor.Type)
	assert.Equal(t, "100SPRINGFIELDIL", res.Consignor.CombinedAddress)
}

func TestResolve_TypeFieldBeforeAddress(t *testing.T) {
	r := newResolver(t)

	res := r.Resolve(Input{
		Consignor: Party{Name: "Shipper", Street: "100 Main St", City: "Springfield", State: "IL", TypeField: "333"},
		TypeFieldsPresent: true,
	})
	assert.Equal(t, "0333", res.Consignor.Final)
	assert.Equal(t, locode.NonCintas, res.Consignor.Type)
}

func TestResolve_TypeFieldIgnoredWithoutBothColumns(t *testing.T) {
	r := newResolver(t)

	res := r.Resolve(Input{
		Consignor: Party{Name: "Shipper", Street: "100 Main St", City: "Springfield", State: "IL", TypeField: "333"},
	})
	assert.Equal(t, "", res.Consignor.TypeField)
	assert.Equal(t, "0095", res.Consignor.Final)
	assert.Equal(t, "US DC", res.Consignor.Type)
}

func TestResolve_AddressCheckWipesText(t *testing.T) {
	r := newResolver(t)

	res := r.Resolve(Input{
		Consignor: Party{Name: "ACME LOT 95", Street: "1 Nowhere Ln", City: "Gary", State: "IN"},
		Consignee: Party{Name: "ACME LOT 95", Street: "100 Main St", City: "Springfield", State: "IL"},
	})

	assert.True(t, res.Consignor.Wiped)
	assert.Equal(t, "", res.Consignor.Extracted)
	assert.Equal(t, locode.NonCintas, res.Consignor.Final)
	assert.Equal(t, locode.NonCintas, res.Consignor.Type)

	// Known address keeps the text match.
	assert.False(t, res.Consignee.Wiped)
	assert.Equal(t, "0095", res.Consignee.Final)
}

func TestResolve_AddressCheckFallsThroughToLookup(t *testing.T) {
	r := newResolver(t)

	// Text code at an unknown address is wiped, type field still counts.
	res := r.Resolve(Input{
		Consignee: Party{Name: "Warehouse 222", Street: "9 Elm", City: "Gary", State: "IN", TypeField: "0K35"},
		TypeFieldsPresent: true,
	})
	assert.True(t, res.Consignee.Wiped)
	assert.Equal(t, "0K35", res.Consignee.Final)
}

func TestResolve_InternalNameSkipsAddressCheck(t *testing.T) {
	r := newResolver(t)

	for _, name := range []string{"CINTAS CORP 222", "Cintas 222", "MAT 222 SERVICES"} {
		res := r.Resolve(Input{Consignor: Party{Name: name}})
		assert.False(t, res.Consignor.Wiped, name)
		assert.Equal(t, "0222", res.Consignor.Final, name)
	}

	// "MATS" is not the whole word.
	res := r.Resolve(Input{Consignor: Party{Name: "MATS 222"}})
	assert.True(t, res.Consignor.Wiped)
}

func TestResolve_SharedSuiteTenants(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		consignor string
		want      string
	}{
		{"LNK INTERNATIONAL", "097H"},
		{" radians inc", "097H"},
		{"ZEP INC", "067N"},
		{"BERRY GLOBAL", "0897"},
		{"ACME", "0500"},
	}
	for _, tt := range tests {
		res := r.Resolve(Input{
			Consignor: Party{Name: tt.consignor},
			Consignee: Party{Name: "Receiving", Street: "Suite 10", City: "Mississauga", State: "ON"},
		})
		assert.Equal(t, tt.want, res.Consignee.AddressLookup, tt.consignor)
		assert.Equal(t, tt.want, res.Consignee.Final, tt.consignor)
	}
}

func TestResolve_LiteralOverrides(t *testing.T) {
	r := newResolver(t)

	res := r.Resolve(Input{
		Consignor: Party{Name: "Matheson Tri-Gas"},
		Consignee: Party{Name: "Valdez terminal", Street: "6001 W Industrial"},
	})
	assert.Equal(t, "067N", res.Consignor.Final)
	// "6001 W" sets 0021, then "VALDEZ" re-sets the same party.
	assert.Equal(t, "0K35", res.Consignee.Final)
	assert.Equal(t, "US DC", res.Consignee.Type)
	require.Len(t, res.Overrides, 3)
}

func TestResolve_OverrideOrderEmpresa(t *testing.T) {
	r := newResolver(t)

	res := r.Resolve(Input{
		Consignor: Party{Name: "Empresa Textil"},
		Consignee: Party{Name: "Coopetrajes RL"},
	})
	assert.Equal(t, "0972", res.Consignor.Final)
	assert.Equal(t, "0896", res.Consignee.Final)
}

func TestResolve_NothingMatches(t *testing.T) {
	r := newResolver(t)
	res := r.Resolve(Input{})
	assert.Equal(t, locode.NonCintas, res.Consignor.Final)
	assert.Equal(t, locode.NonCintas, res.Consignee.Final)
	assert.Equal(t, locode.NonCintas, res.Consignee.Type)
	assert.Empty(t, res.Overrides)
}

func TestTenantCode(t *testing.T) {
	_, ok := tenantCode("100SPRINGFIELDIL", "ZEP")
	assert.False(t, ok)

	code, ok := tenantCode("suitemississaugaon", "vectair systems")
	assert.True(t, ok)
	assert.Equal(t, "067N", code)
}
