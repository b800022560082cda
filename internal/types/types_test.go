package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_SetAddsColumnAndKeepsPosition(t *testing.T) {
	tbl := NewTable("A", "B")
	tbl.AddRow(map[string]string{"A": "1", "B": "2"})
	tbl.AddRow(map[string]string{"A": "3"})

	tbl.Set(0, "C", "x")
	assert.Equal(t, []string{"A", "B", "C"}, tbl.Headers)
	assert.Equal(t, "", tbl.Get(1, "C"))

	tbl.Set(1, "A", "9")
	assert.Equal(t, []string{"A", "B", "C"}, tbl.Headers)
	assert.Equal(t, []string{"1", "9"}, tbl.Column("A"))
}

func TestTable_AddRowWithNewColumn(t *testing.T) {
	tbl := NewTable("A")
	tbl.AddRow(map[string]string{"A": "1"})
	tbl.AddRow(map[string]string{"A": "2", "Z": "new"})

	assert.Equal(t, []string{"A", "Z"}, tbl.Headers)
	assert.Equal(t, "", tbl.Get(0, "Z"))
	assert.Equal(t, "new", tbl.Get(1, "Z"))
}

func TestTable_MoveToFront(t *testing.T) {
	tbl := NewTable("x", "Profit Center EJ", "y", "Profit Center")
	tbl.MoveToFront("Profit Center", "Cost Center", "Profit Center EJ")
	assert.Equal(t, []string{"Profit Center", "Profit Center EJ", "x", "y"}, tbl.Headers)
}

func TestTable_FindColumn(t *testing.T) {
	tbl := NewTable("Ship From Name", "ORG_CITY", "Dest City")

	col, ok := tbl.FindColumn("Consignor", "Origin Facility", "ShipFromName")
	require.True(t, ok)
	assert.Equal(t, "Ship From Name", col)

	col, ok = tbl.FindColumn("Origin City", "Org City")
	require.True(t, ok)
	assert.Equal(t, "ORG_CITY", col)

	_, ok = tbl.FindColumn("Consignee")
	assert.False(t, ok)
}

func TestTable_CloneIsDeep(t *testing.T) {
	tbl := NewTable("A")
	tbl.AddRow(map[string]string{"A": "1"})
	cp := tbl.Clone()
	cp.Set(0, "A", "2")
	cp.Set(0, "B", "3")
	assert.Equal(t, "1", tbl.Get(0, "A"))
	assert.False(t, tbl.HasColumn("B"))
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "origintypecode", NormalizeHeader("Origin Type-Code "))
	assert.Equal(t, "account", NormalizeHeader("Account #"))
}

func TestTable_AddColumn(t *testing.T) {
	tbl := NewTable("A")
	tbl.AddColumn("B")
	tbl.AddColumn("A")
	assert.Equal(t, []string{"A", "B"}, tbl.Headers)

	tbl.AddRow(map[string]string{"A": "1"})
	tbl.AddColumn("C")
	assert.Equal(t, "", tbl.Get(0, "C"))
	_, ok := tbl.Rows[0]["C"]
	assert.True(t, ok)
}
