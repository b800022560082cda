package xmlwriter

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/freight-accrual-coder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementNames(t *testing.T) {
	got := ElementNames([]string{
		"Account # EJ", "Loc_Address", "Final Consignor Code", "4 digit", "###", "Profit Center", "profit center",
	})
	assert.Equal(t, []string{
		"AccountEJ", "LocAddress", "FinalConsignorCode", "F4Digit", "Field", "ProfitCenter", "ProfitCenter2",
	}, got)
}

func TestGenerate(t *testing.T) {
	table := types.NewTable("Consignor", "Account # EJ")
	table.SourceFile = "weekly.xlsx"
	table.AddRow(map[string]string{"Consignor": "A & B", "Account # EJ": "621000"})
	table.AddRow(map[string]string{"Consignor": "Vendor", "Account # EJ": "621020"})

	data, err := Generate(table)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, text, `<AccrualBatch source="weekly.xlsx">`)
	assert.Contains(t, text, `<Accrual n="2">`)
	assert.Contains(t, text, `<Consignor>A &amp; B</Consignor>`)
	assert.Contains(t, text, `<AccountEJ>621020</AccountEJ>`)

	var doc struct {
		Records []struct {
			N       string `xml:"n,attr"`
			Account string `xml:"AccountEJ"`
		} `xml:"Accrual"`
	}
	require.NoError(t, xml.Unmarshal(data, &doc))
	require.Len(t, doc.Records, 2)
	assert.Equal(t, "1", doc.Records[0].N)
	assert.Equal(t, "621000", doc.Records[0].Account)
}

func TestGenerateWithOptions_Columns(t *testing.T) {
	table := types.NewTable("Consignor", "Responsible Party")
	table.AddRow(map[string]string{"Consignor": "Vendor", "Responsible Party": "0095"})

	data, err := GenerateWithOptions(table, GenerateOptions{
		RecordElement: "Line",
		Columns:       []string{"Responsible Party", "Missing"},
	})
	require.NoError(t, err)
	assert.Equal(t, "<AccrualBatch><Line><ResponsibleParty>0095</ResponsibleParty><Missing></Missing></Line></AccrualBatch>\n", string(data))

	_, err = Generate(nil)
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	table := types.NewTable("A")
	path := filepath.Join(t.TempDir(), "batch.xml")

	require.NoError(t, Write(table, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<AccrualBatch></AccrualBatch>")
}
