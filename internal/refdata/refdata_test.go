package refdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ginjaninja78/freight-accrual-coder/internal/config"
	"github.com/ginjaninja78/freight-accrual-coder/internal/logger"
	"github.com/ginjaninja78/freight-accrual-coder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTables() *Tables {
	loc := types.NewTable("Loc Code", "Loc_Address", "Loc_City", "Loc_ST")
	loc.AddRow(map[string]string{"Loc Code": "95", "Loc_Address": "100 Main St", "Loc_City": "Springfield", "Loc_ST": "IL"})

	master := types.NewTable("Loc Code", "Type Code", "ProfitCtr", "Cost Center")
	master.AddRow(map[string]string{"Loc Code": "0095", "Type Code": "us dc", "ProfitCtr": " G5900 ", "Cost Center": "312.1"})

	codes := types.NewTable("Code")
	codes.AddRow(map[string]string{"Code": "95"})
	codes.AddRow(map[string]string{"Code": " "})
	codes.AddRow(map[string]string{"Code": "11K"})

	return &Tables{Locations: loc, Master: master, Codes: codes}
}

func TestTables_TypedRows(t *testing.T) {
	tables := sampleTables()

	locs := tables.LocationRows()
	require.Len(t, locs, 1)
	assert.Equal(t, LocationRow{Code: "95", Street: "100 Main St", City: "Springfield", State: "IL"}, locs[0])

	master := tables.MasterRows()
	require.Len(t, master, 1)
	assert.Equal(t, "G5900", master[0].ProfitCenter)
	assert.Equal(t, "312.1", master[0].CostCenter)

	col, ok := tables.CodesColumn()
	require.True(t, ok)
	assert.Equal(t, "Code", col)
	assert.Equal(t, []string{"95", "11K"}, tables.CodeValues())
}

func TestTables_CodesColumnFallsBackToFirst(t *testing.T) {
	codes := types.NewTable("Whatever", "Other")
	tables := &Tables{Codes: codes}
	col, ok := tables.CodesColumn()
	assert.True(t, ok)
	assert.Equal(t, "Whatever", col)

	_, ok = (&Tables{Codes: types.NewTable()}).CodesColumn()
	assert.False(t, ok)
}

func TestTables_MissingOptionalColumns(t *testing.T) {
	master := types.NewTable("Loc Code")
	master.AddRow(map[string]string{"Loc Code": "0095"})
	rows := (&Tables{Master: master}).MasterRows()
	require.Len(t, rows, 1)
	assert.Equal(t, MasterRow{Code: "0095"}, rows[0])
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	src := &FileSource{
		LocationsFile: writeFile(t, dir, "loc.csv", "Loc Code,Loc_Address,Loc_City,Loc_ST\n95,100 Main St,Springfield,IL\n"),
		MasterFile:    writeFile(t, dir, "master.csv", "Loc Code,Type Code\n0095,US DC\n"),
		CodesFile:     writeFile(t, dir, "codes.txt", "Codes\n95\n"),
		Logger:        logger.NewTestLogger(t),
	}

	tables, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, tables.Locations.Len())
	assert.Equal(t, "US DC", tables.Master.Get(0, "Type Code"))
	assert.Equal(t, []string{"95"}, tables.CodeValues())
}

func TestFileSource_EmptyLocations(t *testing.T) {
	dir := t.TempDir()
	src := &FileSource{
		MasterFile: writeFile(t, dir, "master.csv", "Loc Code\n0095\n"),
		CodesFile:  writeFile(t, dir, "codes.csv", "Codes\n95\n"),
	}
	tables, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, tables.Locations.Len())
	assert.Empty(t, tables.LocationRows())
}

func TestFileSource_MissingFile(t *testing.T) {
	src := &FileSource{MasterFile: "missing.csv", CodesFile: "missing.csv"}
	_, err := src.Load(context.Background())
	assert.Error(t, err)
}

func TestExportURL(t *testing.T) {
	got, err := ExportURL("https://docs.google.com/spreadsheets/d/abc123/edit?usp=sharing", "36761169")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc123/export?format=csv&gid=36761169", got)

	_, err = ExportURL("https://docs.google.com/spreadsheets/", "0")
	assert.Error(t, err)

	_, err = ExportURL("not a url", "0")
	assert.Error(t, err)
}

func TestSheetSource_Load(t *testing.T) {
	bodies := map[string]string{
		"0": "Loc Code,Loc_Address,Loc_City,Loc_ST\n95,100 Main St,Springfield,IL\n",
		"1": "Loc Code,Type Code,ProfitCtr,Cost Center\n0095,US DC,G5900,312.10000\n",
		"2": "Codes\n95\n",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/spreadsheets/d/doc/export", r.URL.Path)
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		body, ok := bodies[r.URL.Query().Get("gid")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	src := &SheetSource{
		SpreadsheetURL: srv.URL + "/spreadsheets/d/doc/edit",
		LocationsTab:   "0",
		MasterTab:      "1",
		CodesTab:       "2",
		Timeout:        5 * time.Second,
		Client:         srv.Client(),
	}

	tables, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "312.10000", tables.Master.Get(0, "Cost Center"))
	assert.Equal(t, []string{"95"}, tables.CodeValues())

	src.CodesTab = "404"
	_, err = src.Load(context.Background())
	assert.Error(t, err)

	src.CodesTab = ""
	_, err = src.Load(context.Background())
	assert.Error(t, err)
}

func TestSheetSource_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Codes\n95\n"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &SheetSource{SpreadsheetURL: srv.URL + "/d/doc", LocationsTab: "0", MasterTab: "1", CodesTab: "2"}
	_, err := src.Load(ctx)
	assert.Error(t, err)
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(config.ReferenceConfig{Source: config.SourceSheets, SpreadsheetURL: "https://x/d/y"}, config.CSVSettings{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SheetSource{}, src)

	src, err = NewSource(config.ReferenceConfig{Source: config.SourceFile}, config.CSVSettings{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)

	_, err = NewSource(config.ReferenceConfig{Source: "ftp"}, config.CSVSettings{}, nil)
	assert.Error(t, err)
}

func TestSnapshot_AppendPendingClear(t *testing.T) {
	base := sampleTables()
	snap := NewSnapshot(base)

	require.NoError(t, snap.Append(KeyCodes, map[string]string{"Code": "0K99"}))
	require.NoError(t, snap.Append(KeyLocations, map[string]string{"Loc Code": "0K99", "Zip_Code": "45040"}))
	assert.Error(t, snap.Append("unknown", nil))
	assert.Equal(t, 2, snap.PendingCount())

	merged := snap.Tables()
	assert.Equal(t, []string{"95", "11K", "0K99"}, merged.CodeValues())
	assert.Equal(t, []string{"Loc Code", "Loc_Address", "Loc_City", "Loc_ST", "Zip_Code"}, merged.Locations.Headers)
	assert.Equal(t, "", merged.Locations.Get(0, "Zip_Code"))

	// The loaded tables are untouched.
	assert.Equal(t, 3, base.Codes.Len())
	assert.False(t, base.Locations.HasColumn("Zip_Code"))

	pending := snap.Pending(KeyCodes)
	pending[0]["Code"] = "changed"
	assert.Equal(t, "0K99", snap.Pending(KeyCodes)[0]["Code"])

	snap.Clear(KeyCodes)
	assert.Empty(t, snap.Pending(KeyCodes))
	assert.Len(t, snap.Pending(KeyLocations), 1)

	snap.Clear("")
	assert.Equal(t, 0, snap.PendingCount())
}

func TestSnapshot_LoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "overlay.yaml", `
master_location:
  - Loc Code: "0K99"
    Type Code: US DC
    Cost Center: "312.10000"
all_codes:
  - Code: 972
`)

	snap := NewSnapshot(sampleTables())
	n, err := snap.LoadOverlay(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	merged := snap.Tables()
	assert.Equal(t, "312.10000", merged.Master.Get(1, "Cost Center"))
	assert.Contains(t, merged.CodeValues(), "972")
}

func TestSnapshot_LoadOverlayRejectsUnknownTable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "overlay.yaml", "pricing:\n  - a: b\n")
	_, err := NewSnapshot(nil).LoadOverlay(path)
	assert.Error(t, err)
}
