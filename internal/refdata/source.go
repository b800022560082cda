package refdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ginjaninja78/freight-accrual-coder/internal/config"
	"github.com/ginjaninja78/freight-accrual-coder/internal/csvparser"
	"github.com/ginjaninja78/freight-accrual-coder/internal/logger"
	"github.com/ginjaninja78/freight-accrual-coder/internal/tableio"
	"github.com/ginjaninja78/freight-accrual-coder/internal/types"
)

// =============================================================================
// SOURCE INTERFACE
// =============================================================================

// Source loads the three reference tables.
type Source interface {
	Load(ctx context.Context) (*Tables, error)
	Describe() string
}

// NewSource builds the source selected by the configuration.
func NewSource(cfg config.ReferenceConfig, csv config.CSVSettings, log logger.Logger) (Source, error) {
	switch cfg.Source {
	case config.SourceFile, "":
		return &FileSource{
			LocationsFile: cfg.LocationsFile,
			MasterFile:    cfg.MasterFile,
			CodesFile:     cfg.CodesFile,
			CSV:           csv,
			Logger:        log,
		}, nil
	case config.SourceSheets:
		return &SheetSource{
			SpreadsheetURL: cfg.SpreadsheetURL,
			LocationsTab:   cfg.LocationsTab,
			MasterTab:      cfg.MasterTab,
			CodesTab:       cfg.CodesTab,
			Timeout:        cfg.Timeout,
			Logger:         log,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported reference source %q", cfg.Source)
	}
}

// =============================================================================
// FILE SOURCE
// =============================================================================

// FileSource reads the reference tables from local files (.xlsx, .xlsm, .csv
// or .txt). An empty LocationsFile loads an empty location directory.
type FileSource struct {
	LocationsFile string
	MasterFile    string
	CodesFile     string
	CSV           config.CSVSettings
	Logger        logger.Logger
}

// Describe names the source for log lines.
func (s *FileSource) Describe() string {
	return fmt.Sprintf("files (%s, %s, %s)", s.LocationsFile, s.MasterFile, s.CodesFile)
}

// Load reads the three files.
func (s *FileSource) Load(ctx context.Context) (*Tables, error) {
	log := s.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	tables := &Tables{}
	files := map[string]string{
		KeyLocations: s.LocationsFile,
		KeyMaster:    s.MasterFile,
		KeyCodes:     s.CodesFile,
	}

	for _, key := range Keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := files[key]
		if path == "" {
			if key != KeyLocations {
				return nil, fmt.Errorf("no file configured for %s", key)
			}
			log.Warn("no location directory configured, address lookup disabled", nil)
			tables.set(key, types.NewTable())
			continue
		}

		table, err := tableio.Read(path, tableio.ReadOptions{CSV: s.CSV})
		if err != nil {
			return nil, fmt.Errorf("failed to load %s from %s: %w", key, path, err)
		}
		log.Debug("reference table loaded", map[string]interface{}{
			"table": key,
			"file":  path,
			"rows":  table.Len(),
		})
		tables.set(key, table)
	}

	return tables, nil
}

// =============================================================================
// GOOGLE SHEETS SOURCE
// =============================================================================

// SheetSource downloads the reference tabs of a Google Sheets workbook shared
// for reading, through the CSV export endpoint. Tabs are worksheet gids.
type SheetSource struct {
	SpreadsheetURL string
	LocationsTab   string
	MasterTab      string
	CodesTab       string
	Timeout        time.Duration

	// Client defaults to an http.Client with Timeout.
	Client *http.Client
	Logger logger.Logger
}

// Describe names the source for log lines.
func (s *SheetSource) Describe() string {
	return "google sheets " + s.SpreadsheetURL
}

// Load downloads the three tabs in order.
func (s *SheetSource) Load(ctx context.Context) (*Tables, error) {
	log := s.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: s.Timeout}
	}

	tabs := map[string]string{
		KeyLocations: s.LocationsTab,
		KeyMaster:    s.MasterTab,
		KeyCodes:     s.CodesTab,
	}

	tables := &Tables{}
	for _, key := range Keys {
		gid := strings.TrimSpace(tabs[key])
		if gid == "" {
			return nil, fmt.Errorf("no sheet tab configured for %s", key)
		}

		exportURL, err := ExportURL(s.SpreadsheetURL, gid)
		if err != nil {
			return nil, err
		}

		table, err := s.fetch(ctx, client, exportURL)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", key, err)
		}
		table.SourceFile = exportURL
		log.Debug("reference tab downloaded", map[string]interface{}{
			"table": key,
			"gid":   gid,
			"rows":  table.Len(),
		})
		tables.set(key, table)
	}

	return tables, nil
}

func (s *SheetSource) fetch(ctx context.Context, client *http.Client, exportURL string) (*types.Table, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return csvparser.ParseReader(resp.Body, config.CSVSettings{Delimiter: ",", Encoding: "utf-8"}, false)
}

// ExportURL turns a workbook URL (".../spreadsheets/d/<id>/edit...") into the
// CSV export URL of one tab.
func ExportURL(spreadsheetURL, gid string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(spreadsheetURL))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid spreadsheet url %q", spreadsheetURL)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	id := ""
	prefix := ""
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "d" {
			id = parts[i+1]
			prefix = strings.Join(parts[:i], "/")
			break
		}
	}
	if id == "" {
		return "", fmt.Errorf("spreadsheet url %q has no document id", spreadsheetURL)
	}

	out := url.URL{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   "/" + strings.TrimPrefix(prefix+"/d/"+id+"/export", "/"),
	}
	q := url.Values{}
	q.Set("format", "csv")
	q.Set("gid", gid)
	out.RawQuery = q.Encode()
	return out.String(), nil
}
