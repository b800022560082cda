package refdata

import (
	"fmt"
	"os"
	"sort"

	"github.com/ginjaninja78/freight-accrual-coder/internal/schema"
	"github.com/ginjaninja78/freight-accrual-coder/internal/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a caller-owned view of the reference tables plus rows added
// during a session that do not exist upstream yet. The loaded tables are never
// modified; Tables returns a merged copy.
//
// A Snapshot is not safe for concurrent mutation. Build the index from
// Tables() once, then share the index.
type Snapshot struct {
	base    *Tables
	pending map[string][]map[string]string
}

// NewSnapshot wraps loaded tables.
func NewSnapshot(base *Tables) *Snapshot {
	if base == nil {
		base = &Tables{}
	}
	return &Snapshot{
		base:    base,
		pending: make(map[string][]map[string]string),
	}
}

// Append queues a row for a table. Unknown keys are rejected.
func (s *Snapshot) Append(key string, row map[string]string) error {
	if !validKey(key) {
		return fmt.Errorf("unknown reference table %q", key)
	}
	cp := make(map[string]string, len(row))
	for k, v := range row {
		cp[k] = v
	}
	s.pending[key] = append(s.pending[key], cp)
	return nil
}

// Pending returns a copy of the queued rows of a table.
func (s *Snapshot) Pending(key string) []map[string]string {
	rows := s.pending[key]
	out := make([]map[string]string, len(rows))
	for i, r := range rows {
		cp := make(map[string]string, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

// PendingCount returns the number of queued rows over all tables.
func (s *Snapshot) PendingCount() int {
	n := 0
	for _, rows := range s.pending {
		n += len(rows)
	}
	return n
}

// Clear drops the queued rows of a table, or of every table when key is "".
func (s *Snapshot) Clear(key string) {
	if key == "" {
		s.pending = make(map[string][]map[string]string)
		return
	}
	delete(s.pending, key)
}

// Tables returns the loaded tables with the queued rows appended. Columns
// only present in queued rows are added, blank for the loaded rows.
func (s *Snapshot) Tables() *Tables {
	out := s.base.Clone()
	for _, key := range Keys {
		rows := s.pending[key]
		if len(rows) == 0 {
			continue
		}
		table := out.Get(key)
		if table == nil {
			table = newTableFor(rows)
			out.set(key, table)
		}
		for _, r := range rows {
			table.AddRow(r)
		}
	}
	return out
}

// =============================================================================
// OVERLAY FILE
// =============================================================================

// overlaySchema describes the overlay document:
//
//	my_location:
//	  - Loc Code: "0K99"
//	    Loc_Address: "100 Main St"
//	master_location:
//	  - Loc Code: "0K99"
//	    Type Code: "US DC"
//	all_codes:
//	  - Codes: "0K99"
//
// Quote numeric values, or YAML reads 312.10000 as 312.1.
const overlaySchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "my_location":     {"$ref": "#/definitions/rows"},
    "master_location": {"$ref": "#/definitions/rows"},
    "all_codes":       {"$ref": "#/definitions/rows"}
  },
  "definitions": {
    "rows": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": {"type": ["string", "number", "integer", "boolean", "null"]}
      }
    }
  }
}`

// LoadOverlay queues the rows of an overlay YAML file and returns how many
// were added.
func (s *Snapshot) LoadOverlay(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read overlay file: %w", err)
	}
	if err := schema.ValidateYAML(path, []byte(overlaySchema), raw); err != nil {
		return 0, err
	}

	var doc map[string][]map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return 0, fmt.Errorf("failed to parse overlay file: %w", err)
	}

	added := 0
	for _, key := range Keys {
		for _, r := range doc[key] {
			row := make(map[string]string, len(r))
			for k, v := range r {
				if v == nil {
					row[k] = ""
					continue
				}
				row[k] = fmt.Sprint(v)
			}
			if err := s.Append(key, row); err != nil {
				return added, err
			}
			added++
		}
	}
	return added, nil
}

func validKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// newTableFor creates an empty table whose headers are the sorted union of the
// rows' keys.
func newTableFor(rows []map[string]string) *types.Table {
	seen := make(map[string]bool)
	var headers []string
	for _, r := range rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)
	return types.NewTable(headers...)
}
