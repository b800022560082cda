// =============================================================================
// Freight Accrual Coder - Coding Matrix
// =============================================================================
//
// The coding matrix maps a (consignor type, consignee type) pair either to a
// fixed responsible party (special_types) or to the side of the shipment that
// bears the cost (matrix). The default matrix is embedded in the binary;
// `matrix_file` in the main config replaces it with a file of the same shape.
//
// =============================================================================

package matrix

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/freight-accrual-coder/internal/schema"
	"gopkg.in/yaml.v3"
)

//go:embed coding_matrix.yaml
var defaultMatrix []byte

const documentSchema = `{
  "type": "object",
  "required": ["matrix"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "integer"},
    "special_types": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["consignor", "consignee", "code"],
        "additionalProperties": false,
        "properties": {
          "consignor": {"type": "string", "minLength": 1},
          "consignee": {"type": "string", "minLength": 1},
          "code": {"type": "string", "minLength": 1}
        }
      }
    },
    "matrix": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["consignor", "consignee", "direction"],
        "additionalProperties": false,
        "properties": {
          "consignor": {"type": "string", "minLength": 1},
          "consignee": {"type": "string", "minLength": 1},
          "direction": {"type": "string"}
        }
      }
    }
  }
}`

// =============================================================================
// DIRECTIONS
// =============================================================================

// Direction names the side of the shipment billed by a matrix entry.
type Direction string

const (
	Origin      Direction = "ORIGIN"
	Destination Direction = "DESTINATION"
)

// DirectionError reports a matrix entry with a direction other than ORIGIN
// or DESTINATION.
type DirectionError struct {
	Consignor string
	Consignee string
	Value     string
}

func (e *DirectionError) Error() string {
	return fmt.Sprintf("invalid direction %q for type pair (%s, %s): must be ORIGIN or DESTINATION",
		e.Value, e.Consignor, e.Consignee)
}

// ParseDirection parses a direction, ignoring case and surrounding spaces.
func ParseDirection(v string) (Direction, bool) {
	switch d := Direction(strings.ToUpper(strings.TrimSpace(v))); d {
	case Origin, Destination:
		return d, true
	}
	return "", false
}

// =============================================================================
// MATRIX
// =============================================================================

// TypePair is a (consignor type, consignee type) key.
type TypePair struct {
	Consignor string
	Consignee string
}

// Pair builds a TypePair in the compared form.
func Pair(consignorType, consigneeType string) TypePair {
	return TypePair{Consignor: typeKey(consignorType), Consignee: typeKey(consigneeType)}
}

func typeKey(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// Matrix holds the special type table and the direction table.
type Matrix struct {
	version    int
	special    map[TypePair]string
	directions map[TypePair]Direction
}

type document struct {
	Version      int `yaml:"version"`
	SpecialTypes []struct {
		Consignor string `yaml:"consignor"`
		Consignee string `yaml:"consignee"`
		Code      string `yaml:"code"`
	} `yaml:"special_types"`
	Matrix []struct {
		Consignor string `yaml:"consignor"`
		Consignee string `yaml:"consignee"`
		Direction string `yaml:"direction"`
	} `yaml:"matrix"`
}

// Default returns the embedded matrix.
func Default() (*Matrix, error) {
	return Parse("embedded coding matrix", defaultMatrix)
}

// Load reads a matrix file. An empty path returns the embedded matrix.
func Load(path string) (*Matrix, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read coding matrix: %w", err)
	}
	return Parse(path, raw)
}

// Parse validates and decodes a matrix document. name identifies the
// document in errors.
//
// RETURNS:
//   - *schema.ValidationError when the document shape is wrong
//   - *DirectionError when an entry has an unknown direction
//   - an error when a type pair is listed twice in the same table
func Parse(name string, raw []byte) (*Matrix, error) {
	if err := schema.ValidateYAML(name, []byte(documentSchema), raw); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	m := &Matrix{
		version:    doc.Version,
		special:    make(map[TypePair]string, len(doc.SpecialTypes)),
		directions: make(map[TypePair]Direction, len(doc.Matrix)),
	}

	for _, e := range doc.SpecialTypes {
		key := Pair(e.Consignor, e.Consignee)
		if _, dup := m.special[key]; dup {
			return nil, fmt.Errorf("%s: duplicate special type pair (%s, %s)", name, key.Consignor, key.Consignee)
		}
		m.special[key] = strings.TrimSpace(e.Code)
	}

	for _, e := range doc.Matrix {
		key := Pair(e.Consignor, e.Consignee)
		dir, ok := ParseDirection(e.Direction)
		if !ok {
			return nil, &DirectionError{Consignor: key.Consignor, Consignee: key.Consignee, Value: e.Direction}
		}
		if _, dup := m.directions[key]; dup {
			return nil, fmt.Errorf("%s: duplicate matrix type pair (%s, %s)", name, key.Consignor, key.Consignee)
		}
		m.directions[key] = dir
	}

	return m, nil
}

// Special returns the fixed responsible party of a type pair.
func (m *Matrix) Special(p TypePair) (string, bool) {
	code, ok := m.special[p]
	return code, ok
}

// Direction returns the billed side of a type pair.
func (m *Matrix) Direction(p TypePair) (Direction, bool) {
	d, ok := m.directions[p]
	return d, ok
}

// Len returns the number of special and direction entries.
func (m *Matrix) Len() (special, directions int) {
	return len(m.special), len(m.directions)
}

// Version returns the document version of the matrix.
func (m *Matrix) Version() int {
	return m.version
}
