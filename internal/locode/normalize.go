// =============================================================================
// Freight Accrual Coder - Location Code Normalizer
// =============================================================================
//
// This package canonicalizes location codes. Upstream systems emit the same
// location in many shapes ("95", "095", "0095", "0000095", "11K", "011K"), so
// every comparison in the pipeline goes through Normalize first.
//
// CANONICAL FORM:
//   - Exactly 4 characters for short codes, uppercase.
//   - All-digit input is zero-padded and then cut to its LAST 4 digits.
//   - Alphanumeric input is zero-padded to 4 and never truncated.
//
//   | Input     | Canonical |
//   |-----------|-----------|
//   | 95        | 0095      |
//   | 0000095   | 0095      |
//   | 11K       | 011K      |
//   | T60       | 0T60      |
//   | ABCDE     | ABCDE     |
//
// =============================================================================

package locode

import "strings"

// =============================================================================
// SENTINELS
// =============================================================================

const (
	// NonCintas marks a party for which no internal code was resolved.
	// It is also the type of any code missing from the type directory.
	NonCintas = "NON-CINTAS"

	// Unknown marks a record for which no responsible-party rule matched.
	Unknown = "UNKNOWN"

	// ThirdParty is a responsible-party value produced by the special type
	// table for flows that are billed outside the network.
	ThirdParty = "THIRD PARTY"
)

// Width is the canonical code length.
const Width = 4

// =============================================================================
// NORMALIZATION
// =============================================================================

// Normalize returns the canonical 4-character form of code.
//
// RETURNS:
//   - The canonical code and true.
//   - "" and false when the input is blank or a NaN-like placeholder.
func Normalize(code string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(code))
	if IsBlank(s) {
		return "", false
	}

	padded := padLeft(s, Width)
	if isDigits(s) {
		return padded[len(padded)-Width:], true
	}
	return padded, true
}

// MustNormalize is Normalize without the presence flag.
// Blank input yields "".
func MustNormalize(code string) string {
	c, _ := Normalize(code)
	return c
}

// Equal reports whether two codes share a canonical form.
// Two absent codes are not equal.
func Equal(a, b string) bool {
	ca, okA := Normalize(a)
	cb, okB := Normalize(b)
	return okA && okB && ca == cb
}

// IsBlank reports whether v carries no value. Spreadsheet exports and
// dataframe round-trips leave "nan", "None" and "<NA>" behind in text cells,
// so those count as blank too.
func IsBlank(v string) bool {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "", "NAN", "NONE", "NULL", "<NA>":
		return true
	}
	return false
}

// =============================================================================
// HELPERS
// =============================================================================

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// padLeft mirrors the zero fill used by the upstream exports: a leading sign
// is kept in front of the zeros.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	fill := strings.Repeat("0", width-len(s))
	if s[0] == '-' || s[0] == '+' {
		return s[:1] + fill + s[1:]
	}
	return fill + s
}
