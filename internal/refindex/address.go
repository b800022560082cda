package refindex

import (
	"strings"

	"github.com/ginjaninja78/freight-accrual-coder/internal/locode"
)

// CombineAddress builds the address key used to match a party against the
// location directory: the first word of the street, the first word of the
// city and the state, uppercased with every space removed.
//
//	CombineAddress("100 Main St", "Springfield", "IL") == "100SPRINGFIELDIL"
//
// ok is false when any part is blank.
func CombineAddress(street, city, state string) (string, bool) {
	if locode.IsBlank(street) || locode.IsBlank(city) || locode.IsBlank(state) {
		return "", false
	}
	streetParts := strings.Fields(street)
	cityParts := strings.Fields(city)
	if len(streetParts) == 0 || len(cityParts) == 0 {
		return "", false
	}
	return cleanKey(streetParts[0] + cityParts[0] + strings.TrimSpace(state)), true
}

// cleanKey uppercases a key and drops all whitespace.
func cleanKey(key string) string {
	return strings.ToUpper(strings.Join(strings.Fields(key), ""))
}

// ResolveAddress returns the canonical code registered for an address key.
// Stray spaces and lowercase letters in key are tolerated.
func (ix *Index) ResolveAddress(key string) (string, bool) {
	k := cleanKey(key)
	if k == "" {
		return "", false
	}
	code, ok := ix.addresses[k]
	if !ok {
		return "", false
	}
	return locode.Normalize(code)
}

// KnownAddress reports whether key is the address of any location directory
// row, whether or not that row carries a code.
func (ix *Index) KnownAddress(key string) bool {
	k := cleanKey(key)
	if k == "" {
		return false
	}
	_, ok := ix.knownAddresses[k]
	return ok
}
