// =============================================================================
// Freight Accrual Coder - Code Extractor
// =============================================================================
//
// Pulls a location code out of free text such as a consignor or consignee
// name ("CINTAS 0095 - SPRINGFIELD", "CINTAS0095", "ZEP INC 11K").
//
// TOKENS:
//   1. Every maximal run of letters and digits.
//   2. Every "1-4 digits, then up to 2 letters" shape, which catches codes
//      glued to a word ("CINTAS0095" -> "0095").
//
// Tokens are deduplicated and tried longest first, so "0095" beats "95" when
// both are allowed. Equal lengths are tried in lexical order. The first token
// the index accepts wins.
//
// =============================================================================

package extractor

import (
	"regexp"
	"sort"
	"strings"
)

var (
	alnumRun  = regexp.MustCompile(`[A-Z0-9]+`)
	codeShape = regexp.MustCompile(`\d{1,4}[A-Z]{0,2}|\d{1,4}`)
)

// Validator accepts or rejects a candidate token and returns its canonical
// form. *refindex.Index satisfies it.
type Validator interface {
	IsAllowed(token string) (string, bool)
}

// Extractor finds location codes in text.
type Extractor struct {
	codes Validator
}

// New creates an Extractor validating against codes.
func New(codes Validator) *Extractor {
	return &Extractor{codes: codes}
}

// FromText returns the first allowed code found in text.
func (e *Extractor) FromText(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	for _, tok := range Tokens(text) {
		if code, ok := e.codes.IsAllowed(tok); ok {
			return code, true
		}
	}
	return "", false
}

// FromTypeFields validates the origin and destination type-code fields
// independently.
func (e *Extractor) FromTypeFields(orgType, destType string) (org, dest string) {
	org, _ = e.codes.IsAllowed(orgType)
	dest, _ = e.codes.IsAllowed(destType)
	return org, dest
}

// Tokens returns the candidate tokens of text in the order they are tried.
func Tokens(text string) []string {
	upper := strings.ToUpper(text)

	seen := make(map[string]struct{})
	var tokens []string
	add := func(matches []string) {
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			tokens = append(tokens, m)
		}
	}
	add(alnumRun.FindAllString(upper, -1))
	add(codeShape.FindAllString(upper, -1))

	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	return tokens
}
