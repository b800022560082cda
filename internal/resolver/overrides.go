package resolver

import (
	"fmt"
	"strings"
)

// =============================================================================
// LITERAL OVERRIDES
// =============================================================================

// field selects the record value an override matches against.
type field int

const (
	fieldConsignor field = iota
	fieldConsignee
	fieldDestinationAddress
)

func (f field) String() string {
	switch f {
	case fieldConsignor:
		return "Consignor"
	case fieldConsignee:
		return "Consignee"
	default:
		return "Destination Address"
	}
}

func (f field) value(in Input) string {
	switch f {
	case fieldConsignor:
		return in.Consignor.Name
	case fieldConsignee:
		return in.Consignee.Name
	default:
		return in.Consignee.Street
	}
}

// party selects the final code an override sets.
type party int

const (
	partyConsignor party = iota
	partyConsignee
)

// override forces code on a party when the matched value, uppercased,
// contains the substring.
type override struct {
	match    field
	contains string
	set      party
	code     string
}

// overrides patch known mis-resolutions of specific partners. Order matters:
// a later match re-sets the same party.
var overrides = []override{
	{match: fieldDestinationAddress, contains: "6001 W", set: partyConsignee, code: "0021"},
	{match: fieldConsignee, contains: "VALDEZ", set: partyConsignee, code: "0K35"},
	{match: fieldDestinationAddress, contains: "ATTN: GARDNER", set: partyConsignee, code: "0536"},
	{match: fieldConsignor, contains: "AVERITT TERMINAL", set: partyConsignor, code: "0004"},
	{match: fieldConsignor, contains: "COOPETRAJES", set: partyConsignor, code: "0896"},
	{match: fieldConsignee, contains: "COOPETRAJES", set: partyConsignee, code: "0896"},
	{match: fieldConsignor, contains: "MATHESON", set: partyConsignor, code: "067N"},
	{match: fieldConsignor, contains: "EMPRESSA", set: partyConsignor, code: "0972"},
	{match: fieldConsignor, contains: "EMPRESA", set: partyConsignor, code: "0972"},
	{match: fieldConsignee, contains: "EMPRESSA", set: partyConsignee, code: "0972"},
	{match: fieldConsignee, contains: "EMPRESA", set: partyConsignee, code: "0972"},
}

// applyOverrides sets the final codes of res and returns the description of
// each override that matched.
func applyOverrides(in Input, res *Resolution) []string {
	var applied []string
	for _, o := range overrides {
		if !strings.Contains(strings.ToUpper(o.match.value(in)), o.contains) {
			continue
		}
		if o.set == partyConsignor {
			res.Consignor.Final = o.code
		} else {
			res.Consignee.Final = o.code
		}
		applied = append(applied, fmt.Sprintf("%s contains %q -> %s", o.match, o.contains, o.code))
	}
	return applied
}

// =============================================================================
// SHARED ADDRESS TENANTS
// =============================================================================

// sharedSuitePrefix is the address key prefix of a Mississauga suite shared by
// several tenants that the address alone cannot tell apart.
const sharedSuitePrefix = "SUITEMISSISSAUGAON"

type tenant struct {
	namePrefixes []string
	code         string
}

var sharedSuiteTenants = []tenant{
	{namePrefixes: []string{"LNK", "AMERICAN METAL CRAFTERS", "RADIANS", "EVER READY"}, code: "097H"},
	{namePrefixes: []string{"VECTAIR", "ZEP"}, code: "067N"},
	{namePrefixes: []string{"CHEMFREE", "BERRY GLOBAL"}, code: "0897"},
}

// tenantCode returns the consignee code forced by the consignor name when the
// consignee sits at the shared suite. The last matching tenant wins.
func tenantCode(consigneeKey, consignorName string) (string, bool) {
	if !strings.HasPrefix(strings.ToUpper(consigneeKey), sharedSuitePrefix) {
		return "", false
	}
	name := strings.ToUpper(strings.TrimSpace(consignorName))

	code := ""
	for _, t := range sharedSuiteTenants {
		for _, p := range t.namePrefixes {
			if strings.HasPrefix(name, p) {
				code = t.code
				break
			}
		}
	}
	return code, code != ""
}
