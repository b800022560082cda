// =============================================================================
// Freight Accrual Coder - Final Code Resolver
// =============================================================================
//
// Resolves the final location code and type of both parties of a shipment.
//
// PER PARTY (consignor = origin, consignee = destination):
//   1. Combined address key of the party.
//   2. Candidate A: code extracted from the party name.
//   3. Candidate B: the explicit org/dest type-code field, when the report
//      carries both type-code columns.
//   4. Candidate C: code registered for the combined address.
//   5. Address check: A is dropped when the name is not an internal one
//      (no whole word CINTAS or MAT) and the address is not in the location
//      directory. B and C are kept.
//   6. Shared address tenants: at one shared Mississauga suite, the consignor
//      name decides the consignee candidate C.
//   7. Final code: first of A, B, C, else NON-CINTAS, normalized.
//   8. Literal overrides by name or address substring, in table order, then
//      normalized again.
//   9. Final type from the master table, NON-CINTAS when unknown.
//
// =============================================================================

package resolver

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/freight-accrual-coder/internal/extractor"
	"github.com/ginjaninja78/freight-accrual-coder/internal/locode"
)

// Reference is the part of the reference index the resolver needs.
// *refindex.Index satisfies it.
type Reference interface {
	IsAllowed(token string) (string, bool)
	ResolveAddress(key string) (string, bool)
	KnownAddress(key string) bool
	TypeOf(code string) (string, bool)
}

// AddressFunc builds an address key; refindex.CombineAddress in production.
type AddressFunc func(street, city, state string) (string, bool)

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// Party is the raw data of one side of a shipment.
type Party struct {
	Name      string
	Street    string
	City      string
	State     string
	TypeField string
}

// Input is one shipment record.
type Input struct {
	Consignor Party
	Consignee Party

	// TypeFieldsPresent is true when the report has both the org and the
	// dest type-code columns. Candidate B is ignored otherwise.
	TypeFieldsPresent bool
}

// PartyResolution keeps every candidate of one party for audit.
type PartyResolution struct {
	CombinedAddress string

	// Extracted is candidate A after the address check.
	Extracted string

	// TypeField is candidate B.
	TypeField string

	// AddressLookup is candidate C after the shared address rule.
	AddressLookup string

	Final string
	Type  string

	// Wiped is true when the address check dropped candidate A.
	Wiped bool
}

// Resolution is the result for one record.
type Resolution struct {
	Consignor PartyResolution
	Consignee PartyResolution

	// Overrides lists the literal overrides that matched, in order.
	Overrides []string

	// TenantCode is the code forced by the shared address rule, "" if none.
	TenantCode string
}

// =============================================================================
// RESOLVER
// =============================================================================

var internalName = regexp.MustCompile(`\b(CINTAS|MAT)\b`)

// Resolver resolves records against a reference index. It is stateless and
// safe for concurrent use when the index is.
type Resolver struct {
	ref     Reference
	extract *extractor.Extractor
	combine AddressFunc
}

// New creates a Resolver.
func New(ref Reference, combine AddressFunc) *Resolver {
	return &Resolver{
		ref:     ref,
		extract: extractor.New(ref),
		combine: combine,
	}
}

// Resolve runs the full resolution for one record.
func (r *Resolver) Resolve(in Input) Resolution {
	var res Resolution

	res.Consignor = r.candidates(in.Consignor)
	res.Consignee = r.candidates(in.Consignee)

	if in.TypeFieldsPresent {
		res.Consignor.TypeField, res.Consignee.TypeField = r.extract.FromTypeFields(in.Consignor.TypeField, in.Consignee.TypeField)
	}

	if code, ok := tenantCode(res.Consignee.CombinedAddress, in.Consignor.Name); ok {
		res.Consignee.AddressLookup = code
		res.TenantCode = code
	}

	res.Consignor.Final = finalCode(res.Consignor)
	res.Consignee.Final = finalCode(res.Consignee)

	res.Overrides = applyOverrides(in, &res)
	res.Consignor.Final = locode.MustNormalize(res.Consignor.Final)
	res.Consignee.Final = locode.MustNormalize(res.Consignee.Final)

	res.Consignor.Type = r.typeOf(res.Consignor.Final)
	res.Consignee.Type = r.typeOf(res.Consignee.Final)

	return res
}

// candidates computes the address key and candidates A and C of a party,
// with the address check applied to A.
func (r *Resolver) candidates(p Party) PartyResolution {
	var pr PartyResolution

	if key, ok := r.combine(p.Street, p.City, p.State); ok {
		pr.CombinedAddress = key
	}

	if code, ok := r.extract.FromText(p.Name); ok {
		pr.Extracted = code
		if !internalName.MatchString(strings.ToUpper(p.Name)) && !r.ref.KnownAddress(pr.CombinedAddress) {
			pr.Extracted = ""
			pr.Wiped = true
		}
	}

	if pr.CombinedAddress != "" {
		if code, ok := r.ref.ResolveAddress(pr.CombinedAddress); ok {
			pr.AddressLookup = code
		}
	}

	return pr
}

func finalCode(pr PartyResolution) string {
	for _, c := range []string{pr.Extracted, pr.TypeField, pr.AddressLookup} {
		if !locode.IsBlank(c) {
			return locode.MustNormalize(c)
		}
	}
	return locode.NonCintas
}

func (r *Resolver) typeOf(code string) string {
	if typ, ok := r.ref.TypeOf(code); ok {
		return typ
	}
	return locode.NonCintas
}
