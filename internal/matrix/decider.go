package matrix

import (
	"strings"

	"github.com/ginjaninja78/freight-accrual-coder/internal/locode"
	"github.com/ginjaninja78/freight-accrual-coder/internal/resolver"
)

// =============================================================================
// RESPONSIBLE PARTY DECIDER
// =============================================================================
//
// RULES (first match wins):
//   1. manufacturer -> Canadian DC:       fixed code 037Q
//   2. special consignee code at a DC:    the consignee code, unless the
//                                         consignor is a local carrier
//   3. named carrier in the carrier field: first present consignee
//                                         candidate, else the consignor code
//   4. special type pair:                 the fixed code of the pair
//   5. coding matrix:                     the ORIGIN or DESTINATION code
//   6. otherwise:                         UNKNOWN
//
// =============================================================================

const (
	typeManufacturer = "MM"
	typeLocalCarrier = "LC"

	manufacturerToCanadaCode = "037Q"
	directBilledCarrier      = "omnitrans"
)

var (
	specialConsigneeCodes = map[string]struct{}{"0K35": {}, "024P": {}, "067N": {}}
	distributionCenters   = map[string]struct{}{"USDC": {}, "CADC": {}}
)

// Rule identifies the rule that produced a decision.
type Rule string

const (
	RuleManufacturerToCanada Rule = "manufacturer_to_canada"
	RuleSpecialConsignee     Rule = "special_consignee"
	RuleCarrier              Rule = "carrier"
	RuleSpecialTypes         Rule = "special_types"
	RuleMatrix               Rule = "matrix"
	RuleUnknown              Rule = "unknown"
)

// Input is the part of a resolved record the decider reads.
type Input struct {
	ConsignorCode string
	ConsigneeCode string
	ConsignorType string
	ConsigneeType string

	// Consignee candidates, read by the carrier rule only.
	ExtractedConsignee     string
	AddressLookupConsignee string
	TypeFieldConsignee     string

	CarrierName string
}

// FromResolution builds the decider input of a resolved record.
func FromResolution(res resolver.Resolution, carrierName string) Input {
	return Input{
		ConsignorCode:          res.Consignor.Final,
		ConsigneeCode:          res.Consignee.Final,
		ConsignorType:          res.Consignor.Type,
		ConsigneeType:          res.Consignee.Type,
		ExtractedConsignee:     res.Consignee.Extracted,
		AddressLookupConsignee: res.Consignee.AddressLookup,
		TypeFieldConsignee:     res.Consignee.TypeField,
		CarrierName:            carrierName,
	}
}

// Decision is the responsible party of a record and the rule that chose it.
type Decision struct {
	Code string
	Rule Rule
}

// Decider assigns the responsible party. It holds no mutable state.
type Decider struct {
	matrix *Matrix
}

// NewDecider creates a Decider over m.
func NewDecider(m *Matrix) *Decider {
	return &Decider{matrix: m}
}

// Decide runs the rules in order.
func (d *Decider) Decide(in Input) Decision {
	consignorType := strings.ToUpper(strings.TrimSpace(in.ConsignorType))
	consigneeType := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(in.ConsigneeType)), " ", "")

	if consignorType == typeManufacturer && consigneeType == "CADC" {
		return Decision{Code: manufacturerToCanadaCode, Rule: RuleManufacturerToCanada}
	}

	if _, special := specialConsigneeCodes[in.ConsigneeCode]; special {
		if _, dc := distributionCenters[consigneeType]; dc && consignorType != typeLocalCarrier {
			return Decision{Code: in.ConsigneeCode, Rule: RuleSpecialConsignee}
		}
	}

	if strings.Contains(strings.ToLower(in.CarrierName), directBilledCarrier) {
		if code := firstPresent(in.ExtractedConsignee, in.AddressLookupConsignee, in.TypeFieldConsignee, in.ConsignorCode); code != "" {
			return Decision{Code: code, Rule: RuleCarrier}
		}
	}

	pair := Pair(in.ConsignorType, in.ConsigneeType)
	if code, ok := d.matrix.Special(pair); ok {
		return Decision{Code: code, Rule: RuleSpecialTypes}
	}
	if dir, ok := d.matrix.Direction(pair); ok {
		if dir == Origin {
			return Decision{Code: in.ConsignorCode, Rule: RuleMatrix}
		}
		return Decision{Code: in.ConsigneeCode, Rule: RuleMatrix}
	}

	return Decision{Code: locode.Unknown, Rule: RuleUnknown}
}

func firstPresent(values ...string) string {
	for _, v := range values {
		if !locode.IsBlank(v) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
