// =============================================================================
// Freight Accrual Coder - Profit/Cost Center & GL Populator
// =============================================================================
//
// Joins the responsible party against the financial directory of the master
// table and derives the GL account and the automation accuracy flag.
//
// GL ACCOUNT:
//   - 621000 when the profit center carries the G59 tag
//   - 621000 when the consignee is the responsible party
//   - 621020 otherwise (inter-company)
//
// Cost centers are opaque text. Numeric-looking values are re-rendered with a
// fixed number of decimals so a master value read back as "312.1" is exported
// as "312.10000" again.
//
// =============================================================================

package financials

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/freight-accrual-coder/internal/locode"
	"github.com/ginjaninja78/freight-accrual-coder/internal/refindex"
	"github.com/shopspring/decimal"
)

const (
	AccountDefault      = "621000"
	AccountInterCompany = "621020"

	directProfitCenterTag = "G59"
)

var numericText = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Lookup returns the financial attributes of a location code.
// *refindex.Index satisfies it.
type Lookup interface {
	Financials(code string) (refindex.Financials, bool)
}

// Result holds the financial columns of one record.
type Result struct {
	ProfitCenter string
	CostCenter   string
	Account      string
}

// Populator fills the financial columns.
type Populator struct {
	lookup   Lookup
	decimals int
}

// NewPopulator creates a Populator. decimals is the number of decimals cost
// centers are rendered with; 0 keeps them as read.
func NewPopulator(lookup Lookup, decimals int) *Populator {
	if decimals < 0 {
		decimals = 0
	}
	return &Populator{lookup: lookup, decimals: decimals}
}

// Populate computes the profit center, cost center and GL account.
//
// PARAMETERS:
//   - responsibleParty: code or sentinel chosen by the decider
//   - finalConsignee: final consignee code of the record
func (p *Populator) Populate(responsibleParty, finalConsignee string) Result {
	var res Result

	if !blanked(responsibleParty) {
		if fin, ok := p.lookup.Financials(responsibleParty); ok {
			res.ProfitCenter = strings.TrimSpace(fin.ProfitCenter)
			res.CostCenter = FormatCostCenter(fin.CostCenter, p.decimals)
		}
	}

	res.Account = account(res.ProfitCenter, responsibleParty, finalConsignee)
	return res
}

func blanked(responsibleParty string) bool {
	rp := strings.ToUpper(strings.TrimSpace(responsibleParty))
	return rp == locode.ThirdParty || rp == locode.NonCintas
}

func account(profitCenter, responsibleParty, finalConsignee string) string {
	if strings.Contains(profitCenter, directProfitCenterTag) {
		return AccountDefault
	}
	if finalConsignee == responsibleParty {
		return AccountDefault
	}
	return AccountInterCompany
}

// FormatCostCenter renders numeric-looking text with a fixed number of
// decimals. Other text, and any text when decimals is 0, is only trimmed.
func FormatCostCenter(v string, decimals int) string {
	s := strings.TrimSpace(v)
	if locode.IsBlank(s) {
		return ""
	}
	if decimals <= 0 || !numericText.MatchString(s) {
		return s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d.StringFixed(int32(decimals))
}

// Accuracy returns "1" when the profit center already on the record matches
// the computed one, "0" otherwise. present is false when the report has no
// Profit Center column.
func Accuracy(existing string, present bool, computed string) string {
	if !present {
		return "0"
	}
	e := strings.TrimSpace(existing)
	if locode.IsBlank(e) || e != strings.TrimSpace(computed) {
		return "0"
	}
	return "1"
}
