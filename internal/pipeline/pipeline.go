// =============================================================================
// Freight Accrual Coder - Pipeline
// =============================================================================
//
// The pipeline codes one accrual report:
//
//   1. Standardize: canonical fields are copied from their upstream aliases.
//   2. Resolve: final codes and types of both parties per record.
//   3. Decide: responsible party per record.
//   4. Populate: profit center, cost center, GL account, accuracy flag.
//   5. Order: the financial columns are moved to the front.
//
// Records are independent and processed in one sequential pass. Rows are never
// dropped or reordered. Running the pipeline over its own output yields the
// same table: derived columns are overwritten where they already are.
//
// =============================================================================

package pipeline

import (
	"fmt"

	"github.com/ginjaninja78/freight-accrual-coder/internal/financials"
	"github.com/ginjaninja78/freight-accrual-coder/internal/locode"
	"github.com/ginjaninja78/freight-accrual-coder/internal/logger"
	"github.com/ginjaninja78/freight-accrual-coder/internal/matrix"
	"github.com/ginjaninja78/freight-accrual-coder/internal/refindex"
	"github.com/ginjaninja78/freight-accrual-coder/internal/resolver"
	"github.com/ginjaninja78/freight-accrual-coder/internal/types"
)

// =============================================================================
// RECORD
// =============================================================================

// Record is one transaction of the report: the canonical input fields and
// everything the pipeline derives from them.
type Record struct {
	Consignor          string
	Consignee          string
	OriginAddress      string
	OriginCity         string
	OriginState        string
	DestinationAddress string
	DestinationCity    string
	DestinationState   string

	OrgTypeCode  string
	DestTypeCode string
	CarrierName  string

	// ProfitCenter is the profit center already on the report, if any.
	ProfitCenter string

	Resolution resolver.Resolution
	Decision   matrix.Decision
	Financials financials.Result
	Accuracy   string
}

func (r *Record) input(typeFieldsPresent bool) resolver.Input {
	return resolver.Input{
		Consignor: resolver.Party{
			Name:      r.Consignor,
			Street:    r.OriginAddress,
			City:      r.OriginCity,
			State:     r.OriginState,
			TypeField: r.OrgTypeCode,
		},
		Consignee: resolver.Party{
			Name:      r.Consignee,
			Street:    r.DestinationAddress,
			City:      r.DestinationCity,
			State:     r.DestinationState,
			TypeField: r.DestTypeCode,
		},
		TypeFieldsPresent: typeFieldsPresent,
	}
}

// =============================================================================
// RESULT
// =============================================================================

// Stats summarizes one run.
type Stats struct {
	Rows             int
	NonCintasFinals  int
	Unknown          int
	ThirdParty       int
	Wiped            int
	OverridesApplied int
	TenantRules      int
	Accurate         int
	Rules            map[matrix.Rule]int
}

// Result is the coded report and its statistics.
type Result struct {
	Table *types.Table
	Stats Stats
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline codes reports against one reference index. It can be shared by
// concurrent report jobs: Run never mutates the pipeline or the index.
type Pipeline struct {
	resolver  *resolver.Resolver
	decider   *matrix.Decider
	populator *financials.Populator
	logger    logger.Logger
}

// New assembles a pipeline.
//
// PARAMETERS:
//   - ix: reference index built once for the run
//   - m: coding matrix (matrix.Default or matrix.Load)
//   - costCenterDecimals: decimals cost centers are rendered with, 0 keeps the text
//   - log: logger, nil discards
func New(ix *refindex.Index, m *matrix.Matrix, costCenterDecimals int, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Pipeline{
		resolver:  resolver.New(ix, refindex.CombineAddress),
		decider:   matrix.NewDecider(m),
		populator: financials.NewPopulator(ix, costCenterDecimals),
		logger:    log,
	}
}

// Run codes a report. The input table is not modified.
func (p *Pipeline) Run(report *types.Table) (*Result, error) {
	if report == nil {
		return nil, fmt.Errorf("no report table")
	}

	out := report.Clone()
	standardize(out)

	orgCol, hasOrg := out.FindColumn(OrgTypeColumns...)
	destCol, hasDest := out.FindColumn(DestTypeColumns...)
	typeFieldsPresent := hasOrg && hasDest
	hasProfitCenter := out.HasColumn(ColProfitCenter)

	stats := Stats{Rows: out.Len(), Rules: make(map[matrix.Rule]int)}

	for _, c := range derivedColumns {
		out.AddColumn(c.name)
	}

	for i := range out.Rows {
		rec := readRecord(out, i)
		if typeFieldsPresent {
			rec.OrgTypeCode = out.Get(i, orgCol)
			rec.DestTypeCode = out.Get(i, destCol)
		}

		p.process(&rec, typeFieldsPresent, hasProfitCenter)
		stats.count(&rec)

		if len(rec.Resolution.Overrides) > 0 {
			p.logger.Debug("literal overrides applied", map[string]interface{}{
				"row":       i + 1,
				"overrides": rec.Resolution.Overrides,
			})
		}

		for _, c := range derivedColumns {
			out.Set(i, c.name, c.value(&rec))
		}
	}

	out.MoveToFront(FrontColumns...)

	p.logger.Info("report coded", map[string]interface{}{
		"source":       report.SourceFile,
		"rows":         stats.Rows,
		"unknown":      stats.Unknown,
		"non_cintas":   stats.NonCintasFinals,
		"wiped":        stats.Wiped,
		"overrides":    stats.OverridesApplied,
		"accurate":     stats.Accurate,
		"type_columns": typeFieldsPresent,
	})

	return &Result{Table: out, Stats: stats}, nil
}

// Process codes a single record in place.
func (p *Pipeline) Process(rec *Record, typeFieldsPresent, hasProfitCenter bool) {
	p.process(rec, typeFieldsPresent, hasProfitCenter)
}

func (p *Pipeline) process(rec *Record, typeFieldsPresent, hasProfitCenter bool) {
	rec.Resolution = p.resolver.Resolve(rec.input(typeFieldsPresent))
	rec.Decision = p.decider.Decide(matrix.FromResolution(rec.Resolution, rec.CarrierName))
	rec.Financials = p.populator.Populate(rec.Decision.Code, rec.Resolution.Consignee.Final)
	rec.Accuracy = financials.Accuracy(rec.ProfitCenter, hasProfitCenter, rec.Financials.ProfitCenter)
}

func readRecord(t *types.Table, i int) Record {
	return Record{
		Consignor:          t.Get(i, ColConsignor),
		Consignee:          t.Get(i, ColConsignee),
		OriginAddress:      t.Get(i, ColOriginAddress),
		OriginCity:         t.Get(i, ColOriginCity),
		OriginState:        t.Get(i, ColOriginState),
		DestinationAddress: t.Get(i, ColDestinationAddress),
		DestinationCity:    t.Get(i, ColDestinationCity),
		DestinationState:   t.Get(i, ColDestinationState),
		CarrierName:        t.Get(i, ColCarrierName),
		ProfitCenter:       t.Get(i, ColProfitCenter),
	}
}

func (s *Stats) count(rec *Record) {
	res := rec.Resolution
	if res.Consignor.Final == locode.NonCintas {
		s.NonCintasFinals++
	}
	if res.Consignee.Final == locode.NonCintas {
		s.NonCintasFinals++
	}
	if res.Consignor.Wiped {
		s.Wiped++
	}
	if res.Consignee.Wiped {
		s.Wiped++
	}
	if res.TenantCode != "" {
		s.TenantRules++
	}
	s.OverridesApplied += len(res.Overrides)

	switch rec.Decision.Code {
	case locode.Unknown:
		s.Unknown++
	case locode.ThirdParty:
		s.ThirdParty++
	}
	if rec.Accuracy == "1" {
		s.Accurate++
	}
	s.Rules[rec.Decision.Rule]++
}
