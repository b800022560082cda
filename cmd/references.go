package cmd

import (
	"context"
	"fmt"

	"github.com/ginjaninja78/freight-accrual-coder/internal/config"
	"github.com/ginjaninja78/freight-accrual-coder/internal/logger"
	"github.com/ginjaninja78/freight-accrual-coder/internal/refdata"
	"github.com/ginjaninja78/freight-accrual-coder/internal/refindex"
	"github.com/ginjaninja78/freight-accrual-coder/internal/validation"
)

// references is the reference data of a run, loaded and checked once.
type references struct {
	source     string
	pending    int
	validation *validation.Result
	index      *refindex.Index
}

// loadReferences loads the reference tables, applies the overlay file, checks
// the mandatory columns and builds the index.
//
// RETURNS:
//   - The loaded references. validation is set even when the error is a
//     validation failure, so callers can print every issue.
//   - An error if the tables cannot be loaded or a mandatory column is missing.
func loadReferences(ctx context.Context, cfg *config.MainConfig, log logger.Logger) (*references, error) {
	src, err := refdata.NewSource(cfg.References, cfg.CSVSettings, log)
	if err != nil {
		return nil, err
	}

	tables, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data from %s: %w", src.Describe(), err)
	}

	refs := &references{source: src.Describe()}

	snapshot := refdata.NewSnapshot(tables)
	if cfg.References.OverlayFile != "" {
		n, err := snapshot.LoadOverlay(cfg.References.OverlayFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load overlay: %w", err)
		}
		refs.pending = n
		log.Info("applied reference overlay", map[string]interface{}{
			"file": cfg.References.OverlayFile,
			"rows": n,
		})
	}
	tables = snapshot.Tables()

	result, err := validation.ValidateTables(tables)
	refs.validation = result
	if err != nil {
		return refs, fmt.Errorf("reference data is invalid: %w", err)
	}
	for _, issue := range result.Warnings() {
		log.Warn("reference data issue", map[string]interface{}{
			"table":   issue.Table,
			"column":  issue.Column,
			"message": issue.Message,
		})
	}

	refs.index = refindex.New(tables, log)
	return refs, nil
}
