// Package reconcile implements the two-stage Reconciliation Pass of
// spec.md §4.5: a set-based through-street fill followed by a capped
// residual direct lookup, plus the through-settlement repair applied
// to houses and land plots. Grounded on the teacher's internal/etl
// repair-pass style, generalized to the municipality-coverage gap the
// FIAS municipal hierarchy is known to leave at the leaf.
package reconcile

import (
	"context"
	"strconv"

	"github.com/gmorong/fias-ingest/internal/hierarchy"
	"github.com/gmorong/fias-ingest/internal/ingesterr"
	"github.com/gmorong/fias-ingest/internal/storage"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ResidualBatchSize bounds each residual-lookup pass, per spec.md §4.5.
const ResidualBatchSize = 50000

// Result reports how many rows each stage repaired, for the run
// summary.
type Result struct {
	ThroughStreetFilled     int64
	ThroughSettlementFilled int64
	ResidualFilled          int64
}

// Houses runs the full house reconciliation: through-street fill,
// through-settlement fill, then the residual direct lookup against
// idx, batched in ResidualBatchSize passes.
func Houses(ctx context.Context, db *storage.Adapter, idx *hierarchy.Index) (Result, error) {
	var result Result

	n, err := db.ThroughStreetFillHouseMunicipalities()
	if err != nil {
		return result, err
	}
	result.ThroughStreetFilled = n

	n, err = db.ThroughSettlementFillHouseMunicipalities()
	if err != nil {
		return result, err
	}
	result.ThroughSettlementFilled = n

	for {
		select {
		case <-ctx.Done():
			return result, ingesterr.Cancel("reconcile.Houses")
		default:
		}

		ids, err := db.HouseObjectIDsMissingMunicipality(ResidualBatchSize)
		if err != nil {
			return result, err
		}
		if len(ids) == 0 {
			return result, nil
		}

		updates := make([]storage.ParentUpdate, 0, len(ids))
		for _, id := range ids {
			parent, ok := idx.FindMunicipalityParent(formatID(id))
			if !ok {
				continue
			}
			parentID, ok := parseID(parent)
			if !ok {
				continue
			}
			if parentID == id {
				continue
			}
			updates = append(updates, storage.ParentUpdate{ObjectID: id, ParentID: parentID})
		}

		if err := db.UpdateHouseMunicipalities(updates); err != nil {
			return result, err
		}
		result.ResidualFilled += int64(len(updates))

		// A pass that resolved nothing new, despite having residual
		// rows, means the remaining houses are genuinely unreachable
		// in idx; stop instead of looping forever.
		if len(updates) == 0 {
			return result, nil
		}
	}
}

// LandPlots runs the through-settlement fill for land plots (spec.md
// §4.5's "same through-settlement repair is also applied to ...
// plots' municipality_id").
func LandPlots(db *storage.Adapter) (Result, error) {
	n, err := db.ThroughSettlementFillPlotMunicipalities()
	if err != nil {
		return Result{}, err
	}
	return Result{ThroughSettlementFilled: n}, nil
}
