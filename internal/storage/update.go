package storage

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/gmorong/fias-ingest/internal/ingesterr"
)

// UpdateBatchSize is the established figure from spec.md: 1000 rows
// per UPDATE batch, with periodic commits.
const UpdateBatchSize = 1000

// ParentUpdate is one (object_id -> parent object_id) resolution result.
type ParentUpdate struct {
	ObjectID int64
	ParentID int64
}

// batchSingleColumnUpdate issues `SET <column> = $1 WHERE object_id =
// $2` for each update, committing every UpdateBatchSize rows. Shared by
// every single-parent-column fill (municipalities.parent_id,
// settlements.municipality_id, streets.settlement_id).
func (a *Adapter) batchSingleColumnUpdate(op, table, column string, updates []ParentUpdate) error {
	query := fmt.Sprintf("UPDATE %s.%s SET %s = $1 WHERE object_id = $2", a.Schema, table, column)
	return a.runBatchedUpdates(op, query, len(updates), func(tx *sql.Tx, stmt *sql.Stmt, i int) error {
		u := updates[i]
		_, err := stmt.Exec(u.ParentID, u.ObjectID)
		return err
	})
}

// runBatchedUpdates executes n prepared-statement calls in batches of
// UpdateBatchSize, committing a transaction per batch — spec.md §4.4's
// "batch the resulting tuples into UPDATE statements, 1000 per batch,
// with periodic commits." A batch that fails is rolled back, logged,
// and skipped; the run continues with the next batch rather than
// aborting, per spec.md §7's storage-error resilience rule.
func (a *Adapter) runBatchedUpdates(op, query string, n int, exec func(tx *sql.Tx, stmt *sql.Stmt, i int) error) error {
	for start := 0; start < n; start += UpdateBatchSize {
		end := start + UpdateBatchSize
		if end > n {
			end = n
		}

		if err := a.runOneUpdateBatch(op, query, start, end, exec); err != nil {
			a.logBatchDrop(op, err)
		}
	}
	return nil
}

// runOneUpdateBatch runs a single batch inside its own transaction,
// rolling back and returning the error on any failure.
func (a *Adapter) runOneUpdateBatch(op, query string, start, end int, exec func(tx *sql.Tx, stmt *sql.Stmt, i int) error) error {
	tx, err := a.DB.Begin()
	if err != nil {
		return ingesterr.Storage(op, err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		return ingesterr.Storage(op, err)
	}

	for i := start; i < end; i++ {
		if err := exec(tx, stmt, i); err != nil {
			stmt.Close()
			tx.Rollback()
			return ingesterr.Storage(op, err)
		}
	}

	stmt.Close()
	if err := tx.Commit(); err != nil {
		return ingesterr.Storage(op, err)
	}
	return nil
}

// logBatchDrop logs a rolled-back batch and counts it under op, per
// spec.md §7: rollback, log, continue with the next batch.
func (a *Adapter) logBatchDrop(op string, err error) {
	log.Printf("storage: batch dropped in %s: %v", op, err)
	a.BatchErrors.Inc(op)
}

// UpdateMunicipalityParents fills municipalities.parent_id.
func (a *Adapter) UpdateMunicipalityParents(updates []ParentUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return a.batchSingleColumnUpdate("storage.UpdateMunicipalityParents", "municipalities", "parent_id", updates)
}

// UpdateSettlementMunicipalities fills settlements.municipality_id.
func (a *Adapter) UpdateSettlementMunicipalities(updates []ParentUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return a.batchSingleColumnUpdate("storage.UpdateSettlementMunicipalities", "settlements", "municipality_id", updates)
}

// UpdateStreetSettlements fills streets.settlement_id.
func (a *Adapter) UpdateStreetSettlements(updates []ParentUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return a.batchSingleColumnUpdate("storage.UpdateStreetSettlements", "streets", "settlement_id", updates)
}

// UpdateStreetMunicipalitiesFromSettlements is the set-based fill of
// streets.municipality_id through their already-resolved settlement,
// per spec.md §4.4 step 4 ("связи улиц с МО через НП").
func (a *Adapter) UpdateStreetMunicipalitiesFromSettlements() (int64, error) {
	res, err := a.Exec("storage.UpdateStreetMunicipalitiesFromSettlements", fmt.Sprintf(`
		UPDATE %[1]s.streets st
		SET municipality_id = s.municipality_id
		FROM %[1]s.settlements s
		WHERE st.settlement_id = s.object_id
		AND s.municipality_id IS NOT NULL
		AND st.municipality_id IS NULL
	`, a.Schema))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// HouseParentUpdate is one house's resolved street/settlement/municipality.
type HouseParentUpdate struct {
	ObjectID       int64
	StreetID       *int64
	SettlementID   *int64
	MunicipalityID *int64
}

// UpdateHouseParents batches the three-column house parent fill
// (street_id, settlement_id, municipality_id), 1000 rows per batch.
func (a *Adapter) UpdateHouseParents(updates []HouseParentUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		UPDATE %s.houses
		SET street_id = $1, settlement_id = $2, municipality_id = $3
		WHERE object_id = $4
	`, a.Schema)
	return a.runBatchedUpdates("storage.UpdateHouseParents", query, len(updates), func(tx *sql.Tx, stmt *sql.Stmt, i int) error {
		u := updates[i]
		_, err := stmt.Exec(u.StreetID, u.SettlementID, u.MunicipalityID, u.ObjectID)
		return err
	})
}

// UpdateHouseMunicipalities is the narrower single-column form used by
// the residual direct lookup stage of reconciliation.
func (a *Adapter) UpdateHouseMunicipalities(updates []ParentUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return a.batchSingleColumnUpdate("storage.UpdateHouseMunicipalities", "houses", "municipality_id", updates)
}

// ThroughStreetFillHouseMunicipalities is the set-based reconciliation
// step of spec.md §4.5.1: copy a house's street's municipality_id onto
// the house when the house's own municipality_id is still null.
func (a *Adapter) ThroughStreetFillHouseMunicipalities() (int64, error) {
	res, err := a.Exec("storage.ThroughStreetFillHouseMunicipalities", fmt.Sprintf(`
		UPDATE %[1]s.houses h
		SET municipality_id = st.municipality_id
		FROM %[1]s.streets st
		WHERE h.street_id = st.object_id
		AND st.municipality_id IS NOT NULL
		AND h.municipality_id IS NULL
	`, a.Schema))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ThroughSettlementFillHouseMunicipalities copies a house's
// settlement's municipality_id onto the house.
func (a *Adapter) ThroughSettlementFillHouseMunicipalities() (int64, error) {
	res, err := a.Exec("storage.ThroughSettlementFillHouseMunicipalities", fmt.Sprintf(`
		UPDATE %[1]s.houses h
		SET municipality_id = s.municipality_id
		FROM %[1]s.settlements s
		WHERE h.settlement_id = s.object_id
		AND s.municipality_id IS NOT NULL
		AND h.municipality_id IS NULL
	`, a.Schema))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ThroughSettlementFillPlotMunicipalities is the same repair applied
// to land plots.
func (a *Adapter) ThroughSettlementFillPlotMunicipalities() (int64, error) {
	res, err := a.Exec("storage.ThroughSettlementFillPlotMunicipalities", fmt.Sprintf(`
		UPDATE %[1]s.land_plots lp
		SET municipality_id = s.municipality_id
		FROM %[1]s.settlements s
		WHERE lp.settlement_id = s.object_id
		AND s.municipality_id IS NOT NULL
		AND lp.municipality_id IS NULL
	`, a.Schema))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PlotParentUpdate is one land plot's resolved settlement/municipality.
type PlotParentUpdate struct {
	ObjectID       int64
	SettlementID   *int64
	MunicipalityID *int64
}

// UpdateLandPlotParents batches the two-column land plot parent fill.
func (a *Adapter) UpdateLandPlotParents(updates []PlotParentUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		UPDATE %s.land_plots
		SET settlement_id = $1, municipality_id = $2
		WHERE object_id = $3
	`, a.Schema)
	return a.runBatchedUpdates("storage.UpdateLandPlotParents", query, len(updates), func(tx *sql.Tx, stmt *sql.Stmt, i int) error {
		u := updates[i]
		_, err := stmt.Exec(u.SettlementID, u.MunicipalityID, u.ObjectID)
		return err
	})
}
