package storage

import (
	"database/sql"
	"fmt"

	"github.com/gmorong/fias-ingest/internal/ingesterr"
	"github.com/gmorong/fias-ingest/internal/model"
)

// batchInsert runs a single prepared-statement insert over n rows in
// one transaction. A failure mid-batch rolls back the whole batch,
// logs it, and counts it under op instead of aborting the run — the
// batch being inserted is already the caller's full staging batch (up
// to config.Options.BatchSize rows), so "continue with the next
// batch" per spec.md §7 means returning nil here and letting the
// stager move on to its next flush.
func (a *Adapter) batchInsert(op, query string, n int, exec func(stmt *sql.Stmt, i int) error) error {
	if err := a.runOneInsertBatch(op, query, n, exec); err != nil {
		a.logBatchDrop(op, err)
	}
	return nil
}

func (a *Adapter) runOneInsertBatch(op, query string, n int, exec func(stmt *sql.Stmt, i int) error) error {
	tx, err := a.DB.Begin()
	if err != nil {
		return ingesterr.Storage(op, err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		return ingesterr.Storage(op, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			tx.Rollback()
			return ingesterr.Storage(op, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return ingesterr.Storage(op, err)
	}
	return nil
}

// InsertMunicipalities batch-inserts municipality rows, skipping rows
// whose object_id already exists — spec.md §4.3's "insert ... on
// conflict on (object_id) do nothing".
func (a *Adapter) InsertMunicipalities(batch []model.Municipality) error {
	if len(batch) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		INSERT INTO %s.municipalities (object_id, object_guid, name, type_name, level, is_actual, is_active, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (object_id) DO NOTHING
	`, a.Schema)
	return a.batchInsert("storage.InsertMunicipalities", query, len(batch), func(stmt *sql.Stmt, i int) error {
		m := batch[i]
		_, err := stmt.Exec(m.ObjectID, m.ObjectGUID, m.Name, m.TypeName, m.Level, m.IsActual, m.IsActive, m.UpdateDate)
		return err
	})
}

// InsertSettlements batch-inserts settlement rows.
func (a *Adapter) InsertSettlements(batch []model.Settlement) error {
	if len(batch) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		INSERT INTO %s.settlements (object_id, object_guid, name, type_name, level, is_actual, is_active, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (object_id) DO NOTHING
	`, a.Schema)
	return a.batchInsert("storage.InsertSettlements", query, len(batch), func(stmt *sql.Stmt, i int) error {
		s := batch[i]
		_, err := stmt.Exec(s.ObjectID, s.ObjectGUID, s.Name, s.TypeName, s.Level, s.IsActual, s.IsActive, s.UpdateDate)
		return err
	})
}

// InsertStreets batch-inserts street rows.
func (a *Adapter) InsertStreets(batch []model.Street) error {
	if len(batch) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		INSERT INTO %s.streets (object_id, object_guid, name, type_name, level, is_actual, is_active, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (object_id) DO NOTHING
	`, a.Schema)
	return a.batchInsert("storage.InsertStreets", query, len(batch), func(stmt *sql.Stmt, i int) error {
		s := batch[i]
		_, err := stmt.Exec(s.ObjectID, s.ObjectGUID, s.Name, s.TypeName, s.Level, s.IsActual, s.IsActive, s.UpdateDate)
		return err
	})
}

// InsertHouses batch-inserts house rows. Parent columns and parameter
// columns are left null; they are filled by later passes.
func (a *Adapter) InsertHouses(batch []model.House) error {
	if len(batch) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		INSERT INTO %s.houses (object_id, object_guid, house_number, building_number, structure_number, is_actual, is_active, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (object_id) DO NOTHING
	`, a.Schema)
	return a.batchInsert("storage.InsertHouses", query, len(batch), func(stmt *sql.Stmt, i int) error {
		h := batch[i]
		_, err := stmt.Exec(h.ObjectID, h.ObjectGUID, h.HouseNumber, h.BuildingNumber, h.StructureNumber, h.IsActual, h.IsActive, h.UpdateDate)
		return err
	})
}

// InsertLandPlots batch-inserts land plot rows.
func (a *Adapter) InsertLandPlots(batch []model.LandPlot) error {
	if len(batch) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		INSERT INTO %s.land_plots (object_id, object_guid, number_plot, is_actual, is_active, update_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (object_id) DO NOTHING
	`, a.Schema)
	return a.batchInsert("storage.InsertLandPlots", query, len(batch), func(stmt *sql.Stmt, i int) error {
		p := batch[i]
		_, err := stmt.Exec(p.ObjectID, p.ObjectGUID, p.NumberPlot, p.IsActual, p.IsActive, p.UpdateDate)
		return err
	})
}
