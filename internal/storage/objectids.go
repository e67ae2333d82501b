package storage

import (
	"fmt"

	"github.com/gmorong/fias-ingest/internal/ingesterr"
)

// ObjectIDs returns every object_id currently persisted in table,
// scoped to the adapter's schema. Used by the parent resolver to drive
// its per-entity resolution loop (spec.md §4.4 "iterate its object_ids").
func (a *Adapter) ObjectIDs(table string) ([]int64, error) {
	rows, err := a.Query("storage.ObjectIDs", fmt.Sprintf("SELECT object_id FROM %s.%s", a.Schema, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, ingesterr.Storage("storage.ObjectIDs", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, ingesterr.Storage("storage.ObjectIDs", err)
	}
	return ids, nil
}

// HouseObjectIDsMissingMunicipality returns up to limit object_ids of
// houses whose municipality_id is still null, for the residual direct
// lookup stage of reconciliation (spec.md §4.5, capped at 50,000).
func (a *Adapter) HouseObjectIDsMissingMunicipality(limit int) ([]int64, error) {
	rows, err := a.Query("storage.HouseObjectIDsMissingMunicipality", fmt.Sprintf(`
		SELECT object_id FROM %s.houses WHERE municipality_id IS NULL LIMIT $1
	`, a.Schema), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, ingesterr.Storage("storage.HouseObjectIDsMissingMunicipality", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, ingesterr.Storage("storage.HouseObjectIDsMissingMunicipality", err)
	}
	return ids, nil
}
