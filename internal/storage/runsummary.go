package storage

import (
	"database/sql"
	"fmt"

	"github.com/gmorong/fias-ingest/internal/ingesterr"
)

// SaveRunSummary upserts the single last_run_summary row with the
// caller's already-marshaled JSON, so `fias-ingest stats` and the
// status server can read back the most recent `run`'s statistics
// record per SPEC_FULL.md §4.10/§4.11.
func (a *Adapter) SaveRunSummary(summaryJSON string) error {
	_, err := a.Exec("storage.SaveRunSummary", fmt.Sprintf(`
		INSERT INTO %[1]s.last_run_summary (id, summary_json, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET summary_json = $1, updated_at = now()
	`, a.Schema), summaryJSON)
	return err
}

// LoadRunSummary reads back the persisted summary JSON, if any run has
// completed. found is false when no row exists yet.
func (a *Adapter) LoadRunSummary() (summaryJSON string, found bool, err error) {
	row := a.DB.QueryRow(fmt.Sprintf(`
		SELECT summary_json FROM %s.last_run_summary WHERE id = 1
	`, a.Schema))
	switch scanErr := row.Scan(&summaryJSON); scanErr {
	case nil:
		return summaryJSON, true, nil
	case sql.ErrNoRows:
		return "", false, nil
	default:
		return "", false, ingesterr.Storage("storage.LoadRunSummary", scanErr)
	}
}
