package storage

import (
	"fmt"
	"strings"
)

// InitSchema drops and recreates all five entity tables, per spec.md's
// "full rebuild per run" lifecycle (§3 Lifecycle, §9 Open Questions).
// Grounded on original_source/import-fias/fias_parser.py's
// create_schema/create_indexes.
func (a *Adapter) InitSchema() error {
	if _, err := a.Exec("storage.InitSchema",
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", a.Schema)); err != nil {
		return err
	}

	drop := fmt.Sprintf(`
		DROP TABLE IF EXISTS %[1]s.houses CASCADE;
		DROP TABLE IF EXISTS %[1]s.land_plots CASCADE;
		DROP TABLE IF EXISTS %[1]s.streets CASCADE;
		DROP TABLE IF EXISTS %[1]s.settlements CASCADE;
		DROP TABLE IF EXISTS %[1]s.municipalities CASCADE;
	`, a.Schema)
	if _, err := a.Exec("storage.InitSchema", drop); err != nil {
		return err
	}

	creates := []string{
		fmt.Sprintf(`CREATE TABLE %s.municipalities (
			id BIGSERIAL PRIMARY KEY,
			object_id BIGINT UNIQUE NOT NULL,
			object_guid VARCHAR(36),
			name VARCHAR(250) NOT NULL,
			type_name VARCHAR(50) NOT NULL,
			level VARCHAR(10) NOT NULL,
			parent_id BIGINT,
			is_actual INTEGER DEFAULT 1,
			is_active INTEGER DEFAULT 1,
			update_date DATE
		)`, a.Schema),
		fmt.Sprintf(`CREATE TABLE %s.settlements (
			id BIGSERIAL PRIMARY KEY,
			object_id BIGINT UNIQUE NOT NULL,
			object_guid VARCHAR(36),
			name VARCHAR(250) NOT NULL,
			type_name VARCHAR(50) NOT NULL,
			level VARCHAR(10) NOT NULL,
			municipality_id BIGINT,
			is_actual INTEGER DEFAULT 1,
			is_active INTEGER DEFAULT 1,
			update_date DATE
		)`, a.Schema),
		fmt.Sprintf(`CREATE TABLE %s.streets (
			id BIGSERIAL PRIMARY KEY,
			object_id BIGINT UNIQUE NOT NULL,
			object_guid VARCHAR(36),
			name VARCHAR(250) NOT NULL,
			type_name VARCHAR(50) NOT NULL,
			level VARCHAR(10) NOT NULL,
			settlement_id BIGINT,
			municipality_id BIGINT,
			is_actual INTEGER DEFAULT 1,
			is_active INTEGER DEFAULT 1,
			update_date DATE
		)`, a.Schema),
		fmt.Sprintf(`CREATE TABLE %s.houses (
			id BIGSERIAL PRIMARY KEY,
			object_id BIGINT UNIQUE NOT NULL,
			object_guid VARCHAR(36),
			house_number VARCHAR(50),
			building_number VARCHAR(50),
			structure_number VARCHAR(50),
			street_id BIGINT,
			settlement_id BIGINT,
			municipality_id BIGINT,
			cadastral_number VARCHAR(100),
			floors_count INTEGER,
			residents_count INTEGER,
			full_address TEXT,
			is_actual INTEGER DEFAULT 1,
			is_active INTEGER DEFAULT 1,
			update_date DATE
		)`, a.Schema),
		fmt.Sprintf(`CREATE TABLE %s.land_plots (
			id BIGSERIAL PRIMARY KEY,
			object_id BIGINT UNIQUE NOT NULL,
			object_guid VARCHAR(36),
			number_plot VARCHAR(250),
			settlement_id BIGINT,
			municipality_id BIGINT,
			is_actual INTEGER DEFAULT 1,
			is_active INTEGER DEFAULT 1,
			update_date DATE
		)`, a.Schema),
	}

	for _, stmt := range creates {
		if _, err := a.Exec("storage.InitSchema", stmt); err != nil {
			return err
		}
	}

	// last_run_summary is not dropped with the entity tables: it holds
	// the single most recent run's statistics record so `stats`/`serve`
	// can report it without a live run in progress.
	if _, err := a.Exec("storage.InitSchema", fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.last_run_summary (
			id INTEGER PRIMARY KEY,
			summary_json TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`, a.Schema)); err != nil {
		return err
	}

	return a.createIndexes()
}

func (a *Adapter) createIndexes() error {
	indexes := []string{
		"idx_municipalities_object_id:municipalities",
		"idx_settlements_object_id:settlements",
		"idx_streets_object_id:streets",
		"idx_houses_object_id:houses",
		"idx_land_plots_object_id:land_plots",
	}
	for _, spec := range indexes {
		parts := strings.SplitN(spec, ":", 2)
		idxName, table := parts[0], parts[1]
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s.%s(object_id)", idxName, a.Schema, table)
		if _, err := a.Exec("storage.InitSchema", stmt); err != nil {
			return err
		}
	}
	return nil
}
