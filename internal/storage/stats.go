package storage

import (
	"fmt"

	"github.com/gmorong/fias-ingest/internal/ingesterr"
)

// Counts holds the row totals and resolved-parent coverage used to
// build the run summary (spec.md §6).
type Counts struct {
	Municipalities int64
	Settlements    int64
	Streets        int64
	Houses         int64
	LandPlots      int64

	SettlementsWithMunicipality int64
	StreetsWithMunicipality     int64
	HousesWithMunicipality      int64
	LandPlotsWithMunicipality   int64

	HousesWithCadastralNumber int64
	HousesWithResidentsCount  int64
	HousesWithFloorsCount     int64
	HousesWithFullAddress     int64
}

func (a *Adapter) scalarInt64(op, query string) (int64, error) {
	var n int64
	row := a.DB.QueryRow(query)
	if err := row.Scan(&n); err != nil {
		return 0, ingesterr.Storage(op, err)
	}
	return n, nil
}

// ReadCounts gathers every table-count and coverage figure needed for
// the run summary in one pass.
func (a *Adapter) ReadCounts() (Counts, error) {
	var c Counts
	var err error

	queries := []struct {
		dest  *int64
		query string
	}{
		{&c.Municipalities, fmt.Sprintf("SELECT count(*) FROM %s.municipalities", a.Schema)},
		{&c.Settlements, fmt.Sprintf("SELECT count(*) FROM %s.settlements", a.Schema)},
		{&c.Streets, fmt.Sprintf("SELECT count(*) FROM %s.streets", a.Schema)},
		{&c.Houses, fmt.Sprintf("SELECT count(*) FROM %s.houses", a.Schema)},
		{&c.LandPlots, fmt.Sprintf("SELECT count(*) FROM %s.land_plots", a.Schema)},

		{&c.SettlementsWithMunicipality, fmt.Sprintf("SELECT count(*) FROM %s.settlements WHERE municipality_id IS NOT NULL", a.Schema)},
		{&c.StreetsWithMunicipality, fmt.Sprintf("SELECT count(*) FROM %s.streets WHERE municipality_id IS NOT NULL", a.Schema)},
		{&c.HousesWithMunicipality, fmt.Sprintf("SELECT count(*) FROM %s.houses WHERE municipality_id IS NOT NULL", a.Schema)},
		{&c.LandPlotsWithMunicipality, fmt.Sprintf("SELECT count(*) FROM %s.land_plots WHERE municipality_id IS NOT NULL", a.Schema)},

		{&c.HousesWithCadastralNumber, fmt.Sprintf("SELECT count(*) FROM %s.houses WHERE cadastral_number IS NOT NULL", a.Schema)},
		{&c.HousesWithResidentsCount, fmt.Sprintf("SELECT count(*) FROM %s.houses WHERE residents_count IS NOT NULL", a.Schema)},
		{&c.HousesWithFloorsCount, fmt.Sprintf("SELECT count(*) FROM %s.houses WHERE floors_count IS NOT NULL", a.Schema)},
		{&c.HousesWithFullAddress, fmt.Sprintf("SELECT count(*) FROM %s.houses WHERE full_address IS NOT NULL", a.Schema)},
	}

	for _, q := range queries {
		*q.dest, err = a.scalarInt64("storage.ReadCounts", q.query)
		if err != nil {
			return Counts{}, err
		}
	}

	return c, nil
}
