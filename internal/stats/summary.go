// Package stats builds the run-summary statistics record described in
// spec.md §6: row counts per table, per-ancestor-level coverage, and
// parameter-field coverage. Grounded on the teacher's debug timing/
// counter output style (internal/debug), generalized into a
// structured record instead of log lines.
package stats

import (
	"encoding/json"
	"fmt"

	"github.com/gmorong/fias-ingest/internal/storage"
)

// Summary is the opaque statistics record the driver receives on a
// successful run, per spec.md §6's `run(config, xml_dir) -> stats |
// error` interface.
type Summary struct {
	Municipalities int64
	Settlements    int64
	Streets        int64
	Houses         int64
	LandPlots      int64

	SettlementMunicipalityCoverage float64
	StreetMunicipalityCoverage     float64
	HouseMunicipalityCoverage      float64
	LandPlotMunicipalityCoverage   float64

	HouseCadastralNumberCoverage float64
	HouseResidentsCountCoverage  float64
	HouseFloorsCountCoverage     float64
	HouseFullAddressCoverage     float64

	DroppedObjects     map[string]int
	DroppedHouses      map[string]int
	DroppedLandPlots   map[string]int
	DroppedParams      map[string]int
	ReconciliationNote string
}

// FromCounts derives a Summary from the storage layer's raw row
// counts, computing each coverage ratio as a percentage.
func FromCounts(c storage.Counts) Summary {
	return Summary{
		Municipalities: c.Municipalities,
		Settlements:    c.Settlements,
		Streets:        c.Streets,
		Houses:         c.Houses,
		LandPlots:      c.LandPlots,

		SettlementMunicipalityCoverage: ratio(c.SettlementsWithMunicipality, c.Settlements),
		StreetMunicipalityCoverage:     ratio(c.StreetsWithMunicipality, c.Streets),
		HouseMunicipalityCoverage:      ratio(c.HousesWithMunicipality, c.Houses),
		LandPlotMunicipalityCoverage:   ratio(c.LandPlotsWithMunicipality, c.LandPlots),

		HouseCadastralNumberCoverage: ratio(c.HousesWithCadastralNumber, c.Houses),
		HouseResidentsCountCoverage:  ratio(c.HousesWithResidentsCount, c.Houses),
		HouseFloorsCountCoverage:     ratio(c.HousesWithFloorsCount, c.Houses),
		HouseFullAddressCoverage:     ratio(c.HousesWithFullAddress, c.Houses),
	}
}

// LoadOrCompute returns the persisted summary of the most recent
// `run` invocation (storage.Adapter.LoadRunSummary), per
// SPEC_FULL.md §4.10's "stats reads the last persisted run-summary
// record." If no run has completed yet, it falls back to a
// drop-counter-less summary computed fresh from the current row
// counts, so `stats`/`serve` still report something useful.
func LoadOrCompute(db *storage.Adapter) (Summary, error) {
	data, found, err := db.LoadRunSummary()
	if err != nil {
		return Summary{}, err
	}
	if found {
		var s Summary
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return Summary{}, err
		}
		return s, nil
	}

	counts, err := db.ReadCounts()
	if err != nil {
		return Summary{}, err
	}
	return FromCounts(counts), nil
}

func ratio(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// String renders the summary the way an operator reads it from the
// CLI's "run" and "stats" subcommands.
func (s Summary) String() string {
	return fmt.Sprintf(
		"municipalities=%d settlements=%d(mo=%.1f%%) streets=%d(mo=%.1f%%) "+
			"houses=%d(mo=%.1f%% cadastral=%.1f%% residents=%.1f%% floors=%.1f%% address=%.1f%%) "+
			"land_plots=%d(mo=%.1f%%)",
		s.Municipalities,
		s.Settlements, s.SettlementMunicipalityCoverage,
		s.Streets, s.StreetMunicipalityCoverage,
		s.Houses, s.HouseMunicipalityCoverage, s.HouseCadastralNumberCoverage,
		s.HouseResidentsCountCoverage, s.HouseFloorsCountCoverage, s.HouseFullAddressCoverage,
		s.LandPlots, s.LandPlotMunicipalityCoverage,
	)
}
