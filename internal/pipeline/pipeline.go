// Package pipeline orchestrates the full linear address-graph build:
// schema init, hierarchy index construction, object/house/plot
// staging, parent resolution, reconciliation, parameter joining, and
// address composition. Grounded on the teacher's internal/etl
// pipeline orchestration style (one exported Run entry point wiring
// every stage in sequence, context-aware throughout).
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gmorong/fias-ingest/internal/config"
	"github.com/gmorong/fias-ingest/internal/debug"
	"github.com/gmorong/fias-ingest/internal/hierarchy"
	"github.com/gmorong/fias-ingest/internal/ingesterr"
	"github.com/gmorong/fias-ingest/internal/params"
	"github.com/gmorong/fias-ingest/internal/reconcile"
	"github.com/gmorong/fias-ingest/internal/stage"
	"github.com/gmorong/fias-ingest/internal/stats"
	"github.com/gmorong/fias-ingest/internal/storage"
	"github.com/gmorong/fias-ingest/internal/xmlreader"
)

const (
	patternAddrObj    = "AS_ADDR_OBJ"
	patternMunH       = "AS_MUN_HIERARCHY"
	patternAdmH       = "AS_ADM_HIERARCHY"
	patternHouses     = "AS_HOUSES"
	patternHouseParam = "AS_HOUSES_PARAMS"
	patternSteads     = "AS_STEADS"
)

// Run executes the full pipeline against xmlDir and returns the
// run-summary statistics record, per spec.md §6's driver-visible
// `run(config, xml_dir) -> stats | error` interface.
func Run(ctx context.Context, opts config.Options, xmlDir string) (*stats.Summary, error) {
	debug.DebugHeader(opts.Debug)
	defer debug.DebugFooter(opts.Debug)
	defer debug.DebugTiming(opts.Debug, "pipeline.Run")()

	db, err := storage.Open(opts)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := func() error {
		defer debug.DebugTiming(opts.Debug, "storage.InitSchema")()
		return db.InitSchema()
	}(); err != nil {
		return nil, err
	}

	var idx *hierarchy.Index
	if err := func() error {
		defer debug.DebugTiming(opts.Debug, "hierarchy.Build")()
		var err error
		idx, err = buildIndex(ctx, xmlDir, opts.RegionCode)
		return err
	}(); err != nil {
		return nil, err
	}
	debug.DebugOutput(opts.Debug, "hierarchy index built: %d objects", idx.Len())

	objectDrops := debug.NewCounters()
	if err := func() error {
		defer debug.DebugTiming(opts.Debug, "stage.ObjectStager")()
		return stageAddrObjects(db, xmlDir, opts, objectDrops)
	}(); err != nil {
		return nil, err
	}

	houseDrops := debug.NewCounters()
	if err := func() error {
		defer debug.DebugTiming(opts.Debug, "stage.HouseStager")()
		return stageHouses(db, xmlDir, opts, houseDrops)
	}(); err != nil {
		return nil, err
	}

	plotDrops := debug.NewCounters()
	if err := func() error {
		defer debug.DebugTiming(opts.Debug, "stage.LandPlotStager")()
		return stagePlots(db, xmlDir, opts, plotDrops)
	}(); err != nil {
		return nil, err
	}

	if err := func() error {
		defer debug.DebugTiming(opts.Debug, "resolve.parents")()
		if err := resolveMunicipalities(db, idx); err != nil {
			return err
		}
		if err := resolveSettlements(db, idx); err != nil {
			return err
		}
		if err := resolveStreets(db, idx); err != nil {
			return err
		}
		if err := resolveHouses(db, idx); err != nil {
			return err
		}
		return resolvePlots(db, idx)
	}(); err != nil {
		return nil, err
	}

	var houseReconcile reconcile.Result
	var plotReconcile reconcile.Result
	if err := func() error {
		defer debug.DebugTiming(opts.Debug, "reconcile")()
		var err error
		houseReconcile, err = reconcile.Houses(ctx, db, idx)
		if err != nil {
			return err
		}
		plotReconcile, err = reconcile.LandPlots(db)
		return err
	}(); err != nil {
		return nil, err
	}

	var paramDrops *debug.Counters
	if err := func() error {
		defer debug.DebugTiming(opts.Debug, "params.Joiner")()
		var err error
		paramDrops, err = joinHouseParams(ctx, xmlDir, opts, db)
		return err
	}(); err != nil {
		return nil, err
	}

	if err := func() error {
		defer debug.DebugTiming(opts.Debug, "storage.ComposeAddresses")()
		_, err := db.ComposeAddresses()
		return err
	}(); err != nil {
		return nil, err
	}

	counts, err := db.ReadCounts()
	if err != nil {
		return nil, err
	}
	summary := stats.FromCounts(counts)
	summary.DroppedObjects = objectDrops.Snapshot()
	summary.DroppedHouses = houseDrops.Snapshot()
	summary.DroppedLandPlots = plotDrops.Snapshot()
	summary.DroppedParams = paramDrops.Snapshot()
	summary.ReconciliationNote = fmt.Sprintf(
		"houses: through_street=%d through_settlement=%d residual=%d; land_plots: through_settlement=%d",
		houseReconcile.ThroughStreetFilled, houseReconcile.ThroughSettlementFilled, houseReconcile.ResidualFilled,
		plotReconcile.ThroughSettlementFilled,
	)

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, ingesterr.Data("pipeline.Run", err)
	}
	if err := db.SaveRunSummary(string(data)); err != nil {
		return nil, err
	}

	return &summary, nil
}

func buildIndex(ctx context.Context, xmlDir, regionCode string) (*hierarchy.Index, error) {
	addrFiles, err := xmlreader.FindFiles(xmlDir, patternAddrObj, regionCode)
	if err != nil {
		return nil, err
	}
	if len(addrFiles) == 0 {
		return nil, ingesterr.Source("pipeline.buildIndex", errNoAddrObjFiles)
	}
	munFiles, err := xmlreader.FindFiles(xmlDir, patternMunH, regionCode)
	if err != nil {
		return nil, err
	}
	admFiles, err := xmlreader.FindFiles(xmlDir, patternAdmH, regionCode)
	if err != nil {
		return nil, err
	}

	levelSrc, err := newMultiFileSource(addrFiles, "OBJECT")
	if err != nil {
		return nil, err
	}
	defer levelSrc.Close()

	munSrc, err := newMultiFileSource(munFiles, "ITEM")
	if err != nil {
		return nil, err
	}
	defer munSrc.Close()

	admSrc, err := newMultiFileSource(admFiles, "ITEM")
	if err != nil {
		return nil, err
	}
	defer admSrc.Close()

	return hierarchy.Build(ctx, levelSrc, munSrc, admSrc)
}

func stageAddrObjects(db *storage.Adapter, xmlDir string, opts config.Options, drops *debug.Counters) error {
	files, err := xmlreader.FindFiles(xmlDir, patternAddrObj, opts.RegionCode)
	if err != nil {
		return err
	}

	stager := stage.NewObjectStager(db, opts.BatchSize)
	for _, path := range files {
		if err := streamElements(path, "OBJECT", stager.Add); err != nil {
			return err
		}
	}
	if err := stager.Flush(); err != nil {
		return err
	}
	mergeCounters(drops, stager.Dropped)
	return nil
}

func stageHouses(db *storage.Adapter, xmlDir string, opts config.Options, drops *debug.Counters) error {
	files, err := xmlreader.FindFiles(xmlDir, patternHouses, opts.RegionCode)
	if err != nil {
		return err
	}
	files = excludeContaining(files, patternHouseParam)

	stager := stage.NewHouseStager(db, opts.BatchSize)
	for _, path := range files {
		if err := streamElements(path, "HOUSE", stager.Add); err != nil {
			// SourceError on AS_HOUSES is log-and-continue, per
			// spec.md §7 propagation policy.
			if ingesterr.Is(err, ingesterr.KindSource) {
				log.Printf("pipeline: skipping houses file %s: %v", path, err)
				continue
			}
			return err
		}
	}
	if err := stager.Flush(); err != nil {
		return err
	}
	mergeCounters(drops, stager.Dropped)
	return nil
}

func stagePlots(db *storage.Adapter, xmlDir string, opts config.Options, drops *debug.Counters) error {
	files, err := xmlreader.FindFiles(xmlDir, patternSteads, opts.RegionCode)
	if err != nil {
		return err
	}

	stager := stage.NewLandPlotStager(db, opts.BatchSize)
	for _, path := range files {
		if err := streamElements(path, "STEAD", stager.Add); err != nil {
			// SourceError on AS_STEADS is log-and-continue, per
			// spec.md §7 propagation policy.
			if ingesterr.Is(err, ingesterr.KindSource) {
				log.Printf("pipeline: skipping steads file %s: %v", path, err)
				continue
			}
			return err
		}
	}
	if err := stager.Flush(); err != nil {
		return err
	}
	mergeCounters(drops, stager.Dropped)
	return nil
}

func resolveMunicipalities(db *storage.Adapter, idx *hierarchy.Index) error {
	ids, err := db.ObjectIDs("municipalities")
	if err != nil {
		return err
	}
	updates := make([]storage.ParentUpdate, 0, len(ids))
	for _, id := range ids {
		parent, ok := idx.FindMunicipalityParent(strconv.FormatInt(id, 10))
		if !ok {
			continue
		}
		parentID, ok := parseID(parent)
		if !ok || parentID == id {
			continue
		}
		updates = append(updates, storage.ParentUpdate{ObjectID: id, ParentID: parentID})
	}
	return db.UpdateMunicipalityParents(updates)
}

func resolveSettlements(db *storage.Adapter, idx *hierarchy.Index) error {
	ids, err := db.ObjectIDs("settlements")
	if err != nil {
		return err
	}
	updates := make([]storage.ParentUpdate, 0, len(ids))
	for _, id := range ids {
		parent, ok := idx.FindMunicipalityParent(strconv.FormatInt(id, 10))
		if !ok {
			continue
		}
		parentID, ok := parseID(parent)
		if !ok || parentID == id {
			continue
		}
		updates = append(updates, storage.ParentUpdate{ObjectID: id, ParentID: parentID})
	}
	return db.UpdateSettlementMunicipalities(updates)
}

func resolveStreets(db *storage.Adapter, idx *hierarchy.Index) error {
	ids, err := db.ObjectIDs("streets")
	if err != nil {
		return err
	}
	updates := make([]storage.ParentUpdate, 0, len(ids))
	for _, id := range ids {
		parent, ok := idx.FindParentByLevel(strconv.FormatInt(id, 10), []string{"5", "6"})
		if !ok {
			continue
		}
		parentID, ok := parseID(parent)
		if !ok || parentID == id {
			continue
		}
		updates = append(updates, storage.ParentUpdate{ObjectID: id, ParentID: parentID})
	}
	if err := db.UpdateStreetSettlements(updates); err != nil {
		return err
	}
	_, err = db.UpdateStreetMunicipalitiesFromSettlements()
	return err
}

func resolveHouses(db *storage.Adapter, idx *hierarchy.Index) error {
	ids, err := db.ObjectIDs("houses")
	if err != nil {
		return err
	}
	updates := make([]storage.HouseParentUpdate, 0, len(ids))
	for _, id := range ids {
		key := strconv.FormatInt(id, 10)
		u := storage.HouseParentUpdate{ObjectID: id}

		if street, ok := idx.FindParentByLevel(key, []string{"7", "8"}); ok {
			if v, ok := parseID(street); ok && v != id {
				u.StreetID = &v
			}
		}
		if settlement, ok := idx.FindParentByLevel(key, []string{"5", "6"}); ok {
			if v, ok := parseID(settlement); ok && v != id {
				u.SettlementID = &v
			}
		}
		if mo, ok := idx.FindMunicipalityParent(key); ok {
			if v, ok := parseID(mo); ok && v != id {
				u.MunicipalityID = &v
			}
		}

		if u.StreetID != nil || u.SettlementID != nil || u.MunicipalityID != nil {
			updates = append(updates, u)
		}
	}
	return db.UpdateHouseParents(updates)
}

func resolvePlots(db *storage.Adapter, idx *hierarchy.Index) error {
	ids, err := db.ObjectIDs("land_plots")
	if err != nil {
		return err
	}
	updates := make([]storage.PlotParentUpdate, 0, len(ids))
	for _, id := range ids {
		key := strconv.FormatInt(id, 10)
		u := storage.PlotParentUpdate{ObjectID: id}

		if settlement, ok := idx.FindParentByLevel(key, []string{"5", "6"}); ok {
			if v, ok := parseID(settlement); ok && v != id {
				u.SettlementID = &v
			}
		}
		if mo, ok := idx.FindParentByLevel(key, []string{"3", "4"}); ok {
			if v, ok := parseID(mo); ok && v != id {
				u.MunicipalityID = &v
			}
		}

		if u.SettlementID != nil || u.MunicipalityID != nil {
			updates = append(updates, u)
		}
	}
	return db.UpdateLandPlotParents(updates)
}

func joinHouseParams(ctx context.Context, xmlDir string, opts config.Options, db *storage.Adapter) (*debug.Counters, error) {
	files, err := xmlreader.FindFiles(xmlDir, patternHouseParam, opts.RegionCode)
	if err != nil {
		return nil, err
	}

	joiner := params.NewJoiner(db)
	processed := 0
	for _, path := range files {
		err := streamElements(path, "PARAM", func(fields map[string]string) error {
			select {
			case <-ctx.Done():
				return ingesterr.Cancel("pipeline.joinHouseParams")
			default:
			}
			processed++
			return joiner.Add(fields)
		})
		if err != nil {
			// SourceError on the optional AS_HOUSES_PARAMS group is
			// log-and-continue, per spec.md §7 propagation policy.
			if ingesterr.Is(err, ingesterr.KindSource) {
				log.Printf("pipeline: skipping house params file %s: %v", path, err)
				continue
			}
			return nil, err
		}
	}

	return joiner.Dropped, nil
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func excludeContaining(files []string, substr string) []string {
	kept := files[:0]
	for _, f := range files {
		if !strings.Contains(strings.ToUpper(f), substr) {
			kept = append(kept, f)
		}
	}
	return kept
}

func mergeCounters(dst, src *debug.Counters) {
	for reason, n := range src.Snapshot() {
		for i := 0; i < n; i++ {
			dst.Inc(reason)
		}
	}
}

func streamElements(path, elementName string, handle func(map[string]string) error) error {
	r, err := xmlreader.Open(path, elementName)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		el, ok, err := r.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := handle(el.Attributes); err != nil {
			return err
		}
	}
}
