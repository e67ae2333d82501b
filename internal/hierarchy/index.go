// Package hierarchy builds and queries the in-memory address hierarchy
// index described in spec.md §4.2 and §4.4: a read-only arena of two
// string-keyed maps (level by object_id, parent by object_id),
// constructed in exactly three ordered scans so that municipal edges
// win over administrative edges at the same child. Grounded on the
// teacher's internal/etl staging style, generalized from row batching
// to in-memory map population.
package hierarchy

import (
	"context"

	"github.com/gmorong/fias-ingest/internal/ingesterr"
)

// Index is the read-only hierarchy arena. Both maps key by object_id
// as a string; conversion to int64 happens only at the persistence
// boundary (storage layer), per spec.md §4.2.
type Index struct {
	level  map[string]string
	parent map[string]string
}

// New returns an empty index, exported for tests that want to seed it
// directly without going through Build.
func New() *Index {
	return &Index{
		level:  make(map[string]string),
		parent: make(map[string]string),
	}
}

// Level returns the level code recorded for objectID, if any.
func (x *Index) Level(objectID string) (string, bool) {
	lv, ok := x.level[objectID]
	return lv, ok
}

// Parent returns the parent object_id recorded for objectID, if any.
func (x *Index) Parent(objectID string) (string, bool) {
	p, ok := x.parent[objectID]
	return p, ok
}

// SetLevel records objectID's level. Scan 1 (AS_ADDR_OBJ) calls this
// unconditionally for every active OBJECT.
func (x *Index) SetLevel(objectID, level string) {
	x.level[objectID] = level
}

// SetParentUnconditional overwrites any existing parent edge for
// objectID. Scan 2 (AS_MUN_HIERARCHY, the priority source) calls this.
func (x *Index) SetParentUnconditional(objectID, parentID string) {
	x.parent[objectID] = parentID
}

// SetParentIfAbsent writes a parent edge only when objectID has none
// yet. Scan 3 (AS_ADM_HIERARCHY, the fallback source) calls this so
// that municipal edges already written in scan 2 are never clobbered.
func (x *Index) SetParentIfAbsent(objectID, parentID string) {
	if _, exists := x.parent[objectID]; exists {
		return
	}
	x.parent[objectID] = parentID
}

// Len reports how many objects carry a recorded level.
func (x *Index) Len() int {
	return len(x.level)
}

// ObjectSource streams (object_id, level, is_active) triples from
// AS_ADDR_OBJ, or (object_id, parent_obj_id, is_active) triples from
// the two hierarchy files. The Build function is deliberately
// decoupled from the XML reader via this narrow interface so it can
// be exercised with an in-memory fake in tests.
type ObjectSource interface {
	// Next returns the next record's fields, or ok=false at EOF.
	// err is non-nil only on a genuine read failure.
	Next() (fields map[string]string, ok bool, err error)
}

// Build performs the three-scan construction of spec.md §4.2:
// level scan over AS_ADDR_OBJ, then municipal hierarchy scan
// (unconditional overwrite), then administrative hierarchy scan
// (write-if-absent). ctx is checked between records for cooperative
// cancellation.
func Build(ctx context.Context, addrObjects, munHierarchy, admHierarchy ObjectSource) (*Index, error) {
	idx := New()

	if err := scanLevels(ctx, addrObjects, idx); err != nil {
		return nil, err
	}
	if err := scanHierarchy(ctx, munHierarchy, idx, true); err != nil {
		return nil, err
	}
	if err := scanHierarchy(ctx, admHierarchy, idx, false); err != nil {
		return nil, err
	}

	return idx, nil
}

func scanLevels(ctx context.Context, src ObjectSource, idx *Index) error {
	for {
		if err := checkCancel(ctx, "hierarchy.Build.levels"); err != nil {
			return err
		}
		fields, ok, err := src.Next()
		if err != nil {
			return ingesterr.Source("hierarchy.Build.levels", err)
		}
		if !ok {
			return nil
		}
		if fields["ISACTUAL"] != "1" || fields["ISACTIVE"] != "1" {
			continue
		}
		objectID := fields["OBJECTID"]
		if objectID == "" {
			continue
		}
		idx.SetLevel(objectID, fields["LEVEL"])
	}
}

func scanHierarchy(ctx context.Context, src ObjectSource, idx *Index, priority bool) error {
	for {
		if err := checkCancel(ctx, "hierarchy.Build.hierarchy"); err != nil {
			return err
		}
		fields, ok, err := src.Next()
		if err != nil {
			return ingesterr.Source("hierarchy.Build.hierarchy", err)
		}
		if !ok {
			return nil
		}
		if fields["ISACTIVE"] != "1" {
			continue
		}
		objectID := fields["OBJECTID"]
		parentID := fields["PARENTOBJID"]
		if objectID == "" || parentID == "" {
			continue
		}
		if priority {
			idx.SetParentUnconditional(objectID, parentID)
		} else {
			idx.SetParentIfAbsent(objectID, parentID)
		}
	}
}

func checkCancel(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return ingesterr.Cancel(op)
	default:
		return nil
	}
}
