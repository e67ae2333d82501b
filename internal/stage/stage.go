// Package stage implements the Typed Object Stager of spec.md §4.3:
// routes OBJECT/HOUSE/STEAD elements into per-level batches and
// flushes them to the storage adapter at a configurable threshold.
// Grounded on the teacher's internal/etl staging/flush loop,
// generalized from its load-target rows to the five FIAS entity
// tables.
package stage

import (
	"strconv"
	"time"

	"github.com/gmorong/fias-ingest/internal/debug"
	"github.com/gmorong/fias-ingest/internal/model"
	"github.com/gmorong/fias-ingest/internal/storage"
)

// DefaultBatchSize is the established figure from spec.md §4.3.
const DefaultBatchSize = 5000

// ObjectStager routes AS_ADDR_OBJ elements by level into
// municipality/settlement/street batches, flushing each at
// batchSize rows.
type ObjectStager struct {
	db        *storage.Adapter
	batchSize int

	municipalities []model.Municipality
	settlements    []model.Settlement
	streets        []model.Street

	Dropped *debug.Counters
}

// NewObjectStager returns a stager flushing through db at batchSize
// rows per table.
func NewObjectStager(db *storage.Adapter, batchSize int) *ObjectStager {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ObjectStager{db: db, batchSize: batchSize, Dropped: debug.NewCounters()}
}

// Add routes one OBJECT element's attribute map by level, staging
// into the matching batch and flushing it if the threshold is hit.
// Elements that fail the activity predicate or carry an unrecognized
// level are counted in Dropped and otherwise ignored.
func (s *ObjectStager) Add(fields map[string]string) error {
	if fields["ISACTUAL"] != "1" || fields["ISACTIVE"] != "1" {
		s.Dropped.Inc("inactive")
		return nil
	}

	level := fields["LEVEL"]
	switch {
	case model.IsMunicipalityLevel(level):
		m, err := parseMunicipality(fields)
		if err != nil {
			s.Dropped.Inc("invalid_municipality")
			return nil
		}
		s.municipalities = append(s.municipalities, m)
		if len(s.municipalities) >= s.batchSize {
			return s.flushMunicipalities()
		}
	case model.IsSettlementLevel(level):
		st, err := parseSettlement(fields)
		if err != nil {
			s.Dropped.Inc("invalid_settlement")
			return nil
		}
		s.settlements = append(s.settlements, st)
		if len(s.settlements) >= s.batchSize {
			return s.flushSettlements()
		}
	case model.IsStreetLevel(level):
		str, err := parseStreet(fields)
		if err != nil {
			s.Dropped.Inc("invalid_street")
			return nil
		}
		s.streets = append(s.streets, str)
		if len(s.streets) >= s.batchSize {
			return s.flushStreets()
		}
	default:
		s.Dropped.Inc("unrecognized_level")
	}
	return nil
}

// Flush writes every remaining partial batch.
func (s *ObjectStager) Flush() error {
	if err := s.flushMunicipalities(); err != nil {
		return err
	}
	if err := s.flushSettlements(); err != nil {
		return err
	}
	return s.flushStreets()
}

func (s *ObjectStager) flushMunicipalities() error {
	if len(s.municipalities) == 0 {
		return nil
	}
	if err := s.db.InsertMunicipalities(s.municipalities); err != nil {
		return err
	}
	s.municipalities = s.municipalities[:0]
	return nil
}

func (s *ObjectStager) flushSettlements() error {
	if len(s.settlements) == 0 {
		return nil
	}
	if err := s.db.InsertSettlements(s.settlements); err != nil {
		return err
	}
	s.settlements = s.settlements[:0]
	return nil
}

func (s *ObjectStager) flushStreets() error {
	if len(s.streets) == 0 {
		return nil
	}
	if err := s.db.InsertStreets(s.streets); err != nil {
		return err
	}
	s.streets = s.streets[:0]
	return nil
}

func parseMunicipality(f map[string]string) (model.Municipality, error) {
	objectID, err := strconv.ParseInt(f["OBJECTID"], 10, 64)
	if err != nil {
		return model.Municipality{}, err
	}
	return model.Municipality{
		ObjectID:   objectID,
		ObjectGUID: f["OBJECTGUID"],
		Name:       f["NAME"],
		TypeName:   f["TYPENAME"],
		Level:      f["LEVEL"],
		IsActual:   true,
		IsActive:   true,
		UpdateDate: parseDate(f["UPDATEDATE"]),
	}, nil
}

func parseSettlement(f map[string]string) (model.Settlement, error) {
	objectID, err := strconv.ParseInt(f["OBJECTID"], 10, 64)
	if err != nil {
		return model.Settlement{}, err
	}
	return model.Settlement{
		ObjectID:   objectID,
		ObjectGUID: f["OBJECTGUID"],
		Name:       f["NAME"],
		TypeName:   f["TYPENAME"],
		Level:      f["LEVEL"],
		IsActual:   true,
		IsActive:   true,
		UpdateDate: parseDate(f["UPDATEDATE"]),
	}, nil
}

func parseStreet(f map[string]string) (model.Street, error) {
	objectID, err := strconv.ParseInt(f["OBJECTID"], 10, 64)
	if err != nil {
		return model.Street{}, err
	}
	return model.Street{
		ObjectID:   objectID,
		ObjectGUID: f["OBJECTGUID"],
		Name:       f["NAME"],
		TypeName:   f["TYPENAME"],
		Level:      f["LEVEL"],
		IsActual:   true,
		IsActive:   true,
		UpdateDate: parseDate(f["UPDATEDATE"]),
	}, nil
}

func parseDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &t
}
