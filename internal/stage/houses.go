package stage

import (
	"strconv"

	"github.com/gmorong/fias-ingest/internal/debug"
	"github.com/gmorong/fias-ingest/internal/model"
	"github.com/gmorong/fias-ingest/internal/storage"
)

// HouseStager stages AS_HOUSES HOUSE elements, which carry no level
// attribute and are batched independently of the object stager.
type HouseStager struct {
	db        *storage.Adapter
	batchSize int
	batch     []model.House

	Dropped *debug.Counters
}

func NewHouseStager(db *storage.Adapter, batchSize int) *HouseStager {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &HouseStager{db: db, batchSize: batchSize, Dropped: debug.NewCounters()}
}

func (s *HouseStager) Add(fields map[string]string) error {
	if fields["ISACTUAL"] != "1" || fields["ISACTIVE"] != "1" {
		s.Dropped.Inc("inactive")
		return nil
	}

	objectID, err := strconv.ParseInt(fields["OBJECTID"], 10, 64)
	if err != nil {
		s.Dropped.Inc("invalid_house")
		return nil
	}

	s.batch = append(s.batch, model.House{
		ObjectID:        objectID,
		ObjectGUID:      fields["OBJECTGUID"],
		HouseNumber:     fields["HOUSENUM"],
		BuildingNumber:  fields["ADDNUM1"],
		StructureNumber: fields["ADDNUM2"],
		IsActual:        true,
		IsActive:        true,
		UpdateDate:      parseDate(fields["UPDATEDATE"]),
	})

	if len(s.batch) >= s.batchSize {
		return s.Flush()
	}
	return nil
}

func (s *HouseStager) Flush() error {
	if len(s.batch) == 0 {
		return nil
	}
	if err := s.db.InsertHouses(s.batch); err != nil {
		return err
	}
	s.batch = s.batch[:0]
	return nil
}

// LandPlotStager stages AS_STEADS STEAD elements.
type LandPlotStager struct {
	db        *storage.Adapter
	batchSize int
	batch     []model.LandPlot

	Dropped *debug.Counters
}

func NewLandPlotStager(db *storage.Adapter, batchSize int) *LandPlotStager {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &LandPlotStager{db: db, batchSize: batchSize, Dropped: debug.NewCounters()}
}

func (s *LandPlotStager) Add(fields map[string]string) error {
	if fields["ISACTUAL"] != "1" || fields["ISACTIVE"] != "1" {
		s.Dropped.Inc("inactive")
		return nil
	}

	objectID, err := strconv.ParseInt(fields["OBJECTID"], 10, 64)
	if err != nil {
		s.Dropped.Inc("invalid_plot")
		return nil
	}

	s.batch = append(s.batch, model.LandPlot{
		ObjectID:   objectID,
		ObjectGUID: fields["OBJECTGUID"],
		NumberPlot: fields["NUMBER"],
		IsActual:   true,
		IsActive:   true,
		UpdateDate: parseDate(fields["UPDATEDATE"]),
	})

	if len(s.batch) >= s.batchSize {
		return s.Flush()
	}
	return nil
}

func (s *LandPlotStager) Flush() error {
	if len(s.batch) == 0 {
		return nil
	}
	if err := s.db.InsertLandPlots(s.batch); err != nil {
		return err
	}
	s.batch = s.batch[:0]
	return nil
}
