// Package model defines the entity types persisted by the address graph
// builder: municipalities, settlements, streets, houses and land plots.
package model

import "time"

// Municipality is a level 3-4 hierarchy node (municipal formation).
type Municipality struct {
	ID         int64
	ObjectID   int64
	ObjectGUID string
	Name       string
	TypeName   string
	Level      string
	ParentID   *int64
	IsActual   bool
	IsActive   bool
	UpdateDate *time.Time
}

// Settlement is a level 5-6 hierarchy node.
type Settlement struct {
	ID             int64
	ObjectID       int64
	ObjectGUID     string
	Name           string
	TypeName       string
	Level          string
	MunicipalityID *int64
	IsActual       bool
	IsActive       bool
	UpdateDate     *time.Time
}

// Street is a level 7-8 hierarchy node.
type Street struct {
	ID             int64
	ObjectID       int64
	ObjectGUID     string
	Name           string
	TypeName       string
	Level          string
	SettlementID   *int64
	MunicipalityID *int64
	IsActual       bool
	IsActive       bool
	UpdateDate     *time.Time
}

// House is a leaf address object carrying no level attribute of its own.
type House struct {
	ID              int64
	ObjectID        int64
	ObjectGUID      string
	HouseNumber     string
	BuildingNumber  string
	StructureNumber string

	StreetID       *int64
	SettlementID   *int64
	MunicipalityID *int64

	CadastralNumber string
	FloorsCount     *int
	ResidentsCount  *int
	FullAddress     string

	IsActual   bool
	IsActive   bool
	UpdateDate *time.Time
}

// LandPlot is a leaf address object describing a land parcel.
type LandPlot struct {
	ID             int64
	ObjectID       int64
	ObjectGUID     string
	NumberPlot     string
	SettlementID   *int64
	MunicipalityID *int64
	IsActual       bool
	IsActive       bool
	UpdateDate     *time.Time
}

// Municipality levels, per spec: "3" and "4".
const (
	LevelMunicipalityLow  = "3"
	LevelMunicipalityHigh = "4"
	LevelSettlementLow    = "5"
	LevelSettlementHigh   = "6"
	LevelStreetLow        = "7"
	LevelStreetHigh       = "8"
)

// MunicipalityLevels is the target level set for municipality resolution.
var MunicipalityLevels = []string{LevelMunicipalityLow, LevelMunicipalityHigh}

// SettlementLevels is the target level set for settlement resolution.
var SettlementLevels = []string{LevelSettlementLow, LevelSettlementHigh}

// StreetLevels is the target level set for street resolution.
var StreetLevels = []string{LevelStreetLow, LevelStreetHigh}

// IsMunicipalityLevel reports whether level is a municipality level code.
func IsMunicipalityLevel(level string) bool {
	return level == LevelMunicipalityLow || level == LevelMunicipalityHigh
}

// IsSettlementLevel reports whether level is a settlement level code.
func IsSettlementLevel(level string) bool {
	return level == LevelSettlementLow || level == LevelSettlementHigh
}

// IsStreetLevel reports whether level is a street level code.
func IsStreetLevel(level string) bool {
	return level == LevelStreetLow || level == LevelStreetHigh
}
