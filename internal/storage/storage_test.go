package storage

import (
	"os"
	"testing"

	"github.com/gmorong/fias-ingest/internal/config"
	"github.com/gmorong/fias-ingest/internal/model"
	"github.com/stretchr/testify/require"
)

// openTestAdapter connects against FIAS_TEST_DSN-derived options and
// skips the test when that env var is unset, matching the teacher's
// own db-integration test posture.
func openTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	dsn := os.Getenv("FIAS_TEST_DSN")
	if dsn == "" {
		t.Skip("FIAS_TEST_DSN not set, skipping storage integration test")
	}

	opts := config.Options{
		DBHost: os.Getenv("FIAS_TEST_DB_HOST"), DBPort: 5432,
		DBUser: os.Getenv("FIAS_TEST_DB_USER"), DBPassword: os.Getenv("FIAS_TEST_DB_PASSWORD"),
		DBName: os.Getenv("FIAS_TEST_DB_NAME"), DBSchema: "fias_storage_test",
	}
	db, err := Open(opts)
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertMunicipalities_ConflictIsIgnored(t *testing.T) {
	db := openTestAdapter(t)

	batch := []model.Municipality{
		{ObjectID: 1, Name: "Район", TypeName: "м.р-н", Level: "3", IsActual: true, IsActive: true},
	}
	require.NoError(t, db.InsertMunicipalities(batch))
	require.NoError(t, db.InsertMunicipalities(batch), "a repeated object_id must be ignored, not error")

	ids, err := db.ObjectIDs("municipalities")
	require.NoError(t, err)
	require.Len(t, ids, 1)
}

func TestUpdateHouseParents_ThenThroughStreetFillsMunicipality(t *testing.T) {
	db := openTestAdapter(t)

	require.NoError(t, db.InsertMunicipalities([]model.Municipality{
		{ObjectID: 1, Name: "Район", TypeName: "м.р-н", Level: "3", IsActual: true, IsActive: true},
	}))
	require.NoError(t, db.InsertStreets([]model.Street{
		{ObjectID: 10, Name: "Улица", TypeName: "ул.", Level: "7", IsActual: true, IsActive: true},
	}))
	require.NoError(t, db.InsertHouses([]model.House{
		{ObjectID: 100, HouseNumber: "5", IsActual: true, IsActive: true},
	}))

	mo := int64(1)
	require.NoError(t, db.UpdateStreetSettlements(nil))
	require.NoError(t, db.UpdateMunicipalityParents(nil))

	streetID := int64(10)
	require.NoError(t, db.UpdateHouseParents([]HouseParentUpdate{
		{ObjectID: 100, StreetID: &streetID},
	}))

	err := db.batchSingleColumnUpdate("test.seedStreetMO", "streets", "municipality_id",
		[]ParentUpdate{{ObjectID: 10, ParentID: mo}})
	require.NoError(t, err)

	filled, err := db.ThroughStreetFillHouseMunicipalities()
	require.NoError(t, err)
	require.Equal(t, int64(1), filled)

	counts, err := db.ReadCounts()
	require.NoError(t, err)
	require.Equal(t, int64(1), counts.HousesWithMunicipality)
}
