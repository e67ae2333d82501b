package reconcile

import (
	"context"
	"os"
	"testing"

	"github.com/gmorong/fias-ingest/internal/config"
	"github.com/gmorong/fias-ingest/internal/hierarchy"
	"github.com/gmorong/fias-ingest/internal/model"
	"github.com/gmorong/fias-ingest/internal/storage"
	"github.com/stretchr/testify/require"
)

// openTestAdapter mirrors storage's own FIAS_TEST_DSN-gated posture:
// skip unless a real Postgres connection is configured.
func openTestAdapter(t *testing.T) *storage.Adapter {
	t.Helper()
	if os.Getenv("FIAS_TEST_DSN") == "" {
		t.Skip("FIAS_TEST_DSN not set, skipping reconcile integration test")
	}

	opts := config.Options{
		DBHost: os.Getenv("FIAS_TEST_DB_HOST"), DBPort: 5432,
		DBUser: os.Getenv("FIAS_TEST_DB_USER"), DBPassword: os.Getenv("FIAS_TEST_DB_PASSWORD"),
		DBName: os.Getenv("FIAS_TEST_DB_NAME"), DBSchema: "fias_reconcile_test",
	}
	db, err := storage.Open(opts)
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestHouses_ResidualLookupRecoversMunicipalityViaIndex(t *testing.T) {
	db := openTestAdapter(t)

	require.NoError(t, db.InsertMunicipalities([]model.Municipality{
		{ObjectID: 1, Name: "Район", TypeName: "м.р-н", Level: "3", IsActual: true, IsActive: true},
	}))
	require.NoError(t, db.InsertHouses([]model.House{
		{ObjectID: 100, HouseNumber: "5", IsActual: true, IsActive: true},
	}))

	idx := hierarchy.New()
	idx.SetLevel("1", "3")
	idx.SetLevel("100", "")
	idx.SetParentUnconditional("100", "1")

	result, err := Houses(context.Background(), db, idx)
	require.NoError(t, err)
	require.EqualValues(t, 1, result.ResidualFilled)

	counts, err := db.ReadCounts()
	require.NoError(t, err)
	require.EqualValues(t, 1, counts.HousesWithMunicipality)
}
