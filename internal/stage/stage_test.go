package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectStager_RoutesByLevelAndHoldsBelowThreshold(t *testing.T) {
	s := NewObjectStager(nil, 2)

	require.NoError(t, s.Add(map[string]string{
		"OBJECTID": "1", "LEVEL": "3", "NAME": "Район", "TYPENAME": "м.р-н",
		"ISACTUAL": "1", "ISACTIVE": "1",
	}))
	assert.Len(t, s.municipalities, 1)

	require.NoError(t, s.Add(map[string]string{
		"OBJECTID": "2", "LEVEL": "5", "NAME": "Село", "TYPENAME": "с.",
		"ISACTUAL": "1", "ISACTIVE": "1",
	}))
	assert.Len(t, s.settlements, 1)

	require.NoError(t, s.Add(map[string]string{
		"OBJECTID": "3", "LEVEL": "7", "NAME": "Улица", "TYPENAME": "ул.",
		"ISACTUAL": "1", "ISACTIVE": "1",
	}))
	assert.Len(t, s.streets, 1)
}

func TestObjectStager_DropsInactiveAndUnrecognizedLevels(t *testing.T) {
	s := NewObjectStager(nil, 5000)

	require.NoError(t, s.Add(map[string]string{
		"OBJECTID": "1", "LEVEL": "3", "ISACTUAL": "0", "ISACTIVE": "1",
	}))
	require.NoError(t, s.Add(map[string]string{
		"OBJECTID": "2", "LEVEL": "99", "ISACTUAL": "1", "ISACTIVE": "1",
	}))

	assert.Empty(t, s.municipalities)
	assert.Equal(t, 2, s.Dropped.Total())
	snapshot := s.Dropped.Snapshot()
	assert.Equal(t, 1, snapshot["inactive"])
	assert.Equal(t, 1, snapshot["unrecognized_level"])
}

func TestHouseStager_DropsInvalidObjectID(t *testing.T) {
	s := NewHouseStager(nil, 5000)

	require.NoError(t, s.Add(map[string]string{
		"OBJECTID": "not-a-number", "ISACTUAL": "1", "ISACTIVE": "1",
	}))

	assert.Empty(t, s.batch)
	assert.Equal(t, 1, s.Dropped.Total())
}
