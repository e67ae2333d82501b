package config

import (
	"os"
	"testing"

	"github.com/gmorong/fias-ingest/internal/ingesterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearFiasEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"FIAS_DB_HOST", "FIAS_DB_PORT", "FIAS_DB_USER", "FIAS_DB_PASSWORD",
		"FIAS_DB_NAME", "FIAS_DB_SCHEMA", "FIAS_XML_DIRECTORY", "FIAS_REGION_CODE",
		"FIAS_BATCH_SIZE",
	} {
		os.Unsetenv(k)
	}
}

func TestFromEnv_MissingDBNameIsConfigError(t *testing.T) {
	clearFiasEnv(t)
	t.Setenv("FIAS_XML_DIRECTORY", "/data/fias")

	_, err := FromEnv()
	require.Error(t, err)
	assert.True(t, ingesterr.Is(err, ingesterr.KindConfig))
}

func TestFromEnv_MissingXMLDirectoryIsConfigError(t *testing.T) {
	clearFiasEnv(t)
	t.Setenv("FIAS_DB_NAME", "fias")

	_, err := FromEnv()
	require.Error(t, err)
	assert.True(t, ingesterr.Is(err, ingesterr.KindConfig))
}

func TestFromEnv_DefaultsApplyWhenUnset(t *testing.T) {
	clearFiasEnv(t)
	t.Setenv("FIAS_DB_NAME", "fias")
	t.Setenv("FIAS_XML_DIRECTORY", "/data/fias")

	opts, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "localhost", opts.DBHost)
	assert.Equal(t, 5432, opts.DBPort)
	assert.Equal(t, "fias", opts.DBSchema)
	assert.Equal(t, DefaultBatchSize, opts.BatchSize)
}

func TestValidate_RejectsNonPositiveBatchSize(t *testing.T) {
	opts := Options{DBName: "fias", XMLDirectory: "/data/fias", BatchSize: 0}
	err := opts.Validate()
	require.Error(t, err)
	assert.True(t, ingesterr.Is(err, ingesterr.KindConfig))
}
