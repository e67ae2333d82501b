package config

import (
	"github.com/gmorong/fias-ingest/internal/ingesterr"
)

// DefaultBatchSize is the established batch-size figure from spec.md:
// 5000 rows per insert batch.
const DefaultBatchSize = 5000

// Options is the plain options record the driver hands to the core, per
// spec.md §6. It carries no behavior beyond validation.
type Options struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSchema   string

	XMLDirectory string
	RegionCode   string
	BatchSize    int
	Debug        bool
}

// FromEnv loads an .env file (if present) and assembles Options from the
// process environment, applying the teacher's GetEnv/GetEnvInt pattern.
func FromEnv() (Options, error) {
	_ = LoadEnv()

	opts := Options{
		DBHost:       GetEnv("FIAS_DB_HOST", "localhost"),
		DBPort:       GetEnvInt("FIAS_DB_PORT", 5432),
		DBUser:       GetEnv("FIAS_DB_USER", "postgres"),
		DBPassword:   GetEnv("FIAS_DB_PASSWORD", ""),
		DBName:       GetEnv("FIAS_DB_NAME", ""),
		DBSchema:     GetEnv("FIAS_DB_SCHEMA", "fias"),
		XMLDirectory: GetEnv("FIAS_XML_DIRECTORY", ""),
		RegionCode:   GetEnv("FIAS_REGION_CODE", ""),
		BatchSize:    GetEnvInt("FIAS_BATCH_SIZE", DefaultBatchSize),
		Debug:        GetEnvBool("FIAS_DEBUG", false),
	}

	return opts, opts.Validate()
}

// Validate reports a ConfigError for any missing required field.
func (o Options) Validate() error {
	switch {
	case o.DBName == "":
		return ingesterr.Config("config.Validate", errMissing("FIAS_DB_NAME"))
	case o.XMLDirectory == "":
		return ingesterr.Config("config.Validate", errMissing("FIAS_XML_DIRECTORY"))
	case o.BatchSize <= 0:
		return ingesterr.Config("config.Validate", errMissing("FIAS_BATCH_SIZE must be positive"))
	}
	return nil
}

type missingFieldError string

func (e missingFieldError) Error() string { return "missing required configuration: " + string(e) }

func errMissing(field string) error { return missingFieldError(field) }
