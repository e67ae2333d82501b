// Package params implements the House-Parameters Joiner of spec.md
// §4.6: streams PARAM(object_id, type_id, value) records, recognizes
// three type codes, validates each, and drives a single-row UPDATE per
// accepted value. Grounded on the teacher's internal/etl field-mapping
// style, generalized from its column-mapping table to FIAS's type_id
// dispatch.
package params

import (
	"strconv"
	"strings"

	"github.com/gmorong/fias-ingest/internal/debug"
	"github.com/gmorong/fias-ingest/internal/storage"
)

const (
	typeCadastralNumber = "8"
	typeResidentsCount  = "14"
	typeFloorsCount     = "15"

	maxCadastralLength = 100
	maxReasonableCount = 1000

	// CommitInterval is the 100,000-record commit interval figure for
	// the PARAM stream. Joiner does not use it: every accepted value is
	// written by its own single-row UPDATE outside any explicit
	// transaction, so each row commits on its own.
	CommitInterval = 100000
)

// Joiner applies recognized PARAM records to houses via db, counting
// drops by reason in Dropped.
type Joiner struct {
	db      *storage.Adapter
	Dropped *debug.Counters
}

// NewJoiner returns a Joiner writing through db.
func NewJoiner(db *storage.Adapter) *Joiner {
	return &Joiner{db: db, Dropped: debug.NewCounters()}
}

// Add processes one PARAM element's attribute map. Unknown type_ids
// are silently ignored, per spec.md §4.6; recognized type_ids that
// fail validation are counted in Dropped.
func (j *Joiner) Add(fields map[string]string) error {
	objectID, err := strconv.ParseInt(fields["OBJECTID"], 10, 64)
	if err != nil {
		j.Dropped.Inc("invalid_object_id")
		return nil
	}

	switch fields["TYPEID"] {
	case typeCadastralNumber:
		value, ok := validateCadastralNumber(fields["VALUE"])
		if !ok {
			j.Dropped.Inc("invalid_cadastral_number")
			return nil
		}
		return j.db.SetCadastralNumber(objectID, value)

	case typeResidentsCount:
		value, ok := validateBoundedCount(fields["VALUE"])
		if !ok {
			j.Dropped.Inc("invalid_residents_count")
			return nil
		}
		return j.db.SetResidentsCount(objectID, value)

	case typeFloorsCount:
		value, ok := validateBoundedCount(fields["VALUE"])
		if !ok {
			j.Dropped.Inc("invalid_floors_count")
			return nil
		}
		return j.db.SetFloorsCount(objectID, value)

	default:
		return nil
	}
}

// validateCadastralNumber trims, rejects empty, requires a colon, and
// truncates to maxCadastralLength chars, per spec.md §4.6.
func validateCadastralNumber(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", false
	}
	if !strings.Contains(v, ":") {
		return "", false
	}
	if len(v) > maxCadastralLength {
		v = v[:maxCadastralLength]
	}
	return v, true
}

// validateBoundedCount parses an integer via float (the source
// sometimes carries "12.0"-style values) and requires 0 <= n <= 1000,
// per spec.md §4.6's shared rule for residents_count/floors_count.
func validateBoundedCount(raw string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	n := int(f)
	if n < 0 || n > maxReasonableCount {
		return 0, false
	}
	return n, true
}
