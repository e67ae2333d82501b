package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCadastralNumber(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  string
		valid bool
	}{
		{"valid with colon", "77:01:0001001:123", "77:01:0001001:123", true},
		{"trims whitespace", "  77:01:0001001:123  ", "77:01:0001001:123", true},
		{"empty rejected", "", "", false},
		{"whitespace only rejected", "   ", "", false},
		{"missing colon rejected", "770100010001234", "", false},
		{"truncated to 100 chars", "77:" + stringOfLen(120), "77:" + stringOfLen(97), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := validateCadastralNumber(tt.raw)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, got)
				assert.LessOrEqual(t, len(got), maxCadastralLength)
			}
		})
	}
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}

func TestValidateBoundedCount(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  int
		valid bool
	}{
		{"plain integer", "42", 42, true},
		{"integer via float", "12.0", 12, true},
		{"zero is allowed", "0", 0, true},
		{"upper bound allowed", "1000", 1000, true},
		{"negative rejected", "-1", 0, false},
		{"over bound rejected", "1001", 0, false},
		{"non numeric rejected", "abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := validateBoundedCount(tt.raw)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestJoiner_UnknownTypeIDIsIgnoredNotDropped(t *testing.T) {
	j := NewJoiner(nil)
	err := j.Add(map[string]string{"OBJECTID": "1", "TYPEID": "999", "VALUE": "whatever"})
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(0, j.Dropped.Total(), "an unrecognized type_id must be silently ignored, not counted as a drop")
}

func TestJoiner_InvalidObjectIDIsCountedAsDrop(t *testing.T) {
	j := NewJoiner(nil)
	err := j.Add(map[string]string{"OBJECTID": "not-a-number", "TYPEID": "8", "VALUE": "77:01:0001001:123"})
	assert.NoError(t, err)
	assert.Equal(t, 1, j.Dropped.Total())
}
