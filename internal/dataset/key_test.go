package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"integer", "1", "1"},
		{"float form", "1.0", "1"},
		{"trailing zeros", "1.00", "1"},
		{"exponent", "1e0", "1"},
		{"padded", "  42 ", "42"},
		{"leading zero", "007", "7"},
		{"negative", "-3.0", "-3"},
		{"fraction kept", "1.5", "1.5"},
		{"text kept", "ABC-1", "ABC-1"},
		{"empty stays empty", "", ""},
		{"blank stays empty", "   ", ""},
		{"nan kept", "NaN", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.in))
		})
	}
}

func TestKeyOfMixedTypes(t *testing.T) {
	for _, v := range []any{1, "1", 1.0} {
		assert.Equal(t, "1", KeyOf(v), "value %#v", v)
	}
	assert.Equal(t, "", KeyOf(nil))
	assert.Equal(t, "12", KeyOf(int64(12)))
	assert.Equal(t, "2.5", KeyOf(2.5))
	assert.Equal(t, "7", KeyOf(uint8(7)))
}
