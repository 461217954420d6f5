package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in     string
		hour   int
		minute int
	}{
		{"3:00P", 15, 0},
		{"11:00A", 11, 0},
		{"12:00P", 12, 0},
		{"12:00A", 0, 0},
		{"12:30A", 0, 30},
		{"1:05P", 13, 5},
		{"11:59P", 23, 59},
		{"3:00PM", 15, 0},
		{"11:00am", 11, 0},
		{"3:00 P", 15, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hour, minute, err := ParseClockTime(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.hour, hour)
			assert.Equal(t, tt.minute, minute)
		})
	}
}

func TestParseClockTimeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "15:00", "3:00", "0:30P", "13:00P", "3:60P", "noon"} {
		t.Run(in, func(t *testing.T) {
			_, _, err := ParseClockTime(in)
			assert.Error(t, err)
		})
	}
}

func TestLocation(t *testing.T) {
	loc, err := Config{Timezone: "America/Denver"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Denver", loc.String())

	_, err = Config{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}
