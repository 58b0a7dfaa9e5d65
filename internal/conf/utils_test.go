package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Weekday
	}{
		{"Sunday", time.Sunday},
		{"monday", time.Monday},
		{"TUESDAY", time.Tuesday},
		{"wednesday", time.Wednesday},
		{"Thursday", time.Thursday},
		{"friday", time.Friday},
		{"Saturday", time.Saturday},
	}

	for _, tt := range tests {
		got, err := ParseWeekday(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseWeekdayInvalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "Someday", "Sun"} {
		_, err := ParseWeekday(in)
		assert.Error(t, err, in)
	}
}
