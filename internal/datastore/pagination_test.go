package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"empty defaults to first", "", 1},
		{"non-numeric defaults to first", "abc", 1},
		{"zero clamps to first", "0", 1},
		{"negative clamps to first", "-1", 1},
		{"valid page", "2", 2},
		{"large page passes through", "9999", 9999},
		{"float is non-numeric", "1.5", 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParsePage(tt.raw))
		})
	}
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(1, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 3, TotalPages(25, 10))
	assert.Equal(t, 1, TotalPages(5, 0))
}

func TestClampPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page       int
		totalPages int
		want       int
	}{
		{"zero to first", 0, 3, 1},
		{"negative to first", -1, 3, 1},
		{"beyond last to last", 99, 3, 3},
		{"in range unchanged", 2, 3, 2},
		{"first page", 1, 3, 1},
		{"last page", 3, 3, 3},
		{"empty store single page", 5, 1, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClampPage(tt.page, tt.totalPages))
		})
	}
}
