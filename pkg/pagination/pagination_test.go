package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name     string
		in       PaginationParams
		wantPage int
		wantPer  int
	}{
		{"zero values", PaginationParams{}, 1, 15},
		{"negative page", PaginationParams{Page: -3, PerPage: 20}, 1, 20},
		{"per page capped", PaginationParams{Page: 2, PerPage: 500}, 2, 100},
		{"valid", PaginationParams{Page: 4, PerPage: 25}, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Validate()
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPer, p.PerPage)
		})
	}
}

func TestPaginationParams_Offset(t *testing.T) {
	p := &PaginationParams{Page: 3, PerPage: 15}
	assert.Equal(t, 30, p.Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 35)
	assert.Equal(t, 4, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := NewPagination(4, 10, 35)
	assert.False(t, last.HasNext)

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}

func TestPagination_WithFilter(t *testing.T) {
	p := NewPagination(1, 15, 3)
	assert.Nil(t, p.Filters)

	p.WithFilter("status", "").WithFilter("due_only", "true").WithFilter("search", "ravi")
	assert.Equal(t, map[string]string{"due_only": "true", "search": "ravi"}, p.Filters)
}
