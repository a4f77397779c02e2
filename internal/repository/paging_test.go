package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameLike(t *testing.T) {
	tests := []struct {
		filter  string
		pattern string
		applied bool
	}{
		{"", "", false},
		{"*", "", false},
		{"  ", "", false},
		{"Pizza", "%pizza%", true},
		{"LotaPizza", "%lotapizza%", true},
	}
	for _, tt := range tests {
		pattern, ok := nameLike(tt.filter)
		assert.Equal(t, tt.applied, ok, "filter %q", tt.filter)
		assert.Equal(t, tt.pattern, pattern, "filter %q", tt.filter)
	}
}

func TestHasMore(t *testing.T) {
	// 4 entries at page size 3: page 0 has more, page 1 is the last.
	assert.True(t, hasMore(0, 3, 4))
	assert.False(t, hasMore(1, 3, 4))

	assert.False(t, hasMore(0, 10, 10))
	assert.True(t, hasMore(0, 10, 11))
	assert.False(t, hasMore(0, 10, 0))
}

func TestClampPage(t *testing.T) {
	page, size := clampPage(-1, 0, 10)
	assert.Equal(t, 0, page)
	assert.Equal(t, 10, size)

	page, size = clampPage(2, 5, 10)
	assert.Equal(t, 2, page)
	assert.Equal(t, 5, size)
}
