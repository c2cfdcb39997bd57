package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCells(t *testing.T) {
	cells := StripCells([]Span{{Start: 0, End: 25}, {Start: 75, End: 100}}, 100, 8)
	assert.Equal(t, []bool{true, true, false, false, false, false, true, true}, cells)

	cells = StripCells([]Span{{Start: 50, End: 51}}, 100, 4)
	assert.Equal(t, []bool{false, false, true, false}, cells)

	assert.Len(t, StripCells(nil, 0, 5), 5)
	assert.Empty(t, StripCells(nil, 100, 0))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdefgh", 5))
	assert.Equal(t, "ab", Truncate("abcdefgh", 2))
	assert.Empty(t, Truncate("abc", 0))
}
