package span

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowIndexing(t *testing.T) {
	row := RowFromOneIndexed(10)
	assert.Equal(t, uint32(9), row.ZeroIndexed())
	assert.Equal(t, uint32(10), row.OneIndexed())
	assert.Equal(t, Row(0), RowFromOneIndexed(0))
}

func TestNewRangeNormalizesReversedPositions(t *testing.T) {
	start := Position{Row: 4, Col: 2}
	end := Position{Row: 1, Col: 7}

	r := NewRange(start, end)
	require.True(t, r.Valid())
	assert.Equal(t, end, r.Start())
	assert.Equal(t, start, r.End())
}

func TestRangeEmpty(t *testing.T) {
	pos := Position{Row: 3, Col: 5}
	assert.True(t, Point("a.rs", pos).Range.Empty())
	assert.False(t, New("a.rs", pos, Position{Row: 3, Col: 6}).Range.Empty())
}

func TestProtocolRoundTripClampsNegatives(t *testing.T) {
	pos := FromProtocol(-1, -5)
	assert.Equal(t, Position{}, pos)

	pos = FromProtocol(12, 40)
	line, character := pos.Protocol()
	assert.Equal(t, 12, line)
	assert.Equal(t, 40, character)
}

func TestPositionCompare(t *testing.T) {
	a := Position{Row: 1, Col: 9}
	b := Position{Row: 2, Col: 0}
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
}

func TestByteOffsetCountsUTF16Units(t *testing.T) {
	line := "a\U0001F600b"
	assert.Equal(t, 0, ByteOffset(line, 0))
	assert.Equal(t, 1, ByteOffset(line, 1))
	assert.Equal(t, 1, ByteOffset(line, 2))
	assert.Equal(t, 5, ByteOffset(line, 3))
	assert.Equal(t, 6, ByteOffset(line, 40))
}

func TestColumnAt(t *testing.T) {
	line := "é*"
	assert.Equal(t, Column(1), ColumnAt(line, 2))
	assert.Equal(t, Column(2), ColumnAt(line, 99))
}

func TestLinesAndEndOf(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Lines("a\r\nb\n"))
	assert.Nil(t, Lines(""))
	assert.Equal(t, Position{Row: 2}, EndOf("a\nb\n"))
	assert.Equal(t, Position{Row: 1, Col: 3}, EndOf("a\nbcd"))
	assert.Equal(t, Position{}, EndOf(""))
}
