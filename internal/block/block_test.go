package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fractalrender/internal/plotctx"
)

func TestNewFailsWhenBudgetTooSmall(t *testing.T) {
	_, err := New(1000, 1000, plotctx.Depth24, 10)
	require.Error(t, err)
}

func TestBandHeightRespectsBudget(t *testing.T) {
	m, err := New(640, 480, plotctx.Depth24, 1<<20)
	require.NoError(t, err)
	assert.LessOrEqual(t, m.BandHeight, 480)
	assert.LessOrEqual(t, m.Width*m.BandHeight*3, 1<<20)
}

func TestBandsSumToHeight(t *testing.T) {
	m, err := New(640, 480, plotctx.Depth24, 640*3*100) // ~100 rows per band
	require.NoError(t, err)
	sum := 0
	for _, rows := range m.Bands() {
		sum += rows
	}
	assert.Equal(t, 480, sum)
}

func TestOneRowPerBandWhenBudgetIsExactlyOneRow(t *testing.T) {
	m, err := New(640, 480, plotctx.Depth24, 640*3)
	require.NoError(t, err)
	assert.Equal(t, 1, m.BandHeight)
	assert.Equal(t, 480, m.BandCount)
	assert.Equal(t, 0, m.Remainder)
}

func TestArrayBandIsZeroedAndSized(t *testing.T) {
	m, err := New(10, 10, plotctx.Depth1, 1<<20)
	require.NoError(t, err)
	a := m.NewArray()
	band := a.Band(m.BandHeight)
	for _, b := range band {
		assert.Equal(t, byte(0), b)
	}
	assert.Equal(t, m.rowBytes(m.BandHeight), len(band))
}

func TestRowBytesForMatchesManager(t *testing.T) {
	m, err := New(100, 100, plotctx.Depth1, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, 13, RowBytesFor(100, plotctx.Depth1))
	assert.Equal(t, m.RowBytes(), RowBytesFor(100, plotctx.Depth1))
}

func TestRowSlicesWithinBandDoNotOverlap(t *testing.T) {
	m, err := New(4, 4, plotctx.Depth8, 1<<20)
	require.NoError(t, err)
	a := m.NewArray()
	band := a.Band(4)
	row0 := a.Row(band, 0)
	row1 := a.Row(band, 1)
	row0[0] = 42
	assert.NotEqual(t, row0[0], row1[0])
}
