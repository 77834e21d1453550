package colour

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fractalrender/internal/kernel"
	"fractalrender/internal/plotctx"
)

func TestDepthPerScheme(t *testing.T) {
	cases := map[plotctx.SchemeKind]plotctx.BitDepth{
		plotctx.SchemeAll:         plotctx.Depth24,
		plotctx.SchemeAllVibrant:  plotctx.Depth24,
		plotctx.SchemeBlackWhite:  plotctx.Depth1,
		plotctx.SchemeWhiteBlack:  plotctx.Depth1,
		plotctx.SchemeGreyscale:   plotctx.Depth8,
		plotctx.SchemeRedWhite:    plotctx.Depth24,
		plotctx.SchemeFire:        plotctx.Depth24,
		plotctx.SchemeRedHot:      plotctx.Depth24,
		plotctx.SchemeMatrix:      plotctx.Depth24,
		plotctx.SchemeASCII:       plotctx.DepthASCII,
	}
	for scheme, want := range cases {
		m := New(scheme, 0.3)
		assert.Equal(t, want, m.Depth(), "scheme %v", scheme)
	}
}

func TestDeterministic(t *testing.T) {
	m := New(plotctx.SchemeFire, 0.309)
	res := kernel.Result{Count: 42, Status: kernel.Escaped}
	row1 := make([]byte, 3)
	row2 := make([]byte, 3)
	m.WritePixel(row1, 0, res)
	m.WritePixel(row2, 0, res)
	assert.Equal(t, row1, row2)
}

func TestUnescapedIsBlackForHSVSchemes(t *testing.T) {
	res := kernel.Result{Count: 100, Status: kernel.Unescaped}
	for _, scheme := range []plotctx.SchemeKind{plotctx.SchemeAllVibrant, plotctx.SchemeFire, plotctx.SchemeRedHot, plotctx.SchemeMatrix} {
		m := New(scheme, 0.309)
		row := make([]byte, 3)
		m.WritePixel(row, 0, res)
		assert.Equal(t, []byte{0, 0, 0}, row, "scheme %v", scheme)
	}
}

func TestBlackWhiteBitsAreComplementary(t *testing.T) {
	res := kernel.Result{Count: 3, Status: kernel.Unescaped}

	bw := New(plotctx.SchemeBlackWhite, 0.309)
	wb := New(plotctx.SchemeWhiteBlack, 0.309)

	rowBW := make([]byte, 1)
	rowWB := make([]byte, 1)
	bw.WritePixel(rowBW, 3, res)
	wb.WritePixel(rowWB, 3, res)

	assert.NotEqual(t, rowBW[0], rowWB[0])
}

func TestGreyscaleFloor(t *testing.T) {
	m := New(plotctx.SchemeGreyscale, 0.309)
	row := make([]byte, 1)
	// n = 60: 8.5*n mod 510 wraps to 0, giving 0 before flooring to 30.
	m.WritePixel(row, 0, kernel.Result{Count: 60, Status: kernel.Unescaped})
	assert.Equal(t, byte(30), row[0])
}

func TestGreyscaleZeroWhenEscaped(t *testing.T) {
	m := New(plotctx.SchemeGreyscale, 0.309)
	row := make([]byte, 1)
	m.WritePixel(row, 0, kernel.Result{Count: 30, Status: kernel.Escaped})
	assert.Equal(t, byte(0), row[0])
}

func TestASCIICharsetMembership(t *testing.T) {
	m := New(plotctx.SchemeASCII, 0.309)
	row := make([]byte, 1)
	for _, n := range []uint64{0, 1, 7, 50, 255} {
		m.WritePixel(row, 0, kernel.Result{Count: n, Status: kernel.Escaped})
		assert.Contains(t, asciiCharset, string(row[0]))
	}
	m.WritePixel(row, 0, kernel.Result{Count: 999, Status: kernel.Unescaped})
	assert.Equal(t, byte('@'), row[0])
}
