// Package colour is the Colour Mapper (C3): it turns an iteration-count
// result into pixel bytes for one of ten schemes at one of four bit
// depths. HSV-to-RGB conversion is done by go-colorful, the same library
// albertnadal-MandelbrotGoLang uses for its Mandelbrot colouring.
package colour

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"fractalrender/internal/kernel"
	"fractalrender/internal/plotctx"
)

// asciiCharset is the ten-character ramp used by the ASCII scheme, in
// order of increasing "escaped-ness".
const asciiCharset = " .:-=+*#%@"

// Mapper maps kernel.Results to bytes for one colour scheme. Construct one
// per render with New; Mappers are stateless beyond the render-scoped
// smoothing factor and are safe for concurrent use by the thread pool.
type Mapper struct {
	scheme       plotctx.SchemeKind
	depth        plotctx.BitDepth
	smoothFactor float64
}

// New builds a Mapper for scheme, using the render's precomputed smoothing
// factor (plotctx.PlotContext.SmoothFactor).
func New(scheme plotctx.SchemeKind, smoothFactor float64) *Mapper {
	depth := plotctx.Depth24
	switch scheme {
	case plotctx.SchemeBlackWhite, plotctx.SchemeWhiteBlack:
		depth = plotctx.Depth1
	case plotctx.SchemeGreyscale:
		depth = plotctx.Depth8
	case plotctx.SchemeASCII:
		depth = plotctx.DepthASCII
	}
	return &Mapper{scheme: scheme, depth: depth, smoothFactor: smoothFactor}
}

// Depth reports the bit depth this scheme writes.
func (m *Mapper) Depth() plotctx.BitDepth { return m.depth }

// n returns the value each per-scheme rule operates on: the smoothed,
// continuous iteration count for escaped pixels (removing colour
// banding), or the raw (integral) count for unescaped ones. Using the raw
// count for unescaped pixels - rather than an uninitialised value, as the
// original C mapColour did - keeps the mapping deterministic (every
// unescaped pixel in a render shares the same count, the iteration cap).
func (m *Mapper) n(res kernel.Result) float64 {
	if res.Status == kernel.Escaped {
		return float64(res.Count) + 1 - m.smoothFactor
	}
	return float64(res.Count)
}

// WritePixel writes pixel x's bytes into row, which must already hold
// enough bytes for the mapper's bit depth (row width * bytes-per-pixel,
// rounded up to a byte for Depth1). For Depth1, row must be zero-filled at
// each 8-pixel boundary before the first pixel of that byte is written.
func (m *Mapper) WritePixel(row []byte, x int, res kernel.Result) {
	n := m.n(res)
	switch m.depth {
	case plotctx.Depth24:
		rgb := m.rgb24(n, res.Status)
		off := x * 3
		row[off] = rgb.R
		row[off+1] = rgb.G
		row[off+2] = rgb.B
	case plotctx.Depth8:
		row[x] = m.greyscale(n, res.Status)
	case plotctx.Depth1:
		m.writeBit(row, x, n, res.Status)
	case plotctx.DepthASCII:
		row[x] = m.ascii(n, res.Status)
	}
}

// RGB is a 24-bit pixel.
type RGB struct {
	R, G, B uint8
}

func hsv(h, s, v float64) RGB {
	if h < 0 {
		h = 0
	}
	if s < 0 {
		s = 0
	}
	if v < 0 {
		v = 0
	}
	r, g, b := colorful.Hsv(h, s, v).RGB255()
	return RGB{R: r, G: g, B: b}
}

func (m *Mapper) rgb24(n float64, status kernel.EscapeStatus) RGB {
	switch m.scheme {
	case plotctx.SchemeAllVibrant:
		if status == kernel.Escaped {
			return hsv(math.Mod(20*n, 360), 1, 1)
		}
		return RGB{}
	case plotctx.SchemeRedWhite:
		if status == kernel.Escaped {
			s := 0.7 - math.Abs(math.Mod(n/20.0, 1.4)-0.7)
			if s > 0.7 {
				s = 0.7
			}
			return hsv(0, s, 1)
		}
		return hsv(0, 1, 1)
	case plotctx.SchemeFire:
		if status == kernel.Escaped {
			h := 50 - math.Abs(math.Mod(n*2, 100)-50)
			return hsv(h, 0.85, 0.85)
		}
		return RGB{}
	case plotctx.SchemeRedHot:
		if status == kernel.Escaped {
			m := 90 - math.Abs(math.Mod(n*2, 180)-90)
			if m <= 30 {
				return hsv(0, 1, m/30)
			}
			return hsv(m-30, 1, 1)
		}
		return RGB{}
	case plotctx.SchemeMatrix:
		if status == kernel.Escaped {
			v := (90 - math.Abs(math.Mod(n*2, 180)-90)) / 90
			return hsv(120, 1, v)
		}
		return RGB{}
	default: // plotctx.SchemeAll
		if status == kernel.Escaped {
			return hsv(math.Mod(20*n, 360), 0.6, 0.8)
		}
		return hsv(0, 0.6, 0)
	}
}

func (m *Mapper) greyscale(n float64, status kernel.EscapeStatus) byte {
	if status != kernel.Unescaped {
		return 0
	}
	v := 255 - math.Abs(math.Mod(n*8.5, 510)-255)
	if v < 30 {
		v = 30
	}
	return byte(v)
}

func (m *Mapper) ascii(n float64, status kernel.EscapeStatus) byte {
	if status == kernel.Unescaped {
		return asciiCharset[len(asciiCharset)-1]
	}
	i := int(math.Mod(0.3*n, float64(len(asciiCharset))))
	return asciiCharset[i]
}

// writeBit mutates the bit at position (7 - x mod 8) of row's byte for
// pixel x (PBM packs pixels MSB-first), per the BLACK_WHITE/WHITE_BLACK
// schemes.
func (m *Mapper) writeBit(row []byte, x int, n float64, status kernel.EscapeStatus) {
	byteIdx := x / 8
	pos := uint(7 - x%8)
	mask := byte(1) << pos

	var setBit bool
	switch m.scheme {
	case plotctx.SchemeWhiteBlack:
		setBit = status == kernel.Escaped
	default: // plotctx.SchemeBlackWhite
		setBit = status == kernel.Unescaped
	}

	if setBit {
		row[byteIdx] |= mask
	} else {
		row[byteIdx] &^= mask
	}
}
