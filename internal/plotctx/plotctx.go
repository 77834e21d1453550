// Package plotctx holds the Plot Context: the immutable-during-render
// description of what is to be drawn, the numeric bounds every field is
// checked against, and the pixel-to-complex-plane coordinate map.
package plotctx

import (
	"io"
	"math"

	"fractalrender/internal/errs"
)

// Family selects the fractal to iterate.
type Family int

const (
	Mandelbrot Family = iota
	Julia
)

// Precision selects the numeric realization C1 uses for the render.
type Precision int

const (
	Standard Precision = iota
	Extended
	Arbitrary
)

func (p Precision) String() string {
	switch p {
	case Standard:
		return "standard"
	case Extended:
		return "extended"
	case Arbitrary:
		return "arbitrary"
	default:
		return "unknown"
	}
}

// SchemeKind selects one of the ten colour mapping rules.
type SchemeKind int

const (
	SchemeAll SchemeKind = iota
	SchemeAllVibrant
	SchemeBlackWhite
	SchemeWhiteBlack
	SchemeGreyscale
	SchemeRedWhite
	SchemeFire
	SchemeRedHot
	SchemeMatrix
	SchemeASCII
)

// BitDepth is the per-pixel byte layout a scheme writes.
type BitDepth int

const (
	Depth1     BitDepth = 1
	Depth8     BitDepth = 8
	Depth24    BitDepth = 24
	DepthASCII BitDepth = -1
)

// BytesPerPixel returns the byte count C5/C7 need to reserve per pixel.
// ASCII is one byte (one character) per pixel even though it is not a
// "bit depth" in the PNM sense.
func (d BitDepth) BytesPerPixel() float64 {
	if d == DepthASCII {
		return 1
	}
	return float64(d) / 8.0
}

// Numeric bounds, lifted from the original source's arg_ranges.c.
const (
	ComplexBoundMin  = -10.0
	ComplexBoundMax  = 10.0
	JuliaCBoundMin   = -2.0
	JuliaCBoundMax   = 2.0
	MagnificationMin = -256.0

	WorkerCountMin = 1
	WorkerCountMax = 32

	PortMin = 1024
	PortMax = 65534

	MPBitsMin     = 1
	MPBitsMax     = 16384
	MPBitsDefault = 128

	// EscapeRadius is larger than the mathematical escape bound of 2 so
	// the smoothing function produces visually continuous colour bands.
	EscapeRadius = 256.0
)

var MagnificationMax = math.MaxFloat64

// PlotContext is the immutable-during-render description of a single
// render: fractal family, viewport, iteration cap, dimensions, colour
// scheme, destination, and numeric precision.
type PlotContext struct {
	Family Family
	C      complex128 // Julia constant; unused for Mandelbrot

	Min, Max complex128 // viewport corners: Min is bottom-left, Max is top-right

	IterationCap uint64
	Width        int
	Height       int

	Scheme SchemeKind
	Depth  BitDepth

	Precision Precision
	MPBits    uint // significand bits, used only when Precision == Arbitrary

	Dest io.Writer

	// SmoothFactor is computed once per render: log(log(R))/log(R).
	SmoothFactor float64
}

// Finalize validates p and computes its derived fields (SmoothFactor,
// Depth from Scheme). Call once before rendering.
func (p *PlotContext) Finalize() error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.Depth = depthForScheme(p.Scheme)
	p.SmoothFactor = math.Log(math.Log(EscapeRadius)) / math.Log(EscapeRadius)
	if p.Precision == Arbitrary && p.MPBits == 0 {
		p.MPBits = MPBitsDefault
	}
	return nil
}

func depthForScheme(s SchemeKind) BitDepth {
	switch s {
	case SchemeBlackWhite, SchemeWhiteBlack:
		return Depth1
	case SchemeGreyscale:
		return Depth8
	case SchemeASCII:
		return DepthASCII
	default:
		return Depth24
	}
}

// Validate checks every field against the bounds in spec.md §3, returning
// a CONFIG_OUT_OF_RANGE error naming the first offending field.
func (p *PlotContext) Validate() error {
	if p.Width < 1 {
		return errs.OutOfRange("width", "must be >= 1")
	}
	if p.Height < 1 {
		return errs.OutOfRange("height", "must be >= 1")
	}
	if real(p.Min) < ComplexBoundMin || real(p.Min) > ComplexBoundMax ||
		imag(p.Min) < ComplexBoundMin || imag(p.Min) > ComplexBoundMax {
		return errs.OutOfRange("min", "viewport corner out of [-10, 10]")
	}
	if real(p.Max) < ComplexBoundMin || real(p.Max) > ComplexBoundMax ||
		imag(p.Max) < ComplexBoundMin || imag(p.Max) > ComplexBoundMax {
		return errs.OutOfRange("max", "viewport corner out of [-10, 10]")
	}
	if real(p.Max) < real(p.Min) || imag(p.Max) < imag(p.Min) {
		return errs.OutOfRange("max", "must not be below/left of min")
	}
	if p.Family == Julia {
		if real(p.C) < JuliaCBoundMin || real(p.C) > JuliaCBoundMax ||
			imag(p.C) < JuliaCBoundMin || imag(p.C) > JuliaCBoundMax {
			return errs.OutOfRange("c", "Julia constant out of [-2, 2]")
		}
	}
	if p.Precision == Arbitrary && p.MPBits != 0 {
		if p.MPBits < MPBitsMin || p.MPBits > MPBitsMax {
			return errs.OutOfRange("mpbits", "significand width out of [1, 16384]")
		}
	}
	return nil
}

// CoordinateMap emits, for a pixel (x, y), the complex number the viewport
// maps it to. The minimum corner lies at (0, height-1), the maximum at
// (width-1, 0): real part increases left-to-right, imaginary part
// increases bottom-to-top. RowImag should be called once per row (it is
// the amortised, row-constant part of the mapping) and PixelReal once per
// pixel within that row.
type CoordinateMap struct {
	ctx              *PlotContext
	realStep, imStep float64
}

// NewCoordinateMap builds a coordinate map for ctx. ctx must already be
// finalized.
func NewCoordinateMap(ctx *PlotContext) *CoordinateMap {
	cm := &CoordinateMap{ctx: ctx}
	if ctx.Width > 1 {
		cm.realStep = (real(ctx.Max) - real(ctx.Min)) / float64(ctx.Width-1)
	}
	if ctx.Height > 1 {
		cm.imStep = (imag(ctx.Max) - imag(ctx.Min)) / float64(ctx.Height-1)
	}
	return cm
}

// RowImag returns the imaginary part shared by every pixel in row y.
// Row 0 is the top of the image, so it maps to the viewport's maximum
// imaginary part.
func (cm *CoordinateMap) RowImag(y int) float64 {
	if cm.ctx.Height == 1 {
		return imag(cm.ctx.Min)
	}
	return imag(cm.ctx.Max) - float64(y)*cm.imStep
}

// PixelReal returns the real part of pixel column x.
func (cm *CoordinateMap) PixelReal(x int) float64 {
	if cm.ctx.Width == 1 {
		return real(cm.ctx.Min)
	}
	return real(cm.ctx.Min) + float64(x)*cm.realStep
}

// At returns the complex coordinate of pixel (x, y) directly.
func (cm *CoordinateMap) At(x, y int) complex128 {
	return complex(cm.PixelReal(x), cm.RowImag(y))
}
