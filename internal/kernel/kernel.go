// Package kernel is the Iteration Kernel (C2): the per-pixel escape-time
// computation, generic over the chosen precision.Realization and over the
// fractal family.
package kernel

import (
	"fractalrender/internal/plotctx"
	"fractalrender/internal/precision"
)

// EscapeStatus reports whether a pixel's orbit left the escape radius
// before the iteration cap was reached.
type EscapeStatus int

const (
	Escaped EscapeStatus = iota
	Unescaped
)

// Result is one pixel's escape-time outcome: the iteration count (the
// zero-indexed iteration whose post-update magnitude exceeded the escape
// radius, or the iteration cap if it never did) and its status.
type Result struct {
	Count  uint64
	Status EscapeStatus
}

var thresholdSq = plotctx.EscapeRadius * plotctx.EscapeRadius

// Iterate runs the escape-time sequence for one pixel.
//
// Mandelbrot: z0 = 0, c = pixel.
// Julia:      z0 = pixel, c = the plot context's fixed constant.
//
// Iteration stops when the post-update squared magnitude exceeds R^2 or
// the iteration cap n is reached.
func Iterate(r precision.Realization, fam plotctx.Family, pixel, juliaC complex128, n uint64) Result {
	var z, c precision.Number

	switch fam {
	case plotctx.Julia:
		z = r.FromComplex128(pixel)
		c = r.FromComplex128(juliaC)
	default: // plotctx.Mandelbrot
		z = r.FromComplex128(0)
		c = r.FromComplex128(pixel)
	}

	for i := uint64(0); i < n; i++ {
		z = z.Mul(z).Add(c)
		if z.EscapedAt(thresholdSq) {
			return Result{Count: i, Status: Escaped}
		}
	}
	return Result{Count: n, Status: Unescaped}
}
