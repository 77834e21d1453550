// Package precision is the Numeric Precision Layer (C1): a single
// abstract capability — complex add, multiply, escape comparison, and
// construction from a complex128 literal — realized three ways (standard
// hardware double, an emulated extended-width double, and arbitrary
// software precision). A render selects one Realization at start and
// never mixes them; every other component is polymorphic over Number and
// unaware of which concrete realization backs it.
package precision

import (
	"fractalrender/internal/errs"
	"fractalrender/internal/plotctx"
)

// Number is one complex value under some Realization. It is opaque:
// callers add, multiply, and test for escape without ever inspecting the
// concrete representation.
type Number interface {
	Add(Number) Number
	Mul(Number) Number
	// EscapedAt reports whether the number's squared magnitude exceeds
	// thresholdSq. This folds C1's "magnitude-squared" and
	// "compare-to-scalar" capabilities into the one operation the
	// iteration kernel actually needs.
	EscapedAt(thresholdSq float64) bool
}

// Realization constructs Numbers of one concrete precision.
type Realization interface {
	Name() string
	FromComplex128(z complex128) Number
}

// New selects a Realization for the given precision mode. mpBits is the
// significand width used only when mode is plotctx.Arbitrary.
func New(mode plotctx.Precision, mpBits uint) (Realization, error) {
	switch mode {
	case plotctx.Standard:
		return standardRealization{}, nil
	case plotctx.Extended:
		return extendedRealization{}, nil
	case plotctx.Arbitrary:
		if mpBits == 0 {
			mpBits = plotctx.MPBitsDefault
		}
		return mpRealization{prec: mpBits}, nil
	default:
		return nil, errs.New(errs.PrecisionUnsupported, "unknown precision mode")
	}
}
