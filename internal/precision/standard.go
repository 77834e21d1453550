package precision

// standardNumber is the hardware-double-precision realization: a plain
// complex128 wearing the Number interface.
type standardNumber complex128

func (n standardNumber) Add(o Number) Number {
	return n + o.(standardNumber)
}

func (n standardNumber) Mul(o Number) Number {
	return n * o.(standardNumber)
}

func (n standardNumber) EscapedAt(thresholdSq float64) bool {
	re, im := real(complex128(n)), imag(complex128(n))
	return re*re+im*im > thresholdSq
}

type standardRealization struct{}

func (standardRealization) Name() string { return "standard" }

func (standardRealization) FromComplex128(z complex128) Number {
	return standardNumber(z)
}
