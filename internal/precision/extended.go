package precision

import "math"

// dd is a double-double float: a pair (hi, lo) representing hi+lo, giving
// roughly twice the significant bits of a single float64. Go exposes no
// native extended/long-double hardware type, so this stands in for "the
// widest hardware floating type" the original C implementation gets from
// `long double`.
type dd struct {
	hi, lo float64
}

func ddFromFloat64(f float64) dd { return dd{hi: f} }

func (a dd) float64() float64 { return a.hi + a.lo }

// twoSum computes hi+lo == a+b exactly, using Knuth's two-sum algorithm.
func twoSum(a, b float64) (hi, lo float64) {
	hi = a + b
	v := hi - a
	lo = (a - (hi - v)) + (b - v)
	return hi, lo
}

// twoProd computes hi+lo == a*b exactly, via fused multiply-add.
func twoProd(a, b float64) (hi, lo float64) {
	hi = a * b
	lo = math.FMA(a, b, -hi)
	return hi, lo
}

func (a dd) add(b dd) dd {
	hi, lo := twoSum(a.hi, b.hi)
	lo += a.lo + b.lo
	hi2, lo2 := twoSum(hi, lo)
	return dd{hi2, lo2}
}

func (a dd) neg() dd { return dd{-a.hi, -a.lo} }

func (a dd) sub(b dd) dd { return a.add(b.neg()) }

func (a dd) mul(b dd) dd {
	hi, lo := twoProd(a.hi, b.hi)
	lo += a.hi*b.lo + a.lo*b.hi
	hi2, lo2 := twoSum(hi, lo)
	return dd{hi2, lo2}
}

// extendedNumber is a complex number with double-double real and
// imaginary parts.
type extendedNumber struct {
	re, im dd
}

func (n extendedNumber) Add(o Number) Number {
	other := o.(extendedNumber)
	return extendedNumber{re: n.re.add(other.re), im: n.im.add(other.im)}
}

func (n extendedNumber) Mul(o Number) Number {
	other := o.(extendedNumber)
	// (a+bi)(c+di) = (ac-bd) + (ad+bc)i
	ac := n.re.mul(other.re)
	bd := n.im.mul(other.im)
	ad := n.re.mul(other.im)
	bc := n.im.mul(other.re)
	return extendedNumber{re: ac.sub(bd), im: ad.add(bc)}
}

func (n extendedNumber) EscapedAt(thresholdSq float64) bool {
	re, im := n.re.float64(), n.im.float64()
	return re*re+im*im > thresholdSq
}

type extendedRealization struct{}

func (extendedRealization) Name() string { return "extended" }

func (extendedRealization) FromComplex128(z complex128) Number {
	return extendedNumber{re: ddFromFloat64(real(z)), im: ddFromFloat64(imag(z))}
}
