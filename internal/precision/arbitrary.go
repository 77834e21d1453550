package precision

import "math/big"

// mpNumber is a software arbitrary-precision complex number: a pair of
// math/big.Float values sharing one significand width. No arbitrary-
// precision complex library was available among the retrieved examples,
// so this realization is built directly on the standard library, mirroring
// the shape of the C original's mpc_t/mpfr_t pair without depending on an
// external multiple-precision library.
type mpNumber struct {
	re, im *big.Float
}

func (n mpNumber) Add(o Number) Number {
	other := o.(mpNumber)
	prec := n.re.Prec()
	return mpNumber{
		re: new(big.Float).SetPrec(prec).Add(n.re, other.re),
		im: new(big.Float).SetPrec(prec).Add(n.im, other.im),
	}
}

func (n mpNumber) Mul(o Number) Number {
	other := o.(mpNumber)
	prec := n.re.Prec()
	// (a+bi)(c+di) = (ac-bd) + (ad+bc)i
	ac := new(big.Float).SetPrec(prec).Mul(n.re, other.re)
	bd := new(big.Float).SetPrec(prec).Mul(n.im, other.im)
	ad := new(big.Float).SetPrec(prec).Mul(n.re, other.im)
	bc := new(big.Float).SetPrec(prec).Mul(n.im, other.re)
	return mpNumber{
		re: new(big.Float).SetPrec(prec).Sub(ac, bd),
		im: new(big.Float).SetPrec(prec).Add(ad, bc),
	}
}

func (n mpNumber) EscapedAt(thresholdSq float64) bool {
	prec := n.re.Prec()
	re2 := new(big.Float).SetPrec(prec).Mul(n.re, n.re)
	im2 := new(big.Float).SetPrec(prec).Mul(n.im, n.im)
	sum := new(big.Float).SetPrec(prec).Add(re2, im2)
	threshold := new(big.Float).SetPrec(prec).SetFloat64(thresholdSq)
	return sum.Cmp(threshold) > 0
}

type mpRealization struct {
	prec uint
}

func (r mpRealization) Name() string { return "arbitrary" }

func (r mpRealization) FromComplex128(z complex128) Number {
	return mpNumber{
		re: new(big.Float).SetPrec(r.prec).SetFloat64(real(z)),
		im: new(big.Float).SetPrec(r.prec).SetFloat64(imag(z)),
	}
}
