package oscconnect

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// DecimalValue is a fixed-point number equal to Unscaled * 10^-Scale. Scale
// may be negative for literals such as 1e3.
type DecimalValue struct {
	Unscaled *big.Int
	Scale    int
}

var errDecimalSyntax = errors.New("invalid decimal literal")

var bigTen = big.NewInt(10)

// ParseDecimal parses a JSON number literal without losing digits. The scale
// is the number of fraction digits minus the exponent, so "10.1234" has scale
// 4 and "1.5e3" has scale -2.
func ParseDecimal(lit string) (DecimalValue, error) {
	s := lit
	exp := 0
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		e, err := strconv.Atoi(strings.TrimPrefix(s[i+1:], "+"))
		if err != nil {
			return DecimalValue{}, fmt.Errorf("%w: %q", errDecimalSyntax, lit)
		}
		exp = e
		s = s[:i]
	}
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	digits := intPart + frac
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return DecimalValue{}, fmt.Errorf("%w: %q", errDecimalSyntax, lit)
	}
	u, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return DecimalValue{}, fmt.Errorf("%w: %q", errDecimalSyntax, lit)
	}
	if neg {
		u.Neg(u)
	}
	return DecimalValue{Unscaled: u, Scale: len(frac) - exp}, nil
}

// Precision is the number of digits in the unscaled value; zero has precision 1.
func (d DecimalValue) Precision() int {
	if d.Unscaled == nil || d.Unscaled.Sign() == 0 {
		return 1
	}
	return len(new(big.Int).Abs(d.Unscaled).String())
}

// Rescale returns d with exactly scale fraction digits. Only widening is
// exact; narrowing fails rather than rounding.
func (d DecimalValue) Rescale(scale int) (DecimalValue, error) {
	u := d.unscaled()
	switch {
	case scale == d.Scale:
		return DecimalValue{Unscaled: new(big.Int).Set(u), Scale: scale}, nil
	case scale > d.Scale:
		f := new(big.Int).Exp(bigTen, big.NewInt(int64(scale-d.Scale)), nil)
		return DecimalValue{Unscaled: new(big.Int).Mul(u, f), Scale: scale}, nil
	}
	f := new(big.Int).Exp(bigTen, big.NewInt(int64(d.Scale-scale)), nil)
	q, r := new(big.Int).QuoRem(u, f, new(big.Int))
	if r.Sign() != 0 {
		return DecimalValue{}, fmt.Errorf("decimal %s cannot be rescaled to %d without rounding", d, scale)
	}
	return DecimalValue{Unscaled: q, Scale: scale}, nil
}

// Bytes returns the minimal big-endian two's complement encoding of the
// unscaled value. Zero encodes as a single 0x00 byte.
func (d DecimalValue) Bytes() []byte {
	u := d.unscaled()
	var bitLen int
	if u.Sign() < 0 {
		bitLen = new(big.Int).Not(u).BitLen()
	} else {
		bitLen = u.BitLen()
	}
	n := bitLen/8 + 1
	v := new(big.Int).Set(u)
	if v.Sign() < 0 {
		v.Add(v, new(big.Int).Lsh(big.NewInt(1), uint(8*n)))
	}
	return v.FillBytes(make([]byte, n))
}

// DecimalFromBytes decodes a two's complement unscaled value.
func DecimalFromBytes(b []byte, scale int) DecimalValue {
	u := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		u.Sub(u, new(big.Int).Lsh(big.NewInt(1), uint(8*len(b))))
	}
	return DecimalValue{Unscaled: u, Scale: scale}
}

// String renders the value with exactly Scale fraction digits.
func (d DecimalValue) String() string {
	u := d.unscaled()
	digits := new(big.Int).Abs(u).String()
	sign := ""
	if u.Sign() < 0 {
		sign = "-"
	}
	if d.Scale <= 0 {
		if u.Sign() == 0 {
			return "0"
		}
		return sign + digits + strings.Repeat("0", -d.Scale)
	}
	if len(digits) <= d.Scale {
		digits = strings.Repeat("0", d.Scale-len(digits)+1) + digits
	}
	cut := len(digits) - d.Scale
	return sign + digits[:cut] + "." + digits[cut:]
}

// Rat returns d as an exact rational.
func (d DecimalValue) Rat() *big.Rat {
	r := new(big.Rat).SetInt(d.unscaled())
	if d.Scale > 0 {
		return r.Quo(r, new(big.Rat).SetInt(new(big.Int).Exp(bigTen, big.NewInt(int64(d.Scale)), nil)))
	}
	if d.Scale < 0 {
		return r.Mul(r, new(big.Rat).SetInt(new(big.Int).Exp(bigTen, big.NewInt(int64(-d.Scale)), nil)))
	}
	return r
}

func (d DecimalValue) unscaled() *big.Int {
	if d.Unscaled == nil {
		return new(big.Int)
	}
	return d.Unscaled
}
