package value

import "math/big"

// BigInt is the arbitrary-precision signed integer variant (§3 "BigInt:
// Arbitrary-precision signed integer, heap-allocated"). Wrapping
// math/big.Int keeps the arithmetic itself off this package's plate —
// the teacher repo has no bigint analog (DWScript is int64/float64 only),
// so this is grounded directly on the specification's numeric tower
// description rather than a teacher file; math/big is the standard
// library's arbitrary-precision integer type and there is no third-party
// bigint package anywhere in the retrieved pack worth displacing it for.
type BigInt struct {
	V *big.Int
}

func (*BigInt) Kind() Kind              { return KindBigInt }
func (b *BigInt) DisplayString() string { return b.V.String() }
func (b *BigInt) Sign() int             { return b.V.Sign() }

// NewBigInt wraps v.
func NewBigInt(v *big.Int) *BigInt { return &BigInt{V: v} }

// ParseBigInt parses decimal digits (optionally sign-prefixed) such as the
// Chunk.Constant.BigInt field carries, per §3 "BigInt".
func ParseBigInt(digits string) (*BigInt, bool) {
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, false
	}
	return &BigInt{V: n}, true
}

// BigIntFromInt64 wraps a machine integer.
func BigIntFromInt64(n int64) *BigInt {
	return &BigInt{V: big.NewInt(n)}
}

func bigIntBinOp(a, b *BigInt, op func(z, x, y *big.Int) *big.Int) *BigInt {
	z := new(big.Int)
	op(z, a.V, b.V)
	return &BigInt{V: z}
}

func BigIntAdd(a, b *BigInt) *BigInt { return bigIntBinOp(a, b, func(z, x, y *big.Int) *big.Int { return z.Add(x, y) }) }
func BigIntSub(a, b *BigInt) *BigInt { return bigIntBinOp(a, b, func(z, x, y *big.Int) *big.Int { return z.Sub(x, y) }) }
func BigIntMul(a, b *BigInt) *BigInt { return bigIntBinOp(a, b, func(z, x, y *big.Int) *big.Int { return z.Mul(x, y) }) }
func BigIntDiv(a, b *BigInt) *BigInt { return bigIntBinOp(a, b, func(z, x, y *big.Int) *big.Int { return z.Quo(x, y) }) }
func BigIntMod(a, b *BigInt) *BigInt { return bigIntBinOp(a, b, func(z, x, y *big.Int) *big.Int { return z.Rem(x, y) }) }
func BigIntNeg(a *BigInt) *BigInt    { return &BigInt{V: new(big.Int).Neg(a.V)} }

// BigIntExp implements `**` for BigInt operands; a negative exponent is the
// caller's responsibility to reject (RangeError), matching `2n ** -1n`.
func BigIntExp(a, b *BigInt) *BigInt {
	return &BigInt{V: new(big.Int).Exp(a.V, b.V, nil)}
}

func BigIntCompare(a, b *BigInt) int { return a.V.Cmp(b.V) }
func BigIntEqual(a, b *BigInt) bool  { return a.V.Cmp(b.V) == 0 }

// BigIntEqualsFloat implements the BigInt↔Number "exact mathematical
// equality" rule (§4.F): a non-finite or fractional float is never equal
// to any BigInt.
func BigIntEqualsFloat(a *BigInt, f float64) bool {
	if f != float64(int64(f)) {
		return false
	}
	return a.V.Cmp(big.NewInt(int64(f))) == 0
}
