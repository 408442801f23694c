// Package felt implements the field element type used for all program
// values in the Astro execution engine.
//
// A Felt is an element of the prime field with modulus
// 2^251 + 17*2^192 + 1. Values are normalized into [0, modulus) at
// construction time and treated as immutable afterwards.
package felt

import (
	"fmt"
	"math/big"
	"strings"
)

// ModulusText is the decimal representation of the field modulus.
const ModulusText = "3618502788666131213697322783095070105623107215331596699973092056135872020481"

var modulus, _ = new(big.Int).SetString(ModulusText, 10)

// Modulus returns a copy of the field modulus.
func Modulus() *big.Int {
	return new(big.Int).Set(modulus)
}

// Felt is a field element. The zero value is the field's zero.
type Felt struct {
	v big.Int
}

// New returns the field element for a small unsigned value.
func New(u uint64) Felt {
	var f Felt
	f.v.SetUint64(u)
	return f
}

// FromBig returns the field element for b reduced modulo the field modulus.
// Negative values wrap around, so FromBig(-1) is modulus-1.
func FromBig(b *big.Int) Felt {
	var f Felt
	f.v.Mod(b, modulus)
	return f
}

// FromInt64 returns the field element for i, wrapping negatives.
func FromInt64(i int64) Felt {
	return FromBig(big.NewInt(i))
}

// Parse parses a decimal or 0x-prefixed hexadecimal literal.
func Parse(s string) (Felt, error) {
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return Felt{}, fmt.Errorf("invalid field element literal %q", s)
	}
	return FromBig(b), nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Felt {
	f, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Add returns f + g.
func (f Felt) Add(g Felt) Felt {
	var r Felt
	r.v.Add(&f.v, &g.v)
	r.v.Mod(&r.v, modulus)
	return r
}

// Sub returns f - g.
func (f Felt) Sub(g Felt) Felt {
	var r Felt
	r.v.Sub(&f.v, &g.v)
	r.v.Mod(&r.v, modulus)
	return r
}

// Mul returns f * g.
func (f Felt) Mul(g Felt) Felt {
	var r Felt
	r.v.Mul(&f.v, &g.v)
	r.v.Mod(&r.v, modulus)
	return r
}

// Neg returns -f.
func (f Felt) Neg() Felt {
	var r Felt
	r.v.Neg(&f.v)
	r.v.Mod(&r.v, modulus)
	return r
}

// Cmp compares f and g as canonical integers in [0, modulus).
func (f Felt) Cmp(g Felt) int {
	return f.v.Cmp(&g.v)
}

// Equal reports whether f and g are the same field element.
func (f Felt) Equal(g Felt) bool {
	return f.v.Cmp(&g.v) == 0
}

// IsZero reports whether f is the field's zero.
func (f Felt) IsZero() bool {
	return f.v.Sign() == 0
}

// Uint64 returns f as a uint64 if it fits.
func (f Felt) Uint64() (uint64, bool) {
	if !f.v.IsUint64() {
		return 0, false
	}
	return f.v.Uint64(), true
}

// Big returns a copy of the canonical integer value of f.
func (f Felt) Big() *big.Int {
	return new(big.Int).Set(&f.v)
}

// Bytes returns the canonical big-endian byte representation of f
// without leading zeros.
func (f Felt) Bytes() []byte {
	return f.v.Bytes()
}

// String renders f in decimal.
func (f Felt) String() string {
	return f.v.String()
}

// Join renders a slice of field elements as "[a, b, c]".
func Join(values []Felt) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
