// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package num

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	ErrOverflow     = errors.New("arithmetic overflow")
	ErrUnderflow    = errors.New("arithmetic underflow")
	ErrDivideByZero = errors.New("division by zero")
	ErrInvalidUint  = errors.New("invalid unsigned integer")
)

// Uint A wrapper for a big unsigned int.
type Uint struct {
	u uint256.Int
}

// NewUint creates a new Uint with the value of the
// uint64 passed as a parameter.
func NewUint(val uint64) *Uint {
	return &Uint{*uint256.NewInt(val)}
}

// UintZero returns a new Uint set to 0.
func UintZero() *Uint {
	return NewUint(0)
}

// MaxUint64 returns a new Uint holding the largest uint64.
func MaxUint64() *Uint {
	return NewUint(^uint64(0))
}

// Min returns the smallest of the 2 numbers.
func Min(a, b *Uint) *Uint {
	if a.LT(b) {
		return a
	}
	return b
}

// UintFromBytes reads a big endian 256 bits value.
func UintFromBytes(b [32]byte) *Uint {
	u := &Uint{}
	u.u.SetBytes32(b[:])
	return u
}

// UintFromString created a new Uint from a string
// interpreted using the give base.
// will return true if an error/overflow happened.
func UintFromString(str string, base int) (*Uint, bool) {
	b, ok := big.NewInt(0).SetString(str, base)
	if !ok || b.Sign() < 0 {
		return NewUint(0), true
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return NewUint(0), true
	}
	return &Uint{*u}, false
}

// Sum just removes the need to write num.NewUint(0).Sum(x, y, z)
// so you can write num.Sum(x, y, z) instead, equivalent to x + y + z.
func Sum(vals ...*Uint) *Uint {
	return NewUint(0).AddSum(vals...)
}

func (z Uint) Uint64() uint64 {
	return z.u.Uint64()
}

func (z Uint) ToDecimal() Decimal {
	return DecimalFromUint(&z)
}

// Add will add x and y then store the result
// into z
// this is equivalent to:
// `z = x + y`.
func (z *Uint) Add(x, y *Uint) *Uint {
	z.u.Add(&x.u, &y.u)
	return z
}

// AddSum adds multiple values at the same time to a given uint
// so x.AddSum(y, z) is equivalent to x + y + z.
func (z *Uint) AddSum(vals ...*Uint) *Uint {
	for _, x := range vals {
		z.u.Add(&z.u, &x.u)
	}
	return z
}

// AddOverflow will add x and y then store the result into z.
// true is returned if an overflow occurred.
func (z *Uint) AddOverflow(x, y *Uint) (*Uint, bool) {
	_, ok := z.u.AddOverflow(&x.u, &y.u)
	return z, ok
}

// Sub will subtract y from x then store the result
// into z
// this is equivalent to:
// `z = x - y`.
func (z *Uint) Sub(x, y *Uint) *Uint {
	z.u.Sub(&x.u, &y.u)
	return z
}

// SubOverflow will subtract y from x then store the result into z.
// true is returned if an underflow occurred.
func (z *Uint) SubOverflow(x, y *Uint) (*Uint, bool) {
	_, ok := z.u.SubOverflow(&x.u, &y.u)
	return z, ok
}

// Mul will multiply x and y then store the result
// into z
// this is equivalent to:
// `z = x * y`.
func (z *Uint) Mul(x, y *Uint) *Uint {
	z.u.Mul(&x.u, &y.u)
	return z
}

// MulOverflow will multiply x and y then store the result into z.
// true is returned if an overflow occurred.
func (z *Uint) MulOverflow(x, y *Uint) (*Uint, bool) {
	_, ok := z.u.MulOverflow(&x.u, &y.u)
	return z, ok
}

// Div will divide x by y then store the result
// into z, rounding down
// this is equivalent to:
// `z = x / y`.
func (z *Uint) Div(x, y *Uint) *Uint {
	z.u.Div(&x.u, &y.u)
	return z
}

// DivCeil will divide x by y then store the result into z,
// rounding up.
func (z *Uint) DivCeil(x, y *Uint) *Uint {
	var q, r uint256.Int
	q.Div(&x.u, &y.u)
	r.Mod(&x.u, &y.u)
	if !r.IsZero() {
		q.AddUint64(&q, 1)
	}
	z.u.Set(&q)
	return z
}

// Lsh sets z = x << n.
func (z *Uint) Lsh(x *Uint, n uint) *Uint {
	z.u.Lsh(&x.u, n)
	return z
}

// Rsh sets z = x >> n.
func (z *Uint) Rsh(x *Uint, n uint) *Uint {
	z.u.Rsh(&x.u, n)
	return z
}

// LT with check if the value stored in u is
// lesser than oth
// this is equivalent to:
// `u < oth`.
func (u Uint) LT(oth *Uint) bool {
	return u.u.Lt(&oth.u)
}

// LTE with check if the value stored in u is
// lesser than or equal to oth.
func (u Uint) LTE(oth *Uint) bool {
	return u.u.Lt(&oth.u) || u.u.Eq(&oth.u)
}

// EQ with check if the value stored in u is
// equal to oth.
func (u Uint) EQ(oth *Uint) bool {
	return u.u.Eq(&oth.u)
}

// GT with check if the value stored in u is
// greater than oth.
func (u Uint) GT(oth *Uint) bool {
	return u.u.Gt(&oth.u)
}

// GTE with check if the value stored in u is
// greater than or equal to oth.
func (u Uint) GTE(oth *Uint) bool {
	return u.u.Gt(&oth.u) || u.u.Eq(&oth.u)
}

// IsZero return whether u == 0 or not.
func (u Uint) IsZero() bool {
	return u.u.IsZero()
}

// Clone create copy of this value
// this is the equivalent to:
// x := z.
func (z Uint) Clone() *Uint {
	return &Uint{z.u}
}

// String returns the stored value as a base 10 string.
func (u Uint) String() string {
	return u.u.ToBig().String()
}

// MarshalText encodes the value as a base 10 string so it
// round-trips through JSON and TOML without truncation.
func (u Uint) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *Uint) UnmarshalText(text []byte) error {
	v, failed := UintFromString(string(text), 10)
	if failed {
		return fmt.Errorf("%w: %q", ErrInvalidUint, string(text))
	}
	u.u = v.u
	return nil
}
