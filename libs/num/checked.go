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

// MulDiv returns floor(x * y / d) with a checked intermediate product.
func MulDiv(x, y, d *Uint) (*Uint, error) {
	if d.IsZero() {
		return nil, ErrDivideByZero
	}
	p, overflow := UintZero().MulOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return p.Div(p, d), nil
}

// CheckedAdd returns x + y or ErrOverflow.
func CheckedAdd(x, y *Uint) (*Uint, error) {
	s, overflow := UintZero().AddOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return s, nil
}

// CheckedSub returns x - y or ErrUnderflow.
func CheckedSub(x, y *Uint) (*Uint, error) {
	s, underflow := UintZero().SubOverflow(x, y)
	if underflow {
		return nil, ErrUnderflow
	}
	return s, nil
}

// CheckedMul returns x * y or ErrOverflow.
func CheckedMul(x, y *Uint) (*Uint, error) {
	p, overflow := UintZero().MulOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return p, nil
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi *Uint) *Uint {
	if v.LT(lo) {
		return lo.Clone()
	}
	if v.GT(hi) {
		return hi.Clone()
	}
	return v.Clone()
}
