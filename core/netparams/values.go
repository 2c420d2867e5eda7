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

package netparams

import (
	"errors"
	"fmt"
	"strconv"

	"code.subnetd.io/subnetd/libs/num"
)

var (
	ErrImmutable    = errors.New("parameter is immutable")
	ErrInvalidValue = errors.New("invalid parameter value")
)

type value interface {
	Validate(value string) error
	Update(value string) error
	String() string
	Value() interface{}
}

type UintRule func(uint64) error

// Uint is an unsigned parameter of at most bits bits.
type Uint struct {
	bits    int
	mutable bool
	rules   []UintRule
	value   uint64
}

func NewUint(bits int, rules ...UintRule) *Uint {
	return &Uint{
		bits:  bits,
		rules: rules,
	}
}

func (u *Uint) Mutable(b bool) *Uint {
	u.mutable = b
	return u
}

// AddRules adds rules checked on top of the existing ones.
func (u *Uint) AddRules(rules ...UintRule) *Uint {
	u.rules = append(u.rules, rules...)
	return u
}

func (u *Uint) parse(value string) (uint64, error) {
	v, err := strconv.ParseUint(value, 10, u.bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	for _, rule := range u.rules {
		if err := rule(v); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
	}
	return v, nil
}

func (u *Uint) Validate(value string) error {
	_, err := u.parse(value)
	return err
}

func (u *Uint) Update(value string) error {
	if !u.mutable {
		return ErrImmutable
	}
	v, err := u.parse(value)
	if err != nil {
		return err
	}
	u.value = v
	return nil
}

func (u *Uint) MustUpdate(value string) *Uint {
	if err := u.Update(value); err != nil {
		panic(err)
	}
	return u
}

func (u *Uint) String() string {
	return strconv.FormatUint(u.value, 10)
}

func (u *Uint) Value() interface{} {
	return u.value
}

type BigUintRule func(*num.Uint) error

// BigUint is an amount parameter.
type BigUint struct {
	mutable bool
	rules   []BigUintRule
	value   *num.Uint
}

func NewBigUint(rules ...BigUintRule) *BigUint {
	return &BigUint{
		rules: rules,
		value: num.UintZero(),
	}
}

func (b *BigUint) Mutable(m bool) *BigUint {
	b.mutable = m
	return b
}

func (b *BigUint) parse(value string) (*num.Uint, error) {
	v, failed := num.UintFromString(value, 10)
	if failed {
		return nil, fmt.Errorf("%w: %q is not an amount", ErrInvalidValue, value)
	}
	for _, rule := range b.rules {
		if err := rule(v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
	}
	return v, nil
}

func (b *BigUint) Validate(value string) error {
	_, err := b.parse(value)
	return err
}

func (b *BigUint) Update(value string) error {
	if !b.mutable {
		return ErrImmutable
	}
	v, err := b.parse(value)
	if err != nil {
		return err
	}
	b.value = v
	return nil
}

func (b *BigUint) String() string {
	return b.value.String()
}

func (b *BigUint) Value() interface{} {
	return b.value.Clone()
}

type Bool struct {
	mutable bool
	value   bool
}

func NewBool() *Bool {
	return &Bool{}
}

func (b *Bool) Mutable(m bool) *Bool {
	b.mutable = m
	return b
}

func (b *Bool) Validate(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}

func (b *Bool) Update(value string) error {
	if !b.mutable {
		return ErrImmutable
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	b.value = v
	return nil
}

func (b *Bool) String() string {
	return strconv.FormatBool(b.value)
}

func (b *Bool) Value() interface{} {
	return b.value
}
