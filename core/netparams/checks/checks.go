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

package checks

import (
	"fmt"

	"code.subnetd.io/subnetd/libs/num"
)

func NonZero() func(uint64) error {
	return func(v uint64) error {
		if v == 0 {
			return fmt.Errorf("expect > 0, got %d", v)
		}
		return nil
	}
}

func Uint64Range(min, max uint64) func(uint64) error {
	return func(v uint64) error {
		if v < min || v > max {
			return fmt.Errorf("expect %d <= x <= %d, got %d", min, max, v)
		}
		return nil
	}
}

// AtMost checks the value does not exceed the current value of another parameter.
func AtMost(name string, get func() uint64) func(uint64) error {
	return func(v uint64) error {
		if max := get(); v > max {
			return fmt.Errorf("expect <= %s (%d), got %d", name, max, v)
		}
		return nil
	}
}

// AtLeast checks the value is not below the current value of another parameter.
func AtLeast(name string, get func() uint64) func(uint64) error {
	return func(v uint64) error {
		if min := get(); v < min {
			return fmt.Errorf("expect >= %s (%d), got %d", name, min, v)
		}
		return nil
	}
}

func NonZeroAmount() func(*num.Uint) error {
	return func(v *num.Uint) error {
		if v.IsZero() {
			return fmt.Errorf("expect > 0, got %s", v)
		}
		return nil
	}
}
