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

package types

import (
	"errors"
	"strconv"
)

// NetUID identifies a subnet.
type NetUID uint16

// RootNetUID is the root subnet, it never has a market or pending emission.
const RootNetUID NetUID = 0

func (n NetUID) String() string {
	return strconv.FormatUint(uint64(n), 10)
}

// IsRoot returns true for the root subnet.
func (n NetUID) IsRoot() bool {
	return n == RootNetUID
}

// Coldkey is a holder account, it pays for registrations and stake and
// controls the hotkeys it registered.
type Coldkey string

// Hotkey is a registered key on one or more subnets.
type Hotkey string

// TakeMax is the denominator of a delegate take.
const TakeMax uint16 = 65535

var (
	ErrInvariantViolation = errors.New("state invariant violated")
	ErrSubnetDoesNotExist = errors.New("subnet does not exist")
	ErrSubnetAlreadyExist = errors.New("subnet already exists")
	ErrRootSubnet         = errors.New("operation not supported on the root subnet")
)
