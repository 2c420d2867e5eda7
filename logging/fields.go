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

package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// String constructs a field with the given key and value.
func String(key, val string) zap.Field {
	return zap.String(key, val)
}

// Strings constructs a field with the given key and value.
func Strings(key string, val []string) zap.Field {
	return zap.Strings(key, val)
}

// Uint64 constructs a field with the given key and value.
func Uint64(key string, val uint64) zap.Field {
	return zap.Uint64(key, val)
}

// Uint16 constructs a field with the given key and value.
func Uint16(key string, val uint16) zap.Field {
	return zap.Uint16(key, val)
}

// Uint32 constructs a field with the given key and value.
func Uint32(key string, val uint32) zap.Field {
	return zap.Uint32(key, val)
}

// Int constructs a field with the given key and value.
func Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

// Bool constructs a field with the given key and value.
func Bool(key string, val bool) zap.Field {
	return zap.Bool(key, val)
}

// Error constructs a field with the given error.
func Error(err error) zap.Field {
	return zap.Error(err)
}

// NamedError constructs a field with the given key and error.
func NamedError(key string, err error) zap.Field {
	return zap.NamedError(key, err)
}

// BigUint constructs a field holding the decimal string of an amount.
func BigUint(key string, val fmt.Stringer) zap.Field {
	return zap.Stringer(key, val)
}

// NetUID constructs a field for a subnet identifier.
func NetUID(netuid uint16) zap.Field {
	return zap.Uint16("netuid", netuid)
}

// Block constructs a field for a block height.
func Block(block uint64) zap.Field {
	return zap.Uint64("block", block)
}

// Hotkey constructs a field for a registered key.
func Hotkey(hotkey string) zap.Field {
	return zap.String("hotkey", hotkey)
}

// Coldkey constructs a field for a holder account.
func Coldkey(coldkey string) zap.Field {
	return zap.String("coldkey", coldkey)
}
