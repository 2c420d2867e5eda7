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

package staking

import (
	"errors"

	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"

	"github.com/google/btree"
)

var ErrInsufficientStake = errors.New("insufficient stake")

// StakeEntry is the subnet asset a coldkey holds through a hotkey on a subnet.
type StakeEntry struct {
	NetUID  types.NetUID  `json:"netuid"`
	Hotkey  types.Hotkey  `json:"hotkey"`
	Coldkey types.Coldkey `json:"coldkey"`
	Amount  *num.Uint     `json:"amount"`
}

// Holding is one holder of a hotkey.
type Holding struct {
	Coldkey types.Coldkey
	Amount  *num.Uint
}

func entryLess(a, b *StakeEntry) bool {
	if a.NetUID != b.NetUID {
		return a.NetUID < b.NetUID
	}
	if a.Hotkey != b.Hotkey {
		return a.Hotkey < b.Hotkey
	}
	return a.Coldkey < b.Coldkey
}

// StakeLedger is an ordered index of stake entries keyed by
// (netuid, hotkey, coldkey). Entries reaching zero are removed.
type StakeLedger struct {
	tree *btree.BTreeG[*StakeEntry]
}

func NewStakeLedger() *StakeLedger {
	return &StakeLedger{
		tree: btree.NewG[*StakeEntry](32, entryLess),
	}
}

func key(netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey) *StakeEntry {
	return &StakeEntry{NetUID: netuid, Hotkey: hotkey, Coldkey: coldkey}
}

// Get returns the stake of the coldkey, zero if there is none.
func (l *StakeLedger) Get(netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey) *num.Uint {
	if e, ok := l.tree.Get(key(netuid, hotkey, coldkey)); ok {
		return e.Amount.Clone()
	}
	return num.UintZero()
}

func (l *StakeLedger) Add(netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey, amount *num.Uint) error {
	if amount.IsZero() {
		return nil
	}
	k := key(netuid, hotkey, coldkey)
	if e, ok := l.tree.Get(k); ok {
		sum, err := num.CheckedAdd(e.Amount, amount)
		if err != nil {
			return err
		}
		e.Amount = sum
		return nil
	}
	k.Amount = amount.Clone()
	l.tree.ReplaceOrInsert(k)
	return nil
}

func (l *StakeLedger) Sub(netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey, amount *num.Uint) error {
	k := key(netuid, hotkey, coldkey)
	e, ok := l.tree.Get(k)
	if !ok {
		if amount.IsZero() {
			return nil
		}
		return ErrInsufficientStake
	}
	if e.Amount.LT(amount) {
		return ErrInsufficientStake
	}
	e.Amount = num.UintZero().Sub(e.Amount, amount)
	if e.Amount.IsZero() {
		l.tree.Delete(k)
	}
	return nil
}

// ascendHotkey walks the holders of a hotkey in coldkey order.
func (l *StakeLedger) ascendHotkey(netuid types.NetUID, hotkey types.Hotkey, f func(*StakeEntry) bool) {
	l.tree.AscendGreaterOrEqual(key(netuid, hotkey, ""), func(e *StakeEntry) bool {
		if e.NetUID != netuid || e.Hotkey != hotkey {
			return false
		}
		return f(e)
	})
}

// HotkeyTotal is the sum of the stake of every holder of the hotkey on the subnet.
func (l *StakeLedger) HotkeyTotal(netuid types.NetUID, hotkey types.Hotkey) *num.Uint {
	total := num.UintZero()
	l.ascendHotkey(netuid, hotkey, func(e *StakeEntry) bool {
		total.AddSum(e.Amount)
		return true
	})
	return total
}

// Holders returns the holders of the hotkey on the subnet ordered by coldkey.
func (l *StakeLedger) Holders(netuid types.NetUID, hotkey types.Hotkey) []Holding {
	out := []Holding{}
	l.ascendHotkey(netuid, hotkey, func(e *StakeEntry) bool {
		out = append(out, Holding{Coldkey: e.Coldkey, Amount: e.Amount.Clone()})
		return true
	})
	return out
}

// HotkeysOnSubnet returns the hotkeys holding stake on the subnet, in order.
func (l *StakeLedger) HotkeysOnSubnet(netuid types.NetUID) []types.Hotkey {
	out := []types.Hotkey{}
	l.tree.AscendGreaterOrEqual(key(netuid, "", ""), func(e *StakeEntry) bool {
		if e.NetUID != netuid {
			return false
		}
		if len(out) == 0 || out[len(out)-1] != e.Hotkey {
			out = append(out, e.Hotkey)
		}
		return true
	})
	return out
}

// SubnetTotal is the stake held through every hotkey of the subnet.
func (l *StakeLedger) SubnetTotal(netuid types.NetUID) *num.Uint {
	total := num.UintZero()
	l.tree.AscendGreaterOrEqual(key(netuid, "", ""), func(e *StakeEntry) bool {
		if e.NetUID != netuid {
			return false
		}
		total.AddSum(e.Amount)
		return true
	})
	return total
}

// RemoveSubnet drops every entry of the subnet.
func (l *StakeLedger) RemoveSubnet(netuid types.NetUID) {
	var drop []*StakeEntry
	l.tree.AscendGreaterOrEqual(key(netuid, "", ""), func(e *StakeEntry) bool {
		if e.NetUID != netuid {
			return false
		}
		drop = append(drop, e)
		return true
	})
	for _, e := range drop {
		l.tree.Delete(e)
	}
}

// Entries returns a copy of every entry in key order.
func (l *StakeLedger) Entries() []StakeEntry {
	out := make([]StakeEntry, 0, l.tree.Len())
	l.tree.Ascend(func(e *StakeEntry) bool {
		cpy := *e
		cpy.Amount = e.Amount.Clone()
		out = append(out, cpy)
		return true
	})
	return out
}

func (l *StakeLedger) Len() int {
	return l.tree.Len()
}
