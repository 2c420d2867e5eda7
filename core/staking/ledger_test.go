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

package staking_test

import (
	"testing"

	"code.subnetd.io/subnetd/core/staking"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStakeLedger(t *testing.T) {
	l := staking.NewStakeLedger()
	require.NoError(t, l.Add(1, "hk-b", "ck-2", num.NewUint(50)))
	require.NoError(t, l.Add(1, "hk-b", "ck-1", num.NewUint(100)))
	require.NoError(t, l.Add(1, "hk-a", "ck-1", num.NewUint(10)))
	require.NoError(t, l.Add(2, "hk-b", "ck-1", num.NewUint(7)))
	require.NoError(t, l.Add(1, "hk-b", "ck-1", num.NewUint(1)))
	// zero credits do not create entries
	require.NoError(t, l.Add(3, "hk-z", "ck-1", num.UintZero()))
	assert.Equal(t, 4, l.Len())

	assert.Equal(t, "101", l.Get(1, "hk-b", "ck-1").String())
	assert.Equal(t, "0", l.Get(1, "hk-c", "ck-1").String())
	assert.Equal(t, "151", l.HotkeyTotal(1, "hk-b").String())
	assert.Equal(t, "161", l.SubnetTotal(1).String())
	assert.Equal(t, []types.Hotkey{"hk-a", "hk-b"}, l.HotkeysOnSubnet(1))

	holders := l.Holders(1, "hk-b")
	require.Len(t, holders, 2)
	assert.Equal(t, types.Coldkey("ck-1"), holders[0].Coldkey)
	assert.Equal(t, types.Coldkey("ck-2"), holders[1].Coldkey)

	require.ErrorIs(t, l.Sub(1, "hk-b", "ck-2", num.NewUint(51)), staking.ErrInsufficientStake)
	require.ErrorIs(t, l.Sub(1, "hk-x", "ck-2", num.NewUint(1)), staking.ErrInsufficientStake)
	require.NoError(t, l.Sub(1, "hk-b", "ck-2", num.NewUint(50)))
	// entries at zero are removed
	assert.Len(t, l.Holders(1, "hk-b"), 1)
	assert.Equal(t, 3, l.Len())

	l.RemoveSubnet(1)
	assert.Equal(t, 1, l.Len())
	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, types.NetUID(2), entries[0].NetUID)
}
