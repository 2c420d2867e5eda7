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
	"context"
	"errors"
	"testing"

	bmocks "code.subnetd.io/subnetd/core/broker/mocks"
	"code.subnetd.io/subnetd/core/market"
	"code.subnetd.io/subnetd/core/staking"
	"code.subnetd.io/subnetd/core/staking/mocks"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInsufficientFunds = errors.New("insufficient funds")

type testEngine struct {
	*staking.Engine
	market *market.Engine
	ledger *mocks.MockLedger
}

// getTestEngine returns an engine with subnet 1 opened with a lock of 100
// held by the owner through its hotkey.
func getTestEngine(t *testing.T) *testEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	broker := bmocks.NewMockInterface(ctrl)
	broker.EXPECT().Send(gomock.Any()).AnyTimes()
	ledger := mocks.NewMockLedger(ctrl)
	log := logging.NewTestLogger()

	mkt := market.New(log, market.NewDefaultConfig())
	eng := staking.New(log, staking.NewDefaultConfig(), broker, ledger, mkt)

	ctx := context.Background()
	require.NoError(t, mkt.CreatePool(ctx, 1, num.NewUint(100)))
	require.NoError(t, eng.RegisterHotkey(ctx, 1, "hot0", "cold0"))
	require.NoError(t, eng.CreditStake(1, "hot0", "cold0", num.NewUint(100)))

	return &testEngine{
		Engine: eng,
		market: mkt,
		ledger: ledger,
	}
}

func TestStaking(t *testing.T) {
	t.Run("nominator stakes into a delegate", testNominatorStake)
	t.Run("nominating a non delegate is refused", testNominateNonDelegate)
	t.Run("insufficient funds mutate nothing", testStakeInsufficientFunds)
	t.Run("unstake returns the settlement asset", testUnstake)
	t.Run("unstake above the stake is refused", testUnstakeInsufficientStake)
	t.Run("staking to an unregistered hotkey is refused", testStakeUnregistered)
}

func testNominatorStake(t *testing.T) {
	te := getTestEngine(t)
	ctx := context.Background()
	require.NoError(t, te.BecomeDelegate(ctx, "cold0", "hot0", types.TakeMax/10))

	te.ledger.EXPECT().Debit(gomock.Any(), types.Coldkey("cold1"), num.NewUint(100)).Return(nil)
	out, err := te.StakeIn(ctx, "cold1", "hot0", 1, num.NewUint(100))
	require.NoError(t, err)
	assert.Equal(t, "50", out.String())

	pool, _ := te.market.Pool(1)
	assert.Equal(t, "200", pool.SettlementReserve.String())
	assert.Equal(t, "50", pool.AssetReserve.String())
	assert.Equal(t, "150", pool.AssetOutstanding.String())
	price, _ := te.market.SpotPrice(1)
	assert.Equal(t, "4", price.String())

	assert.Equal(t, "100", te.Stake(1, "hot0", "cold0").String())
	assert.Equal(t, "50", te.Stake(1, "hot0", "cold1").String())
	assert.Equal(t, "150", te.HotkeyTotal(1, "hot0").String())
}

func testNominateNonDelegate(t *testing.T) {
	te := getTestEngine(t)
	_, err := te.StakeIn(context.Background(), "cold1", "hot0", 1, num.NewUint(100))
	require.ErrorIs(t, err, staking.ErrHotkeyNotDelegate)
}

func testStakeInsufficientFunds(t *testing.T) {
	te := getTestEngine(t)
	te.ledger.EXPECT().Debit(gomock.Any(), types.Coldkey("cold0"), gomock.Any()).Return(errInsufficientFunds)
	_, err := te.StakeIn(context.Background(), "cold0", "hot0", 1, num.NewUint(100))
	require.ErrorIs(t, err, errInsufficientFunds)

	pool, _ := te.market.Pool(1)
	assert.Equal(t, "100", pool.SettlementReserve.String())
	assert.Equal(t, "100", pool.AssetOutstanding.String())
	assert.Equal(t, "100", te.Stake(1, "hot0", "cold0").String())
}

func testUnstake(t *testing.T) {
	te := getTestEngine(t)
	ctx := context.Background()
	te.ledger.EXPECT().Debit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	_, err := te.StakeIn(ctx, "cold0", "hot0", 1, num.NewUint(100))
	require.NoError(t, err)

	te.ledger.EXPECT().Credit(gomock.Any(), types.Coldkey("cold0"), num.NewUint(120)).Return(nil)
	out, err := te.UnstakeOut(ctx, "cold0", "hot0", 1, num.NewUint(75))
	require.NoError(t, err)
	assert.Equal(t, "120", out.String())

	price, _ := te.market.SpotPrice(1)
	assert.Equal(t, "0.64", price.String())
	assert.Equal(t, "75", te.Stake(1, "hot0", "cold0").String())
	pool, _ := te.market.Pool(1)
	assert.Equal(t, "75", pool.AssetOutstanding.String())
}

func testUnstakeInsufficientStake(t *testing.T) {
	te := getTestEngine(t)
	_, err := te.UnstakeOut(context.Background(), "cold0", "hot0", 1, num.NewUint(101))
	require.ErrorIs(t, err, staking.ErrInsufficientStake)
	_, err = te.UnstakeOut(context.Background(), "cold1", "hot0", 1, num.NewUint(1))
	require.ErrorIs(t, err, staking.ErrInsufficientStake)
}

func testStakeUnregistered(t *testing.T) {
	te := getTestEngine(t)
	_, err := te.StakeIn(context.Background(), "cold0", "hot9", 1, num.NewUint(100))
	require.ErrorIs(t, err, staking.ErrHotkeyNotRegistered)
}

func TestDelegation(t *testing.T) {
	te := getTestEngine(t)
	ctx := context.Background()

	_, ok := te.Take(1, "hot0")
	assert.False(t, ok)

	require.ErrorIs(t, te.BecomeDelegate(ctx, "cold1", "hot0", 10), staking.ErrNotHotkeyOwner)
	require.ErrorIs(t, te.BecomeDelegate(ctx, "cold0", "hot0", te.MaxTake()+1), staking.ErrTakeTooHigh)
	require.ErrorIs(t, te.SetTake(ctx, "cold0", "hot0", 1, 10), staking.ErrHotkeyNotDelegate)

	require.NoError(t, te.BecomeDelegateWithDefaultTake(ctx, "cold0", "hot0"))
	require.ErrorIs(t, te.BecomeDelegate(ctx, "cold0", "hot0", 10), staking.ErrAlreadyDelegate)
	take, ok := te.Take(1, "hot0")
	assert.True(t, ok)
	assert.Equal(t, te.DefaultTake(), take)

	// per subnet override
	require.NoError(t, te.SetTake(ctx, "cold0", "hot0", 1, 100))
	take, _ = te.Take(1, "hot0")
	assert.Equal(t, uint16(100), take)
	take, _ = te.Take(2, "hot0")
	assert.Equal(t, te.DefaultTake(), take)

	// a hotkey is controlled by the first coldkey registering it
	require.ErrorIs(t, te.RegisterHotkey(ctx, 2, "hot0", "cold1"), staking.ErrHotkeyOwnedByOther)
	require.NoError(t, te.RegisterHotkey(ctx, 2, "hot0", "cold0"))
	assert.True(t, te.IsRegistered(2, "hot0"))
	owner, _ := te.Owner("hot0")
	assert.Equal(t, types.Coldkey("cold0"), owner)
}

func TestStakeInDoesNotCommitOnDebitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	broker := bmocks.NewMockInterface(ctrl)
	ledger := mocks.NewMockLedger(ctrl)
	mkt := mocks.NewMockMarket(ctrl)
	eng := staking.New(logging.NewTestLogger(), staking.NewDefaultConfig(), broker, ledger, mkt)
	ctx := context.Background()
	require.NoError(t, eng.RegisterHotkey(ctx, 1, "hot0", "cold0"))

	pool, _ := market.NewPool(num.NewUint(100))
	mkt.EXPECT().Pool(types.NetUID(1)).Return(pool, nil)
	ledger.EXPECT().Debit(gomock.Any(), gomock.Any(), gomock.Any()).Return(errInsufficientFunds)
	// no Commit, AddOutstanding or event expected

	_, err := eng.StakeIn(ctx, "cold0", "hot0", 1, num.NewUint(100))
	require.ErrorIs(t, err, errInsufficientFunds)
}

func TestCheckpointRoundTrip(t *testing.T) {
	te := getTestEngine(t)
	ctx := context.Background()
	require.NoError(t, te.BecomeDelegate(ctx, "cold0", "hot0", 1000))
	require.NoError(t, te.SetTake(ctx, "cold0", "hot0", 1, 500))
	require.NoError(t, te.RegisterHotkey(ctx, 1, "hot1", "cold1"))
	require.NoError(t, te.CreditStake(1, "hot0", "cold1", num.NewUint(33)))

	data, err := te.Checkpoint()
	require.NoError(t, err)

	other := getTestEngine(t)
	require.NoError(t, other.Load(ctx, data))
	assert.Equal(t, te.Stakes().Entries(), other.Stakes().Entries())
	take, ok := other.Take(1, "hot0")
	assert.True(t, ok)
	assert.Equal(t, uint16(500), take)
	assert.Equal(t, []types.Hotkey{"hot0", "hot1"}, other.RegisteredHotkeys(1))

	again, err := other.Checkpoint()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}
