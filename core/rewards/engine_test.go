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

package rewards_test

import (
	"context"
	"testing"

	bmocks "code.subnetd.io/subnetd/core/broker/mocks"
	"code.subnetd.io/subnetd/core/collateral"
	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/core/market"
	"code.subnetd.io/subnetd/core/rewards"
	"code.subnetd.io/subnetd/core/rewards/mocks"
	"code.subnetd.io/subnetd/core/staking"
	"code.subnetd.io/subnetd/core/subnets"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	controller types.Coldkey = "controller"
	nominator  types.Coldkey = "nominator"
	hotkey     types.Hotkey  = "hk"

	// first trigger block of subnet 1 with a tempo of 10
	triggerBlock = 8
)

type testEngine struct {
	*rewards.Engine
	subnets *subnets.Engine
	market  *market.Engine
	staking *staking.Engine
	scorer  *mocks.MockEpochScorer
	events  []events.Event
}

func getTestEngine(t *testing.T, withScorer bool) *testEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := logging.NewTestLogger()
	ctx := context.Background()

	te := &testEngine{}
	broker := bmocks.NewMockInterface(ctrl)
	broker.EXPECT().Send(gomock.Any()).AnyTimes().Do(func(evt events.Event) {
		te.events = append(te.events, evt)
	})

	te.subnets = subnets.New(log, subnets.NewDefaultConfig(), broker)
	te.market = market.New(log, market.NewDefaultConfig())
	ledger := collateral.New(log, collateral.NewDefaultConfig())
	te.staking = staking.New(log, staking.NewDefaultConfig(), broker, ledger, te.market)

	params := types.DefaultSubnetParams()
	params.Tempo = 10
	require.NoError(t, te.subnets.Create(ctx, 1, controller, hotkey, params))
	require.NoError(t, te.market.CreatePool(ctx, 1, num.NewUint(100)))
	require.NoError(t, te.staking.RegisterHotkey(ctx, 1, hotkey, controller))
	require.NoError(t, te.staking.BecomeDelegate(ctx, controller, hotkey, types.TakeMax/10))
	require.NoError(t, te.staking.CreditStake(1, hotkey, controller, num.NewUint(100)))
	require.NoError(t, te.staking.CreditStake(1, hotkey, nominator, num.NewUint(50)))

	var scorer rewards.EpochScorer
	if withScorer {
		te.scorer = mocks.NewMockEpochScorer(ctrl)
		scorer = te.scorer
	}
	te.Engine = rewards.New(log, rewards.NewDefaultConfig(), broker, te.subnets, te.market, te.staking, scorer)
	te.events = nil
	return te
}

func (te *testEngine) outstanding(t *testing.T) *num.Uint {
	t.Helper()
	pool, err := te.market.Pool(1)
	require.NoError(t, err)
	return pool.AssetOutstanding
}

func TestEmitThroughHotkey(t *testing.T) {
	t.Run("delegate take then pro-rata split", testTakeAndSplit)
	t.Run("server emission goes to the controller", testServerEmission)
	t.Run("no take without delegation", testNoTake)
	t.Run("no holders pays the controller", testNoHolders)
	t.Run("unknown hotkey is rejected", testUnknownHotkey)
	t.Run("rounding loss is below the number of holders", testRoundingLoss)
}

func testTakeAndSplit(t *testing.T) {
	te := getTestEngine(t, false)
	ctx := context.Background()
	before := te.outstanding(t)

	require.NoError(t, te.EmitThroughHotkey(ctx, 1, hotkey, num.UintZero(), num.NewUint(200)))

	// take is floor(200 * 6553 / 65535) = 19, 181 left split 100:50
	assert.Equal(t, "239", te.staking.Stake(1, hotkey, controller).String())
	assert.Equal(t, "110", te.staking.Stake(1, hotkey, nominator).String())
	assert.Equal(t, num.Sum(before, num.NewUint(199)), te.outstanding(t))

	require.Len(t, te.events, 3)
	evt := te.events[0].(*events.RewardPayout)
	assert.True(t, evt.Take)
	assert.Equal(t, controller, evt.Coldkey)
	assert.Equal(t, "19", evt.Amount.String())
	evt = te.events[1].(*events.RewardPayout)
	assert.False(t, evt.Take)
	assert.Equal(t, "120", evt.Amount.String())
	evt = te.events[2].(*events.RewardPayout)
	assert.Equal(t, nominator, evt.Coldkey)
	assert.Equal(t, "60", evt.Amount.String())
}

func testServerEmission(t *testing.T) {
	te := getTestEngine(t, false)
	ctx := context.Background()

	require.NoError(t, te.EmitThroughHotkey(ctx, 1, hotkey, num.NewUint(30), num.UintZero()))

	assert.Equal(t, "130", te.staking.Stake(1, hotkey, controller).String())
	assert.Equal(t, "50", te.staking.Stake(1, hotkey, nominator).String())
}

func testNoTake(t *testing.T) {
	te := getTestEngine(t, false)
	ctx := context.Background()
	require.NoError(t, te.staking.RegisterHotkey(ctx, 1, "miner", "miner-owner"))
	require.NoError(t, te.staking.CreditStake(1, "miner", "miner-owner", num.NewUint(10)))
	require.NoError(t, te.staking.CreditStake(1, "miner", "other", num.NewUint(30)))

	require.NoError(t, te.EmitThroughHotkey(ctx, 1, "miner", num.UintZero(), num.NewUint(40)))

	assert.Equal(t, "20", te.staking.Stake(1, "miner", "miner-owner").String())
	assert.Equal(t, "60", te.staking.Stake(1, "miner", "other").String())
}

func testNoHolders(t *testing.T) {
	te := getTestEngine(t, false)
	ctx := context.Background()
	require.NoError(t, te.staking.RegisterHotkey(ctx, 1, "fresh", "fresh-owner"))

	require.NoError(t, te.EmitThroughHotkey(ctx, 1, "fresh", num.NewUint(5), num.NewUint(100)))

	assert.Equal(t, "105", te.staking.Stake(1, "fresh", "fresh-owner").String())
	assert.Len(t, te.events, 2)
}

func testUnknownHotkey(t *testing.T) {
	te := getTestEngine(t, false)
	ctx := context.Background()
	before := te.outstanding(t)

	err := te.EmitThroughHotkey(ctx, 1, "nobody", num.UintZero(), num.NewUint(100))
	require.ErrorIs(t, err, rewards.ErrUnknownHotkey)
	assert.Equal(t, before, te.outstanding(t))
	assert.Empty(t, te.events)
}

func testRoundingLoss(t *testing.T) {
	te := getTestEngine(t, false)
	ctx := context.Background()
	require.NoError(t, te.staking.RegisterHotkey(ctx, 1, "many", "many-owner"))
	holders := []types.Coldkey{"a", "b", "c", "d", "e", "f", "g"}
	for i, h := range holders {
		require.NoError(t, te.staking.CreditStake(1, "many", h, num.NewUint(uint64(3+2*i))))
	}
	before := te.staking.HotkeyTotal(1, "many")

	require.NoError(t, te.EmitThroughHotkey(ctx, 1, "many", num.UintZero(), num.NewUint(1000)))

	credited := num.UintZero().Sub(te.staking.HotkeyTotal(1, "many"), before)
	assert.True(t, credited.LTE(num.NewUint(1000)))
	assert.True(t, credited.GT(num.NewUint(uint64(1000-len(holders)))))
}

func TestOnBlock(t *testing.T) {
	t.Run("distributes on trigger blocks only", testDistributesOnTrigger)
	t.Run("scored above pending is an invariant violation", testScoredAbovePending)
	t.Run("unknown hotkeys keep their emission pending", testUnknownHotkeyKeepsPending)
	t.Run("default scorer splits by hotkey stake", testStakeScorer)
}

func testDistributesOnTrigger(t *testing.T) {
	te := getTestEngine(t, true)
	ctx := context.Background()
	require.NoError(t, te.market.AddPending(1, num.NewUint(300)))

	// not a trigger block, the scorer is not asked
	require.NoError(t, te.OnBlock(ctx, triggerBlock-1))

	te.scorer.EXPECT().Score(gomock.Any(), types.NetUID(1), num.NewUint(300)).Return([]types.EmissionTuple{
		{Hotkey: hotkey, ServerEmission: num.NewUint(10), ValidatorEmission: num.NewUint(200)},
	})
	require.NoError(t, te.OnBlock(ctx, triggerBlock))

	pending, err := te.market.PendingEmission(1)
	require.NoError(t, err)
	assert.Equal(t, "90", pending.String())
	assert.Equal(t, "249", te.staking.Stake(1, hotkey, controller).String())
	assert.Equal(t, "110", te.staking.Stake(1, hotkey, nominator).String())
}

func testScoredAbovePending(t *testing.T) {
	te := getTestEngine(t, true)
	ctx := context.Background()
	require.NoError(t, te.market.AddPending(1, num.NewUint(100)))

	te.scorer.EXPECT().Score(gomock.Any(), types.NetUID(1), gomock.Any()).Return([]types.EmissionTuple{
		{Hotkey: hotkey, ServerEmission: num.NewUint(1), ValidatorEmission: num.NewUint(100)},
	})
	require.ErrorIs(t, te.OnBlock(ctx, triggerBlock), types.ErrInvariantViolation)
}

func testUnknownHotkeyKeepsPending(t *testing.T) {
	te := getTestEngine(t, true)
	ctx := context.Background()
	require.NoError(t, te.market.AddPending(1, num.NewUint(100)))

	te.scorer.EXPECT().Score(gomock.Any(), types.NetUID(1), gomock.Any()).Return([]types.EmissionTuple{
		{Hotkey: hotkey, ValidatorEmission: num.NewUint(60)},
		{Hotkey: "ghost", ValidatorEmission: num.NewUint(40)},
	})
	require.NoError(t, te.OnBlock(ctx, triggerBlock))

	pending, err := te.market.PendingEmission(1)
	require.NoError(t, err)
	assert.Equal(t, "40", pending.String())
}

func testStakeScorer(t *testing.T) {
	te := getTestEngine(t, false)
	ctx := context.Background()
	require.NoError(t, te.staking.RegisterHotkey(ctx, 1, "other-hk", "other-owner"))
	require.NoError(t, te.staking.CreditStake(1, "other-hk", "other-owner", num.NewUint(50)))

	scorer := rewards.NewStakeScorer(te.staking)
	tuples := scorer.Score(ctx, 1, num.NewUint(100))
	require.Len(t, tuples, 2)
	assert.Equal(t, hotkey, tuples[0].Hotkey)
	assert.Equal(t, "75", tuples[0].ValidatorEmission.String())
	assert.Equal(t, "0", tuples[0].ServerEmission.String())
	assert.Equal(t, types.Hotkey("other-hk"), tuples[1].Hotkey)
	assert.Equal(t, "25", tuples[1].ValidatorEmission.String())

	require.NoError(t, te.market.AddPending(1, num.NewUint(100)))
	require.NoError(t, te.OnBlock(ctx, triggerBlock))
	pending, err := te.market.PendingEmission(1)
	require.NoError(t, err)
	assert.Equal(t, "0", pending.String())
	assert.Equal(t, "75", te.staking.Stake(1, "other-hk", "other-owner").String())
}
