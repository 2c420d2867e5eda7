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

package coinbase_test

import (
	"context"
	"testing"

	bmocks "code.subnetd.io/subnetd/core/broker/mocks"
	"code.subnetd.io/subnetd/core/coinbase"
	"code.subnetd.io/subnetd/core/coinbase/mocks"
	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/core/market"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEngine struct {
	*coinbase.Engine
	market *market.Engine
	broker *bmocks.MockInterface
	policy *mocks.MockEmissionPolicy
	events []events.Event
}

// getTestEngine opens subnet 1 at 200/50 (price 4) and subnet 2 at
// parity with 300 locked.
func getTestEngine(t *testing.T) *testEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := logging.NewTestLogger()
	ctx := context.Background()

	mkt := market.New(log, market.NewDefaultConfig())
	require.NoError(t, mkt.CreatePool(ctx, 1, num.NewUint(100)))
	require.NoError(t, mkt.CreatePool(ctx, 2, num.NewUint(300)))
	pool, err := mkt.Pool(1)
	require.NoError(t, err)
	_, np, err := pool.QuoteStakeIn(num.NewUint(100))
	require.NoError(t, err)
	require.NoError(t, mkt.Commit(1, np))

	te := &testEngine{
		market: mkt,
		broker: bmocks.NewMockInterface(ctrl),
		policy: mocks.NewMockEmissionPolicy(ctrl),
	}
	te.broker.EXPECT().Send(gomock.Any()).AnyTimes().Do(func(evt events.Event) {
		te.events = append(te.events, evt)
	})
	te.Engine = coinbase.New(log, coinbase.NewDefaultConfig(), te.broker, mkt, te.policy)
	return te
}

func TestRunCoinbase(t *testing.T) {
	t.Run("emission is split by settlement reserve", testSplitBySettlementReserve)
	t.Run("injection moves prices toward parity", testInjectionSide)
	t.Run("rounding dust is not issued", testRoundingDust)
	t.Run("nothing happens without emission", testNoEmission)
	t.Run("nothing happens without markets", testNoMarkets)
	t.Run("issuance survives checkpoint", testCheckpoint)
}

func testSplitBySettlementReserve(t *testing.T) {
	te := getTestEngine(t)
	ctx := context.Background()
	te.policy.EXPECT().BlockEmission(gomock.Any()).Return(num.NewUint(100))

	require.NoError(t, te.RunCoinbase(ctx, 1))

	// 200 and 300 settlement reserve
	assert.Equal(t, "40", te.EmissionValue(1).String())
	assert.Equal(t, "60", te.EmissionValue(2).String())
	assert.Equal(t, "0", te.EmissionValue(3).String())
	assert.Equal(t, "100", te.Issuance().String())

	pending, err := te.market.PendingEmission(1)
	require.NoError(t, err)
	assert.Equal(t, "40", pending.String())
	pending, err = te.market.PendingEmission(2)
	require.NoError(t, err)
	assert.Equal(t, "60", pending.String())

	require.Len(t, te.events, 2)
	evt, ok := te.events[0].(*events.EmissionInjected)
	require.True(t, ok)
	assert.Equal(t, types.NetUID(1), evt.NetUID)
	assert.Equal(t, "40", evt.Amount.String())
}

func testInjectionSide(t *testing.T) {
	te := getTestEngine(t)
	ctx := context.Background()
	te.policy.EXPECT().BlockEmission(gomock.Any()).Return(num.NewUint(100))

	require.NoError(t, te.RunCoinbase(ctx, 1))

	// above parity, minted into the asset reserve
	pool, err := te.market.Pool(1)
	require.NoError(t, err)
	assert.Equal(t, "200", pool.SettlementReserve.String())
	assert.Equal(t, "90", pool.AssetReserve.String())
	assert.Equal(t, "18000", pool.K.String())

	// at parity, deposited into the settlement reserve
	pool, err = te.market.Pool(2)
	require.NoError(t, err)
	assert.Equal(t, "360", pool.SettlementReserve.String())
	assert.Equal(t, "300", pool.AssetReserve.String())

	assert.True(t, te.events[0].(*events.EmissionInjected).ToAssetReserve)
	assert.False(t, te.events[1].(*events.EmissionInjected).ToAssetReserve)
	require.NoError(t, te.market.CheckInvariants())
}

func testRoundingDust(t *testing.T) {
	te := getTestEngine(t)
	ctx := context.Background()
	te.policy.EXPECT().BlockEmission(gomock.Any()).Return(num.NewUint(7))

	require.NoError(t, te.RunCoinbase(ctx, 1))

	assert.Equal(t, "2", te.EmissionValue(1).String())
	assert.Equal(t, "4", te.EmissionValue(2).String())
	assert.Equal(t, "6", te.Issuance().String())
}

func testNoEmission(t *testing.T) {
	te := getTestEngine(t)
	ctx := context.Background()
	te.SetIssuance(num.NewUint(42))
	te.policy.EXPECT().BlockEmission(num.NewUint(42)).Return(num.UintZero())

	require.NoError(t, te.RunCoinbase(ctx, 1))
	assert.Equal(t, "42", te.Issuance().String())
	assert.Empty(t, te.events)
}

func testNoMarkets(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := logging.NewTestLogger()
	broker := bmocks.NewMockInterface(ctrl)
	mkt := market.New(log, market.NewDefaultConfig())
	eng := coinbase.New(log, coinbase.NewDefaultConfig(), broker, mkt, coinbase.FixedPolicy{Emission: num.NewUint(10)})

	require.NoError(t, eng.RunCoinbase(context.Background(), 1))
	assert.Equal(t, "0", eng.Issuance().String())
}

func testCheckpoint(t *testing.T) {
	te := getTestEngine(t)
	ctx := context.Background()
	te.policy.EXPECT().BlockEmission(gomock.Any()).Return(num.NewUint(100))
	require.NoError(t, te.RunCoinbase(ctx, 1))

	data, err := te.Checkpoint()
	require.NoError(t, err)

	other := getTestEngine(t)
	require.NoError(t, other.Load(ctx, data))
	assert.Equal(t, "100", other.Issuance().String())
	assert.Equal(t, "0", other.EmissionValue(1).String())
	assert.Equal(t, te.Name(), other.Name())
}
