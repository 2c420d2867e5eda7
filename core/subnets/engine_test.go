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

package subnets_test

import (
	"context"
	"testing"

	bmocks "code.subnetd.io/subnetd/core/broker/mocks"
	"code.subnetd.io/subnetd/core/subnets"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEngine struct {
	*subnets.Engine
	ctrl   *gomock.Controller
	broker *bmocks.MockInterface
}

func getTestEngine(t *testing.T) *testEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	broker := bmocks.NewMockInterface(ctrl)
	return &testEngine{
		Engine: subnets.New(logging.NewTestLogger(), subnets.NewDefaultConfig(), broker),
		ctrl:   ctrl,
		broker: broker,
	}
}

func TestRegistry(t *testing.T) {
	t.Run("subnets are listed in ascending order", testAscendingIDs)
	t.Run("invalid parameters are rejected", testCreateInvalid)
	t.Run("update is validated before it is applied", testUpdate)
	t.Run("checkpoint round trip", testCheckpoint)
}

func testAscendingIDs(t *testing.T) {
	eng := getTestEngine(t)
	ctx := context.Background()
	eng.broker.EXPECT().Send(gomock.Any()).Times(5)

	for _, id := range []types.NetUID{5, 1, 3, 2} {
		require.NoError(t, eng.Create(ctx, id, "owner", "hk", types.DefaultSubnetParams()))
	}
	assert.Equal(t, []types.NetUID{1, 2, 3, 5}, eng.IDs())
	require.ErrorIs(t, eng.Create(ctx, 3, "owner", "hk", types.DefaultSubnetParams()), types.ErrSubnetAlreadyExist)

	require.NoError(t, eng.Remove(ctx, 2))
	assert.Equal(t, []types.NetUID{1, 3, 5}, eng.IDs())
	assert.False(t, eng.Exists(2))
	require.ErrorIs(t, eng.Remove(ctx, 2), types.ErrSubnetDoesNotExist)
	_, err := eng.Get(2)
	require.ErrorIs(t, err, types.ErrSubnetDoesNotExist)
}

func testCreateInvalid(t *testing.T) {
	eng := getTestEngine(t)
	params := types.DefaultSubnetParams()
	params.TargetRegistrationsPerInterval = 0
	err := eng.Create(context.Background(), 1, "owner", "hk", params)
	require.ErrorIs(t, err, types.ErrTargetRegistrationsIsZero)
	assert.False(t, eng.Exists(1))
}

func testUpdate(t *testing.T) {
	eng := getTestEngine(t)
	ctx := context.Background()
	eng.broker.EXPECT().Send(gomock.Any()).Times(1)
	require.NoError(t, eng.Create(ctx, 1, "owner", "hk", types.DefaultSubnetParams()))

	require.NoError(t, eng.Update(ctx, 1, func(p *types.SubnetParams) { p.Tempo = 7 }))
	err := eng.Update(ctx, 1, func(p *types.SubnetParams) {
		p.Tempo = 8
		p.MinBurn = num.NewUint(1_000_000_000_000)
	})
	require.ErrorIs(t, err, types.ErrMinBurnAboveMax)

	params, err := eng.Params(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(7), params.Tempo)
	assert.Equal(t, "1", params.MinBurn.String())
}

func testCheckpoint(t *testing.T) {
	eng := getTestEngine(t)
	ctx := context.Background()
	eng.broker.EXPECT().Send(gomock.Any()).Times(2)
	require.NoError(t, eng.Create(ctx, 2, "owner", "hk", types.DefaultSubnetParams()))
	require.NoError(t, eng.Create(ctx, 1, "owner1", "hk1", types.DefaultSubnetParams()))

	data, err := eng.Checkpoint()
	require.NoError(t, err)

	other := getTestEngine(t)
	require.NoError(t, other.Load(ctx, data))
	assert.Equal(t, eng.IDs(), other.IDs())
	for _, id := range eng.IDs() {
		want, _ := eng.Get(id)
		got, _ := other.Get(id)
		assert.Empty(t, cmp.Diff(want.Params.MaxBurn.String(), got.Params.MaxBurn.String()))
		assert.Equal(t, want.Owner, got.Owner)
		assert.Equal(t, want.Params.MaxDifficulty, got.Params.MaxDifficulty)
	}
}
