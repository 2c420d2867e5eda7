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

package checkpoint_test

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	bmocks "code.subnetd.io/subnetd/core/broker/mocks"
	"code.subnetd.io/subnetd/core/checkpoint"
	"code.subnetd.io/subnetd/core/checkpoint/mocks"
	"code.subnetd.io/subnetd/core/collateral"
	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/core/market"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEngine struct {
	*checkpoint.Engine
	ctrl   *gomock.Controller
	broker *bmocks.MockInterface
}

func getTestEngine(t *testing.T, components ...checkpoint.State) *testEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	broker := bmocks.NewMockInterface(ctrl)
	conf := checkpoint.NewDefaultConfig()
	conf.Interval = 10
	eng, err := checkpoint.New(logging.NewTestLogger(), conf, broker, components...)
	require.NoError(t, err)
	return &testEngine{
		Engine: eng,
		ctrl:   ctrl,
		broker: broker,
	}
}

func newState(ctrl *gomock.Controller, name string) *mocks.MockState {
	s := mocks.NewMockState(ctrl)
	s.EXPECT().Name().AnyTimes().Return(name)
	return s
}

func TestAddComponents(t *testing.T) {
	t.Run("adding the same component twice is a no-op", testAddSameComponent)
	t.Run("two components with the same name", testDuplicateName)
}

func testAddSameComponent(t *testing.T) {
	ctrl := gomock.NewController(t)
	comp := newState(ctrl, "subnets")
	eng := getTestEngine(t, comp, comp)
	require.NoError(t, eng.Add(comp))

	comp.EXPECT().Checkpoint().Times(1).Return([]byte("foo"), nil)
	_, err := eng.Capture(1)
	require.NoError(t, err)
}

func testDuplicateName(t *testing.T) {
	ctrl := gomock.NewController(t)
	comp := newState(ctrl, "subnets")
	comp2 := newState(ctrl, "subnets")

	eng, err := checkpoint.New(logging.NewTestLogger(), checkpoint.NewDefaultConfig(), nil, comp, comp2)
	require.ErrorIs(t, err, checkpoint.ErrComponentWithDuplicateName)
	require.Nil(t, eng)

	te := getTestEngine(t, comp)
	require.ErrorIs(t, te.Add(comp2), checkpoint.ErrComponentWithDuplicateName)
}

func TestLoad(t *testing.T) {
	t.Run("load restores components in order", testLoadInOrder)
	t.Run("load with an invalid hash", testLoadInvalidHash)
	t.Run("load an unknown component", testLoadUnknownComponent)
	t.Run("load a sparse checkpoint", testLoadSparse)
	t.Run("load error is returned", testLoadError)
	t.Run("load from genesis", testLoadGenesis)
}

func capture(t *testing.T, data map[string][]byte, names ...string) *checkpoint.Snapshot {
	t.Helper()
	ctrl := gomock.NewController(t)
	comps := make([]checkpoint.State, 0, len(names))
	for _, n := range names {
		c := newState(ctrl, n)
		c.EXPECT().Checkpoint().Return(data[n], nil)
		comps = append(comps, c)
	}
	eng := getTestEngine(t, comps...)
	snap, err := eng.Capture(42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), snap.Height)
	require.Len(t, snap.Hash, 32)
	return snap
}

func testLoadInOrder(t *testing.T) {
	data := map[string][]byte{"subnets": []byte(`{"a":1}`), "market": []byte(`[2]`)}
	snap := capture(t, data, "subnets", "market")
	comps, err := snap.Components()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(comps["subnets"]))
	assert.JSONEq(t, `[2]`, string(comps["market"]))

	ctrl := gomock.NewController(t)
	subnets, mkt := newState(ctrl, "subnets"), newState(ctrl, "market")
	gomock.InOrder(
		subnets.EXPECT().Load(gomock.Any(), data["subnets"]).Return(nil),
		mkt.EXPECT().Load(gomock.Any(), data["market"]).Return(nil),
	)
	eng := getTestEngine(t, subnets, mkt)
	require.NoError(t, eng.Load(context.Background(), snap))
}

func testLoadInvalidHash(t *testing.T) {
	snap := capture(t, map[string][]byte{"subnets": []byte("foo")}, "subnets")
	snap.State[len(snap.State)-2] = ' '

	ctrl := gomock.NewController(t)
	eng := getTestEngine(t, newState(ctrl, "subnets"))
	require.ErrorIs(t, eng.Load(context.Background(), snap), checkpoint.ErrCheckpointHashMismatch)
	require.ErrorIs(t, eng.Load(context.Background(), nil), checkpoint.ErrNoCheckpoint)
}

func testLoadUnknownComponent(t *testing.T) {
	snap := capture(t, map[string][]byte{"subnets": []byte("foo"), "rogue": []byte("x")}, "subnets", "rogue")

	ctrl := gomock.NewController(t)
	eng := getTestEngine(t, newState(ctrl, "subnets"))
	require.ErrorIs(t, eng.Load(context.Background(), snap), checkpoint.ErrUnknownCheckpointName)
}

func testLoadSparse(t *testing.T) {
	snap := capture(t, map[string][]byte{"market": []byte("bar")}, "market")

	ctrl := gomock.NewController(t)
	subnets, mkt := newState(ctrl, "subnets"), newState(ctrl, "market")
	mkt.EXPECT().Load(gomock.Any(), []byte("bar")).Return(nil)
	eng := getTestEngine(t, subnets, mkt)
	require.NoError(t, eng.Load(context.Background(), snap))
}

func testLoadError(t *testing.T) {
	snap := capture(t, map[string][]byte{"market": []byte("bar")}, "market")

	ctrl := gomock.NewController(t)
	mkt := newState(ctrl, "market")
	boom := errors.New("boom")
	mkt.EXPECT().Load(gomock.Any(), gomock.Any()).Return(boom)
	eng := getTestEngine(t, mkt)
	require.ErrorIs(t, eng.Load(context.Background(), snap), boom)
}

func testLoadGenesis(t *testing.T) {
	snap := capture(t, map[string][]byte{"market": []byte("bar")}, "market")

	ctrl := gomock.NewController(t)
	mkt := newState(ctrl, "market")
	mkt.EXPECT().Load(gomock.Any(), []byte("bar")).Return(nil)
	eng := getTestEngine(t, mkt)

	// nothing to load
	require.NoError(t, eng.LoadGenesis(context.Background(), checkpoint.GenesisState{}))
	require.NoError(t, eng.LoadGenesis(context.Background(), checkpoint.GenesisState{
		CheckpointHash:  snap.HashHex(),
		CheckpointState: hex.EncodeToString(snap.State),
	}))
	assert.Equal(t, snap.HashHex(), snap.Genesis().CheckpointHash)
	require.Error(t, eng.LoadGenesis(context.Background(), checkpoint.GenesisState{
		CheckpointHash:  "zz",
		CheckpointState: hex.EncodeToString(snap.State),
	}))
}

func TestCheckpointInterval(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	comp := newState(ctrl, "market")
	comp.EXPECT().Checkpoint().AnyTimes().Return([]byte("bar"), nil)
	eng := getTestEngine(t, comp)

	store, err := checkpoint.NewMemStore()
	require.NoError(t, err)
	defer store.Close()
	eng.SetStore(store)

	snap, err := eng.Checkpoint(ctx, 5)
	require.NoError(t, err)
	require.Nil(t, snap)

	eng.broker.EXPECT().Send(gomock.Any()).Times(2).Do(func(evt events.Event) {
		assert.Equal(t, events.CheckpointEvent, evt.Type())
	})
	snap, err = eng.Checkpoint(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, snap)
	_, err = eng.Checkpoint(ctx, 20)
	require.NoError(t, err)

	heights, err := store.Heights()
	require.NoError(t, err)
	assert.Equal(t, []uint64{10, 20}, heights)

	got, err := store.Get(10)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, uint64(20), latest.Height)

	_, err = store.Get(11)
	require.ErrorIs(t, err, checkpoint.ErrCheckpointNotFound)
}

func TestEmptyStore(t *testing.T) {
	store, err := checkpoint.NewMemStore()
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Latest()
	require.ErrorIs(t, err, checkpoint.ErrCheckpointNotFound)
	heights, err := store.Heights()
	require.NoError(t, err)
	assert.Empty(t, heights)
}

func TestEngineStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	log := logging.NewTestLogger()

	ledger := collateral.New(log, collateral.NewDefaultConfig())
	mkt := market.New(log, market.NewDefaultConfig())
	require.NoError(t, ledger.Deposit(ctx, "alice", num.NewUint(1000)))
	require.NoError(t, mkt.CreatePool(ctx, 1, num.NewUint(100)))
	require.NoError(t, mkt.CreatePool(ctx, 3, num.NewUint(250)))
	_, err := mkt.Inject(ctx, 3, num.NewUint(25))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	eng, err := checkpoint.New(log, checkpoint.NewDefaultConfig(), bmocks.NewMockInterface(ctrl), ledger, mkt)
	require.NoError(t, err)
	snap, err := eng.Capture(7)
	require.NoError(t, err)

	ledger2 := collateral.New(log, collateral.NewDefaultConfig())
	mkt2 := market.New(log, market.NewDefaultConfig())
	eng2, err := checkpoint.New(log, checkpoint.NewDefaultConfig(), bmocks.NewMockInterface(ctrl), ledger2, mkt2)
	require.NoError(t, err)
	require.NoError(t, eng2.Load(ctx, snap))

	uintCmp := cmp.Comparer(func(a, b *num.Uint) bool { return a.EQ(b) })
	assert.Empty(t, cmp.Diff(ledger.Balance("alice"), ledger2.Balance("alice"), uintCmp))
	assert.Empty(t, cmp.Diff(mkt.IDs(), mkt2.IDs()))
	for _, id := range []types.NetUID{1, 3} {
		want, err := mkt.Pool(id)
		require.NoError(t, err)
		got, err := mkt2.Pool(id)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(want, got, uintCmp))
		wantPending, _ := mkt.PendingEmission(id)
		gotPending, _ := mkt2.PendingEmission(id)
		assert.Empty(t, cmp.Diff(wantPending, gotPending, uintCmp))
	}

	// capturing the restored state gives the same hash
	snap2, err := eng2.Capture(7)
	require.NoError(t, err)
	assert.Equal(t, snap.HashHex(), snap2.HashHex())
}
