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

package pow_test

import (
	"context"
	"math"
	"testing"

	"code.subnetd.io/subnetd/core/pow"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestEngine() *pow.Engine {
	return pow.New(logging.NewTestLogger(), pow.NewDefaultConfig())
}

func TestValidate(t *testing.T) {
	t.Run("empty proof pays with a burn", testBurnChannel)
	t.Run("proof must be a nonce", testInvalidProofSize)
	t.Run("proof must meet the difficulty", testDifficulty)
	t.Run("a proof can only be used once", testReplay)
}

func testBurnChannel(t *testing.T) {
	e := getTestEngine()
	ch, err := e.Validate(context.Background(), 1, "hk", "ck", math.MaxUint64, nil)
	require.NoError(t, err)
	assert.Equal(t, types.RegistrationChannelBurn, ch)
}

func testInvalidProofSize(t *testing.T) {
	e := getTestEngine()
	_, err := e.Validate(context.Background(), 1, "hk", "ck", 1, []byte{1, 2, 3})
	require.ErrorIs(t, err, pow.ErrInvalidProofSize)
}

func testDifficulty(t *testing.T) {
	e := getTestEngine()
	ctx := context.Background()

	_, err := e.Validate(ctx, 1, "hk", "ck", math.MaxUint64, pow.Proof(0))
	require.ErrorIs(t, err, pow.ErrDifficultyNotMet)

	proof, err := pow.Solve(1, "hk", 1_000, 0, 100_000)
	require.NoError(t, err)
	ch, err := e.Validate(ctx, 1, "hk", "ck", 1_000, proof)
	require.NoError(t, err)
	assert.Equal(t, types.RegistrationChannelPoW, ch)

	// the seal is bound to the subnet and the hotkey
	assert.NotEqual(t, pow.Seal(1, "hk", 7), pow.Seal(2, "hk", 7))
	assert.NotEqual(t, pow.Seal(1, "hk", 7), pow.Seal(1, "hk2", 7))
}

func testReplay(t *testing.T) {
	e := getTestEngine()
	ctx := context.Background()

	_, err := e.Validate(ctx, 1, "hk", "ck", 1, pow.Proof(42))
	require.NoError(t, err)
	_, err = e.Validate(ctx, 1, "hk", "ck", 1, pow.Proof(42))
	require.ErrorIs(t, err, pow.ErrProofAlreadyUsed)
	// same nonce for another hotkey is another seal
	_, err = e.Validate(ctx, 1, "other", "ck", 1, pow.Proof(42))
	require.NoError(t, err)

	data, err := e.Checkpoint()
	require.NoError(t, err)
	restored := getTestEngine()
	require.NoError(t, restored.Load(ctx, data))
	_, err = restored.Validate(ctx, 1, "hk", "ck", 1, pow.Proof(42))
	require.ErrorIs(t, err, pow.ErrProofAlreadyUsed)
}

func TestMeetsDifficulty(t *testing.T) {
	zero := make([]byte, 32)
	assert.True(t, pow.MeetsDifficulty(zero, math.MaxUint64))

	max := make([]byte, 32)
	for i := range max {
		max[i] = 0xff
	}
	assert.True(t, pow.MeetsDifficulty(max, 1))
	assert.False(t, pow.MeetsDifficulty(max, 2))

	_, err := pow.Solve(1, "hk", math.MaxUint64, 0, 10)
	require.ErrorIs(t, err, pow.ErrNoSolutionInBudget)
}
