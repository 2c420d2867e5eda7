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
	"testing"

	"code.subnetd.io/subnetd/core/coinbase"
	"code.subnetd.io/subnetd/libs/num"

	"github.com/stretchr/testify/assert"
)

func TestHalvingPolicy(t *testing.T) {
	p := coinbase.NewHalvingPolicy(1000, 8)

	assert.Equal(t, "8", p.BlockEmission(num.NewUint(0)).String())
	assert.Equal(t, "8", p.BlockEmission(num.NewUint(499)).String())
	// half issued
	assert.Equal(t, "4", p.BlockEmission(num.NewUint(500)).String())
	assert.Equal(t, "4", p.BlockEmission(num.NewUint(749)).String())
	// three quarters issued
	assert.Equal(t, "2", p.BlockEmission(num.NewUint(750)).String())
	assert.Equal(t, "1", p.BlockEmission(num.NewUint(875)).String())
	// emission has halved to nothing
	assert.Equal(t, "0", p.BlockEmission(num.NewUint(938)).String())
	assert.Equal(t, "0", p.BlockEmission(num.NewUint(1000)).String())
	assert.Equal(t, "0", p.BlockEmission(num.NewUint(5000)).String())

	// never emits past the supply
	p = coinbase.NewHalvingPolicy(1000, 600)
	assert.Equal(t, "600", p.BlockEmission(num.NewUint(0)).String())
	p = coinbase.NewHalvingPolicy(1000, 2000)
	assert.Equal(t, "1000", p.BlockEmission(num.NewUint(0)).String())
}

func TestIssuanceNeverExceedsSupply(t *testing.T) {
	p := coinbase.NewHalvingPolicy(1_000_000, 1_000)
	issued := num.UintZero()
	for i := 0; i < 100_000; i++ {
		e := p.BlockEmission(issued)
		if e.IsZero() {
			break
		}
		issued.AddSum(e)
	}
	assert.True(t, issued.LTE(num.NewUint(1_000_000)))
}
