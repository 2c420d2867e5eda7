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

package coinbase

import (
	"code.subnetd.io/subnetd/libs/num"
)

// EmissionPolicy decides how much settlement asset is emitted in a block
// given everything issued so far.
type EmissionPolicy interface {
	BlockEmission(totalIssuance *num.Uint) *num.Uint
}

// HalvingPolicy emits InitialBlockEmission until half of TotalSupply is
// issued, then halves the emission each time half of the remaining supply
// is issued. It never emits past TotalSupply.
type HalvingPolicy struct {
	TotalSupply          *num.Uint
	InitialBlockEmission *num.Uint
}

func NewHalvingPolicy(totalSupply, initialBlockEmission uint64) *HalvingPolicy {
	return &HalvingPolicy{
		TotalSupply:          num.NewUint(totalSupply),
		InitialBlockEmission: num.NewUint(initialBlockEmission),
	}
}

func (p *HalvingPolicy) BlockEmission(issued *num.Uint) *num.Uint {
	if issued.GTE(p.TotalSupply) {
		return num.UintZero()
	}
	remaining := num.UintZero().Sub(p.TotalSupply, issued)

	// era n ends once TotalSupply * (1 - 2^-(n+1)) has been issued
	for n := uint(0); n < 256; n++ {
		emission := num.UintZero().Rsh(p.InitialBlockEmission, n)
		if emission.IsZero() {
			return emission
		}
		threshold := num.UintZero().Sub(p.TotalSupply, num.UintZero().Rsh(p.TotalSupply, n+1))
		if issued.LT(threshold) {
			return num.Min(emission, remaining)
		}
	}
	return num.UintZero()
}

// FixedPolicy emits the same amount every block, mostly useful in tests
// and simulations.
type FixedPolicy struct {
	Emission *num.Uint
}

func (p FixedPolicy) BlockEmission(_ *num.Uint) *num.Uint {
	return p.Emission.Clone()
}
