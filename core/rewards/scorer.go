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

package rewards

import (
	"context"

	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
)

// StakeScorer is the default scorer: the whole pending emission goes to
// validators, pro-rata to the stake held through each hotkey.
type StakeScorer struct {
	stakes Stakes
}

func NewStakeScorer(stakes Stakes) *StakeScorer {
	return &StakeScorer{stakes: stakes}
}

func (s *StakeScorer) Score(_ context.Context, netuid types.NetUID, pending *num.Uint) []types.EmissionTuple {
	hotkeys := s.stakes.HotkeysOnSubnet(netuid)
	totals := make([]*num.Uint, 0, len(hotkeys))
	sum := num.UintZero()
	for _, hk := range hotkeys {
		t := s.stakes.HotkeyTotal(netuid, hk)
		totals = append(totals, t)
		sum.AddSum(t)
	}
	if sum.IsZero() {
		return nil
	}

	out := make([]types.EmissionTuple, 0, len(hotkeys))
	for i, hk := range hotkeys {
		share, err := num.MulDiv(pending, totals[i], sum)
		if err != nil || share.IsZero() {
			continue
		}
		out = append(out, types.EmissionTuple{
			Hotkey:            hk,
			ServerEmission:    num.UintZero(),
			ValidatorEmission: share,
		})
	}
	return out
}
