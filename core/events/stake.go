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

package events

import (
	"context"

	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
)

// StakeChange is emitted when a holder stakes into or unstakes out of a subnet market.
type StakeChange struct {
	*Base
	NetUID     types.NetUID
	Hotkey     types.Hotkey
	Coldkey    types.Coldkey
	Settlement *num.Uint
	Asset      *num.Uint
}

func NewStakeAdded(ctx context.Context, netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey, settlementIn, assetOut *num.Uint) *StakeChange {
	return &StakeChange{
		Base:       newBase(ctx, StakeAddedEvent),
		NetUID:     netuid,
		Hotkey:     hotkey,
		Coldkey:    coldkey,
		Settlement: settlementIn.Clone(),
		Asset:      assetOut.Clone(),
	}
}

func NewStakeRemoved(ctx context.Context, netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey, settlementOut, assetIn *num.Uint) *StakeChange {
	return &StakeChange{
		Base:       newBase(ctx, StakeRemovedEvent),
		NetUID:     netuid,
		Hotkey:     hotkey,
		Coldkey:    coldkey,
		Settlement: settlementOut.Clone(),
		Asset:      assetIn.Clone(),
	}
}

type DelegateTakeUpdated struct {
	*Base
	Hotkey types.Hotkey
	// NetUID is nil when the default take of the delegate is updated.
	NetUID *types.NetUID
	Take   uint16
}

func NewDelegateTakeUpdated(ctx context.Context, hotkey types.Hotkey, netuid *types.NetUID, take uint16) *DelegateTakeUpdated {
	return &DelegateTakeUpdated{
		Base:   newBase(ctx, DelegateTakeUpdatedEvent),
		Hotkey: hotkey,
		NetUID: netuid,
		Take:   take,
	}
}

type EmissionInjected struct {
	*Base
	NetUID types.NetUID
	Amount *num.Uint
	// ToAssetReserve is true when the amount was minted into the asset
	// reserve, false when it was deposited into the settlement reserve.
	ToAssetReserve bool
}

func NewEmissionInjected(ctx context.Context, netuid types.NetUID, amount *num.Uint, toAsset bool) *EmissionInjected {
	return &EmissionInjected{
		Base:           newBase(ctx, EmissionInjectedEvent),
		NetUID:         netuid,
		Amount:         amount.Clone(),
		ToAssetReserve: toAsset,
	}
}

type RewardPayout struct {
	*Base
	NetUID  types.NetUID
	Hotkey  types.Hotkey
	Coldkey types.Coldkey
	Amount  *num.Uint
	// Take is true for the cut retained by the hotkey controller.
	Take bool
}

func NewRewardPayout(ctx context.Context, netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey, amount *num.Uint, take bool) *RewardPayout {
	return &RewardPayout{
		Base:    newBase(ctx, RewardPayoutEvent),
		NetUID:  netuid,
		Hotkey:  hotkey,
		Coldkey: coldkey,
		Amount:  amount.Clone(),
		Take:    take,
	}
}
