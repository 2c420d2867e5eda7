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

type SubnetCreated struct {
	*Base
	NetUID types.NetUID
	Owner  types.Coldkey
}

func NewSubnetCreated(ctx context.Context, netuid types.NetUID, owner types.Coldkey) *SubnetCreated {
	return &SubnetCreated{
		Base:   newBase(ctx, SubnetCreatedEvent),
		NetUID: netuid,
		Owner:  owner,
	}
}

type SubnetRemoved struct {
	*Base
	NetUID types.NetUID
}

func NewSubnetRemoved(ctx context.Context, netuid types.NetUID) *SubnetRemoved {
	return &SubnetRemoved{
		Base:   newBase(ctx, SubnetRemovedEvent),
		NetUID: netuid,
	}
}

type Registration struct {
	*Base
	NetUID  types.NetUID
	Hotkey  types.Hotkey
	Coldkey types.Coldkey
	Channel types.RegistrationChannel
	// Cost is the burn paid, zero for proof of work registrations.
	Cost *num.Uint
}

func NewRegistration(ctx context.Context, netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey, channel types.RegistrationChannel, cost *num.Uint) *Registration {
	return &Registration{
		Base:    newBase(ctx, RegistrationEvent),
		NetUID:  netuid,
		Hotkey:  hotkey,
		Coldkey: coldkey,
		Channel: channel,
		Cost:    cost.Clone(),
	}
}

type AdmissionAdjusted struct {
	*Base
	NetUID             types.NetUID
	Burn               *num.Uint
	Difficulty         uint64
	PowRegistrations   uint32
	BurnRegistrations  uint32
	TargetRegistration uint16
}

func NewAdmissionAdjusted(ctx context.Context, netuid types.NetUID, burn *num.Uint, difficulty uint64, pow, burned uint32, target uint16) *AdmissionAdjusted {
	return &AdmissionAdjusted{
		Base:               newBase(ctx, AdmissionAdjustedEvent),
		NetUID:             netuid,
		Burn:               burn.Clone(),
		Difficulty:         difficulty,
		PowRegistrations:   pow,
		BurnRegistrations:  burned,
		TargetRegistration: target,
	}
}

type BlockApplied struct {
	*Base
	Height uint64
}

func NewBlockApplied(ctx context.Context, height uint64) *BlockApplied {
	return &BlockApplied{
		Base:   newBase(ctx, BlockAppliedEvent),
		Height: height,
	}
}
