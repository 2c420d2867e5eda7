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

	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/core/staking"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.subnetd.io/subnetd/core/rewards EpochScorer

// Broker send events.
type Broker interface {
	Send(event events.Event)
}

// EpochScorer splits the pending emission of a subnet between its hotkeys.
type EpochScorer interface {
	Score(ctx context.Context, netuid types.NetUID, pending *num.Uint) []types.EmissionTuple
}

// Subnets gives access to the parameters of registered subnets.
type Subnets interface {
	IDs() []types.NetUID
	Params(netuid types.NetUID) (types.SubnetParams, error)
}

// Market holds the pending emission and outstanding asset of each subnet.
type Market interface {
	HasPool(netuid types.NetUID) bool
	PendingEmission(netuid types.NetUID) (*num.Uint, error)
	DrainPending(netuid types.NetUID, amount *num.Uint) error
	AddOutstanding(netuid types.NetUID, amount *num.Uint) error
}

// Stakes is the stake ledger and delegation registry.
type Stakes interface {
	Owner(hotkey types.Hotkey) (types.Coldkey, bool)
	Take(netuid types.NetUID, hotkey types.Hotkey) (uint16, bool)
	Holders(netuid types.NetUID, hotkey types.Hotkey) []staking.Holding
	HotkeyTotal(netuid types.NetUID, hotkey types.Hotkey) *num.Uint
	HotkeysOnSubnet(netuid types.NetUID) []types.Hotkey
	CreditStake(netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey, amount *num.Uint) error
}
