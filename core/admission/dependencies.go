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

package admission

import (
	"context"

	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.subnetd.io/subnetd/core/admission Ledger,RegistrationOracle,KeyRegistry

// Broker send events.
type Broker interface {
	Send(event events.Event)
}

// Subnets gives access to the parameters of registered subnets.
type Subnets interface {
	IDs() []types.NetUID
	Params(netuid types.NetUID) (types.SubnetParams, error)
}

// Ledger holds the spendable settlement balances of accounts.
type Ledger interface {
	Debit(ctx context.Context, account types.Coldkey, amount *num.Uint) error
}

// RegistrationOracle validates a registration request and tells which
// channel paid for it.
type RegistrationOracle interface {
	Validate(ctx context.Context, netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey, difficulty uint64, proof []byte) (types.RegistrationChannel, error)
}

// KeyRegistry records which hotkeys are registered on which subnet and
// which coldkey controls them.
type KeyRegistry interface {
	IsRegistered(netuid types.NetUID, hotkey types.Hotkey) bool
	CanClaim(hotkey types.Hotkey, coldkey types.Coldkey) error
	RegisterHotkey(ctx context.Context, netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey) error
}
