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

package staking

import (
	"context"

	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/core/market"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.subnetd.io/subnetd/core/staking Ledger,Market

// Broker send events.
type Broker interface {
	Send(event events.Event)
}

// Ledger holds the spendable settlement balances of accounts.
type Ledger interface {
	Debit(ctx context.Context, account types.Coldkey, amount *num.Uint) error
	Credit(ctx context.Context, account types.Coldkey, amount *num.Uint) error
}

// Market is the bonding market the stake is bought from and sold to.
type Market interface {
	Pool(netuid types.NetUID) (*market.Pool, error)
	Commit(netuid types.NetUID, pool *market.Pool) error
	AddOutstanding(netuid types.NetUID, amount *num.Uint) error
	SubOutstanding(netuid types.NetUID, amount *num.Uint) error
}
