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
)

type NetworkParameter struct {
	*Base
	Key   string
	Value string
	// NetUID is nil for network wide parameters.
	NetUID *uint16
}

func NewNetworkParameterEvent(ctx context.Context, key, value string, netuid *uint16) *NetworkParameter {
	return &NetworkParameter{
		Base:   newBase(ctx, NetworkParameterEvent),
		Key:    key,
		Value:  value,
		NetUID: netuid,
	}
}

type Checkpoint struct {
	*Base
	Hash   string
	Height uint64
}

func NewCheckpointEvent(ctx context.Context, hash string, height uint64) *Checkpoint {
	return &Checkpoint{
		Base:   newBase(ctx, CheckpointEvent),
		Hash:   hash,
		Height: height,
	}
}
