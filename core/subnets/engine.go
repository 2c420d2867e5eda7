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

package subnets

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/config/encoding"
	"code.subnetd.io/subnetd/logging"
)

const namedLogger = "subnets"

type Config struct {
	Level encoding.LogLevel `long:"log-level"`
}

func NewDefaultConfig() Config {
	return Config{
		Level: encoding.LogLevel{Level: logging.InfoLevel},
	}
}

// Broker send events.
type Broker interface {
	Send(event events.Event)
}

// Engine is the registry of subnets, addressed by netuid.
type Engine struct {
	log    *logging.Logger
	broker Broker

	subnets map[types.NetUID]*types.Subnet
	ids     []types.NetUID
}

func New(log *logging.Logger, conf Config, broker Broker) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(conf.Level.Get())

	return &Engine{
		log:     log,
		broker:  broker,
		subnets: map[types.NetUID]*types.Subnet{},
	}
}

// Create registers a new subnet with validated parameters.
func (e *Engine) Create(ctx context.Context, netuid types.NetUID, owner types.Coldkey, ownerHotkey types.Hotkey, params types.SubnetParams) error {
	if _, ok := e.subnets[netuid]; ok {
		return fmt.Errorf("%w: %d", types.ErrSubnetAlreadyExist, netuid)
	}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid parameters for subnet %d: %w", netuid, err)
	}

	e.subnets[netuid] = &types.Subnet{
		ID:          netuid,
		Owner:       owner,
		OwnerHotkey: ownerHotkey,
		Params:      params.Clone(),
	}
	e.insertID(netuid)

	e.log.Info("subnet created",
		logging.NetUID(uint16(netuid)),
		logging.Coldkey(string(owner)))
	e.broker.Send(events.NewSubnetCreated(ctx, netuid, owner))
	return nil
}

func (e *Engine) Remove(ctx context.Context, netuid types.NetUID) error {
	if _, ok := e.subnets[netuid]; !ok {
		return fmt.Errorf("%w: %d", types.ErrSubnetDoesNotExist, netuid)
	}
	delete(e.subnets, netuid)
	i := sort.Search(len(e.ids), func(i int) bool { return e.ids[i] >= netuid })
	e.ids = append(e.ids[:i], e.ids[i+1:]...)

	e.broker.Send(events.NewSubnetRemoved(ctx, netuid))
	return nil
}

// Get returns a copy of the subnet.
func (e *Engine) Get(netuid types.NetUID) (*types.Subnet, error) {
	s, ok := e.subnets[netuid]
	if !ok {
		return nil, fmt.Errorf("%w: %d", types.ErrSubnetDoesNotExist, netuid)
	}
	return s.Clone(), nil
}

// Params returns the parameters of the subnet, the returned value can be
// mutated freely by the caller.
func (e *Engine) Params(netuid types.NetUID) (types.SubnetParams, error) {
	s, ok := e.subnets[netuid]
	if !ok {
		return types.SubnetParams{}, fmt.Errorf("%w: %d", types.ErrSubnetDoesNotExist, netuid)
	}
	return s.Params.Clone(), nil
}

func (e *Engine) Exists(netuid types.NetUID) bool {
	_, ok := e.subnets[netuid]
	return ok
}

// IDs returns all netuids in ascending order.
func (e *Engine) IDs() []types.NetUID {
	out := make([]types.NetUID, len(e.ids))
	copy(out, e.ids)
	return out
}

// Update applies f to a copy of the parameters, the copy replaces the
// current parameters only if it is valid.
func (e *Engine) Update(_ context.Context, netuid types.NetUID, f func(*types.SubnetParams)) error {
	s, ok := e.subnets[netuid]
	if !ok {
		return fmt.Errorf("%w: %d", types.ErrSubnetDoesNotExist, netuid)
	}
	params := s.Params.Clone()
	f(&params)
	if err := params.Validate(); err != nil {
		return err
	}
	s.Params = params
	return nil
}

func (e *Engine) insertID(netuid types.NetUID) {
	i := sort.Search(len(e.ids), func(i int) bool { return e.ids[i] >= netuid })
	e.ids = append(e.ids, 0)
	copy(e.ids[i+1:], e.ids[i:])
	e.ids[i] = netuid
}

func (e *Engine) Name() string {
	return "subnets"
}

func (e *Engine) Checkpoint() ([]byte, error) {
	out := make([]*types.Subnet, 0, len(e.ids))
	for _, id := range e.ids {
		out = append(out, e.subnets[id])
	}
	return json.Marshal(out)
}

func (e *Engine) Load(_ context.Context, data []byte) error {
	var in []*types.Subnet
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	e.subnets = make(map[types.NetUID]*types.Subnet, len(in))
	e.ids = make([]types.NetUID, 0, len(in))
	for _, s := range in {
		e.subnets[s.ID] = s
		e.insertID(s.ID)
	}
	return nil
}
