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
	"context"
	"encoding/json"
	"fmt"

	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/core/market"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"
)

const namedLogger = "coinbase"

//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.subnetd.io/subnetd/core/coinbase EmissionPolicy

// Broker send events.
type Broker interface {
	Send(event events.Event)
}

// Market is where the emission is injected.
type Market interface {
	IDs() []types.NetUID
	Pool(netuid types.NetUID) (*market.Pool, error)
	Inject(ctx context.Context, netuid types.NetUID, amount *num.Uint) (bool, error)
}

// Engine allocates the block emission across subnets by the weight of
// their settlement reserve and injects it in their markets.
type Engine struct {
	log    *logging.Logger
	broker Broker
	market Market
	policy EmissionPolicy

	issuance *num.Uint
	// emission allocated to each subnet on the last block
	emission map[types.NetUID]*num.Uint
}

func New(log *logging.Logger, conf Config, broker Broker, market Market, policy EmissionPolicy) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(conf.Level.Get())

	if policy == nil {
		policy = NewHalvingPolicy(conf.TotalSupply, conf.InitialBlockEmission)
	}

	return &Engine{
		log:      log,
		broker:   broker,
		market:   market,
		policy:   policy,
		issuance: num.UintZero(),
		emission: map[types.NetUID]*num.Uint{},
	}
}

// SetIssuance sets the total issued so far, used at genesis.
func (e *Engine) SetIssuance(issuance *num.Uint) {
	e.issuance = issuance.Clone()
}

func (e *Engine) Issuance() *num.Uint {
	return e.issuance.Clone()
}

// EmissionValue returns what the subnet received on the last block.
func (e *Engine) EmissionValue(netuid types.NetUID) *num.Uint {
	if v, ok := e.emission[netuid]; ok {
		return v.Clone()
	}
	return num.UintZero()
}

// RunCoinbase emits the block emission, in ascending netuid order.
func (e *Engine) RunCoinbase(ctx context.Context, block uint64) error {
	e.emission = map[types.NetUID]*num.Uint{}

	total := e.policy.BlockEmission(e.issuance)
	if total.IsZero() {
		return nil
	}

	ids := e.market.IDs()
	reserves := make([]*num.Uint, 0, len(ids))
	weight := num.UintZero()
	for _, id := range ids {
		pool, err := e.market.Pool(id)
		if err != nil {
			return err
		}
		reserves = append(reserves, pool.SettlementReserve)
		if weight, err = num.CheckedAdd(weight, pool.SettlementReserve); err != nil {
			return fmt.Errorf("%w: settlement reserves: %v", types.ErrInvariantViolation, err)
		}
	}
	if weight.IsZero() {
		return nil
	}

	allocated := num.UintZero()
	evts := make([]events.Event, 0, len(ids))
	for i, id := range ids {
		share, err := num.MulDiv(total, reserves[i], weight)
		if err != nil {
			return fmt.Errorf("%w: emission share: %v", types.ErrInvariantViolation, err)
		}
		if share.IsZero() {
			continue
		}
		toAsset, err := e.market.Inject(ctx, id, share)
		if err != nil {
			return err
		}
		e.emission[id] = share
		allocated.AddSum(share)
		evts = append(evts, events.NewEmissionInjected(ctx, id, share, toAsset))
	}

	issuance, err := num.CheckedAdd(e.issuance, allocated)
	if err != nil {
		return fmt.Errorf("%w: issuance: %v", types.ErrInvariantViolation, err)
	}
	e.issuance = issuance

	if e.log.IsDebug() {
		e.log.Debug("coinbase",
			logging.Block(block),
			logging.BigUint("emission", total),
			logging.BigUint("allocated", allocated),
			logging.BigUint("issuance", e.issuance))
	}
	for _, evt := range evts {
		e.broker.Send(evt)
	}
	return nil
}

type checkpointState struct {
	Issuance *num.Uint `json:"issuance"`
}

func (e *Engine) Name() string {
	return "coinbase"
}

func (e *Engine) Checkpoint() ([]byte, error) {
	return json.Marshal(checkpointState{Issuance: e.issuance})
}

func (e *Engine) Load(_ context.Context, data []byte) error {
	st := checkpointState{}
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	e.issuance = st.Issuance
	e.emission = map[types.NetUID]*num.Uint{}
	return nil
}
