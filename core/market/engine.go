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

package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/config/encoding"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const namedLogger = "market"

var (
	ErrPoolDoesNotExist  = errors.New("no market for subnet")
	ErrPoolAlreadyExists = errors.New("market already exists for subnet")
)

type Config struct {
	Level encoding.LogLevel `long:"log-level"`
}

func NewDefaultConfig() Config {
	return Config{
		Level: encoding.LogLevel{Level: logging.InfoLevel},
	}
}

// Engine holds the market and the pending emission of every non root subnet.
type Engine struct {
	log *logging.Logger

	pools   map[types.NetUID]*Pool
	pending map[types.NetUID]*num.Uint
}

func New(log *logging.Logger, conf Config) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(conf.Level.Get())

	return &Engine{
		log:     log,
		pools:   map[types.NetUID]*Pool{},
		pending: map[types.NetUID]*num.Uint{},
	}
}

// CreatePool opens the market of a subnet at parity.
func (e *Engine) CreatePool(_ context.Context, netuid types.NetUID, lock *num.Uint) error {
	if netuid.IsRoot() {
		return types.ErrRootSubnet
	}
	if _, ok := e.pools[netuid]; ok {
		return fmt.Errorf("%w: %d", ErrPoolAlreadyExists, netuid)
	}
	pool, err := NewPool(lock)
	if err != nil {
		return err
	}
	e.pools[netuid] = pool
	e.pending[netuid] = num.UintZero()

	e.log.Debug("market created",
		logging.NetUID(uint16(netuid)),
		logging.BigUint("lock", lock))
	return nil
}

func (e *Engine) RemovePool(_ context.Context, netuid types.NetUID) {
	delete(e.pools, netuid)
	delete(e.pending, netuid)
}

func (e *Engine) HasPool(netuid types.NetUID) bool {
	_, ok := e.pools[netuid]
	return ok
}

// IDs returns the netuids of all markets in ascending order.
func (e *Engine) IDs() []types.NetUID {
	ids := maps.Keys(e.pools)
	slices.Sort(ids)
	return ids
}

// Pool returns a copy of the market of the subnet.
func (e *Engine) Pool(netuid types.NetUID) (*Pool, error) {
	p, err := e.get(netuid)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

func (e *Engine) SpotPrice(netuid types.NetUID) (num.Decimal, error) {
	p, err := e.get(netuid)
	if err != nil {
		return num.DecimalZero(), err
	}
	return p.SpotPrice(), nil
}

// Commit replaces the pool of a subnet by the result of a swap quote.
func (e *Engine) Commit(netuid types.NetUID, pool *Pool) error {
	cur, err := e.get(netuid)
	if err != nil {
		return err
	}
	if !cur.K.EQ(pool.K) {
		return fmt.Errorf("%w: swap changed the product of subnet %d", types.ErrInvariantViolation, netuid)
	}
	if err := pool.CheckInvariants(); err != nil {
		return err
	}
	e.pools[netuid] = pool.Clone()
	return nil
}

// Inject adds emission to the market of the subnet and accumulates it as
// pending emission.
func (e *Engine) Inject(_ context.Context, netuid types.NetUID, amount *num.Uint) (bool, error) {
	p, err := e.get(netuid)
	if err != nil {
		return false, err
	}
	np := p.Clone()
	toAsset, err := np.Inject(amount)
	if err != nil {
		return false, err
	}
	if err := np.CheckInvariants(); err != nil {
		return false, err
	}
	if err := e.AddPending(netuid, amount); err != nil {
		return false, err
	}
	e.pools[netuid] = np
	return toAsset, nil
}

func (e *Engine) PendingEmission(netuid types.NetUID) (*num.Uint, error) {
	pending, ok := e.pending[netuid]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrPoolDoesNotExist, netuid)
	}
	return pending.Clone(), nil
}

func (e *Engine) AddPending(netuid types.NetUID, amount *num.Uint) error {
	pending, ok := e.pending[netuid]
	if !ok {
		return fmt.Errorf("%w: %d", ErrPoolDoesNotExist, netuid)
	}
	sum, err := num.CheckedAdd(pending, amount)
	if err != nil {
		return fmt.Errorf("%w: pending emission: %v", types.ErrInvariantViolation, err)
	}
	e.pending[netuid] = sum
	return nil
}

// DrainPending removes the distributed amount from the pending emission.
func (e *Engine) DrainPending(netuid types.NetUID, amount *num.Uint) error {
	pending, ok := e.pending[netuid]
	if !ok {
		return fmt.Errorf("%w: %d", ErrPoolDoesNotExist, netuid)
	}
	rest, err := num.CheckedSub(pending, amount)
	if err != nil {
		return fmt.Errorf("%w: drained more than pending: %v", types.ErrInvariantViolation, err)
	}
	e.pending[netuid] = rest
	return nil
}

func (e *Engine) AddOutstanding(netuid types.NetUID, amount *num.Uint) error {
	p, err := e.get(netuid)
	if err != nil {
		return err
	}
	sum, err := num.CheckedAdd(p.AssetOutstanding, amount)
	if err != nil {
		return fmt.Errorf("%w: outstanding asset: %v", types.ErrInvariantViolation, err)
	}
	p.AssetOutstanding = sum
	return nil
}

func (e *Engine) SubOutstanding(netuid types.NetUID, amount *num.Uint) error {
	p, err := e.get(netuid)
	if err != nil {
		return err
	}
	rest, err := num.CheckedSub(p.AssetOutstanding, amount)
	if err != nil {
		return fmt.Errorf("%w: outstanding asset: %v", types.ErrInvariantViolation, err)
	}
	p.AssetOutstanding = rest
	return nil
}

// CheckInvariants verifies every market, in ascending netuid order.
func (e *Engine) CheckInvariants() error {
	for _, id := range e.IDs() {
		if err := e.pools[id].CheckInvariants(); err != nil {
			return fmt.Errorf("subnet %d: %w", id, err)
		}
	}
	return nil
}

func (e *Engine) get(netuid types.NetUID) (*Pool, error) {
	if netuid.IsRoot() {
		return nil, types.ErrRootSubnet
	}
	p, ok := e.pools[netuid]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrPoolDoesNotExist, netuid)
	}
	return p, nil
}

type checkpointEntry struct {
	NetUID  types.NetUID `json:"netuid"`
	Pool    *Pool        `json:"pool"`
	Pending *num.Uint    `json:"pending"`
}

func (e *Engine) Name() string {
	return "market"
}

func (e *Engine) Checkpoint() ([]byte, error) {
	ids := e.IDs()
	out := make([]checkpointEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, checkpointEntry{NetUID: id, Pool: e.pools[id], Pending: e.pending[id]})
	}
	return json.Marshal(out)
}

func (e *Engine) Load(_ context.Context, data []byte) error {
	var in []checkpointEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	e.pools = make(map[types.NetUID]*Pool, len(in))
	e.pending = make(map[types.NetUID]*num.Uint, len(in))
	for _, c := range in {
		e.pools[c.NetUID] = c.Pool
		e.pending[c.NetUID] = c.Pending
	}
	return nil
}
