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
	"errors"
	"fmt"

	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const namedLogger = "staking"

var (
	ErrHotkeyOwnedByOther  = errors.New("hotkey is owned by another coldkey")
	ErrHotkeyNotRegistered = errors.New("hotkey is not registered on this subnet")
	ErrNotHotkeyOwner      = errors.New("coldkey does not own the hotkey")
	ErrHotkeyNotDelegate   = errors.New("hotkey does not accept nominators")
	ErrAlreadyDelegate     = errors.New("hotkey is already a delegate")
	ErrTakeTooHigh         = errors.New("take is above the maximum")
)

// Engine keeps the stake ledger, the hotkey registry and the delegations.
type Engine struct {
	log    *logging.Logger
	broker Broker
	ledger Ledger
	market Market

	stakes *StakeLedger
	// hotkey -> controlling coldkey
	owners map[types.Hotkey]types.Coldkey
	// netuid -> registered hotkeys
	registered map[types.NetUID]map[types.Hotkey]struct{}
	// hotkey -> default take, presence marks a delegate
	delegates map[types.Hotkey]uint16
	// netuid -> hotkey -> take override
	subnetTakes map[types.NetUID]map[types.Hotkey]uint16

	maxTake     uint16
	defaultTake uint16
}

func New(log *logging.Logger, conf Config, broker Broker, ledger Ledger, market Market) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(conf.Level.Get())

	return &Engine{
		log:         log,
		broker:      broker,
		ledger:      ledger,
		market:      market,
		stakes:      NewStakeLedger(),
		owners:      map[types.Hotkey]types.Coldkey{},
		registered:  map[types.NetUID]map[types.Hotkey]struct{}{},
		delegates:   map[types.Hotkey]uint16{},
		subnetTakes: map[types.NetUID]map[types.Hotkey]uint16{},
		maxTake:     conf.MaxDelegateTake,
		defaultTake: conf.DefaultDelegateTake,
	}
}

// Stakes gives access to the stake ledger.
func (e *Engine) Stakes() *StakeLedger {
	return e.stakes
}

// CanClaim returns an error if the hotkey is already controlled by another coldkey.
func (e *Engine) CanClaim(hotkey types.Hotkey, coldkey types.Coldkey) error {
	if owner, ok := e.owners[hotkey]; ok && owner != coldkey {
		return ErrHotkeyOwnedByOther
	}
	return nil
}

// RegisterHotkey records the hotkey on the subnet, the first registration
// of a hotkey decides its controller.
func (e *Engine) RegisterHotkey(_ context.Context, netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey) error {
	if err := e.CanClaim(hotkey, coldkey); err != nil {
		return err
	}
	e.owners[hotkey] = coldkey
	if _, ok := e.registered[netuid]; !ok {
		e.registered[netuid] = map[types.Hotkey]struct{}{}
	}
	e.registered[netuid][hotkey] = struct{}{}
	return nil
}

func (e *Engine) IsRegistered(netuid types.NetUID, hotkey types.Hotkey) bool {
	_, ok := e.registered[netuid][hotkey]
	return ok
}

// RegisteredHotkeys returns the hotkeys registered on the subnet in order.
func (e *Engine) RegisteredHotkeys(netuid types.NetUID) []types.Hotkey {
	out := maps.Keys(e.registered[netuid])
	slices.Sort(out)
	return out
}

func (e *Engine) Owner(hotkey types.Hotkey) (types.Coldkey, bool) {
	owner, ok := e.owners[hotkey]
	return owner, ok
}

// RemoveSubnet forgets the registrations, takes and stake of the subnet.
func (e *Engine) RemoveSubnet(netuid types.NetUID) {
	delete(e.registered, netuid)
	delete(e.subnetTakes, netuid)
	e.stakes.RemoveSubnet(netuid)
}

func (e *Engine) SetMaxTake(take uint16) error {
	e.maxTake = take
	return nil
}

func (e *Engine) MaxTake() uint16 {
	return e.maxTake
}

func (e *Engine) SetDefaultTake(take uint16) error {
	e.defaultTake = take
	return nil
}

func (e *Engine) DefaultTake() uint16 {
	return e.defaultTake
}

// BecomeDelegate opens the hotkey to nominators with the given take.
func (e *Engine) BecomeDelegate(ctx context.Context, coldkey types.Coldkey, hotkey types.Hotkey, take uint16) error {
	if err := e.checkOwner(coldkey, hotkey); err != nil {
		return err
	}
	if _, ok := e.delegates[hotkey]; ok {
		return ErrAlreadyDelegate
	}
	if take > e.maxTake {
		return fmt.Errorf("%w: %d > %d", ErrTakeTooHigh, take, e.maxTake)
	}
	e.delegates[hotkey] = take

	e.log.Info("new delegate",
		logging.Hotkey(string(hotkey)),
		logging.Uint16("take", take))
	e.broker.Send(events.NewDelegateTakeUpdated(ctx, hotkey, nil, take))
	return nil
}

// BecomeDelegateWithDefaultTake opens the hotkey to nominators with the network default take.
func (e *Engine) BecomeDelegateWithDefaultTake(ctx context.Context, coldkey types.Coldkey, hotkey types.Hotkey) error {
	return e.BecomeDelegate(ctx, coldkey, hotkey, e.defaultTake)
}

// SetTake overrides the take of a delegate on one subnet.
func (e *Engine) SetTake(ctx context.Context, coldkey types.Coldkey, hotkey types.Hotkey, netuid types.NetUID, take uint16) error {
	if err := e.checkOwner(coldkey, hotkey); err != nil {
		return err
	}
	if _, ok := e.delegates[hotkey]; !ok {
		return ErrHotkeyNotDelegate
	}
	if take > e.maxTake {
		return fmt.Errorf("%w: %d > %d", ErrTakeTooHigh, take, e.maxTake)
	}
	if _, ok := e.subnetTakes[netuid]; !ok {
		e.subnetTakes[netuid] = map[types.Hotkey]uint16{}
	}
	e.subnetTakes[netuid][hotkey] = take

	id := netuid
	e.broker.Send(events.NewDelegateTakeUpdated(ctx, hotkey, &id, take))
	return nil
}

// Take returns the take applied to the validator emission of the hotkey on
// the subnet, false if the hotkey is not a delegate.
func (e *Engine) Take(netuid types.NetUID, hotkey types.Hotkey) (uint16, bool) {
	def, ok := e.delegates[hotkey]
	if !ok {
		return 0, false
	}
	if take, ok := e.subnetTakes[netuid][hotkey]; ok {
		return take, true
	}
	return def, true
}

func (e *Engine) IsDelegate(hotkey types.Hotkey) bool {
	_, ok := e.delegates[hotkey]
	return ok
}

func (e *Engine) checkOwner(coldkey types.Coldkey, hotkey types.Hotkey) error {
	owner, ok := e.owners[hotkey]
	if !ok || owner != coldkey {
		return ErrNotHotkeyOwner
	}
	return nil
}

// canStake checks the coldkey is allowed to stake through the hotkey.
func (e *Engine) canStake(netuid types.NetUID, coldkey types.Coldkey, hotkey types.Hotkey) error {
	if !e.IsRegistered(netuid, hotkey) {
		return ErrHotkeyNotRegistered
	}
	if e.owners[hotkey] != coldkey && !e.IsDelegate(hotkey) {
		return ErrHotkeyNotDelegate
	}
	return nil
}

// StakeIn buys subnet asset with settlement asset from the coldkey balance
// and credits it to the coldkey stake through the hotkey. Either every
// change is applied or none.
func (e *Engine) StakeIn(ctx context.Context, coldkey types.Coldkey, hotkey types.Hotkey, netuid types.NetUID, settlement *num.Uint) (*num.Uint, error) {
	if err := e.canStake(netuid, coldkey, hotkey); err != nil {
		return nil, err
	}
	pool, err := e.market.Pool(netuid)
	if err != nil {
		return nil, err
	}
	assetOut, newPool, err := pool.QuoteStakeIn(settlement)
	if err != nil {
		return nil, err
	}
	if err := newPool.CheckInvariants(); err != nil {
		return nil, err
	}
	if _, err := num.CheckedAdd(e.stakes.Get(netuid, hotkey, coldkey), assetOut); err != nil {
		return nil, err
	}

	if err := e.ledger.Debit(ctx, coldkey, settlement); err != nil {
		return nil, err
	}
	if err := e.market.Commit(netuid, newPool); err != nil {
		return nil, err
	}
	if err := e.market.AddOutstanding(netuid, assetOut); err != nil {
		return nil, err
	}
	if err := e.stakes.Add(netuid, hotkey, coldkey, assetOut); err != nil {
		return nil, err
	}

	if e.log.IsDebug() {
		e.log.Debug("stake added",
			logging.NetUID(uint16(netuid)),
			logging.Hotkey(string(hotkey)),
			logging.Coldkey(string(coldkey)),
			logging.BigUint("settlement", settlement),
			logging.BigUint("asset", assetOut))
	}
	e.broker.Send(events.NewStakeAdded(ctx, netuid, hotkey, coldkey, settlement, assetOut))
	return assetOut, nil
}

// UnstakeOut sells subnet asset held through the hotkey back to the market
// and credits the settlement asset to the coldkey balance.
func (e *Engine) UnstakeOut(ctx context.Context, coldkey types.Coldkey, hotkey types.Hotkey, netuid types.NetUID, asset *num.Uint) (*num.Uint, error) {
	if e.stakes.Get(netuid, hotkey, coldkey).LT(asset) {
		return nil, ErrInsufficientStake
	}
	pool, err := e.market.Pool(netuid)
	if err != nil {
		return nil, err
	}
	if pool.AssetOutstanding.LT(asset) {
		return nil, fmt.Errorf("%w: stake above outstanding asset on subnet %d", types.ErrInvariantViolation, netuid)
	}
	settlementOut, newPool, err := pool.QuoteUnstakeOut(asset)
	if err != nil {
		return nil, err
	}
	if err := newPool.CheckInvariants(); err != nil {
		return nil, err
	}

	if err := e.ledger.Credit(ctx, coldkey, settlementOut); err != nil {
		return nil, err
	}
	if err := e.market.Commit(netuid, newPool); err != nil {
		return nil, err
	}
	if err := e.market.SubOutstanding(netuid, asset); err != nil {
		return nil, err
	}
	if err := e.stakes.Sub(netuid, hotkey, coldkey, asset); err != nil {
		return nil, err
	}

	e.broker.Send(events.NewStakeRemoved(ctx, netuid, hotkey, coldkey, settlementOut, asset))
	return settlementOut, nil
}

// CreditStake adds subnet asset to a stake entry without going through
// the market, used for the subnet lock and emission payouts.
func (e *Engine) CreditStake(netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey, amount *num.Uint) error {
	return e.stakes.Add(netuid, hotkey, coldkey, amount)
}

func (e *Engine) Stake(netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey) *num.Uint {
	return e.stakes.Get(netuid, hotkey, coldkey)
}

func (e *Engine) HotkeyTotal(netuid types.NetUID, hotkey types.Hotkey) *num.Uint {
	return e.stakes.HotkeyTotal(netuid, hotkey)
}

func (e *Engine) Holders(netuid types.NetUID, hotkey types.Hotkey) []Holding {
	return e.stakes.Holders(netuid, hotkey)
}

// SubnetTotal is the stake held on the subnet through every hotkey.
func (e *Engine) SubnetTotal(netuid types.NetUID) *num.Uint {
	return e.stakes.SubnetTotal(netuid)
}

func (e *Engine) HotkeysOnSubnet(netuid types.NetUID) []types.Hotkey {
	return e.stakes.HotkeysOnSubnet(netuid)
}
