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
	"errors"
	"fmt"

	"code.subnetd.io/subnetd/core/epochtime"
	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"
)

const namedLogger = "rewards"

var ErrUnknownHotkey = errors.New("hotkey has no controller")

// Engine distributes the pending emission of each subnet at the end of its
// epoch, through the hotkeys chosen by the scorer.
type Engine struct {
	log     *logging.Logger
	broker  Broker
	subnets Subnets
	market  Market
	stakes  Stakes
	scorer  EpochScorer
}

func New(log *logging.Logger, conf Config, broker Broker, subnets Subnets, market Market, stakes Stakes, scorer EpochScorer) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(conf.Level.Get())

	if scorer == nil {
		scorer = NewStakeScorer(stakes)
	}

	return &Engine{
		log:     log,
		broker:  broker,
		subnets: subnets,
		market:  market,
		stakes:  stakes,
		scorer:  scorer,
	}
}

// OnBlock distributes the pending emission of every subnet whose epoch
// ends on this block, in ascending netuid order.
func (e *Engine) OnBlock(ctx context.Context, block uint64) error {
	for _, netuid := range e.subnets.IDs() {
		if netuid.IsRoot() || !e.market.HasPool(netuid) {
			continue
		}
		params, err := e.subnets.Params(netuid)
		if err != nil {
			return err
		}
		if !epochtime.IsTriggerBlock(uint16(netuid), params.Tempo, block) {
			continue
		}
		if err := e.distribute(ctx, netuid, block); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) distribute(ctx context.Context, netuid types.NetUID, block uint64) error {
	pending, err := e.market.PendingEmission(netuid)
	if err != nil {
		return err
	}
	if pending.IsZero() {
		return nil
	}

	tuples := e.scorer.Score(ctx, netuid, pending)
	scored := num.UintZero()
	for i := range tuples {
		if tuples[i].ServerEmission == nil {
			tuples[i].ServerEmission = num.UintZero()
		}
		if tuples[i].ValidatorEmission == nil {
			tuples[i].ValidatorEmission = num.UintZero()
		}
		if scored, err = num.CheckedAdd(scored, num.Sum(tuples[i].ServerEmission, tuples[i].ValidatorEmission)); err != nil {
			return fmt.Errorf("%w: scored emission: %v", types.ErrInvariantViolation, err)
		}
	}
	if scored.GT(pending) {
		return fmt.Errorf("%w: scored %s above pending emission %s on subnet %d",
			types.ErrInvariantViolation, scored, pending, netuid)
	}

	allocated := num.UintZero()
	for _, t := range tuples {
		err := e.EmitThroughHotkey(ctx, netuid, t.Hotkey, t.ServerEmission, t.ValidatorEmission)
		if errors.Is(err, ErrUnknownHotkey) {
			e.log.Warn("emission scored to an unknown hotkey",
				logging.NetUID(uint16(netuid)),
				logging.Hotkey(string(t.Hotkey)))
			continue
		}
		if err != nil {
			return err
		}
		allocated.AddSum(t.ServerEmission, t.ValidatorEmission)
	}

	if err := e.market.DrainPending(netuid, allocated); err != nil {
		return err
	}

	e.log.Debug("epoch emission distributed",
		logging.NetUID(uint16(netuid)),
		logging.Block(block),
		logging.BigUint("pending", pending),
		logging.BigUint("allocated", allocated))
	return nil
}

type payout struct {
	coldkey types.Coldkey
	amount  *num.Uint
	take    bool
}

// EmitThroughHotkey pays out the server and validator emission of a hotkey
// as subnet asset. The controller keeps the server emission and the
// delegate take of the validator emission, the rest is shared by every
// holder of the hotkey in proportion to their stake.
func (e *Engine) EmitThroughHotkey(ctx context.Context, netuid types.NetUID, hotkey types.Hotkey, server, validator *num.Uint) error {
	controller, ok := e.stakes.Owner(hotkey)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHotkey, hotkey)
	}

	take := num.UintZero()
	if t, ok := e.stakes.Take(netuid, hotkey); ok {
		var err error
		take, err = num.MulDiv(validator, num.NewUint(uint64(t)), num.NewUint(uint64(types.TakeMax)))
		if err != nil {
			return fmt.Errorf("%w: delegate take: %v", types.ErrInvariantViolation, err)
		}
	}
	remaining := num.UintZero().Sub(validator, take)

	// shares are computed on the balances before any credit
	holders := e.stakes.Holders(netuid, hotkey)
	total := num.UintZero()
	for _, h := range holders {
		total.AddSum(h.Amount)
	}

	payouts := make([]payout, 0, len(holders)+1)
	if direct := num.Sum(take, server); !direct.IsZero() {
		payouts = append(payouts, payout{coldkey: controller, amount: direct, take: true})
	}
	if total.IsZero() {
		if !remaining.IsZero() {
			payouts = append(payouts, payout{coldkey: controller, amount: remaining})
		}
	} else {
		for _, h := range holders {
			share, err := num.MulDiv(remaining, h.Amount, total)
			if err != nil {
				return fmt.Errorf("%w: holder share: %v", types.ErrInvariantViolation, err)
			}
			if share.IsZero() {
				continue
			}
			payouts = append(payouts, payout{coldkey: h.Coldkey, amount: share})
		}
	}

	credited := num.UintZero()
	for _, p := range payouts {
		if err := e.stakes.CreditStake(netuid, hotkey, p.coldkey, p.amount); err != nil {
			return fmt.Errorf("%w: %v", types.ErrInvariantViolation, err)
		}
		credited.AddSum(p.amount)
	}
	if err := e.market.AddOutstanding(netuid, credited); err != nil {
		return err
	}

	for _, p := range payouts {
		e.broker.Send(events.NewRewardPayout(ctx, netuid, hotkey, p.coldkey, p.amount, p.take))
	}
	return nil
}
