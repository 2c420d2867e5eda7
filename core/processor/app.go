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


package processor

import (
	"context"
	"fmt"

	"code.subnetd.io/subnetd/core/admission"
	"code.subnetd.io/subnetd/core/broker"
	"code.subnetd.io/subnetd/core/checkpoint"
	"code.subnetd.io/subnetd/core/coinbase"
	"code.subnetd.io/subnetd/core/collateral"
	"code.subnetd.io/subnetd/core/config"
	"code.subnetd.io/subnetd/core/epochtime"
	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/core/market"
	"code.subnetd.io/subnetd/core/metrics"
	"code.subnetd.io/subnetd/core/netparams"
	"code.subnetd.io/subnetd/core/pow"
	"code.subnetd.io/subnetd/core/rewards"
	"code.subnetd.io/subnetd/core/staking"
	"code.subnetd.io/subnetd/core/subnets"
	"code.subnetd.io/subnetd/core/types"
	vgcontext "code.subnetd.io/subnetd/libs/context"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"
)

const namedLogger = "processor"

type options struct {
	oracle  admission.RegistrationOracle
	policy  coinbase.EmissionPolicy
	scorer  rewards.EpochScorer
	metrics *metrics.Metrics
	store   *checkpoint.Store
}

// Option customises the collaborators of the App.
type Option func(*options)

// WithRegistrationOracle replaces the proof of work oracle.
func WithRegistrationOracle(o admission.RegistrationOracle) Option {
	return func(opts *options) { opts.oracle = o }
}

// WithEmissionPolicy replaces the halving emission schedule.
func WithEmissionPolicy(p coinbase.EmissionPolicy) Option {
	return func(opts *options) { opts.policy = p }
}

// WithEpochScorer replaces the stake weighted scorer of the distributor.
func WithEpochScorer(s rewards.EpochScorer) Option {
	return func(opts *options) { opts.scorer = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(opts *options) { opts.metrics = m }
}

// WithCheckpointStore persists the periodic checkpoints.
func WithCheckpointStore(s *checkpoint.Store) Option {
	return func(opts *options) { opts.store = s }
}

// App applies blocks and requests to the tokenomics state. It is not safe
// for concurrent use, blocks and requests are applied one at a time.
type App struct {
	log     *logging.Logger
	broker  *blockBroker
	metrics *metrics.Metrics

	epoch      *epochtime.Svc
	subnets    *subnets.Engine
	netparams  *netparams.Store
	collateral *collateral.Engine
	market     *market.Engine
	admission  *admission.Engine
	staking    *staking.Engine
	coinbase   *coinbase.Engine
	rewards    *rewards.Engine
	pow        *pow.Engine
	checkpoint *checkpoint.Engine
}

func NewApp(log *logging.Logger, pconf Config, conf config.Config, bkr broker.Interface, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{
		log:     log.Named(namedLogger),
		broker:  newBlockBroker(bkr),
		metrics: o.metrics,
	}
	app.log.SetLevel(pconf.Level.Get())

	app.epoch = epochtime.NewService(log, conf.Epoch)
	app.subnets = subnets.New(log, conf.Subnets, app.broker)
	app.netparams = netparams.New(log, conf.NetworkParameters, app.broker, app.subnets)
	app.collateral = collateral.New(log, conf.Collateral)
	app.market = market.New(log, conf.Market)
	app.staking = staking.New(log, conf.Staking, app.broker, app.collateral, app.market)
	app.pow = pow.New(log, conf.PoW)

	oracle := o.oracle
	if oracle == nil {
		oracle = app.pow
	}
	app.admission = admission.New(log, conf.Admission, app.broker, app.subnets, app.collateral, oracle, app.staking)
	app.coinbase = coinbase.New(log, conf.Coinbase, app.broker, app.market, o.policy)
	app.rewards = rewards.New(log, conf.Rewards, app.broker, app.subnets, app.market, app.staking, o.scorer)

	var err error
	app.checkpoint, err = checkpoint.New(log, conf.Checkpoint, app.broker,
		app.epoch,
		app.netparams,
		app.subnets,
		app.collateral,
		app.market,
		app.admission,
		app.staking,
		app.coinbase,
		app.pow,
	)
	if err != nil {
		return nil, err
	}
	if o.store != nil {
		app.checkpoint.SetStore(o.store)
	}

	// the per block pipeline, in order
	app.epoch.NotifyOnBlock(app.admission.OnBlock)
	app.epoch.NotifyOnBlock(app.coinbase.RunCoinbase)
	app.epoch.NotifyOnBlock(app.rewards.OnBlock)
	app.epoch.NotifyOnBlock(app.checkInvariants)

	if err := app.netparams.Watch(context.Background(),
		netparams.WatchParam{
			Param:   netparams.NetworkMaxDelegateTake,
			Watcher: app.onMaxDelegateTakeUpdate,
		},
		netparams.WatchParam{
			Param:   netparams.NetworkDefaultDelegateTake,
			Watcher: app.onDefaultDelegateTakeUpdate,
		},
	); err != nil {
		return nil, err
	}
	if err := app.netparams.WatchSubnet(
		netparams.SubnetWatchParam{Param: netparams.SubnetMinBurn, Watcher: app.onAdmissionBoundsUpdate},
		netparams.SubnetWatchParam{Param: netparams.SubnetMaxBurn, Watcher: app.onAdmissionBoundsUpdate},
		netparams.SubnetWatchParam{Param: netparams.SubnetMinDifficulty, Watcher: app.onAdmissionBoundsUpdate},
		netparams.SubnetWatchParam{Param: netparams.SubnetMaxDifficulty, Watcher: app.onAdmissionBoundsUpdate},
	); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *App) onMaxDelegateTakeUpdate(_ context.Context, v interface{}) error {
	return app.staking.SetMaxTake(uint16(v.(uint64)))
}

func (app *App) onDefaultDelegateTakeUpdate(_ context.Context, v interface{}) error {
	return app.staking.SetDefaultTake(uint16(v.(uint64)))
}

func (app *App) onAdmissionBoundsUpdate(_ context.Context, netuid types.NetUID, _ interface{}) error {
	return app.admission.EnforceBounds(netuid)
}

func (app *App) checkInvariants(_ context.Context, block uint64) error {
	if err := app.market.CheckInvariants(); err != nil {
		return fmt.Errorf("block %d: %w", block, err)
	}
	return nil
}

// atomically runs f and restores the state captured before it when it
// fails. Nested calls run inside the outermost one.
func (app *App) atomically(ctx context.Context, f func() error) error {
	if app.broker.buffering {
		return f()
	}

	height, _ := app.epoch.LastBlock()
	snap, err := app.checkpoint.Capture(height)
	if err != nil {
		return err
	}

	app.broker.begin()
	if err := f(); err != nil {
		dropped := app.broker.discard()
		if lerr := app.checkpoint.Load(ctx, snap); lerr != nil {
			app.log.Panic("could not restore the state after a failure",
				logging.Error(lerr),
				logging.NamedError("cause", err))
		}
		app.log.Debug("changes rolled back",
			logging.Int("dropped-events", dropped),
			logging.Error(err))
		return err
	}
	app.broker.commit()
	return nil
}

// TriggerBlock applies the block: admission retargeting, coinbase and
// emission distribution of every subnet, in ascending netuid order. The
// block is applied entirely or not at all.
func (app *App) TriggerBlock(ctx context.Context, block uint64) error {
	if err := app.epoch.CheckNext(block); err != nil {
		return err
	}
	ctx = vgcontext.WithBlockHeight(ctx, block)

	err := app.atomically(ctx, func() error {
		if err := app.epoch.OnBlock(ctx, block); err != nil {
			return err
		}
		app.broker.Send(events.NewBlockApplied(ctx, block))
		return nil
	})
	if err != nil {
		app.log.Error("block rejected",
			logging.Block(block),
			logging.Error(err))
		return err
	}

	if _, err := app.checkpoint.Checkpoint(ctx, block); err != nil {
		app.log.Error("could not persist checkpoint",
			logging.Block(block),
			logging.Error(err))
		return fmt.Errorf("block %d applied, checkpoint failed: %w", block, err)
	}
	app.updateMetrics()
	return nil
}

func (app *App) updateMetrics() {
	if app.metrics == nil {
		return
	}
	for _, id := range app.market.IDs() {
		if st, err := app.admission.State(id); err == nil {
			app.metrics.Admission(id, st.Difficulty, st.Burn)
		}
		pool, err := app.market.Pool(id)
		if err != nil {
			continue
		}
		pending, _ := app.market.PendingEmission(id)
		app.metrics.Market(id, pool.SettlementReserve, pool.AssetReserve, pending)
	}
	app.metrics.BlockApplied(app.coinbase.Issuance())
}

// RegisterNetwork creates a subnet whose market is seeded with the lock
// taken from the owner balance. The lock is staked to the owner through
// the owner hotkey.
func (app *App) RegisterNetwork(ctx context.Context, netuid types.NetUID, owner types.Coldkey, ownerHotkey types.Hotkey, lock *num.Uint, params types.SubnetParams) error {
	if netuid.IsRoot() {
		return types.ErrRootSubnet
	}
	if lock == nil || lock.IsZero() {
		return market.ErrZeroLock
	}

	return app.atomically(ctx, func() error {
		if err := app.subnets.Create(ctx, netuid, owner, ownerHotkey, params); err != nil {
			return err
		}
		if err := app.collateral.Debit(ctx, owner, lock); err != nil {
			return err
		}
		if err := app.market.CreatePool(ctx, netuid, lock); err != nil {
			return err
		}
		if err := app.admission.AddSubnet(ctx, netuid); err != nil {
			return err
		}
		if err := app.staking.RegisterHotkey(ctx, netuid, ownerHotkey, owner); err != nil {
			return err
		}
		return app.staking.CreditStake(netuid, ownerHotkey, owner, lock)
	})
}

// RemoveNetwork dissolves a subnet. The settlement reserve of its market is
// paid back to the stake holders pro-rata to their stake, the rounding
// remainder goes to the subnet owner. Pending emission is dropped.
func (app *App) RemoveNetwork(ctx context.Context, netuid types.NetUID) error {
	if netuid.IsRoot() {
		return types.ErrRootSubnet
	}

	return app.atomically(ctx, func() error {
		sn, err := app.subnets.Get(netuid)
		if err != nil {
			return err
		}
		pool, err := app.market.Pool(netuid)
		if err != nil {
			return err
		}

		reserve := pool.SettlementReserve.Clone()
		paid := num.UintZero()
		if total := app.staking.SubnetTotal(netuid); !total.IsZero() {
			for _, hotkey := range app.staking.HotkeysOnSubnet(netuid) {
				for _, h := range app.staking.Holders(netuid, hotkey) {
					share, err := num.MulDiv(reserve, h.Amount, total)
					if err != nil {
						return fmt.Errorf("%w: refund of subnet %d: %w", types.ErrInvariantViolation, netuid, err)
					}
					if err := app.collateral.Credit(ctx, h.Coldkey, share); err != nil {
						return err
					}
					paid.AddSum(share)
				}
			}
		}
		if err := app.collateral.Credit(ctx, sn.Owner, num.UintZero().Sub(reserve, paid)); err != nil {
			return err
		}

		app.market.RemovePool(ctx, netuid)
		app.admission.RemoveSubnet(netuid)
		app.staking.RemoveSubnet(netuid)
		if err := app.subnets.Remove(ctx, netuid); err != nil {
			return err
		}
		if app.metrics != nil {
			app.metrics.RemoveSubnet(netuid)
		}
		app.log.Info("subnet removed",
			logging.NetUID(uint16(netuid)),
			logging.BigUint("refunded", reserve))
		return nil
	})
}

// Register admits the hotkey on the subnet, paying with a burn or a proof
// of work.
func (app *App) Register(ctx context.Context, netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey, proof []byte) (types.RegistrationChannel, error) {
	channel, err := app.admission.Register(ctx, netuid, hotkey, coldkey, proof)
	if err != nil {
		return channel, err
	}
	if app.metrics != nil {
		app.metrics.Registration(netuid, channel)
	}
	return channel, nil
}

func (app *App) StakeIn(ctx context.Context, coldkey types.Coldkey, hotkey types.Hotkey, netuid types.NetUID, settlement *num.Uint) (*num.Uint, error) {
	return app.staking.StakeIn(ctx, coldkey, hotkey, netuid, settlement)
}

func (app *App) UnstakeOut(ctx context.Context, coldkey types.Coldkey, hotkey types.Hotkey, netuid types.NetUID, asset *num.Uint) (*num.Uint, error) {
	return app.staking.UnstakeOut(ctx, coldkey, hotkey, netuid, asset)
}

// BecomeDelegate opens the hotkey to nominators, with the network default
// take when take is nil.
func (app *App) BecomeDelegate(ctx context.Context, coldkey types.Coldkey, hotkey types.Hotkey, take *uint16) error {
	if take == nil {
		return app.staking.BecomeDelegateWithDefaultTake(ctx, coldkey, hotkey)
	}
	return app.staking.BecomeDelegate(ctx, coldkey, hotkey, *take)
}

func (app *App) SetTake(ctx context.Context, coldkey types.Coldkey, hotkey types.Hotkey, netuid types.NetUID, take uint16) error {
	return app.staking.SetTake(ctx, coldkey, hotkey, netuid, take)
}

// SetSubnetParameter updates a governance parameter of the subnet, the
// watchers of the parameter are notified as part of the same change.
func (app *App) SetSubnetParameter(ctx context.Context, netuid types.NetUID, key, value string) error {
	return app.atomically(ctx, func() error {
		return app.netparams.Update(ctx, key, value, &netuid)
	})
}

func (app *App) SetNetworkParameter(ctx context.Context, key, value string) error {
	return app.atomically(ctx, func() error {
		return app.netparams.Update(ctx, key, value, nil)
	})
}

// SetBurn sets the burn price of the subnet, clamped into its bounds.
func (app *App) SetBurn(ctx context.Context, netuid types.NetUID, burn *num.Uint) error {
	return app.atomically(ctx, func() error {
		return app.admission.SetBurn(ctx, netuid, burn)
	})
}

// SetDifficulty sets the proof of work difficulty of the subnet, clamped
// into its bounds.
func (app *App) SetDifficulty(ctx context.Context, netuid types.NetUID, difficulty uint64) error {
	return app.atomically(ctx, func() error {
		return app.admission.SetDifficulty(ctx, netuid, difficulty)
	})
}

// Deposit credits settlement asset to an account.
func (app *App) Deposit(ctx context.Context, account types.Coldkey, amount *num.Uint) error {
	return app.collateral.Deposit(ctx, account, amount)
}

func (app *App) Difficulty(netuid types.NetUID) (uint64, error) {
	return app.admission.Difficulty(netuid)
}

func (app *App) Burn(netuid types.NetUID) (*num.Uint, error) {
	return app.admission.Burn(netuid)
}

func (app *App) SpotPrice(netuid types.NetUID) (num.Decimal, error) {
	return app.market.SpotPrice(netuid)
}

// Reserves returns the settlement and asset reserves of the subnet market.
func (app *App) Reserves(netuid types.NetUID) (*num.Uint, *num.Uint, error) {
	pool, err := app.market.Pool(netuid)
	if err != nil {
		return nil, nil, err
	}
	return pool.SettlementReserve.Clone(), pool.AssetReserve.Clone(), nil
}

func (app *App) PendingEmission(netuid types.NetUID) (*num.Uint, error) {
	return app.market.PendingEmission(netuid)
}

func (app *App) Stake(netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey) *num.Uint {
	return app.staking.Stake(netuid, hotkey, coldkey)
}

// Take returns the take of the hotkey on the subnet, false if it is not a delegate.
func (app *App) Take(netuid types.NetUID, hotkey types.Hotkey) (uint16, bool) {
	return app.staking.Take(netuid, hotkey)
}

func (app *App) NetworkParameter(key string, netuid *types.NetUID) (string, error) {
	return app.netparams.Get(key, netuid)
}

func (app *App) Balance(account types.Coldkey) *num.Uint {
	return app.collateral.Balance(account)
}

func (app *App) Issuance() *num.Uint {
	return app.coinbase.Issuance()
}

// LastBlock returns the last applied block, false before the first one.
func (app *App) LastBlock() (uint64, bool) {
	return app.epoch.LastBlock()
}

// SubnetSummary is the economic state of a subnet.
type SubnetSummary struct {
	NetUID            types.NetUID `json:"netuid"`
	Difficulty        uint64       `json:"difficulty"`
	Burn              *num.Uint    `json:"burn"`
	SettlementReserve *num.Uint    `json:"settlement_reserve"`
	AssetReserve      *num.Uint    `json:"asset_reserve"`
	AssetOutstanding  *num.Uint    `json:"asset_outstanding"`
	PendingEmission   *num.Uint    `json:"pending_emission"`
	SpotPrice         string       `json:"spot_price"`
	// NextEpoch and NextAdjustment are zero when the period is disabled.
	NextEpoch      uint64 `json:"next_epoch"`
	NextAdjustment uint64 `json:"next_adjustment"`
}

// Summary returns the state of every subnet with a market, in ascending
// netuid order.
func (app *App) Summary() ([]SubnetSummary, error) {
	var from uint64
	if last, ok := app.epoch.LastBlock(); ok {
		from = last + 1
	}

	ids := app.market.IDs()
	out := make([]SubnetSummary, 0, len(ids))
	for _, id := range ids {
		params, err := app.subnets.Params(id)
		if err != nil {
			return nil, err
		}
		st, err := app.admission.State(id)
		if err != nil {
			return nil, err
		}
		pool, err := app.market.Pool(id)
		if err != nil {
			return nil, err
		}
		pending, err := app.market.PendingEmission(id)
		if err != nil {
			return nil, err
		}
		summary := SubnetSummary{
			NetUID:            id,
			Difficulty:        st.Difficulty,
			Burn:              st.Burn,
			SettlementReserve: pool.SettlementReserve.Clone(),
			AssetReserve:      pool.AssetReserve.Clone(),
			AssetOutstanding:  pool.AssetOutstanding.Clone(),
			PendingEmission:   pending,
			SpotPrice:         pool.SpotPrice().String(),
		}
		summary.NextEpoch, _ = epochtime.NextTriggerBlock(uint16(id), params.Tempo, from)
		summary.NextAdjustment, _ = epochtime.NextTriggerBlock(uint16(id), params.AdjustmentInterval, from)
		out = append(out, summary)
	}
	return out, nil
}

// Capture returns the current state of every component.
func (app *App) Capture() (*checkpoint.Snapshot, error) {
	height, _ := app.epoch.LastBlock()
	return app.checkpoint.Capture(height)
}
