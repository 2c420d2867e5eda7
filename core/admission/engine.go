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
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"code.subnetd.io/subnetd/core/epochtime"
	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const namedLogger = "admission"

var (
	ErrRegistrationDisabled             = errors.New("registration is disabled on this subnet")
	ErrTooManyRegistrationsThisBlock    = errors.New("too many registrations this block")
	ErrTooManyRegistrationsThisInterval = errors.New("too many registrations this interval")
	ErrRegistrationCounterOverflow      = errors.New("registration counter overflow")
	ErrAlreadyRegistered                = errors.New("hotkey already registered on this subnet")
	ErrRegistrationRejected             = errors.New("registration rejected")
	ErrNoAdmissionState                 = errors.New("no admission state for subnet")
	ErrAdmissionStateAlreadyInitialised = errors.New("admission state already initialised for subnet")
)

// Engine maintains the registration costs of every subnet and retargets
// them at the end of each adjustment interval.
type Engine struct {
	log    *logging.Logger
	config Config

	broker  Broker
	subnets Subnets
	ledger  Ledger
	oracle  RegistrationOracle
	keys    KeyRegistry

	states map[types.NetUID]*types.AdmissionState
}

func New(log *logging.Logger, config Config, broker Broker, subnets Subnets, ledger Ledger, oracle RegistrationOracle, keys KeyRegistry) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Engine{
		log:     log,
		config:  config,
		broker:  broker,
		subnets: subnets,
		ledger:  ledger,
		oracle:  oracle,
		keys:    keys,
		states:  map[types.NetUID]*types.AdmissionState{},
	}
}

// AddSubnet initialises the admission costs of a new subnet from the
// configured defaults.
func (e *Engine) AddSubnet(ctx context.Context, netuid types.NetUID) error {
	if _, ok := e.states[netuid]; ok {
		return fmt.Errorf("%w: %d", ErrAdmissionStateAlreadyInitialised, netuid)
	}
	params, err := e.subnets.Params(netuid)
	if err != nil {
		return err
	}
	e.states[netuid] = &types.AdmissionState{
		Burn:       num.Clamp(num.NewUint(e.config.InitialBurn), params.MinBurn, params.MaxBurn),
		Difficulty: clampDifficulty(e.config.InitialDifficulty, params),
	}
	return nil
}

func (e *Engine) RemoveSubnet(netuid types.NetUID) {
	delete(e.states, netuid)
}

// OnBlock resets the per block counters and runs the adjustment of every
// subnet whose interval ends on this block, in ascending netuid order.
func (e *Engine) OnBlock(ctx context.Context, block uint64) error {
	for _, netuid := range e.subnets.IDs() {
		state, ok := e.states[netuid]
		if !ok {
			continue
		}
		state.RegistrationsThisBlock = 0

		params, err := e.subnets.Params(netuid)
		if err != nil {
			return err
		}
		if !epochtime.IsTriggerBlock(uint16(netuid), params.AdjustmentInterval, block) {
			continue
		}
		if err := e.adjust(ctx, netuid, params, state); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) adjust(ctx context.Context, netuid types.NetUID, params types.SubnetParams, state *types.AdmissionState) error {
	adj, err := Adjust(params, state)
	if err != nil {
		return fmt.Errorf("%w: admission adjustment of subnet %d: %v", types.ErrInvariantViolation, netuid, err)
	}

	if e.log.IsDebug() {
		e.log.Debug("admission costs adjusted",
			logging.NetUID(uint16(netuid)),
			logging.String("decision", adj.Decision.String()),
			logging.Uint32("pow-registrations", state.PowRegistrationsThisInterval),
			logging.Uint32("burn-registrations", state.BurnRegistrationsThisInterval),
			logging.BigUint("burn", adj.Burn),
			logging.Uint64("difficulty", adj.Difficulty),
		)
	}

	e.broker.Send(events.NewAdmissionAdjusted(ctx, netuid, adj.Burn, adj.Difficulty,
		state.PowRegistrationsThisInterval, state.BurnRegistrationsThisInterval, params.TargetRegistrationsPerInterval))

	state.Burn = adj.Burn
	state.Difficulty = adj.Difficulty
	state.PowRegistrationsThisInterval = 0
	state.BurnRegistrationsThisInterval = 0
	return nil
}

// Register admits a hotkey on a subnet. Nothing is mutated unless the
// registration succeeds.
func (e *Engine) Register(ctx context.Context, netuid types.NetUID, hotkey types.Hotkey, coldkey types.Coldkey, proof []byte) (types.RegistrationChannel, error) {
	state, ok := e.states[netuid]
	if !ok {
		return types.RegistrationChannelUnspecified, fmt.Errorf("%w: %d", ErrNoAdmissionState, netuid)
	}
	params, err := e.subnets.Params(netuid)
	if err != nil {
		return types.RegistrationChannelUnspecified, err
	}

	if !params.RegistrationAllowed {
		return types.RegistrationChannelUnspecified, ErrRegistrationDisabled
	}
	if state.RegistrationsThisBlock >= params.MaxRegistrationsPerBlock {
		return types.RegistrationChannelUnspecified, ErrTooManyRegistrationsThisBlock
	}
	if state.RegistrationsThisInterval() >= params.MaxRegistrationsPerInterval() {
		return types.RegistrationChannelUnspecified, ErrTooManyRegistrationsThisInterval
	}
	if e.keys.IsRegistered(netuid, hotkey) {
		return types.RegistrationChannelUnspecified, ErrAlreadyRegistered
	}
	if err := e.keys.CanClaim(hotkey, coldkey); err != nil {
		return types.RegistrationChannelUnspecified, err
	}

	channel, err := e.oracle.Validate(ctx, netuid, hotkey, coldkey, state.Difficulty, proof)
	if err != nil {
		return types.RegistrationChannelUnspecified, fmt.Errorf("%w: %v", ErrRegistrationRejected, err)
	}

	pow, burned := state.PowRegistrationsThisInterval, state.BurnRegistrationsThisInterval
	if channel == types.RegistrationChannelBurn {
		burned, err = incrementCounter(burned)
	} else {
		pow, err = incrementCounter(pow)
	}
	if err != nil {
		return types.RegistrationChannelUnspecified, fmt.Errorf("%w: subnet %d: %w", types.ErrInvariantViolation, netuid, err)
	}

	cost := num.UintZero()
	switch channel {
	case types.RegistrationChannelBurn:
		cost = state.Burn.Clone()
		if err := e.ledger.Debit(ctx, coldkey, cost); err != nil {
			return types.RegistrationChannelUnspecified, err
		}
	case types.RegistrationChannelPoW:
	default:
		return types.RegistrationChannelUnspecified, fmt.Errorf("%w: unknown channel %v", ErrRegistrationRejected, channel)
	}

	if err := e.keys.RegisterHotkey(ctx, netuid, hotkey, coldkey); err != nil {
		return types.RegistrationChannelUnspecified, err
	}

	state.RegistrationsThisBlock++
	state.PowRegistrationsThisInterval, state.BurnRegistrationsThisInterval = pow, burned

	e.broker.Send(events.NewRegistration(ctx, netuid, hotkey, coldkey, channel, cost))
	return channel, nil
}

// State returns a copy of the admission state of the subnet.
func (e *Engine) State(netuid types.NetUID) (*types.AdmissionState, error) {
	state, ok := e.states[netuid]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoAdmissionState, netuid)
	}
	return state.Clone(), nil
}

func (e *Engine) Burn(netuid types.NetUID) (*num.Uint, error) {
	state, err := e.State(netuid)
	if err != nil {
		return nil, err
	}
	return state.Burn, nil
}

func (e *Engine) Difficulty(netuid types.NetUID) (uint64, error) {
	state, err := e.State(netuid)
	if err != nil {
		return 0, err
	}
	return state.Difficulty, nil
}

// SetBurn sets the burn price, clamped into the subnet bounds.
func (e *Engine) SetBurn(_ context.Context, netuid types.NetUID, burn *num.Uint) error {
	state, params, err := e.stateAndParams(netuid)
	if err != nil {
		return err
	}
	state.Burn = num.Clamp(burn, params.MinBurn, params.MaxBurn)
	return nil
}

// SetDifficulty sets the difficulty, clamped into the subnet bounds.
func (e *Engine) SetDifficulty(_ context.Context, netuid types.NetUID, difficulty uint64) error {
	state, params, err := e.stateAndParams(netuid)
	if err != nil {
		return err
	}
	state.Difficulty = clampDifficulty(difficulty, params)
	return nil
}

// EnforceBounds clamps the current costs into the subnet bounds, it is
// called after the bounds are changed by governance.
func (e *Engine) EnforceBounds(netuid types.NetUID) error {
	state, params, err := e.stateAndParams(netuid)
	if err != nil {
		return err
	}
	state.Burn = num.Clamp(state.Burn, params.MinBurn, params.MaxBurn)
	state.Difficulty = clampDifficulty(state.Difficulty, params)
	return nil
}

func (e *Engine) stateAndParams(netuid types.NetUID) (*types.AdmissionState, types.SubnetParams, error) {
	state, ok := e.states[netuid]
	if !ok {
		return nil, types.SubnetParams{}, fmt.Errorf("%w: %d", ErrNoAdmissionState, netuid)
	}
	params, err := e.subnets.Params(netuid)
	if err != nil {
		return nil, types.SubnetParams{}, err
	}
	return state, params, nil
}

func incrementCounter(c uint32) (uint32, error) {
	if c == math.MaxUint32 {
		return 0, ErrRegistrationCounterOverflow
	}
	return c + 1, nil
}

func clampDifficulty(d uint64, params types.SubnetParams) uint64 {
	if d < params.MinDifficulty {
		return params.MinDifficulty
	}
	if d > params.MaxDifficulty {
		return params.MaxDifficulty
	}
	return d
}

type checkpointEntry struct {
	NetUID types.NetUID          `json:"netuid"`
	State  *types.AdmissionState `json:"state"`
}

func (e *Engine) Name() string {
	return "admission"
}

func (e *Engine) Checkpoint() ([]byte, error) {
	ids := maps.Keys(e.states)
	slices.Sort(ids)
	out := make([]checkpointEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, checkpointEntry{NetUID: id, State: e.states[id]})
	}
	return json.Marshal(out)
}

func (e *Engine) Load(_ context.Context, data []byte) error {
	var in []checkpointEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	e.states = make(map[types.NetUID]*types.AdmissionState, len(in))
	for _, c := range in {
		e.states[c.NetUID] = c.State
	}
	return nil
}
