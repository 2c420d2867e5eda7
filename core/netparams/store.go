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

package netparams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/core/netparams/checks"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/config/encoding"
	"code.subnetd.io/subnetd/logging"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const namedLogger = "netparams"

var (
	ErrUnknownKey          = errors.New("unknown network parameter")
	ErrNetUIDRequired      = errors.New("subnet parameter requires a netuid")
	ErrNotSubnetParameter  = errors.New("network wide parameter cannot be set per subnet")
	ErrTakeAboveMaxTake    = errors.New("default delegate take is above the max delegate take")
	ErrNoWatcherForUnknown = errors.New("cannot watch an unknown network parameter")
)

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

// Subnets stores the per subnet parameters.
type Subnets interface {
	Params(netuid types.NetUID) (types.SubnetParams, error)
	Update(ctx context.Context, netuid types.NetUID, f func(*types.SubnetParams)) error
}

// WatchParam is notified with the new value of a network wide parameter.
type WatchParam struct {
	Param   string
	Watcher func(context.Context, interface{}) error
}

// SubnetWatchParam is notified when a parameter of a subnet changes.
type SubnetWatchParam struct {
	Param   string
	Watcher func(context.Context, types.NetUID, interface{}) error
}

// Store holds the network wide parameters and routes the per subnet ones
// to the subnet registry.
type Store struct {
	log     *logging.Logger
	broker  Broker
	subnets Subnets

	store          map[string]value
	watchers       map[string][]WatchParam
	subnetWatchers map[string][]SubnetWatchParam
}

func New(log *logging.Logger, conf Config, broker Broker, subnets Subnets) *Store {
	log = log.Named(namedLogger)
	log.SetLevel(conf.Level.Get())

	s := &Store{
		log:            log,
		broker:         broker,
		subnets:        subnets,
		store:          defaultNetParams(),
		watchers:       map[string][]WatchParam{},
		subnetWatchers: map[string][]SubnetWatchParam{},
	}
	s.addRules()
	return s
}

func (s *Store) addRules() {
	s.store[NetworkDefaultDelegateTake].(*Uint).AddRules(
		checks.AtMost(NetworkMaxDelegateTake, s.uint64Getter(NetworkMaxDelegateTake)))
	s.store[NetworkMaxDelegateTake].(*Uint).AddRules(
		checks.AtLeast(NetworkDefaultDelegateTake, s.uint64Getter(NetworkDefaultDelegateTake)))
}

func (s *Store) uint64Getter(key string) func() uint64 {
	return func() uint64 {
		return s.store[key].Value().(uint64)
	}
}

// Validate checks the value could be applied, without applying it.
func (s *Store) Validate(key, value string, netuid *types.NetUID) error {
	if sp, ok := subnetParams[key]; ok {
		if netuid == nil {
			return ErrNetUIDRequired
		}
		_, _, err := s.subnetParamsWith(*netuid, sp, value)
		return err
	}
	v, ok := s.store[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if netuid != nil {
		return ErrNotSubnetParameter
	}
	return v.Validate(value)
}

// subnetParamsWith returns the subnet parameters with the value applied,
// along with the parsed value.
func (s *Store) subnetParamsWith(netuid types.NetUID, sp subnetParam, value string) (types.SubnetParams, interface{}, error) {
	v := sp.newValue()
	if err := v.Update(value); err != nil {
		return types.SubnetParams{}, nil, err
	}
	params, err := s.subnets.Params(netuid)
	if err != nil {
		return types.SubnetParams{}, nil, err
	}
	sp.set(&params, v.Value())
	if err := params.Validate(); err != nil {
		return types.SubnetParams{}, nil, err
	}
	return params, v.Value(), nil
}

// Update validates and applies the value, then notifies the watchers of
// the parameter. netuid must be set for subnet parameters only.
func (s *Store) Update(ctx context.Context, key, value string, netuid *types.NetUID) error {
	if sp, ok := subnetParams[key]; ok {
		if netuid == nil {
			return ErrNetUIDRequired
		}
		return s.updateSubnet(ctx, *netuid, key, sp, value)
	}

	v, ok := s.store[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if netuid != nil {
		return ErrNotSubnetParameter
	}
	if err := v.Update(value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	s.log.Info("network parameter updated",
		logging.String("key", key),
		logging.String("value", v.String()))
	s.broker.Send(events.NewNetworkParameterEvent(ctx, key, v.String(), nil))
	return s.dispatch(ctx, key)
}

func (s *Store) updateSubnet(ctx context.Context, netuid types.NetUID, key string, sp subnetParam, value string) error {
	params, parsed, err := s.subnetParamsWith(netuid, sp, value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := s.subnets.Update(ctx, netuid, func(p *types.SubnetParams) { *p = params }); err != nil {
		return err
	}

	applied := sp.get(params)
	s.log.Info("subnet parameter updated",
		logging.NetUID(uint16(netuid)),
		logging.String("key", key),
		logging.String("value", applied))
	id := uint16(netuid)
	s.broker.Send(events.NewNetworkParameterEvent(ctx, key, applied, &id))

	for _, w := range s.subnetWatchers[key] {
		if err := w.Watcher(ctx, netuid, parsed); err != nil {
			s.log.Error("subnet parameter watcher failed",
				logging.String("key", key),
				logging.Error(err))
			return err
		}
	}
	return nil
}

func (s *Store) dispatch(ctx context.Context, key string) error {
	v := s.store[key].Value()
	for _, w := range s.watchers[key] {
		if err := w.Watcher(ctx, v); err != nil {
			s.log.Error("network parameter watcher failed",
				logging.String("key", key),
				logging.Error(err))
			return err
		}
	}
	return nil
}

// Get returns the current value of the parameter as a string.
func (s *Store) Get(key string, netuid *types.NetUID) (string, error) {
	if sp, ok := subnetParams[key]; ok {
		if netuid == nil {
			return "", ErrNetUIDRequired
		}
		params, err := s.subnets.Params(*netuid)
		if err != nil {
			return "", err
		}
		return sp.get(params), nil
	}
	v, ok := s.store[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return v.String(), nil
}

func (s *Store) GetUint64(key string) (uint64, error) {
	v, ok := s.store[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	u, ok := v.Value().(uint64)
	if !ok {
		return 0, fmt.Errorf("%s is not an unsigned integer", key)
	}
	return u, nil
}

// Watch registers watchers and notifies them of the current value straight away.
func (s *Store) Watch(ctx context.Context, params ...WatchParam) error {
	for _, p := range params {
		if _, ok := s.store[p.Param]; !ok {
			return fmt.Errorf("%w: %s", ErrNoWatcherForUnknown, p.Param)
		}
		s.watchers[p.Param] = append(s.watchers[p.Param], p)
		if err := p.Watcher(ctx, s.store[p.Param].Value()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) WatchSubnet(params ...SubnetWatchParam) error {
	for _, p := range params {
		if _, ok := subnetParams[p.Param]; !ok {
			return fmt.Errorf("%w: %s", ErrNoWatcherForUnknown, p.Param)
		}
		s.subnetWatchers[p.Param] = append(s.subnetWatchers[p.Param], p)
	}
	return nil
}

func (s *Store) Name() string {
	return "netparams"
}

// Checkpoint holds the network wide parameters only, the subnet ones are
// part of the subnet registry.
func (s *Store) Checkpoint() ([]byte, error) {
	params := make(map[string]string, len(s.store))
	for k, v := range s.store {
		params[k] = v.String()
	}
	return json.Marshal(params)
}

func (s *Store) Load(ctx context.Context, data []byte) error {
	params := map[string]string{}
	if err := json.Unmarshal(data, &params); err != nil {
		return err
	}

	// values are applied on a fresh set so the relative checks do not
	// depend on the order of the keys
	loaded := defaultNetParams()
	keys := maps.Keys(params)
	slices.Sort(keys)
	for _, k := range keys {
		v, ok := loaded[k]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownKey, k)
		}
		if err := v.Update(params[k]); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	if loaded[NetworkDefaultDelegateTake].Value().(uint64) > loaded[NetworkMaxDelegateTake].Value().(uint64) {
		return ErrTakeAboveMaxTake
	}

	s.store = loaded
	s.addRules()
	watched := maps.Keys(s.watchers)
	slices.Sort(watched)
	for _, k := range watched {
		if err := s.dispatch(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
