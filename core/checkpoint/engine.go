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

package checkpoint

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/libs/config/encoding"
	"code.subnetd.io/subnetd/logging"

	"golang.org/x/crypto/sha3"
)

const namedLogger = "checkpoint"

var (
	ErrComponentWithDuplicateName = errors.New("multiple components with the same name")
	ErrUnknownCheckpointName      = errors.New("checkpoint contains an unknown component")
	ErrCheckpointHashMismatch     = errors.New("checkpoint hash does not match its state")
	ErrNoCheckpoint               = errors.New("no checkpoint to load")
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/state_mock.go -package mocks code.subnetd.io/subnetd/core/checkpoint State

// State is a component whose state is part of a checkpoint.
type State interface {
	Name() string
	Checkpoint() ([]byte, error)
	Load(ctx context.Context, data []byte) error
}

// Broker send events.
type Broker interface {
	Send(event events.Event)
}

type Config struct {
	Level encoding.LogLevel `long:"log-level"`
	// Interval is the number of blocks between two persisted checkpoints.
	Interval uint64 `long:"interval"`
}

func NewDefaultConfig() Config {
	return Config{
		Level:    encoding.LogLevel{Level: logging.InfoLevel},
		Interval: 100,
	}
}

// Snapshot is the state of every component at the end of a block.
type Snapshot struct {
	Height uint64 `json:"height"`
	Hash   []byte `json:"hash"`
	State  []byte `json:"state"`
}

func (s *Snapshot) HashHex() string {
	return hex.EncodeToString(s.Hash)
}

// Components returns the state of each component, keyed by name.
func (s *Snapshot) Components() (map[string]json.RawMessage, error) {
	p := payload{}
	if err := json.Unmarshal(s.State, &p); err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(p.Components))
	for _, cs := range p.Components {
		out[cs.Name] = json.RawMessage(cs.Data)
	}
	return out, nil
}

// Genesis returns the snapshot in the form used by genesis files.
func (s *Snapshot) Genesis() GenesisState {
	return GenesisState{
		CheckpointHash:  s.HashHex(),
		CheckpointState: hex.EncodeToString(s.State),
	}
}

type componentState struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

type payload struct {
	Height     uint64           `json:"height"`
	Components []componentState `json:"components"`
}

// Engine captures and restores the state of the registered components.
// Components are always visited in the order they were added.
type Engine struct {
	log      *logging.Logger
	broker   Broker
	store    *Store
	interval uint64

	components []State
	byName     map[string]State
}

func New(log *logging.Logger, conf Config, broker Broker, components ...State) (*Engine, error) {
	log = log.Named(namedLogger)
	log.SetLevel(conf.Level.Get())

	e := &Engine{
		log:      log,
		broker:   broker,
		interval: conf.Interval,
		byName:   map[string]State{},
	}
	if err := e.Add(components...); err != nil {
		return nil, err
	}
	return e, nil
}

// SetStore sets where the periodic checkpoints are persisted.
func (e *Engine) SetStore(store *Store) {
	e.store = store
}

// Add registers components, adding the same component twice is a no-op.
func (e *Engine) Add(components ...State) error {
	for _, c := range components {
		name := c.Name()
		if cur, ok := e.byName[name]; ok {
			if cur != c {
				return fmt.Errorf("%w: %s", ErrComponentWithDuplicateName, name)
			}
			continue
		}
		e.byName[name] = c
		e.components = append(e.components, c)
	}
	return nil
}

// Capture returns the current state of every component.
func (e *Engine) Capture(height uint64) (*Snapshot, error) {
	p := payload{
		Height:     height,
		Components: make([]componentState, 0, len(e.components)),
	}
	for _, c := range e.components {
		data, err := c.Checkpoint()
		if err != nil {
			return nil, fmt.Errorf("could not checkpoint %s: %w", c.Name(), err)
		}
		p.Components = append(p.Components, componentState{Name: c.Name(), Data: data})
	}
	state, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Height: height,
		Hash:   hash(state),
		State:  state,
	}, nil
}

// Checkpoint persists a snapshot of the components when the height is on
// the checkpoint interval, nil is returned otherwise.
func (e *Engine) Checkpoint(ctx context.Context, height uint64) (*Snapshot, error) {
	if e.interval == 0 || height%e.interval != 0 {
		return nil, nil
	}
	snap, err := e.Capture(height)
	if err != nil {
		return nil, err
	}
	if e.store != nil {
		if err := e.store.Put(snap); err != nil {
			return nil, err
		}
	}

	e.log.Info("checkpoint created",
		logging.Block(height),
		logging.String("hash", snap.HashHex()))
	e.broker.Send(events.NewCheckpointEvent(ctx, snap.HashHex(), height))
	return snap, nil
}

// Load restores the components from a snapshot. Components missing from the
// snapshot are left untouched.
func (e *Engine) Load(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return ErrNoCheckpoint
	}
	if h := hash(snap.State); hex.EncodeToString(h) != snap.HashHex() {
		return ErrCheckpointHashMismatch
	}
	p := payload{}
	if err := json.Unmarshal(snap.State, &p); err != nil {
		return err
	}
	data := make(map[string][]byte, len(p.Components))
	for _, cs := range p.Components {
		if _, ok := e.byName[cs.Name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCheckpointName, cs.Name)
		}
		data[cs.Name] = cs.Data
	}
	for _, c := range e.components {
		d, ok := data[c.Name()]
		if !ok {
			continue
		}
		if err := c.Load(ctx, d); err != nil {
			return fmt.Errorf("could not load %s: %w", c.Name(), err)
		}
	}
	return nil
}

// GenesisState is a checkpoint given in a genesis file.
type GenesisState struct {
	CheckpointHash  string `toml:"hash" json:"hash"`
	CheckpointState string `toml:"state" json:"state"`
}

// LoadGenesis restores the components from a hex hash and a hex encoded
// state, an empty state is ignored.
func (e *Engine) LoadGenesis(ctx context.Context, gs GenesisState) error {
	if gs.CheckpointState == "" {
		return nil
	}
	h, err := hex.DecodeString(gs.CheckpointHash)
	if err != nil {
		return fmt.Errorf("invalid checkpoint hash: %w", err)
	}
	state, err := hex.DecodeString(gs.CheckpointState)
	if err != nil {
		return fmt.Errorf("invalid checkpoint state: %w", err)
	}
	p := payload{}
	if err := json.Unmarshal(state, &p); err != nil {
		return err
	}
	return e.Load(ctx, &Snapshot{Height: p.Height, Hash: h, State: state})
}

func hash(data []byte) []byte {
	h := sha3.Sum256(data)
	return h[:]
}
