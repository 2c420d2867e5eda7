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

package epochtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"code.subnetd.io/subnetd/libs/config/encoding"
	"code.subnetd.io/subnetd/logging"
)

const namedLogger = "epochtime"

var ErrBlockOutOfOrder = errors.New("block is not the successor of the last applied block")

type Config struct {
	Level encoding.LogLevel `long:"log-level"`
}

func NewDefaultConfig() Config {
	return Config{
		Level: encoding.LogLevel{Level: logging.InfoLevel},
	}
}

// BlockListener is called for every applied block, in subscription order.
type BlockListener func(ctx context.Context, block uint64) error

// Svc keeps track of the last applied block and drives the per block
// pipeline through its listeners.
type Svc struct {
	log       *logging.Logger
	started   bool
	last      uint64
	listeners []BlockListener
}

func NewService(log *logging.Logger, conf Config) *Svc {
	log = log.Named(namedLogger)
	log.SetLevel(conf.Level.Get())

	return &Svc{
		log: log,
	}
}

// NotifyOnBlock registers a listener, listeners run in the order they were added.
func (s *Svc) NotifyOnBlock(f BlockListener) {
	s.listeners = append(s.listeners, f)
}

// CheckNext returns an error if the block cannot be applied next.
func (s *Svc) CheckNext(block uint64) error {
	if s.started && block != s.last+1 {
		return fmt.Errorf("%w: got %d, last %d", ErrBlockOutOfOrder, block, s.last)
	}
	return nil
}

// OnBlock runs all listeners for the block and stops at the first failure.
// The block is only recorded as applied when every listener succeeded.
func (s *Svc) OnBlock(ctx context.Context, block uint64) error {
	if err := s.CheckNext(block); err != nil {
		return err
	}
	for _, f := range s.listeners {
		if err := f(ctx, block); err != nil {
			s.log.Error("block listener failed",
				logging.Block(block),
				logging.Error(err))
			return err
		}
	}
	s.started = true
	s.last = block
	return nil
}

// LastBlock returns the last applied block, false if none was applied yet.
func (s *Svc) LastBlock() (uint64, bool) {
	return s.last, s.started
}

type checkpointState struct {
	Started bool   `json:"started"`
	Last    uint64 `json:"last"`
}

func (s *Svc) Name() string {
	return "epochtime"
}

func (s *Svc) Checkpoint() ([]byte, error) {
	return json.Marshal(checkpointState{Started: s.started, Last: s.last})
}

func (s *Svc) Load(_ context.Context, data []byte) error {
	st := checkpointState{}
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	s.started, s.last = st.Started, st.Last
	return nil
}
