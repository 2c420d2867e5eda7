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

package config

import (
	"errors"
	"fmt"

	"code.subnetd.io/subnetd/core/checkpoint"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"

	"github.com/BurntSushi/toml"
)

var ErrInvalidAmount = errors.New("invalid amount")

// GenesisSubnet is a subnet created at genesis.
type GenesisSubnet struct {
	NetUID      uint16 `toml:"netuid"`
	Owner       string `toml:"owner"`
	OwnerHotkey string `toml:"owner_hotkey"`
	Lock        string `toml:"lock"`
	// Parameters are network parameter keys applied to the subnet.
	Parameters map[string]string `toml:"parameters"`
}

// Genesis is the initial state of the chain.
type Genesis struct {
	Issuance          string                  `toml:"issuance"`
	Balances          map[string]string       `toml:"balances"`
	NetworkParameters map[string]string       `toml:"network_parameters"`
	Subnets           []GenesisSubnet         `toml:"subnets"`
	Checkpoint        checkpoint.GenesisState `toml:"checkpoint"`
}

func ReadGenesis(path string) (*Genesis, error) {
	g := &Genesis{}
	if _, err := toml.DecodeFile(path, g); err != nil {
		return nil, err
	}
	return g, g.Validate()
}

func DecodeGenesis(data string) (*Genesis, error) {
	g := &Genesis{}
	if _, err := toml.Decode(data, g); err != nil {
		return nil, err
	}
	return g, g.Validate()
}

// Validate checks every amount of the genesis parses.
func (g *Genesis) Validate() error {
	if g.Issuance != "" {
		if _, err := ParseAmount(g.Issuance); err != nil {
			return fmt.Errorf("issuance: %w", err)
		}
	}
	for acc, b := range g.Balances {
		if _, err := ParseAmount(b); err != nil {
			return fmt.Errorf("balance of %s: %w", acc, err)
		}
	}
	seen := map[uint16]struct{}{}
	for _, s := range g.Subnets {
		if types.NetUID(s.NetUID).IsRoot() {
			return fmt.Errorf("subnet %d: %w", s.NetUID, types.ErrRootSubnet)
		}
		if _, ok := seen[s.NetUID]; ok {
			return fmt.Errorf("subnet %d: %w", s.NetUID, types.ErrSubnetAlreadyExist)
		}
		seen[s.NetUID] = struct{}{}
		if _, err := ParseAmount(s.Lock); err != nil {
			return fmt.Errorf("lock of subnet %d: %w", s.NetUID, err)
		}
	}
	return nil
}

func ParseAmount(s string) (*num.Uint, error) {
	u, failed := num.UintFromString(s, 10)
	if failed {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return u, nil
}
