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
	"github.com/BurntSushi/toml"

	"code.subnetd.io/subnetd/core/admission"
	"code.subnetd.io/subnetd/core/broker"
	"code.subnetd.io/subnetd/core/checkpoint"
	"code.subnetd.io/subnetd/core/coinbase"
	"code.subnetd.io/subnetd/core/collateral"
	"code.subnetd.io/subnetd/core/epochtime"
	"code.subnetd.io/subnetd/core/market"
	"code.subnetd.io/subnetd/core/netparams"
	"code.subnetd.io/subnetd/core/pow"
	"code.subnetd.io/subnetd/core/rewards"
	"code.subnetd.io/subnetd/core/staking"
	"code.subnetd.io/subnetd/core/subnets"
	"code.subnetd.io/subnetd/logging"
)

// Config is the configuration of every engine of the node.
type Config struct {
	Logging           logging.Config    `group:"Logging" namespace:"logging"`
	Broker            broker.Config     `group:"Broker" namespace:"broker"`
	Epoch             epochtime.Config  `group:"Epoch" namespace:"epoch"`
	Subnets           subnets.Config    `group:"Subnets" namespace:"subnets"`
	Admission         admission.Config  `group:"Admission" namespace:"admission"`
	PoW               pow.Config        `group:"PoW" namespace:"pow"`
	Market            market.Config     `group:"Market" namespace:"market"`
	Staking           staking.Config    `group:"Staking" namespace:"staking"`
	Collateral        collateral.Config `group:"Collateral" namespace:"collateral"`
	Coinbase          coinbase.Config   `group:"Coinbase" namespace:"coinbase"`
	Rewards           rewards.Config    `group:"Rewards" namespace:"rewards"`
	NetworkParameters netparams.Config  `group:"NetworkParameters" namespace:"netparams"`
	Checkpoint        checkpoint.Config `group:"Checkpoint" namespace:"checkpoint"`

	// StorePath is where checkpoints are persisted, in memory when empty.
	StorePath string `long:"store-path" description:"Directory of the checkpoint store"`
}

func NewDefaultConfig() Config {
	return Config{
		Logging:           logging.NewDefaultConfig(),
		Broker:            broker.NewDefaultConfig(),
		Epoch:             epochtime.NewDefaultConfig(),
		Subnets:           subnets.NewDefaultConfig(),
		Admission:         admission.NewDefaultConfig(),
		PoW:               pow.NewDefaultConfig(),
		Market:            market.NewDefaultConfig(),
		Staking:           staking.NewDefaultConfig(),
		Collateral:        collateral.NewDefaultConfig(),
		Coinbase:          coinbase.NewDefaultConfig(),
		Rewards:           rewards.NewDefaultConfig(),
		NetworkParameters: netparams.NewDefaultConfig(),
		Checkpoint:        checkpoint.NewDefaultConfig(),
	}
}

// Read loads the configuration file on top of the defaults.
func Read(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
