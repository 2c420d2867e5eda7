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
	"sort"

	"code.subnetd.io/subnetd/core/config"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/logging"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// LoadGenesis initialises the state from the genesis file. A genesis
// carrying a checkpoint restores it and ignores everything else.
func (app *App) LoadGenesis(ctx context.Context, g *config.Genesis) error {
	if g.Checkpoint.CheckpointHash != "" {
		app.log.Info("loading genesis checkpoint",
			logging.String("hash", g.Checkpoint.CheckpointHash))
		return app.checkpoint.LoadGenesis(ctx, g.Checkpoint)
	}

	return app.atomically(ctx, func() error {
		if g.Issuance != "" {
			issuance, err := config.ParseAmount(g.Issuance)
			if err != nil {
				return err
			}
			app.coinbase.SetIssuance(issuance)
		}

		accounts := maps.Keys(g.Balances)
		slices.Sort(accounts)
		for _, acc := range accounts {
			amount, err := config.ParseAmount(g.Balances[acc])
			if err != nil {
				return fmt.Errorf("balance of %s: %w", acc, err)
			}
			if err := app.Deposit(ctx, types.Coldkey(acc), amount); err != nil {
				return fmt.Errorf("balance of %s: %w", acc, err)
			}
		}

		if err := app.setParameters(g.NetworkParameters, func(k, v string) error {
			return app.SetNetworkParameter(ctx, k, v)
		}); err != nil {
			return err
		}

		gsubnets := slices.Clone(g.Subnets)
		sort.Slice(gsubnets, func(i, j int) bool { return gsubnets[i].NetUID < gsubnets[j].NetUID })
		for _, s := range gsubnets {
			netuid := types.NetUID(s.NetUID)
			lock, err := config.ParseAmount(s.Lock)
			if err != nil {
				return fmt.Errorf("lock of subnet %d: %w", s.NetUID, err)
			}
			if err := app.RegisterNetwork(ctx, netuid, types.Coldkey(s.Owner), types.Hotkey(s.OwnerHotkey), lock, types.DefaultSubnetParams()); err != nil {
				return fmt.Errorf("subnet %d: %w", s.NetUID, err)
			}
			if err := app.setParameters(s.Parameters, func(k, v string) error {
				return app.SetSubnetParameter(ctx, netuid, k, v)
			}); err != nil {
				return fmt.Errorf("subnet %d: %w", s.NetUID, err)
			}
		}

		app.log.Info("genesis loaded",
			logging.Int("subnets", len(gsubnets)),
			logging.Int("accounts", len(accounts)))
		return nil
	})
}

func (app *App) setParameters(params map[string]string, set func(k, v string) error) error {
	keys := maps.Keys(params)
	slices.Sort(keys)
	for _, k := range keys {
		if err := set(k, params[k]); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}
