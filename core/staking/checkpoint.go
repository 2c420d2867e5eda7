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
	"encoding/json"

	"code.subnetd.io/subnetd/core/types"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type hotkeyOwner struct {
	Hotkey  types.Hotkey  `json:"hotkey"`
	Coldkey types.Coldkey `json:"coldkey"`
}

type hotkeyTake struct {
	Hotkey types.Hotkey `json:"hotkey"`
	Take   uint16       `json:"take"`
}

type subnetState struct {
	NetUID     types.NetUID   `json:"netuid"`
	Registered []types.Hotkey `json:"registered"`
	Takes      []hotkeyTake   `json:"takes"`
}

type checkpointState struct {
	Stakes      []StakeEntry  `json:"stakes"`
	Owners      []hotkeyOwner `json:"owners"`
	Delegates   []hotkeyTake  `json:"delegates"`
	Subnets     []subnetState `json:"subnets"`
	MaxTake     uint16        `json:"max_take"`
	DefaultTake uint16        `json:"default_take"`
}

func (e *Engine) Name() string {
	return "staking"
}

func (e *Engine) Checkpoint() ([]byte, error) {
	st := checkpointState{
		Stakes:      e.stakes.Entries(),
		MaxTake:     e.maxTake,
		DefaultTake: e.defaultTake,
	}

	hotkeys := maps.Keys(e.owners)
	slices.Sort(hotkeys)
	for _, hk := range hotkeys {
		st.Owners = append(st.Owners, hotkeyOwner{Hotkey: hk, Coldkey: e.owners[hk]})
	}

	delegates := maps.Keys(e.delegates)
	slices.Sort(delegates)
	for _, hk := range delegates {
		st.Delegates = append(st.Delegates, hotkeyTake{Hotkey: hk, Take: e.delegates[hk]})
	}

	ids := append(maps.Keys(e.registered), maps.Keys(e.subnetTakes)...)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	for _, id := range ids {
		sn := subnetState{NetUID: id, Registered: e.RegisteredHotkeys(id)}
		takes := maps.Keys(e.subnetTakes[id])
		slices.Sort(takes)
		for _, hk := range takes {
			sn.Takes = append(sn.Takes, hotkeyTake{Hotkey: hk, Take: e.subnetTakes[id][hk]})
		}
		st.Subnets = append(st.Subnets, sn)
	}
	return json.Marshal(st)
}

func (e *Engine) Load(_ context.Context, data []byte) error {
	st := checkpointState{}
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}

	e.stakes = NewStakeLedger()
	for _, s := range st.Stakes {
		if err := e.stakes.Add(s.NetUID, s.Hotkey, s.Coldkey, s.Amount); err != nil {
			return err
		}
	}
	e.owners = make(map[types.Hotkey]types.Coldkey, len(st.Owners))
	for _, o := range st.Owners {
		e.owners[o.Hotkey] = o.Coldkey
	}
	e.delegates = make(map[types.Hotkey]uint16, len(st.Delegates))
	for _, d := range st.Delegates {
		e.delegates[d.Hotkey] = d.Take
	}
	e.registered = map[types.NetUID]map[types.Hotkey]struct{}{}
	e.subnetTakes = map[types.NetUID]map[types.Hotkey]uint16{}
	for _, sn := range st.Subnets {
		if len(sn.Registered) > 0 {
			e.registered[sn.NetUID] = make(map[types.Hotkey]struct{}, len(sn.Registered))
			for _, hk := range sn.Registered {
				e.registered[sn.NetUID][hk] = struct{}{}
			}
		}
		if len(sn.Takes) > 0 {
			e.subnetTakes[sn.NetUID] = make(map[types.Hotkey]uint16, len(sn.Takes))
			for _, t := range sn.Takes {
				e.subnetTakes[sn.NetUID][t.Hotkey] = t.Take
			}
		}
	}
	e.maxTake, e.defaultTake = st.MaxTake, st.DefaultTake
	return nil
}
