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


package main

import (
	"encoding/json"
	"fmt"

	"code.subnetd.io/subnetd/core/checkpoint"

	"github.com/BurntSushi/toml"
)

type checkpointCmd struct {
	List listCheckpointsCmd `command:"list" description:"List the persisted checkpoints"`
	Show showCheckpointCmd  `command:"show" description:"Display the content of a checkpoint"`
}

type StoreFlag struct {
	StorePath string `description:"Directory of the checkpoint store" long:"store-path" required:"true" short:"s"`
}

func (f StoreFlag) open() (*checkpoint.Store, error) {
	return checkpoint.NewStore(f.StorePath)
}

type listCheckpointsCmd struct {
	StoreFlag
}

func (opts *listCheckpointsCmd) Execute(_ []string) error {
	store, err := opts.open()
	if err != nil {
		return err
	}
	defer store.Close()

	heights, err := store.Heights()
	if err != nil {
		return err
	}
	fmt.Println("Checkpoints available:", len(heights))
	for _, h := range heights {
		snap, err := store.Get(h)
		if err != nil {
			return err
		}
		fmt.Printf("\tHeight: %d, Size: %d, Hash: %s\n", snap.Height, len(snap.State), snap.HashHex())
	}
	return nil
}

type showCheckpointCmd struct {
	StoreFlag
	Height  uint64 `description:"Height of the checkpoint, the latest when not set"     long:"height"  short:"b"`
	Genesis bool   `description:"Print the checkpoint as the section of a genesis file" long:"genesis"`
}

func (opts *showCheckpointCmd) Execute(_ []string) error {
	store, err := opts.open()
	if err != nil {
		return err
	}
	defer store.Close()

	var snap *checkpoint.Snapshot
	if opts.Height == 0 {
		snap, err = store.Latest()
	} else {
		snap, err = store.Get(opts.Height)
	}
	if err != nil {
		return err
	}

	if opts.Genesis {
		section := struct {
			Checkpoint checkpoint.GenesisState `toml:"checkpoint"`
		}{
			Checkpoint: snap.Genesis(),
		}
		b, err := toml.Marshal(section)
		if err != nil {
			return err
		}
		fmt.Print(string(b))
		return nil
	}

	components, err := snap.Components()
	if err != nil {
		return err
	}
	out := struct {
		Height     uint64                     `json:"height"`
		Hash       string                     `json:"hash"`
		Components map[string]json.RawMessage `json:"components"`
	}{
		Height:     snap.Height,
		Hash:       snap.HashHex(),
		Components: components,
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
