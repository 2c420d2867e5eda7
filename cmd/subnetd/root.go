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
	"context"

	"github.com/jessevdk/go-flags"
)

var (
	simulateCommand   simulateCmd
	checkpointCommand checkpointCmd
)

func Subnetd(_ context.Context, parser *flags.Parser) error {
	simulateCommand = simulateCmd{
		Blocks: 100,
		From:   1,
	}
	checkpointCommand = checkpointCmd{}

	for _, c := range []struct {
		name, short, long string
		data              interface{}
	}{
		{"simulate", "Run the block pipeline", "Load a genesis file then apply a number of blocks, the state of every subnet is printed as JSON", &simulateCommand},
		{"checkpoint", "Inspect checkpoints", "List and display the checkpoints persisted in a checkpoint store", &checkpointCommand},
	} {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			return err
		}
	}
	return nil
}
