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
	"os"

	"github.com/jessevdk/go-flags"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := Main(ctx); err != nil {
		os.Exit(1)
	}
}

func Main(ctx context.Context) error {
	parser := flags.NewParser(&struct{}{}, flags.Default)
	if err := Subnetd(ctx, parser); err != nil {
		return err
	}
	_, err := parser.Parse()
	return err
}
