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
	"encoding/json"
	"fmt"
	"os"

	"code.subnetd.io/subnetd/core/broker"
	"code.subnetd.io/subnetd/core/checkpoint"
	"code.subnetd.io/subnetd/core/config"
	"code.subnetd.io/subnetd/core/metrics"
	"code.subnetd.io/subnetd/core/processor"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

type simulateCmd struct {
	ConfigPath  string `description:"Path to the TOML configuration file"              long:"config"  short:"c"`
	GenesisPath string `description:"Path to the TOML genesis file"                   long:"genesis" required:"true" short:"g"`
	Blocks      uint64 `description:"Number of blocks to apply"                       long:"blocks"  short:"n"`
	From        uint64 `description:"First block, when the genesis has no checkpoint" long:"from"`
	Metrics     bool   `description:"Print the metrics after the run"                 long:"metrics"`
}

type simulation struct {
	LastBlock uint64                    `json:"last_block"`
	Issuance  *num.Uint                 `json:"issuance"`
	Subnets   []processor.SubnetSummary `json:"subnets"`
	Events    map[string]int            `json:"events"`
}

func (opts *simulateCmd) Execute(_ []string) error {
	ctx := context.Background()

	conf := config.NewDefaultConfig()
	if opts.ConfigPath != "" {
		c, err := config.Read(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("could not read configuration: %w", err)
		}
		conf = *c
	}

	log := logging.NewLoggerFromConfig(conf.Logging)
	defer log.AtExit()

	genesis, err := config.ReadGenesis(opts.GenesisPath)
	if err != nil {
		return fmt.Errorf("could not read genesis: %w", err)
	}

	bkr := broker.New(log, conf.Broker)
	collector := broker.NewCollector()
	bkr.Subscribe(collector)

	m, err := metrics.New()
	if err != nil {
		return err
	}
	appOpts := []processor.Option{processor.WithMetrics(m)}
	if conf.StorePath != "" {
		store, err := checkpoint.NewStore(conf.StorePath)
		if err != nil {
			return err
		}
		defer store.Close()
		appOpts = append(appOpts, processor.WithCheckpointStore(store))
	}

	app, err := processor.NewApp(log, processor.NewDefaultConfig(), conf, bkr, appOpts...)
	if err != nil {
		return err
	}
	if err := app.LoadGenesis(ctx, genesis); err != nil {
		return fmt.Errorf("could not load genesis: %w", err)
	}

	from := opts.From
	if last, ok := app.LastBlock(); ok {
		from = last + 1
	}
	for block := from; block < from+opts.Blocks; block++ {
		if err := app.TriggerBlock(ctx, block); err != nil {
			return err
		}
	}

	summary, err := app.Summary()
	if err != nil {
		return err
	}
	out := simulation{
		Issuance: app.Issuance(),
		Subnets:  summary,
		Events:   map[string]int{},
	}
	out.LastBlock, _ = app.LastBlock()
	for _, evt := range collector.Flush() {
		out.Events[evt.Type().String()]++
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))

	if opts.Metrics {
		return writeMetrics(m.Registry())
	}
	return nil
}

func writeMetrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			return err
		}
	}
	return nil
}
