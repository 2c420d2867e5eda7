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

package metrics

import (
	"strconv"

	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "subnetd"

// InstrumentOption sets an option of a new instrument.
type InstrumentOption func(o *prometheus.Opts)

func Help(help string) InstrumentOption {
	return func(o *prometheus.Opts) {
		o.Help = help
	}
}

func Subsystem(s string) InstrumentOption {
	return func(o *prometheus.Opts) {
		o.Subsystem = s
	}
}

func opts(name string, options ...InstrumentOption) prometheus.Opts {
	o := prometheus.Opts{
		Namespace: namespace,
		Name:      name,
	}
	for _, opt := range options {
		opt(&o)
	}
	return o
}

// Metrics exposes the state of the engines after each block.
type Metrics struct {
	registry *prometheus.Registry

	difficulty        *prometheus.GaugeVec
	burn              *prometheus.GaugeVec
	settlementReserve *prometheus.GaugeVec
	assetReserve      *prometheus.GaugeVec
	pendingEmission   *prometheus.GaugeVec
	registrations     *prometheus.CounterVec
	issuance          prometheus.Gauge
	blocks            prometheus.Counter
}

func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		difficulty: prometheus.NewGaugeVec(prometheus.GaugeOpts(opts("difficulty",
			Subsystem("admission"), Help("Proof of work difficulty of the subnet"))), []string{"netuid"}),
		burn: prometheus.NewGaugeVec(prometheus.GaugeOpts(opts("burn",
			Subsystem("admission"), Help("Burn price of a registration on the subnet"))), []string{"netuid"}),
		settlementReserve: prometheus.NewGaugeVec(prometheus.GaugeOpts(opts("settlement_reserve",
			Subsystem("market"), Help("Settlement asset held by the subnet market"))), []string{"netuid"}),
		assetReserve: prometheus.NewGaugeVec(prometheus.GaugeOpts(opts("asset_reserve",
			Subsystem("market"), Help("Subnet asset held by the subnet market"))), []string{"netuid"}),
		pendingEmission: prometheus.NewGaugeVec(prometheus.GaugeOpts(opts("pending_emission",
			Subsystem("market"), Help("Emission waiting for the end of the subnet epoch"))), []string{"netuid"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts(opts("registrations_total",
			Subsystem("admission"), Help("Accepted registrations"))), []string{"netuid", "channel"}),
		issuance: prometheus.NewGauge(prometheus.GaugeOpts(opts("issuance",
			Subsystem("coinbase"), Help("Settlement asset issued so far")))),
		blocks: prometheus.NewCounter(prometheus.CounterOpts(opts("blocks_total",
			Help("Blocks applied")))),
	}

	for _, c := range []prometheus.Collector{
		m.difficulty, m.burn, m.settlementReserve, m.assetReserve,
		m.pendingEmission, m.registrations, m.issuance, m.blocks,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "could not register metric")
		}
	}
	return m, nil
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func label(netuid types.NetUID) string {
	return strconv.FormatUint(uint64(netuid), 10)
}

func float(u *num.Uint) float64 {
	return u.ToDecimal().InexactFloat64()
}

func (m *Metrics) Admission(netuid types.NetUID, difficulty uint64, burn *num.Uint) {
	m.difficulty.WithLabelValues(label(netuid)).Set(float64(difficulty))
	m.burn.WithLabelValues(label(netuid)).Set(float(burn))
}

func (m *Metrics) Market(netuid types.NetUID, settlement, asset, pending *num.Uint) {
	m.settlementReserve.WithLabelValues(label(netuid)).Set(float(settlement))
	m.assetReserve.WithLabelValues(label(netuid)).Set(float(asset))
	m.pendingEmission.WithLabelValues(label(netuid)).Set(float(pending))
}

func (m *Metrics) Registration(netuid types.NetUID, channel types.RegistrationChannel) {
	m.registrations.WithLabelValues(label(netuid), channel.String()).Inc()
}

func (m *Metrics) BlockApplied(issuance *num.Uint) {
	m.blocks.Inc()
	m.issuance.Set(float(issuance))
}

// RemoveSubnet drops the series of a removed subnet.
func (m *Metrics) RemoveSubnet(netuid types.NetUID) {
	l := prometheus.Labels{"netuid": label(netuid)}
	m.difficulty.Delete(l)
	m.burn.Delete(l)
	m.settlementReserve.Delete(l)
	m.assetReserve.Delete(l)
	m.pendingEmission.Delete(l)
	m.registrations.DeletePartialMatch(l)
}
