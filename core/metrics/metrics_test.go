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

package metrics_test

import (
	"testing"

	"code.subnetd.io/subnetd/core/metrics"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m, err := metrics.New()
	require.NoError(t, err)

	m.Admission(1, 10_000, num.NewUint(1_000))
	m.Market(1, num.NewUint(200), num.NewUint(50), num.NewUint(7))
	m.Registration(1, types.RegistrationChannelBurn)
	m.Registration(1, types.RegistrationChannelBurn)
	m.BlockApplied(num.NewUint(42))
	m.BlockApplied(num.NewUint(84))

	n, err := testutil.GatherAndCount(m.Registry(), "subnetd_blocks_total", "subnetd_coinbase_issuance")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// one series per metric and subnet
	n, err = testutil.GatherAndCount(m.Registry(),
		"subnetd_admission_difficulty", "subnetd_admission_burn", "subnetd_market_asset_reserve")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	m.RemoveSubnet(1)
	n, err = testutil.GatherAndCount(m.Registry(),
		"subnetd_admission_difficulty", "subnetd_admission_registrations_total")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
