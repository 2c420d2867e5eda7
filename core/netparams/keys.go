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

package netparams

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	// per subnet parameters.
	SubnetTempo                          = "subnet.tempo"
	SubnetAdjustmentInterval             = "subnet.adjustmentInterval"
	SubnetTargetRegistrationsPerInterval = "subnet.targetRegistrationsPerInterval"
	SubnetAdjustmentAlpha                = "subnet.adjustmentAlpha"
	SubnetMinDifficulty                  = "subnet.minDifficulty"
	SubnetMaxDifficulty                  = "subnet.maxDifficulty"
	SubnetMinBurn                        = "subnet.minBurn"
	SubnetMaxBurn                        = "subnet.maxBurn"
	SubnetMaxRegistrationsPerBlock       = "subnet.maxRegistrationsPerBlock"
	SubnetRegistrationAllowed            = "subnet.registrationAllowed"

	// network wide parameters.
	NetworkMaxDelegateTake     = "network.maxDelegateTake"
	NetworkDefaultDelegateTake = "network.defaultDelegateTake"
)

func defaultNetParams() map[string]value {
	return map[string]value{
		NetworkMaxDelegateTake:     NewUint(16).Mutable(true).MustUpdate("11796"),
		NetworkDefaultDelegateTake: NewUint(16).Mutable(true).MustUpdate("11796"),
	}
}

// IsSubnetKey returns true if the parameter is set per subnet.
func IsSubnetKey(key string) bool {
	_, ok := subnetParams[key]
	return ok
}

// AllKeys returns every parameter known by the store.
func AllKeys() []string {
	keys := append(maps.Keys(defaultNetParams()), maps.Keys(subnetParams)...)
	slices.Sort(keys)
	return keys
}
