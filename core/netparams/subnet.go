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
	"strconv"

	"code.subnetd.io/subnetd/core/netparams/checks"
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
)

// subnetParam maps a governance key onto a field of the subnet parameters.
type subnetParam struct {
	newValue func() value
	get      func(types.SubnetParams) string
	set      func(*types.SubnetParams, interface{})
}

func formatUint16(v uint16) string {
	return strconv.FormatUint(uint64(v), 10)
}

var subnetParams = map[string]subnetParam{
	SubnetTempo: {
		newValue: func() value { return NewUint(16).Mutable(true) },
		get:      func(p types.SubnetParams) string { return formatUint16(p.Tempo) },
		set:      func(p *types.SubnetParams, v interface{}) { p.Tempo = uint16(v.(uint64)) },
	},
	SubnetAdjustmentInterval: {
		newValue: func() value { return NewUint(16).Mutable(true) },
		get:      func(p types.SubnetParams) string { return formatUint16(p.AdjustmentInterval) },
		set:      func(p *types.SubnetParams, v interface{}) { p.AdjustmentInterval = uint16(v.(uint64)) },
	},
	SubnetTargetRegistrationsPerInterval: {
		newValue: func() value { return NewUint(16, checks.NonZero()).Mutable(true) },
		get:      func(p types.SubnetParams) string { return formatUint16(p.TargetRegistrationsPerInterval) },
		set:      func(p *types.SubnetParams, v interface{}) { p.TargetRegistrationsPerInterval = uint16(v.(uint64)) },
	},
	SubnetAdjustmentAlpha: {
		newValue: func() value { return NewUint(64).Mutable(true) },
		get:      func(p types.SubnetParams) string { return strconv.FormatUint(p.AdjustmentAlpha, 10) },
		set:      func(p *types.SubnetParams, v interface{}) { p.AdjustmentAlpha = v.(uint64) },
	},
	SubnetMinDifficulty: {
		newValue: func() value { return NewUint(64).Mutable(true) },
		get:      func(p types.SubnetParams) string { return strconv.FormatUint(p.MinDifficulty, 10) },
		set:      func(p *types.SubnetParams, v interface{}) { p.MinDifficulty = v.(uint64) },
	},
	SubnetMaxDifficulty: {
		newValue: func() value { return NewUint(64).Mutable(true) },
		get:      func(p types.SubnetParams) string { return strconv.FormatUint(p.MaxDifficulty, 10) },
		set:      func(p *types.SubnetParams, v interface{}) { p.MaxDifficulty = v.(uint64) },
	},
	SubnetMinBurn: {
		newValue: func() value { return NewBigUint().Mutable(true) },
		get:      func(p types.SubnetParams) string { return p.MinBurn.String() },
		set:      func(p *types.SubnetParams, v interface{}) { p.MinBurn = v.(*num.Uint) },
	},
	SubnetMaxBurn: {
		newValue: func() value { return NewBigUint(checks.NonZeroAmount()).Mutable(true) },
		get:      func(p types.SubnetParams) string { return p.MaxBurn.String() },
		set:      func(p *types.SubnetParams, v interface{}) { p.MaxBurn = v.(*num.Uint) },
	},
	SubnetMaxRegistrationsPerBlock: {
		newValue: func() value { return NewUint(16).Mutable(true) },
		get:      func(p types.SubnetParams) string { return formatUint16(p.MaxRegistrationsPerBlock) },
		set:      func(p *types.SubnetParams, v interface{}) { p.MaxRegistrationsPerBlock = uint16(v.(uint64)) },
	},
	SubnetRegistrationAllowed: {
		newValue: func() value { return NewBool().Mutable(true) },
		get:      func(p types.SubnetParams) string { return strconv.FormatBool(p.RegistrationAllowed) },
		set:      func(p *types.SubnetParams, v interface{}) { p.RegistrationAllowed = v.(bool) },
	},
}
