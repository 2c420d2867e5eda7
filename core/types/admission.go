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

package types

import (
	"code.subnetd.io/subnetd/libs/num"
)

type RegistrationChannel int

const (
	RegistrationChannelUnspecified RegistrationChannel = iota
	RegistrationChannelBurn
	RegistrationChannelPoW
)

func (c RegistrationChannel) String() string {
	switch c {
	case RegistrationChannelBurn:
		return "burn"
	case RegistrationChannelPoW:
		return "pow"
	default:
		return "unspecified"
	}
}

// AdmissionState holds the registration costs of a subnet and the
// registrations counted since the last adjustment.
type AdmissionState struct {
	Burn                          *num.Uint
	Difficulty                    uint64
	PowRegistrationsThisInterval  uint32
	BurnRegistrationsThisInterval uint32
	RegistrationsThisBlock        uint16
}

func (a *AdmissionState) Clone() *AdmissionState {
	cpy := *a
	cpy.Burn = a.Burn.Clone()
	return &cpy
}

// RegistrationsThisInterval is the total over both channels.
func (a *AdmissionState) RegistrationsThisInterval() uint64 {
	return uint64(a.PowRegistrationsThisInterval) + uint64(a.BurnRegistrationsThisInterval)
}

// EmissionTuple is the share of a subnet's pending emission assigned to
// one hotkey by the epoch scorer.
type EmissionTuple struct {
	Hotkey            Hotkey
	ServerEmission    *num.Uint
	ValidatorEmission *num.Uint
}
