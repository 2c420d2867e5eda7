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
	"errors"
	"math"

	"code.subnetd.io/subnetd/libs/num"
)

var (
	ErrTargetRegistrationsIsZero = errors.New("target registrations per interval must be at least 1")
	ErrMinDifficultyAboveMax     = errors.New("min difficulty is greater than max difficulty")
	ErrMinBurnAboveMax           = errors.New("min burn is greater than max burn")
	ErrMissingBurnBounds         = errors.New("burn bounds are required")
)

// SubnetParams are the governance controlled economic parameters of a subnet.
type SubnetParams struct {
	Tempo                          uint16
	AdjustmentInterval             uint16
	TargetRegistrationsPerInterval uint16
	// AdjustmentAlpha is the weight of the previous value in the
	// admission cost moving average, as a fraction of math.MaxUint64.
	AdjustmentAlpha          uint64
	MinDifficulty            uint64
	MaxDifficulty            uint64
	MinBurn                  *num.Uint
	MaxBurn                  *num.Uint
	MaxRegistrationsPerBlock uint16
	RegistrationAllowed      bool
}

func DefaultSubnetParams() SubnetParams {
	return SubnetParams{
		Tempo:                          99,
		AdjustmentInterval:             100,
		TargetRegistrationsPerInterval: 2,
		AdjustmentAlpha:                0,
		MinDifficulty:                  1,
		MaxDifficulty:                  math.MaxUint64 / 4,
		MinBurn:                        num.NewUint(1),
		MaxBurn:                        num.NewUint(100_000_000_000),
		MaxRegistrationsPerBlock:       3,
		RegistrationAllowed:            true,
	}
}

// Validate rejects configurations the block pipeline cannot run with.
func (p SubnetParams) Validate() error {
	if p.TargetRegistrationsPerInterval == 0 {
		return ErrTargetRegistrationsIsZero
	}
	if p.MinDifficulty > p.MaxDifficulty {
		return ErrMinDifficultyAboveMax
	}
	if p.MinBurn == nil || p.MaxBurn == nil {
		return ErrMissingBurnBounds
	}
	if p.MinBurn.GT(p.MaxBurn) {
		return ErrMinBurnAboveMax
	}
	return nil
}

func (p SubnetParams) Clone() SubnetParams {
	cpy := p
	if p.MinBurn != nil {
		cpy.MinBurn = p.MinBurn.Clone()
	}
	if p.MaxBurn != nil {
		cpy.MaxBurn = p.MaxBurn.Clone()
	}
	return cpy
}

// MaxRegistrationsPerInterval caps registrations between two adjustments.
func (p SubnetParams) MaxRegistrationsPerInterval() uint64 {
	return uint64(p.TargetRegistrationsPerInterval) * 3
}

type Subnet struct {
	ID          NetUID
	Owner       Coldkey
	OwnerHotkey Hotkey
	Params      SubnetParams
}

func (s *Subnet) Clone() *Subnet {
	cpy := *s
	cpy.Params = s.Params.Clone()
	return &cpy
}
