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

package admission

import (
	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
)

// Decision is the outcome of comparing the registrations of an interval
// with the target, crossed with which channel was used the most.
type Decision int

const (
	NoChange Decision = iota
	OverTargetBurnMajority
	OverTargetPowMajority
	OverTargetTie
	UnderTargetBurnMajority
	UnderTargetPowMajority
	UnderTargetTie
)

var decisionNames = map[Decision]string{
	NoChange:                "no-change",
	OverTargetBurnMajority:  "over-target-burn-majority",
	OverTargetPowMajority:   "over-target-pow-majority",
	OverTargetTie:           "over-target-tie",
	UnderTargetBurnMajority: "under-target-burn-majority",
	UnderTargetPowMajority:  "under-target-pow-majority",
	UnderTargetTie:          "under-target-tie",
}

func (d Decision) String() string {
	if s, ok := decisionNames[d]; ok {
		return s
	}
	return "unknown"
}

// AdjustsBurn is true when the burn price moves to the scaled value.
// Over target the busiest channel gets more expensive, under target the
// least used one gets cheaper.
func (d Decision) AdjustsBurn() bool {
	switch d {
	case OverTargetBurnMajority, OverTargetTie, UnderTargetPowMajority, UnderTargetTie:
		return true
	}
	return false
}

// AdjustsDifficulty is true when the difficulty moves to the scaled value.
func (d Decision) AdjustsDifficulty() bool {
	switch d {
	case OverTargetPowMajority, OverTargetTie, UnderTargetBurnMajority, UnderTargetTie:
		return true
	}
	return false
}

// Decide classifies the registrations of an interval.
func Decide(pow, burn uint32, target uint16) Decision {
	actual := uint64(pow) + uint64(burn)
	t := uint64(target)
	switch {
	case actual > t:
		switch {
		case burn > pow:
			return OverTargetBurnMajority
		case pow > burn:
			return OverTargetPowMajority
		default:
			return OverTargetTie
		}
	case actual < t:
		switch {
		case burn > pow:
			return UnderTargetBurnMajority
		case pow > burn:
			return UnderTargetPowMajority
		default:
			return UnderTargetTie
		}
	default:
		return NoChange
	}
}

const (
	// alphaPrecision is the number of fractional bits alpha is quantised to.
	alphaPrecision = 18
)

var (
	alphaOne = num.NewUint(1 << alphaPrecision)
	// AlphaMax is the alpha value for which the previous value is kept as is.
	AlphaMax = num.MaxUint64()
)

// Scale returns floor(v * (actual + target) / (2 * target)), which is
// v + v * (actual - target) / (2 * target) rounded down.
func Scale(v *num.Uint, actual, target uint64) (*num.Uint, error) {
	if target == 0 {
		return nil, types.ErrTargetRegistrationsIsZero
	}
	return num.MulDiv(v, num.NewUint(actual+target), num.NewUint(2*target))
}

// quantiseAlpha maps alpha in [0, AlphaMax] to [0, 2^18].
func quantiseAlpha(alpha uint64) *num.Uint {
	q := num.UintZero().Lsh(num.NewUint(alpha), alphaPrecision)
	return q.Div(q, AlphaMax)
}

// Smooth blends the previous value with the scaled candidate:
// final = alpha * old + (1 - alpha) * candidate. The result always lies
// between old and candidate inclusive.
func Smooth(old, candidate *num.Uint, alpha uint64) (*num.Uint, error) {
	aq := quantiseAlpha(alpha)
	weighted, err := num.CheckedMul(old, aq)
	if err != nil {
		return nil, err
	}
	rest, err := num.CheckedMul(candidate, num.UintZero().Sub(alphaOne, aq))
	if err != nil {
		return nil, err
	}
	sum, err := num.CheckedAdd(weighted, rest)
	if err != nil {
		return nil, err
	}
	return sum.Rsh(sum, alphaPrecision), nil
}

// Adjustment is the result of an interval adjustment.
type Adjustment struct {
	Decision   Decision
	Burn       *num.Uint
	Difficulty uint64
}

// Adjust computes the new admission costs from the registrations counted
// during the interval. It does not mutate the state.
func Adjust(params types.SubnetParams, state *types.AdmissionState) (Adjustment, error) {
	out := Adjustment{
		Decision:   Decide(state.PowRegistrationsThisInterval, state.BurnRegistrationsThisInterval, params.TargetRegistrationsPerInterval),
		Burn:       state.Burn.Clone(),
		Difficulty: state.Difficulty,
	}
	if out.Decision == NoChange {
		return out, nil
	}

	actual := state.RegistrationsThisInterval()
	target := uint64(params.TargetRegistrationsPerInterval)

	if out.Decision.AdjustsBurn() {
		scaled, err := Scale(state.Burn, actual, target)
		if err != nil {
			return out, err
		}
		burn, err := Smooth(state.Burn, scaled, params.AdjustmentAlpha)
		if err != nil {
			return out, err
		}
		out.Burn = num.Clamp(burn, params.MinBurn, params.MaxBurn)
	}

	if out.Decision.AdjustsDifficulty() {
		old := num.NewUint(state.Difficulty)
		scaled, err := Scale(old, actual, target)
		if err != nil {
			return out, err
		}
		difficulty, err := Smooth(old, scaled, params.AdjustmentAlpha)
		if err != nil {
			return out, err
		}
		out.Difficulty = num.Clamp(difficulty, num.NewUint(params.MinDifficulty), num.NewUint(params.MaxDifficulty)).Uint64()
	}

	return out, nil
}
