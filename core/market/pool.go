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

package market

import (
	"errors"
	"fmt"

	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/num"
)

var (
	ErrZeroAmount = errors.New("amount must be positive")
	ErrZeroOutput = errors.New("swap would return nothing")
	ErrZeroLock   = errors.New("pool lock amount must be positive")
)

// Pool is the constant product market of a subnet, between the settlement
// asset and the subnet asset.
type Pool struct {
	SettlementReserve *num.Uint `json:"settlement_reserve"`
	AssetReserve      *num.Uint `json:"asset_reserve"`
	// AssetOutstanding is the subnet asset held by stakers, it may exceed
	// the asset reserve.
	AssetOutstanding *num.Uint `json:"asset_outstanding"`
	// K is the product the swaps are priced against, it only changes when
	// emission is injected.
	K *num.Uint `json:"k"`
}

// NewPool creates a pool at parity from the amount locked at subnet creation.
func NewPool(lock *num.Uint) (*Pool, error) {
	if lock == nil || lock.IsZero() {
		return nil, ErrZeroLock
	}
	k, err := num.CheckedMul(lock, lock)
	if err != nil {
		return nil, err
	}
	return &Pool{
		SettlementReserve: lock.Clone(),
		AssetReserve:      lock.Clone(),
		AssetOutstanding:  lock.Clone(),
		K:                 k,
	}, nil
}

func (p *Pool) Clone() *Pool {
	return &Pool{
		SettlementReserve: p.SettlementReserve.Clone(),
		AssetReserve:      p.AssetReserve.Clone(),
		AssetOutstanding:  p.AssetOutstanding.Clone(),
		K:                 p.K.Clone(),
	}
}

// QuoteStakeIn returns the subnet asset bought with the given settlement
// amount and the pool after the swap. The asset reserve is rounded up so
// rounding always favours the pool.
func (p *Pool) QuoteStakeIn(settlement *num.Uint) (*num.Uint, *Pool, error) {
	if settlement.IsZero() {
		return nil, nil, ErrZeroAmount
	}
	newS, err := num.CheckedAdd(p.SettlementReserve, settlement)
	if err != nil {
		return nil, nil, err
	}
	newA := num.UintZero().DivCeil(p.K, newS)
	if newA.GTE(p.AssetReserve) {
		return nil, nil, ErrZeroOutput
	}
	out := num.UintZero().Sub(p.AssetReserve, newA)

	np := p.Clone()
	np.SettlementReserve = newS
	np.AssetReserve = newA
	return out, np, nil
}

// QuoteUnstakeOut returns the settlement amount received for the given
// subnet asset and the pool after the swap.
func (p *Pool) QuoteUnstakeOut(asset *num.Uint) (*num.Uint, *Pool, error) {
	if asset.IsZero() {
		return nil, nil, ErrZeroAmount
	}
	newA, err := num.CheckedAdd(p.AssetReserve, asset)
	if err != nil {
		return nil, nil, err
	}
	newS := num.UintZero().DivCeil(p.K, newA)
	if newS.GTE(p.SettlementReserve) {
		return nil, nil, ErrZeroOutput
	}
	out := num.UintZero().Sub(p.SettlementReserve, newS)

	np := p.Clone()
	np.SettlementReserve = newS
	np.AssetReserve = newA
	return out, np, nil
}

// SpotPrice is the settlement reserve over the asset reserve.
func (p *Pool) SpotPrice() num.Decimal {
	return num.Ratio(p.SettlementReserve, p.AssetReserve)
}

// PriceAboveParity is true when one unit of subnet asset is worth more than
// one unit of settlement asset.
func (p *Pool) PriceAboveParity() bool {
	return p.SettlementReserve.GT(p.AssetReserve)
}

// Inject adds freshly emitted supply to one side of the pool, toward
// parity. The asset side is minted when the price is above parity, the
// settlement side is deposited otherwise. K is recomputed and only grows.
func (p *Pool) Inject(amount *num.Uint) (bool, error) {
	toAsset := p.PriceAboveParity()
	s, a := p.SettlementReserve, p.AssetReserve
	var err error
	if toAsset {
		a, err = num.CheckedAdd(a, amount)
	} else {
		s, err = num.CheckedAdd(s, amount)
	}
	if err != nil {
		return toAsset, fmt.Errorf("%w: %v", types.ErrInvariantViolation, err)
	}
	k, err := num.CheckedMul(s, a)
	if err != nil {
		return toAsset, fmt.Errorf("%w: %v", types.ErrInvariantViolation, err)
	}
	p.SettlementReserve, p.AssetReserve, p.K = s, a, k
	return toAsset, nil
}

// CheckInvariants verifies the reserves are positive and cover the product.
func (p *Pool) CheckInvariants() error {
	if p.SettlementReserve.IsZero() || p.AssetReserve.IsZero() {
		return fmt.Errorf("%w: empty reserve", types.ErrInvariantViolation)
	}
	product, err := num.CheckedMul(p.SettlementReserve, p.AssetReserve)
	if err != nil {
		return fmt.Errorf("%w: reserve product: %v", types.ErrInvariantViolation, err)
	}
	if product.LT(p.K) {
		return fmt.Errorf("%w: reserve product %s below %s", types.ErrInvariantViolation, product, p.K)
	}
	return nil
}
