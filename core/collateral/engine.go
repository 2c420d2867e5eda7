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

package collateral

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/config/encoding"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const namedLogger = "collateral"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrZeroAmount        = errors.New("amount must be positive")
)

type Config struct {
	Level encoding.LogLevel `long:"log-level"`
}

func NewDefaultConfig() Config {
	return Config{
		Level: encoding.LogLevel{Level: logging.InfoLevel},
	}
}

// Engine is an in memory ledger of spendable settlement asset balances.
// It is what the node plugs in front of its account storage.
type Engine struct {
	log      *logging.Logger
	balances map[types.Coldkey]*num.Uint
}

func New(log *logging.Logger, conf Config) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(conf.Level.Get())
	return &Engine{
		log:      log,
		balances: map[types.Coldkey]*num.Uint{},
	}
}

// Debit removes the amount from the account, or fails without change.
func (e *Engine) Debit(_ context.Context, account types.Coldkey, amount *num.Uint) error {
	bal, ok := e.balances[account]
	if !ok || bal.LT(amount) {
		return fmt.Errorf("%w: account %s", ErrInsufficientFunds, account)
	}
	bal.Sub(bal, amount)
	if bal.IsZero() {
		delete(e.balances, account)
	}
	return nil
}

func (e *Engine) Credit(_ context.Context, account types.Coldkey, amount *num.Uint) error {
	if amount.IsZero() {
		return nil
	}
	bal, ok := e.balances[account]
	if !ok {
		e.balances[account] = amount.Clone()
		return nil
	}
	sum, err := num.CheckedAdd(bal, amount)
	if err != nil {
		return err
	}
	e.balances[account] = sum
	return nil
}

// Deposit is a Credit done outside of block application, from genesis.
func (e *Engine) Deposit(ctx context.Context, account types.Coldkey, amount *num.Uint) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}
	e.log.Debug("deposit",
		logging.Coldkey(string(account)),
		logging.BigUint("amount", amount))
	return e.Credit(ctx, account, amount)
}

func (e *Engine) Balance(account types.Coldkey) *num.Uint {
	if bal, ok := e.balances[account]; ok {
		return bal.Clone()
	}
	return num.UintZero()
}

// Total is the sum of every balance.
func (e *Engine) Total() *num.Uint {
	total := num.UintZero()
	for _, bal := range e.balances {
		total.AddSum(bal)
	}
	return total
}

type balance struct {
	Account types.Coldkey `json:"account"`
	Balance *num.Uint     `json:"balance"`
}

func (e *Engine) Name() string {
	return "collateral"
}

func (e *Engine) Checkpoint() ([]byte, error) {
	accounts := maps.Keys(e.balances)
	slices.Sort(accounts)
	out := make([]balance, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, balance{Account: a, Balance: e.balances[a]})
	}
	return json.Marshal(out)
}

func (e *Engine) Load(_ context.Context, data []byte) error {
	var in []balance
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	e.balances = make(map[types.Coldkey]*num.Uint, len(in))
	for _, b := range in {
		e.balances[b.Account] = b.Balance
	}
	return nil
}
