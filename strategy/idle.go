// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package strategy

import (
	"math/big"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/state"
	"github.com/credo-network/credo/token"
)

// KindIdle names the strategy that holds custody without generating yield.
const KindIdle = "idle"

// Idle custodies deposited tokens without putting them to work.
// It is the bootstrap strategy installed by genesis.
type Idle struct {
	custody
}

var _ Strategy = (*Idle)(nil)

// NewIdle binds an idle strategy instance.
func NewIdle(addr, vault credo.Address, tok token.Token, st *state.State) *Idle {
	return &Idle{newCustody(addr, vault, tok, st)}
}

func (i *Idle) Kind() string {
	return KindIdle
}

// TotalValue equals the custodied balance, which tracks principal.
func (i *Idle) TotalValue() (*big.Int, error) {
	return i.tok.BalanceOf(i.addr)
}

// PendingYield is always zero, idle custody generates nothing.
func (i *Idle) PendingYield() (*big.Int, error) {
	return new(big.Int), nil
}

func (i *Idle) Deposit(caller credo.Address, amount *big.Int) error {
	return i.deposit(caller, amount)
}

func (i *Idle) Withdraw(caller credo.Address, amount *big.Int) error {
	return i.withdraw(caller, amount)
}

func (i *Idle) WithdrawAll(caller credo.Address) (*big.Int, error) {
	return i.withdrawAll(caller)
}

// HarvestYield transfers nothing and reports a zero harvest.
func (i *Idle) HarvestYield(caller, _ credo.Address) (*big.Int, error) {
	if err := i.requireVault(caller); err != nil {
		return nil, err
	}
	return new(big.Int), nil
}
