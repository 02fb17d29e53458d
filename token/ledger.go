// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/sslot"
	"github.com/credo-network/credo/state"
)

var (
	slotBalances    = credo.BytesToBytes32([]byte("balances"))
	slotAllowances  = credo.BytesToBytes32([]byte("allowances"))
	slotTotalSupply = credo.BytesToBytes32([]byte("total-supply"))
)

// allowanceKey addresses the allowance slot of an (owner, spender) pair.
type allowanceKey struct {
	owner   credo.Address
	spender credo.Address
}

func (k allowanceKey) Bytes() []byte {
	return credo.Blake2b(k.owner.Bytes(), k.spender.Bytes()).Bytes()
}

// Ledger implements the staking token over contract-style storage slots.
type Ledger struct {
	addr        credo.Address
	balances    *sslot.Mapping[credo.Address, *big.Int]
	allowances  *sslot.Mapping[allowanceKey, *big.Int]
	totalSupply *sslot.Uint256
}

var _ Token = (*Ledger)(nil)

// NewLedger binds the token ledger to its address in state.
func NewLedger(addr credo.Address, state *state.State) *Ledger {
	ctx := sslot.NewContext(addr, state)
	return &Ledger{
		addr:        addr,
		balances:    sslot.NewMapping[credo.Address, *big.Int](ctx, slotBalances),
		allowances:  sslot.NewMapping[allowanceKey, *big.Int](ctx, slotAllowances),
		totalSupply: sslot.NewUint256(ctx, slotTotalSupply),
	}
}

func (l *Ledger) Address() credo.Address {
	return l.addr
}

func (l *Ledger) Name() string {
	return credo.TokenName
}

func (l *Ledger) Symbol() string {
	return credo.TokenSymbol
}

func (l *Ledger) Decimals() uint8 {
	return credo.TokenDecimals
}

func (l *Ledger) TotalSupply() (*big.Int, error) {
	return l.totalSupply.Get()
}

func (l *Ledger) BalanceOf(owner credo.Address) (*big.Int, error) {
	balance, err := l.balances.Get(owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return balance, nil
}

func (l *Ledger) Allowance(owner, spender credo.Address) (*big.Int, error) {
	allowance, err := l.allowances.Get(allowanceKey{owner, spender})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allowance")
	}
	return allowance, nil
}

// Mint credits newly issued supply to the given account.
// Only genesis uses it.
func (l *Ledger) Mint(to credo.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to.IsZero() {
		return ErrInvalidAddress
	}
	balance, err := l.balances.Get(to)
	if err != nil {
		return errors.Wrap(err, "failed to get balance")
	}
	if err := l.balances.Set(to, new(big.Int).Add(balance, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return l.totalSupply.Add(amount)
}

func (l *Ledger) Transfer(caller, to credo.Address, amount *big.Int) error {
	return l.move(caller, to, amount)
}

func (l *Ledger) TransferFrom(caller, from, to credo.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}

	key := allowanceKey{from, caller}
	allowance, err := l.allowances.Get(key)
	if err != nil {
		return errors.Wrap(err, "failed to get allowance")
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}

	if err := l.move(from, to, amount); err != nil {
		return err
	}
	return l.allowances.Set(key, new(big.Int).Sub(allowance, amount))
}

func (l *Ledger) Approve(caller, spender credo.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if caller.IsZero() || spender.IsZero() {
		return ErrInvalidAddress
	}
	return l.allowances.Set(allowanceKey{caller, spender}, amount)
}

// move debits from and credits to. Zero amounts and self transfers are
// legal no-ops that still validate addresses and balance.
func (l *Ledger) move(from, to credo.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if from.IsZero() || to.IsZero() {
		return ErrInvalidAddress
	}

	fromBalance, err := l.balances.Get(from)
	if err != nil {
		return errors.Wrap(err, "failed to get balance")
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if from == to || amount.Sign() == 0 {
		return nil
	}

	if err := l.balances.Set(from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	toBalance, err := l.balances.Get(to)
	if err != nil {
		return errors.Wrap(err, "failed to get balance")
	}
	return l.balances.Set(to, new(big.Int).Add(toBalance, amount))
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}
