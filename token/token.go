// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/reverts"
)

// Rule violations raised by token operations.
var (
	ErrInvalidAddress        = reverts.New("token: invalid address")
	ErrInvalidAmount         = reverts.New("token: invalid amount")
	ErrInsufficientBalance   = reverts.New("token: insufficient balance")
	ErrInsufficientAllowance = reverts.New("token: insufficient allowance")
)

// Token is the fungible token surface consumed by the vault and strategies.
// The caller argument carries the acting account; implementations enforce
// balance and allowance rules against it.
type Token interface {
	Address() credo.Address
	Name() string
	Symbol() string
	Decimals() uint8

	TotalSupply() (*big.Int, error)
	BalanceOf(owner credo.Address) (*big.Int, error)
	Allowance(owner, spender credo.Address) (*big.Int, error)

	Transfer(caller, to credo.Address, amount *big.Int) error
	TransferFrom(caller, from, to credo.Address, amount *big.Int) error
	Approve(caller, spender credo.Address, amount *big.Int) error
}
