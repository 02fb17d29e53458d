// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package strategy

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/reverts"
	"github.com/credo-network/credo/sslot"
	"github.com/credo-network/credo/state"
	"github.com/credo-network/credo/token"
)

// Rule violations raised by strategy operations.
var (
	ErrNotVault            = reverts.New("strategy: caller is not vault")
	ErrInsufficientBalance = reverts.New("strategy: insufficient balance")
)

// Strategy custodies staked principal and may generate yield on it.
// An instance is bound to one vault and one token at construction; the
// binding never changes and every mutating call authenticates the caller
// against the bound vault.
type Strategy interface {
	Address() credo.Address
	Kind() string
	Vault() credo.Address
	Token() credo.Address

	// Principal is the amount the vault has deposited and not withdrawn.
	Principal() (*big.Int, error)
	// TotalValue is the full value currently controlled for the vault.
	TotalValue() (*big.Int, error)
	// PendingYield is the surplus claimable over principal.
	PendingYield() (*big.Int, error)

	// Deposit pulls amount from the vault into custody. The vault must have
	// approved the strategy for at least amount beforehand.
	Deposit(caller credo.Address, amount *big.Int) error
	// Withdraw returns amount of principal to the vault.
	Withdraw(caller credo.Address, amount *big.Int) error
	// WithdrawAll realizes any pending yield and returns the whole custodied
	// balance to the vault, zeroing principal. It returns the amount moved.
	WithdrawAll(caller credo.Address) (*big.Int, error)
	// HarvestYield pays pending yield to recipient without touching principal.
	// It returns the amount paid, zero included.
	HarvestYield(caller, recipient credo.Address) (*big.Int, error)
}

var slotPrincipal = credo.BytesToBytes32([]byte("principal"))

// custody is the token handling shared by strategy implementations.
// The principal counter lives in state under the instance address so it
// survives process restarts.
type custody struct {
	addr      credo.Address
	vault     credo.Address
	tok       token.Token
	principal *sslot.Uint256
}

func newCustody(addr, vault credo.Address, tok token.Token, st *state.State) custody {
	ctx := sslot.NewContext(addr, st)
	return custody{
		addr:      addr,
		vault:     vault,
		tok:       tok,
		principal: sslot.NewUint256(ctx, slotPrincipal),
	}
}

func (c *custody) Address() credo.Address {
	return c.addr
}

func (c *custody) Vault() credo.Address {
	return c.vault
}

func (c *custody) Token() credo.Address {
	return c.tok.Address()
}

func (c *custody) Principal() (*big.Int, error) {
	return c.principal.Get()
}

func (c *custody) requireVault(caller credo.Address) error {
	if caller != c.vault {
		return ErrNotVault
	}
	return nil
}

func (c *custody) deposit(caller credo.Address, amount *big.Int) error {
	if err := c.requireVault(caller); err != nil {
		return err
	}
	if err := c.tok.TransferFrom(c.addr, c.vault, c.addr, amount); err != nil {
		return errors.WithMessage(err, "deposit")
	}
	return c.principal.Add(amount)
}

func (c *custody) withdraw(caller credo.Address, amount *big.Int) error {
	if err := c.requireVault(caller); err != nil {
		return err
	}
	principal, err := c.principal.Get()
	if err != nil {
		return err
	}
	if principal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := c.tok.Transfer(c.addr, c.vault, amount); err != nil {
		return errors.WithMessage(err, "withdraw")
	}
	return c.principal.Sub(amount)
}

func (c *custody) withdrawAll(caller credo.Address) (*big.Int, error) {
	if err := c.requireVault(caller); err != nil {
		return nil, err
	}
	balance, err := c.tok.BalanceOf(c.addr)
	if err != nil {
		return nil, err
	}
	if err := c.tok.Transfer(c.addr, c.vault, balance); err != nil {
		return nil, errors.WithMessage(err, "withdraw all")
	}
	c.principal.Set(new(big.Int))
	return balance, nil
}
