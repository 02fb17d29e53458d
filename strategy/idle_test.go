// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package strategy

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/lvldb"
	"github.com/credo-network/credo/state"
	"github.com/credo-network/credo/token"
)

func M(a ...interface{}) []interface{} {
	return a
}

var (
	vaultAddr = credo.BytesToAddress([]byte("vault"))
	otherAddr = credo.BytesToAddress([]byte("other"))
)

func newTestIdle(t *testing.T) (*Idle, *token.Ledger) {
	kv, _ := lvldb.NewMem()
	st := state.New(kv)
	tok := token.NewLedger(credo.BytesToAddress([]byte("crd")), st)

	require.NoError(t, tok.Mint(vaultAddr, big.NewInt(1_000_000)))

	addr := credo.CreateStrategyAddress(vaultAddr, KindIdle, 0)
	return NewIdle(addr, vaultAddr, tok, st), tok
}

func TestIdleBinding(t *testing.T) {
	idle, tok := newTestIdle(t)

	assert.Equal(t, KindIdle, idle.Kind())
	assert.Equal(t, vaultAddr, idle.Vault())
	assert.Equal(t, tok.Address(), idle.Token())
}

func TestIdleAuthorization(t *testing.T) {
	idle, tok := newTestIdle(t)

	require.NoError(t, tok.Approve(vaultAddr, idle.Address(), big.NewInt(100)))

	err := idle.Deposit(otherAddr, big.NewInt(100))
	assert.ErrorIs(t, err, ErrNotVault)

	err = idle.Withdraw(otherAddr, big.NewInt(1))
	assert.ErrorIs(t, err, ErrNotVault)

	_, err = idle.WithdrawAll(otherAddr)
	assert.ErrorIs(t, err, ErrNotVault)

	_, err = idle.HarvestYield(otherAddr, otherAddr)
	assert.ErrorIs(t, err, ErrNotVault)

	// state untouched
	assert.Equal(t, M(big.NewInt(0), nil), M(idle.Principal()))
}

func TestIdleDepositWithdraw(t *testing.T) {
	idle, tok := newTestIdle(t)

	// deposit requires an allowance from the vault
	err := idle.Deposit(vaultAddr, big.NewInt(100))
	assert.ErrorIs(t, err, token.ErrInsufficientAllowance)

	require.NoError(t, tok.Approve(vaultAddr, idle.Address(), big.NewInt(100)))
	require.NoError(t, idle.Deposit(vaultAddr, big.NewInt(100)))

	assert.Equal(t, M(big.NewInt(100), nil), M(idle.Principal()))
	assert.Equal(t, M(big.NewInt(100), nil), M(idle.TotalValue()))
	assert.Equal(t, M(big.NewInt(100), nil), M(tok.BalanceOf(idle.Address())))
	assert.Equal(t, M(big.NewInt(999_900), nil), M(tok.BalanceOf(vaultAddr)))

	require.NoError(t, idle.Withdraw(vaultAddr, big.NewInt(40)))
	assert.Equal(t, M(big.NewInt(60), nil), M(idle.Principal()))
	assert.Equal(t, M(big.NewInt(999_940), nil), M(tok.BalanceOf(vaultAddr)))

	// withdrawing beyond principal fails
	err = idle.Withdraw(vaultAddr, big.NewInt(61))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestIdleWithdrawAll(t *testing.T) {
	idle, tok := newTestIdle(t)

	require.NoError(t, tok.Approve(vaultAddr, idle.Address(), big.NewInt(500)))
	require.NoError(t, idle.Deposit(vaultAddr, big.NewInt(500)))

	moved, err := idle.WithdrawAll(vaultAddr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), moved)
	assert.Equal(t, M(big.NewInt(0), nil), M(idle.Principal()))
	assert.Equal(t, M(big.NewInt(1_000_000), nil), M(tok.BalanceOf(vaultAddr)))
}

func TestIdleYieldIsAlwaysZero(t *testing.T) {
	idle, tok := newTestIdle(t)

	require.NoError(t, tok.Approve(vaultAddr, idle.Address(), big.NewInt(500)))
	require.NoError(t, idle.Deposit(vaultAddr, big.NewInt(500)))

	assert.Equal(t, M(big.NewInt(0), nil), M(idle.PendingYield()))

	harvested, err := idle.HarvestYield(vaultAddr, credo.BytesToAddress([]byte("treasury")))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), harvested)
	assert.Equal(t, M(big.NewInt(0), nil), M(tok.BalanceOf(credo.BytesToAddress([]byte("treasury")))))
}
