// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/lvldb"
	"github.com/credo-network/credo/state"
)

func M(a ...interface{}) []interface{} {
	return a
}

func newTestLedger() *Ledger {
	kv, _ := lvldb.NewMem()
	st := state.New(kv)
	return NewLedger(credo.BytesToAddress([]byte("crd")), st)
}

func TestLedgerMetadata(t *testing.T) {
	tok := newTestLedger()

	assert.Equal(t, credo.BytesToAddress([]byte("crd")), tok.Address())
	assert.Equal(t, "Credo", tok.Name())
	assert.Equal(t, "CRD", tok.Symbol())
	assert.Equal(t, uint8(6), tok.Decimals())
}

func TestLedgerMintAndTransfer(t *testing.T) {
	tok := newTestLedger()

	alice := credo.BytesToAddress([]byte("alice"))
	bob := credo.BytesToAddress([]byte("bob"))

	require.NoError(t, tok.Mint(alice, big.NewInt(10)))
	assert.Equal(t, M(big.NewInt(10), nil), M(tok.BalanceOf(alice)))
	assert.Equal(t, M(big.NewInt(10), nil), M(tok.TotalSupply()))

	require.NoError(t, tok.Transfer(alice, bob, big.NewInt(4)))
	assert.Equal(t, M(big.NewInt(6), nil), M(tok.BalanceOf(alice)))
	assert.Equal(t, M(big.NewInt(4), nil), M(tok.BalanceOf(bob)))

	// exceeding balance fails whole transfer
	err := tok.Transfer(alice, bob, big.NewInt(7))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, M(big.NewInt(6), nil), M(tok.BalanceOf(alice)))
}

func TestLedgerTransferEdgeCases(t *testing.T) {
	tok := newTestLedger()

	alice := credo.BytesToAddress([]byte("alice"))
	require.NoError(t, tok.Mint(alice, big.NewInt(10)))

	// zero amount is a legal no-op
	require.NoError(t, tok.Transfer(alice, credo.BytesToAddress([]byte("bob")), big.NewInt(0)))

	// self transfer is a legal no-op
	require.NoError(t, tok.Transfer(alice, alice, big.NewInt(10)))
	assert.Equal(t, M(big.NewInt(10), nil), M(tok.BalanceOf(alice)))

	// self transfer still checks balance
	err := tok.Transfer(alice, alice, big.NewInt(11))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// zero addresses rejected
	err = tok.Transfer(alice, credo.Address{}, big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidAddress)

	// negative amounts rejected
	err = tok.Transfer(alice, credo.BytesToAddress([]byte("bob")), big.NewInt(-1))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestLedgerApproveTransferFrom(t *testing.T) {
	tok := newTestLedger()

	owner := credo.BytesToAddress([]byte("owner"))
	vault := credo.BytesToAddress([]byte("vault"))

	require.NoError(t, tok.Mint(owner, big.NewInt(100)))
	require.NoError(t, tok.Approve(owner, vault, big.NewInt(60)))
	assert.Equal(t, M(big.NewInt(60), nil), M(tok.Allowance(owner, vault)))

	require.NoError(t, tok.TransferFrom(vault, owner, vault, big.NewInt(40)))
	assert.Equal(t, M(big.NewInt(60), nil), M(tok.BalanceOf(owner)))
	assert.Equal(t, M(big.NewInt(40), nil), M(tok.BalanceOf(vault)))
	assert.Equal(t, M(big.NewInt(20), nil), M(tok.Allowance(owner, vault)))

	// allowance exhausted before balance
	err := tok.TransferFrom(vault, owner, vault, big.NewInt(30))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	// allowance sufficient but balance short
	require.NoError(t, tok.Approve(owner, vault, big.NewInt(1000)))
	err = tok.TransferFrom(vault, owner, vault, big.NewInt(61))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// failed pull must not burn allowance
	assert.Equal(t, M(big.NewInt(1000), nil), M(tok.Allowance(owner, vault)))
}

func TestLedgerPersistence(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := state.New(kv)

	addr := credo.BytesToAddress([]byte("crd"))
	holder := credo.BytesToAddress([]byte("holder"))

	tok := NewLedger(addr, st)
	require.NoError(t, tok.Mint(holder, big.NewInt(1_000_000)))
	require.NoError(t, st.Commit())

	reopened := NewLedger(addr, state.New(kv))
	assert.Equal(t, M(big.NewInt(1_000_000), nil), M(reopened.BalanceOf(holder)))
	assert.Equal(t, M(big.NewInt(1_000_000), nil), M(reopened.TotalSupply()))
}
