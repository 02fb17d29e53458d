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

type simFixture struct {
	sim      *Simulated
	tok      *token.Ledger
	clock    uint64
	reserve  credo.Address
	treasury credo.Address
}

func (f *simFixture) advance(seconds uint64) {
	f.clock += seconds
}

func newSimFixture(t *testing.T, rate int64, reserveFunds int64) *simFixture {
	kv, _ := lvldb.NewMem()
	st := state.New(kv)
	tok := token.NewLedger(credo.BytesToAddress([]byte("crd")), st)

	f := &simFixture{
		tok:      tok,
		clock:    1_700_000_000,
		reserve:  credo.BytesToAddress([]byte("reserve")),
		treasury: credo.BytesToAddress([]byte("treasury")),
	}

	require.NoError(t, tok.Mint(vaultAddr, big.NewInt(10_000_000)))
	require.NoError(t, tok.Mint(f.reserve, big.NewInt(reserveFunds)))

	addr := credo.CreateStrategyAddress(vaultAddr, KindSimulated, 0)
	f.sim = NewSimulated(addr, vaultAddr, tok, st, big.NewInt(rate), f.reserve, func() uint64 { return f.clock })
	return f
}

func (f *simFixture) deposit(t *testing.T, amount int64) {
	require.NoError(t, f.tok.Approve(vaultAddr, f.sim.Address(), big.NewInt(amount)))
	require.NoError(t, f.sim.Deposit(vaultAddr, big.NewInt(amount)))
}

func TestSimulatedAccrual(t *testing.T) {
	f := newSimFixture(t, 10, 1000)

	f.deposit(t, 2_000_000)

	// nothing accrued at deposit time
	assert.Equal(t, M(big.NewInt(0), nil), M(f.sim.PendingYield()))

	f.advance(30)
	assert.Equal(t, M(big.NewInt(300), nil), M(f.sim.PendingYield()))
	assert.Equal(t, M(big.NewInt(2_000_300), nil), M(f.sim.TotalValue()))

	// principal is untouched by accrual
	assert.Equal(t, M(big.NewInt(2_000_000), nil), M(f.sim.Principal()))
}

func TestSimulatedAccrualCappedByReserve(t *testing.T) {
	f := newSimFixture(t, 10, 1000)

	f.deposit(t, 2_000_000)
	f.advance(200)

	// 200s * 10 = 2000 exceeds the 1000 reserve
	assert.Equal(t, M(big.NewInt(1000), nil), M(f.sim.PendingYield()))
}

func TestSimulatedNoAccrualWithoutPrincipal(t *testing.T) {
	f := newSimFixture(t, 10, 1000)

	f.advance(100)
	assert.Equal(t, M(big.NewInt(0), nil), M(f.sim.PendingYield()))
}

func TestSimulatedHarvest(t *testing.T) {
	f := newSimFixture(t, 10, 1000)

	f.deposit(t, 2_000_000)
	f.advance(30)

	harvested, err := f.sim.HarvestYield(vaultAddr, f.treasury)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), harvested)
	assert.Equal(t, M(big.NewInt(300), nil), M(f.tok.BalanceOf(f.treasury)))

	// accrual restarts after harvest
	assert.Equal(t, M(big.NewInt(0), nil), M(f.sim.PendingYield()))

	// principal stays at work
	assert.Equal(t, M(big.NewInt(2_000_000), nil), M(f.sim.Principal()))
}

func TestSimulatedWithdrawAllRealizesYield(t *testing.T) {
	f := newSimFixture(t, 10, 1000)

	f.deposit(t, 2_000_000)
	f.advance(50)

	moved, err := f.sim.WithdrawAll(vaultAddr)
	require.NoError(t, err)

	// principal plus 50s * 10 of yield
	assert.Equal(t, big.NewInt(2_000_500), moved)
	assert.Equal(t, M(big.NewInt(0), nil), M(f.sim.Principal()))
	assert.Equal(t, M(big.NewInt(10_000_500), nil), M(f.tok.BalanceOf(vaultAddr)))
	assert.Equal(t, M(big.NewInt(500), nil), M(f.tok.BalanceOf(f.reserve)))
}

func TestSimulatedSecondDepositKeepsAccrual(t *testing.T) {
	f := newSimFixture(t, 10, 10_000)

	f.deposit(t, 2_000_000)
	f.advance(30)

	f.deposit(t, 2_000_000)

	// the earlier accrual window is not reset by a follow-up deposit
	assert.Equal(t, M(big.NewInt(300), nil), M(f.sim.PendingYield()))
	assert.Equal(t, M(big.NewInt(4_000_000), nil), M(f.sim.Principal()))
}
