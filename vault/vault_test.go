// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/kv"
	"github.com/credo-network/credo/lvldb"
	"github.com/credo-network/credo/state"
	"github.com/credo-network/credo/strategy"
	"github.com/credo-network/credo/token"
)

var (
	vaultAddr    = credo.BytesToAddress([]byte("vault"))
	tokenAddr    = credo.BytesToAddress([]byte("crd"))
	registryAddr = credo.BytesToAddress([]byte("strategies"))
	ownerAddr    = credo.BytesToAddress([]byte("owner"))
	treasuryAddr = credo.BytesToAddress([]byte("treasury"))
	alice        = credo.BytesToAddress([]byte("alice"))
	bob          = credo.BytesToAddress([]byte("bob"))

	claimX = credo.BytesToBytes32([]byte("claim-x"))
	claimY = credo.BytesToBytes32([]byte("claim-y"))
)

// testResolver serves registry-built strategies plus ad-hoc test instances.
type testResolver struct {
	reg   *strategy.Registry
	extra map[credo.Address]strategy.Strategy
}

func (r *testResolver) Get(addr credo.Address) (strategy.Strategy, error) {
	if s, ok := r.extra[addr]; ok {
		return s, nil
	}
	return r.reg.Get(addr)
}

type testVault struct {
	t        *testing.T
	kv       kv.GetPutter
	st       *state.State
	tok      *token.Ledger
	reg      *strategy.Registry
	resolver *testResolver
	vault    *Vault
	clock    uint64
}

func newTestVault(t *testing.T) *testVault {
	store, _ := lvldb.NewMem()
	return openTestVault(t, store)
}

func openTestVault(t *testing.T, store kv.GetPutter) *testVault {
	st := state.New(store)
	tok := token.NewLedger(tokenAddr, st)
	env := &testVault{t: t, kv: store, st: st, tok: tok, clock: 1_700_000_000}
	env.reg = strategy.NewRegistry(registryAddr, st, tok, vaultAddr, func() uint64 { return env.clock })
	env.resolver = &testResolver{reg: env.reg, extra: map[credo.Address]strategy.Strategy{}}
	env.vault = New(vaultAddr, st, tok, env.resolver)
	return env
}

// bootstrap funds the depositors and initializes the vault over a fresh idle
// strategy.
func (env *testVault) bootstrap() strategy.Strategy {
	require.NoError(env.t, env.tok.Mint(alice, big.NewInt(10_000_000)))
	require.NoError(env.t, env.tok.Mint(bob, big.NewInt(10_000_000)))

	idle, err := env.reg.Create(strategy.KindIdle, strategy.Params{})
	require.NoError(env.t, err)
	require.NoError(env.t, env.vault.Initialize(Config{
		Owner:       ownerAddr,
		Treasury:    treasuryAddr,
		StakeAmount: credo.InitialStakeAmount,
	}, idle))
	return idle
}

func (env *testVault) stake(depositor credo.Address, claim credo.Bytes32) error {
	amount, err := env.vault.StakeAmount()
	require.NoError(env.t, err)
	require.NoError(env.t, env.tok.Approve(depositor, vaultAddr, amount))
	return env.vault.Stake(depositor, claim, env.clock)
}

func (env *testVault) balance(addr credo.Address) *big.Int {
	b, err := env.tok.BalanceOf(addr)
	require.NoError(env.t, err)
	return b
}

// assertInvariant checks totalPrincipal == Σ claim totals == strategy
// principal over the given claims.
func (env *testVault) assertInvariant(claims ...credo.Bytes32) {
	total, err := env.vault.TotalPrincipal()
	require.NoError(env.t, err)

	sum := new(big.Int)
	for _, c := range claims {
		totals, err := env.vault.GetClaim(c)
		require.NoError(env.t, err)
		sum.Add(sum, totals.TotalStaked)
	}
	assert.Zero(env.t, total.Cmp(sum), "total principal must equal the claim total sum")

	strat, err := env.vault.ActiveStrategy()
	require.NoError(env.t, err)
	principal, err := strat.Principal()
	require.NoError(env.t, err)
	assert.Zero(env.t, total.Cmp(principal), "total principal must equal strategy principal")
}

func TestVaultInitialize(t *testing.T) {
	env := newTestVault(t)
	idle := env.bootstrap()

	owner, err := env.vault.Owner()
	require.NoError(t, err)
	assert.Equal(t, ownerAddr, owner)

	treasury, err := env.vault.Treasury()
	require.NoError(t, err)
	assert.Equal(t, treasuryAddr, treasury)

	amount, err := env.vault.StakeAmount()
	require.NoError(t, err)
	assert.Zero(t, amount.Cmp(credo.InitialStakeAmount))

	active, err := env.vault.ActiveStrategyAddress()
	require.NoError(t, err)
	assert.Equal(t, idle.Address(), active)

	assert.Equal(t, ErrAlreadyInitialized, env.vault.Initialize(Config{
		Owner:       ownerAddr,
		Treasury:    treasuryAddr,
		StakeAmount: credo.InitialStakeAmount,
	}, idle))
}

func TestVaultInitializeValidation(t *testing.T) {
	env := newTestVault(t)
	idle, err := env.reg.Create(strategy.KindIdle, strategy.Params{})
	require.NoError(t, err)

	valid := Config{Owner: ownerAddr, Treasury: treasuryAddr, StakeAmount: credo.InitialStakeAmount}

	cfg := valid
	cfg.Owner = credo.Address{}
	assert.Equal(t, ErrInvalidAddress, env.vault.Initialize(cfg, idle))

	cfg = valid
	cfg.Treasury = credo.Address{}
	assert.Equal(t, ErrInvalidAddress, env.vault.Initialize(cfg, idle))

	cfg = valid
	cfg.StakeAmount = nil
	assert.Equal(t, ErrInvalidStakeAmount, env.vault.Initialize(cfg, idle))

	cfg = valid
	cfg.StakeAmount = big.NewInt(0)
	assert.Equal(t, ErrInvalidStakeAmount, env.vault.Initialize(cfg, idle))

	// strategy bound to some other vault must be rejected
	foreign := strategy.NewIdle(idle.Address(), alice, env.tok, env.st)
	assert.Equal(t, ErrStrategyMismatch, env.vault.Initialize(valid, foreign))

	assert.Equal(t, ErrInvalidAddress, env.vault.Initialize(valid, nil))
}

func TestStake(t *testing.T) {
	env := newTestVault(t)
	idle := env.bootstrap()

	require.NoError(t, env.stake(alice, claimX))

	rec, err := env.vault.GetStake(claimX, alice)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Zero(t, rec.Amount.Cmp(credo.InitialStakeAmount))
	assert.Equal(t, env.clock, rec.Timestamp)

	totals, err := env.vault.GetClaim(claimX)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), totals.StakerCount)
	assert.Zero(t, totals.TotalStaked.Cmp(big.NewInt(2_000_000)))

	// funds are pushed through to the strategy, none stay on the vault
	assert.Equal(t, big.NewInt(8_000_000), env.balance(alice))
	assert.Equal(t, big.NewInt(0), env.balance(vaultAddr))
	assert.Equal(t, big.NewInt(2_000_000), env.balance(idle.Address()))

	env.assertInvariant(claimX)

	// second depositor on the same claim
	require.NoError(t, env.stake(bob, claimX))

	totals, err = env.vault.GetClaim(claimX)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), totals.StakerCount)
	assert.Zero(t, totals.TotalStaked.Cmp(big.NewInt(4_000_000)))
	env.assertInvariant(claimX)

	// same depositor on a second claim
	require.NoError(t, env.stake(alice, claimY))
	total, err := env.vault.TotalPrincipal()
	require.NoError(t, err)
	assert.Zero(t, total.Cmp(big.NewInt(6_000_000)))
	env.assertInvariant(claimX, claimY)
}

func TestStakeValidation(t *testing.T) {
	env := newTestVault(t)
	env.bootstrap()

	assert.Equal(t, ErrInvalidClaimID, env.vault.Stake(alice, credo.Bytes32{}, env.clock))
	assert.Equal(t, ErrInvalidAddress, env.vault.Stake(credo.Address{}, claimX, env.clock))

	// no allowance granted
	err := env.vault.Stake(alice, claimX, env.clock)
	assert.ErrorIs(t, err, token.ErrInsufficientAllowance)

	// allowance fine, balance short
	poor := credo.BytesToAddress([]byte("poor"))
	require.NoError(t, env.tok.Approve(poor, vaultAddr, credo.InitialStakeAmount))
	err = env.vault.Stake(poor, claimX, env.clock)
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)
}

func TestStakeTwiceFails(t *testing.T) {
	env := newTestVault(t)
	env.bootstrap()

	require.NoError(t, env.stake(alice, claimX))
	balance := env.balance(alice)

	err := env.stake(alice, claimX)
	assert.Equal(t, ErrAlreadyStaked, err)

	// the failed attempt left everything as after the first stake
	totals, err := env.vault.GetClaim(claimX)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), totals.StakerCount)
	assert.Zero(t, totals.TotalStaked.Cmp(credo.InitialStakeAmount))
	assert.Equal(t, balance, env.balance(alice))
	env.assertInvariant(claimX)
}

func TestStakeBalanceDeltaGuard(t *testing.T) {
	store, _ := lvldb.NewMem()
	st := state.New(store)
	ft := &feeToken{Ledger: token.NewLedger(tokenAddr, st), fee: big.NewInt(1)}
	reg := strategy.NewRegistry(registryAddr, st, ft, vaultAddr, func() uint64 { return 0 })
	v := New(vaultAddr, st, ft, reg)

	require.NoError(t, ft.Mint(alice, big.NewInt(10_000_000)))
	idle, err := reg.Create(strategy.KindIdle, strategy.Params{})
	require.NoError(t, err)
	require.NoError(t, v.Initialize(Config{
		Owner:       ownerAddr,
		Treasury:    treasuryAddr,
		StakeAmount: credo.InitialStakeAmount,
	}, idle))

	require.NoError(t, ft.Approve(alice, vaultAddr, credo.InitialStakeAmount))
	assert.Equal(t, ErrTransferMismatch, v.Stake(alice, claimX, 1))

	// the short transfer failed the whole stake, no record was written
	rec, err := v.GetStake(claimX, alice)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

// feeToken shortchanges every pull by a fixed fee.
type feeToken struct {
	*token.Ledger
	fee *big.Int
}

func (f *feeToken) TransferFrom(caller, from, to credo.Address, amount *big.Int) error {
	return f.Ledger.TransferFrom(caller, from, to, new(big.Int).Sub(amount, f.fee))
}

func TestUnstake(t *testing.T) {
	env := newTestVault(t)
	env.bootstrap()

	require.NoError(t, env.stake(alice, claimX))
	require.NoError(t, env.stake(bob, claimX))

	amount, err := env.vault.Unstake(alice, claimX)
	require.NoError(t, err)
	assert.Zero(t, amount.Cmp(credo.InitialStakeAmount))

	// alice is made whole, bob's stake is untouched
	assert.Equal(t, big.NewInt(10_000_000), env.balance(alice))
	rec, err := env.vault.GetStake(claimX, alice)
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = env.vault.GetStake(claimX, bob)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Zero(t, rec.Amount.Cmp(credo.InitialStakeAmount))

	totals, err := env.vault.GetClaim(claimX)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), totals.StakerCount)
	assert.Zero(t, totals.TotalStaked.Cmp(big.NewInt(2_000_000)))
	env.assertInvariant(claimX)

	// unstaking again finds nothing
	_, err = env.vault.Unstake(alice, claimX)
	assert.Equal(t, ErrNoStakeFound, err)

	// draining the claim removes its totals entry
	_, err = env.vault.Unstake(bob, claimX)
	require.NoError(t, err)
	totals, err = env.vault.GetClaim(claimX)
	require.NoError(t, err)
	assert.True(t, totals.IsEmpty())
	env.assertInvariant(claimX)
}

func TestUnstakeWithoutStake(t *testing.T) {
	env := newTestVault(t)
	env.bootstrap()

	_, err := env.vault.Unstake(alice, claimX)
	assert.Equal(t, ErrNoStakeFound, err)
}

func TestStakeLifecyclePersistence(t *testing.T) {
	store, _ := lvldb.NewMem()
	env := openTestVault(t, store)
	env.bootstrap()

	require.NoError(t, env.stake(alice, claimX))
	require.NoError(t, env.st.Commit())

	// a fresh vault over the same store sees the committed records
	env2 := openTestVault(t, store)
	rec, err := env2.vault.GetStake(claimX, alice)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Zero(t, rec.Amount.Cmp(credo.InitialStakeAmount))
	assert.Equal(t, env.clock, rec.Timestamp)

	totals, err := env2.vault.GetClaim(claimX)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), totals.StakerCount)
	env2.assertInvariant(claimX)

	amount, err := env2.vault.Unstake(alice, claimX)
	require.NoError(t, err)
	assert.Zero(t, amount.Cmp(credo.InitialStakeAmount))
	assert.Equal(t, big.NewInt(10_000_000), env2.balance(alice))
}
