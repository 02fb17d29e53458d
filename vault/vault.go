// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/reverts"
	"github.com/credo-network/credo/state"
	"github.com/credo-network/credo/strategy"
	"github.com/credo-network/credo/token"
)

var log = log15.New("pkg", "vault")

var (
	ErrInvalidAddress     = reverts.New("vault: invalid address")
	ErrInvalidClaimID     = reverts.New("vault: invalid claim identifier")
	ErrAlreadyStaked      = reverts.New("vault: already staked")
	ErrNoStakeFound       = reverts.New("vault: no stake found")
	ErrStrategyMismatch   = reverts.New("vault: strategy mismatch")
	ErrNotOwner           = reverts.New("vault: not owner")
	ErrNotPendingOwner    = reverts.New("vault: not pending owner")
	ErrReentrancy         = reverts.New("vault: reentrant call")
	ErrAlreadyInitialized = reverts.New("vault: already initialized")
	ErrInvalidStakeAmount = reverts.New("vault: invalid stake amount")
	ErrTransferMismatch   = reverts.New("vault: transferred amount mismatch")
)

// Strategies resolves a persisted strategy address to a live instance.
type Strategies interface {
	Get(addr credo.Address) (strategy.Strategy, error)
}

// Config is the construction-time configuration written by genesis.
type Config struct {
	Owner       credo.Address
	Treasury    credo.Address
	StakeAmount *big.Int
}

// Vault implements the staking ledger. It records fixed-size stakes keyed by
// (claim identifier, depositor), maintains the aggregate counters, and routes
// all custodied funds through the active strategy. Depositors always recover
// exactly their principal; strategy surplus belongs to the treasury.
type Vault struct {
	addr       credo.Address
	st         *state.State
	tok        token.Token
	strategies Strategies
	store      *storage

	entered bool
}

// New creates the vault bound to its storage address, staking token and
// strategy resolver. There is no default configuration path; genesis must
// call Initialize before the vault accepts operations.
func New(addr credo.Address, st *state.State, tok token.Token, strategies Strategies) *Vault {
	return &Vault{
		addr:       addr,
		st:         st,
		tok:        tok,
		strategies: strategies,
		store:      newStorage(addr, st),
	}
}

// Initialize writes the owner, treasury and stake denomination and installs
// the bootstrap strategy. It can run once.
func (v *Vault) Initialize(cfg Config, initial strategy.Strategy) error {
	owner, err := v.store.owner.Get()
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return ErrAlreadyInitialized
	}
	if cfg.Owner.IsZero() || cfg.Treasury.IsZero() {
		return ErrInvalidAddress
	}
	if cfg.StakeAmount == nil || cfg.StakeAmount.Sign() <= 0 {
		return ErrInvalidStakeAmount
	}
	if err := v.checkBinding(initial); err != nil {
		return err
	}

	v.store.owner.Set(&cfg.Owner)
	v.store.treasury.Set(&cfg.Treasury)
	v.store.stakeAmount.Set(cfg.StakeAmount)
	stratAddr := initial.Address()
	v.store.activeStrategy.Set(&stratAddr)

	log.Info("initialized", "owner", cfg.Owner, "treasury", cfg.Treasury,
		"stakeAmount", cfg.StakeAmount, "strategy", stratAddr)
	return nil
}

//
// Getters - no state change
//

// Address returns the vault's storage address.
func (v *Vault) Address() credo.Address {
	return v.addr
}

// Token returns the staking token.
func (v *Vault) Token() token.Token {
	return v.tok
}

// GetStake returns the active stake of depositor on claimID, or nil when none
// exists.
func (v *Vault) GetStake(claimID credo.Bytes32, depositor credo.Address) (*StakeRecord, error) {
	r, err := v.store.GetStake(claimID, depositor)
	if err != nil {
		return nil, err
	}
	if r.IsEmpty() {
		return nil, nil
	}
	return r, nil
}

// GetClaim returns the aggregate totals of claimID. Zero totals mean the
// claim has no active stakes.
func (v *Vault) GetClaim(claimID credo.Bytes32) (*ClaimTotals, error) {
	return v.store.GetClaim(claimID)
}

// TotalPrincipal returns depositor-owned capital across all claims. It always
// equals the active strategy's tracked principal.
func (v *Vault) TotalPrincipal() (*big.Int, error) {
	return v.store.totalPrincipal.Get()
}

// StakeAmount returns the fixed stake denomination.
func (v *Vault) StakeAmount() (*big.Int, error) {
	return v.store.stakeAmount.Get()
}

// Owner returns the administrator address.
func (v *Vault) Owner() (credo.Address, error) {
	return v.store.owner.Get()
}

// PendingOwner returns the nominated next owner, zero when no transfer is
// pending.
func (v *Vault) PendingOwner() (credo.Address, error) {
	return v.store.pendingOwner.Get()
}

// Treasury returns the yield recipient address.
func (v *Vault) Treasury() (credo.Address, error) {
	return v.store.treasury.Get()
}

// ActiveStrategyAddress returns the address of the active strategy.
func (v *Vault) ActiveStrategyAddress() (credo.Address, error) {
	return v.store.activeStrategy.Get()
}

// ActiveStrategy resolves the active strategy instance.
func (v *Vault) ActiveStrategy() (strategy.Strategy, error) {
	addr, err := v.store.activeStrategy.Get()
	if err != nil {
		return nil, err
	}
	s, err := v.strategies.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve active strategy")
	}
	return s, nil
}

// TotalValue returns principal plus unrealized yield held by the active
// strategy.
func (v *Vault) TotalValue() (*big.Int, error) {
	s, err := v.ActiveStrategy()
	if err != nil {
		return nil, err
	}
	return s.TotalValue()
}

// PendingYield returns the active strategy's unharvested surplus.
func (v *Vault) PendingYield() (*big.Int, error) {
	s, err := v.ActiveStrategy()
	if err != nil {
		return nil, err
	}
	return s.PendingYield()
}

//
// State changes
//

// Stake deposits the fixed stake amount against claimID on behalf of caller,
// who must have approved the vault for at least that amount. One stake per
// (claim, depositor) pair; ts becomes the record timestamp.
func (v *Vault) Stake(caller credo.Address, claimID credo.Bytes32, ts uint64) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.leave()

	log.Debug("staking", "claim", claimID, "depositor", caller)

	if caller.IsZero() {
		return ErrInvalidAddress
	}
	if claimID.IsZero() {
		return ErrInvalidClaimID
	}
	rec, err := v.store.GetStake(claimID, caller)
	if err != nil {
		return err
	}
	if !rec.IsEmpty() {
		return ErrAlreadyStaked
	}

	amount, err := v.store.stakeAmount.Get()
	if err != nil {
		return err
	}
	strat, err := v.ActiveStrategy()
	if err != nil {
		return err
	}

	if err := v.pullExact(caller, amount); err != nil {
		return err
	}
	if err := v.pushToStrategy(strat, amount); err != nil {
		return err
	}

	if err := v.store.SetStake(claimID, caller, &StakeRecord{Amount: amount, Timestamp: ts}); err != nil {
		return err
	}
	totals, err := v.store.GetClaim(claimID)
	if err != nil {
		return err
	}
	totals.TotalStaked.Add(totals.TotalStaked, amount)
	totals.StakerCount++
	if err := v.store.SetClaim(claimID, totals); err != nil {
		return err
	}
	if err := v.store.totalPrincipal.Add(amount); err != nil {
		return err
	}

	log.Debug("staked", "claim", claimID, "depositor", caller, "amount", amount)
	return nil
}

// Unstake clears caller's stake on claimID and returns exactly the staked
// amount to them. All bookkeeping is written before the external calls, so a
// reentrant observer only ever sees consistent totals.
func (v *Vault) Unstake(caller credo.Address, claimID credo.Bytes32) (*big.Int, error) {
	if err := v.enter(); err != nil {
		return nil, err
	}
	defer v.leave()

	log.Debug("unstaking", "claim", claimID, "depositor", caller)

	rec, err := v.store.GetStake(claimID, caller)
	if err != nil {
		return nil, err
	}
	if rec.IsEmpty() {
		return nil, ErrNoStakeFound
	}
	amount := rec.Amount

	strat, err := v.ActiveStrategy()
	if err != nil {
		return nil, err
	}

	if err := v.store.DeleteStake(claimID, caller); err != nil {
		return nil, err
	}
	totals, err := v.store.GetClaim(claimID)
	if err != nil {
		return nil, err
	}
	totals.TotalStaked.Sub(totals.TotalStaked, amount)
	totals.StakerCount--
	if totals.IsEmpty() {
		if err := v.store.DeleteClaim(claimID); err != nil {
			return nil, err
		}
	} else if err := v.store.SetClaim(claimID, totals); err != nil {
		return nil, err
	}
	if err := v.store.totalPrincipal.Sub(amount); err != nil {
		return nil, err
	}

	if err := strat.Withdraw(v.addr, amount); err != nil {
		return nil, errors.WithMessage(err, "failed to withdraw from strategy")
	}
	if err := v.tok.Transfer(v.addr, caller, amount); err != nil {
		return nil, err
	}

	log.Debug("unstaked", "claim", claimID, "depositor", caller, "amount", amount)
	return amount, nil
}

// MigrateStrategy atomically moves all custodied funds from the active
// strategy into next. The binding checks validate wiring of the incoming
// strategy, not its trustworthiness; installing strategies is an owner trust
// boundary. Exactly the tracked principal is re-deposited; anything withdrawn
// beyond it is yield, forwarded to the treasury and returned.
func (v *Vault) MigrateStrategy(caller credo.Address, next strategy.Strategy) (*big.Int, error) {
	if err := v.enter(); err != nil {
		return nil, err
	}
	defer v.leave()

	if err := v.requireOwner(caller); err != nil {
		return nil, err
	}
	if err := v.checkBinding(next); err != nil {
		return nil, err
	}

	old, err := v.ActiveStrategy()
	if err != nil {
		return nil, err
	}

	log.Debug("migrating strategy", "from", old.Address(), "to", next.Address())

	withdrawn, err := old.WithdrawAll(v.addr)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to withdraw from old strategy")
	}

	// repoint before the deposit so a reentrant observer sees the new
	// strategy active
	nextAddr := next.Address()
	v.store.activeStrategy.Set(&nextAddr)

	total, err := v.store.totalPrincipal.Get()
	if err != nil {
		return nil, err
	}
	if err := v.pushToStrategy(next, total); err != nil {
		return nil, errors.WithMessage(err, "failed to deposit into new strategy")
	}

	surplus := new(big.Int).Sub(withdrawn, total)
	if surplus.Sign() > 0 {
		treasury, err := v.store.treasury.Get()
		if err != nil {
			return nil, err
		}
		if err := v.tok.Transfer(v.addr, treasury, surplus); err != nil {
			return nil, err
		}
	} else {
		surplus = new(big.Int)
	}

	log.Info("migrated strategy", "from", old.Address(), "to", next.Address(),
		"principal", total, "yield", surplus)
	return surplus, nil
}

// HarvestYield forwards the active strategy's surplus to the treasury.
// Callable by anyone; principal is never touched and zero moved is a valid
// outcome. Returns the amount moved.
func (v *Vault) HarvestYield() (*big.Int, error) {
	if err := v.enter(); err != nil {
		return nil, err
	}
	defer v.leave()

	strat, err := v.ActiveStrategy()
	if err != nil {
		return nil, err
	}
	treasury, err := v.store.treasury.Get()
	if err != nil {
		return nil, err
	}

	amount, err := strat.HarvestYield(v.addr, treasury)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to harvest yield")
	}
	if amount.Sign() > 0 {
		log.Info("harvested yield", "treasury", treasury, "amount", amount)
	}
	return amount, nil
}

// SetTreasury points yield routing at newTreasury. Owner only.
func (v *Vault) SetTreasury(caller, newTreasury credo.Address) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.leave()

	if err := v.requireOwner(caller); err != nil {
		return err
	}
	if newTreasury.IsZero() {
		return ErrInvalidAddress
	}
	v.store.treasury.Set(&newTreasury)

	log.Info("treasury updated", "treasury", newTreasury)
	return nil
}

// TransferOwnership nominates pending as the next owner. The transfer takes
// effect only when pending calls AcceptOwnership; nominating the zero address
// cancels an outstanding nomination.
func (v *Vault) TransferOwnership(caller, pending credo.Address) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.leave()

	if err := v.requireOwner(caller); err != nil {
		return err
	}
	v.store.pendingOwner.Set(&pending)

	log.Info("ownership transfer started", "pending", pending)
	return nil
}

// AcceptOwnership completes a pending ownership transfer. Only the nominated
// pending owner may accept.
func (v *Vault) AcceptOwnership(caller credo.Address) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.leave()

	pending, err := v.store.pendingOwner.Get()
	if err != nil {
		return err
	}
	if pending.IsZero() || caller != pending {
		return ErrNotPendingOwner
	}
	v.store.owner.Set(&pending)
	v.store.pendingOwner.Set(nil)

	log.Info("ownership transferred", "owner", pending)
	return nil
}

// RescueTokens sweeps tokens sent directly to the vault address out to `to`.
// For the staking token only the portion of the direct balance not needed to
// back totalPrincipal may leave; any other token is swept in full. Owner
// only. Returns the amount moved.
func (v *Vault) RescueTokens(caller, tokenAddr, to credo.Address) (*big.Int, error) {
	if err := v.enter(); err != nil {
		return nil, err
	}
	defer v.leave()

	if err := v.requireOwner(caller); err != nil {
		return nil, err
	}
	if tokenAddr.IsZero() || to.IsZero() {
		return nil, ErrInvalidAddress
	}

	if tokenAddr != v.tok.Address() {
		other := token.NewLedger(tokenAddr, v.st)
		balance, err := other.BalanceOf(v.addr)
		if err != nil {
			return nil, err
		}
		if balance.Sign() == 0 {
			return new(big.Int), nil
		}
		if err := other.Transfer(v.addr, to, balance); err != nil {
			return nil, err
		}
		log.Info("rescued tokens", "token", tokenAddr, "to", to, "amount", balance)
		return balance, nil
	}

	rescuable, err := v.tok.BalanceOf(v.addr)
	if err != nil {
		return nil, err
	}
	// staked funds live in the active strategy; any shortfall there stays
	// covered by the direct balance
	strat, err := v.ActiveStrategy()
	if err != nil {
		return nil, err
	}
	principal, err := strat.Principal()
	if err != nil {
		return nil, err
	}
	total, err := v.store.totalPrincipal.Get()
	if err != nil {
		return nil, err
	}
	if deficit := new(big.Int).Sub(total, principal); deficit.Sign() > 0 {
		rescuable = new(big.Int).Sub(rescuable, deficit)
	}
	if rescuable.Sign() <= 0 {
		return new(big.Int), nil
	}
	if err := v.tok.Transfer(v.addr, to, rescuable); err != nil {
		return nil, err
	}
	log.Info("rescued tokens", "token", tokenAddr, "to", to, "amount", rescuable)
	return rescuable, nil
}

func (v *Vault) enter() error {
	if v.entered {
		return ErrReentrancy
	}
	v.entered = true
	return nil
}

func (v *Vault) leave() {
	v.entered = false
}

func (v *Vault) requireOwner(caller credo.Address) error {
	owner, err := v.store.owner.Get()
	if err != nil {
		return err
	}
	if owner.IsZero() || caller != owner {
		return ErrNotOwner
	}
	return nil
}

func (v *Vault) checkBinding(s strategy.Strategy) error {
	if s == nil {
		return ErrInvalidAddress
	}
	if s.Vault() != v.addr || s.Token() != v.tok.Address() {
		return ErrStrategyMismatch
	}
	return nil
}

// pullExact moves amount from sender into the vault and verifies the vault's
// balance grew by exactly that amount.
func (v *Vault) pullExact(sender credo.Address, amount *big.Int) error {
	before, err := v.tok.BalanceOf(v.addr)
	if err != nil {
		return err
	}
	if err := v.tok.TransferFrom(v.addr, sender, v.addr, amount); err != nil {
		return err
	}
	after, err := v.tok.BalanceOf(v.addr)
	if err != nil {
		return err
	}
	if new(big.Int).Sub(after, before).Cmp(amount) != 0 {
		return ErrTransferMismatch
	}
	return nil
}

// pushToStrategy approves and deposits amount into strat.
func (v *Vault) pushToStrategy(strat strategy.Strategy, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := v.tok.Approve(v.addr, strat.Address(), amount); err != nil {
		return err
	}
	return strat.Deposit(v.addr, amount)
}
