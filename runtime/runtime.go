// Copyright (c) 2025 The Credo developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"
	"sync"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/credo-network/credo/co"
	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/eventdb"
	"github.com/credo-network/credo/reverts"
	"github.com/credo-network/credo/state"
	"github.com/credo-network/credo/strategy"
	"github.com/credo-network/credo/vault"
)

var log = log15.New("pkg", "runtime")

const (
	opStake             = "stake"
	opUnstake           = "unstake"
	opCreateStrategy    = "create_strategy"
	opMigrateStrategy   = "migrate_strategy"
	opHarvestYield      = "harvest_yield"
	opSetTreasury       = "set_treasury"
	opTransferOwnership = "transfer_ownership"
	opAcceptOwnership   = "accept_ownership"
	opRescueTokens      = "rescue_tokens"
	opTokenApprove      = "token_approve"
	opTokenTransfer     = "token_transfer"
)

// Strategies resolves and provisions strategy instances.
type Strategies interface {
	vault.Strategies
	Create(kind string, params strategy.Params) (strategy.Strategy, error)
}

// Runtime executes ledger operations one at a time.
//
// Every mutating operation runs inside a state checkpoint. An operation that
// returns an error rolls the state back to the checkpoint; one that succeeds
// is flushed to disk and journaled before the next may begin. Reads pass
// through under the same lock so they always observe a settled state.
type Runtime struct {
	mu         sync.Mutex
	st         *state.State
	v          *vault.Vault
	strategies Strategies
	edb        *eventdb.EventDB
	now        func() uint64
	seq        uint64
	tick       co.Signal
}

// New creates the runtime. The event sequence resumes from the last row of
// the journal. now supplies operation timestamps as unix seconds and
// defaults to the wall clock.
func New(st *state.State, v *vault.Vault, strategies Strategies, edb *eventdb.EventDB, now func() uint64) (*Runtime, error) {
	if now == nil {
		now = func() uint64 {
			return uint64(time.Now().Unix())
		}
	}
	seq, err := edb.MaxSeq()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read journal sequence")
	}
	return &Runtime{
		st:         st,
		v:          v,
		strategies: strategies,
		edb:        edb,
		now:        now,
		seq:        seq,
	}, nil
}

// NewTicker creates a signal Waiter to receive the event that an operation
// has been committed.
func (r *Runtime) NewTicker() co.Waiter {
	return r.tick.NewWaiter()
}

//
// Reads - no state change
//

// GetStake returns the stake record for (claimID, depositor), nil if absent.
func (r *Runtime) GetStake(claimID credo.Bytes32, depositor credo.Address) (*vault.StakeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.v.GetStake(claimID, depositor)
}

// TokenInfo describes the staking token.
type TokenInfo struct {
	Address     credo.Address
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
}

// TokenInfo returns the token metadata and total supply.
func (r *Runtime) TokenInfo() (*TokenInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tok := r.v.Token()
	supply, err := tok.TotalSupply()
	if err != nil {
		return nil, err
	}
	return &TokenInfo{
		Address:     tok.Address(),
		Name:        tok.Name(),
		Symbol:      tok.Symbol(),
		Decimals:    tok.Decimals(),
		TotalSupply: supply,
	}, nil
}

// TokenBalanceOf returns owner's token balance.
func (r *Runtime) TokenBalanceOf(owner credo.Address) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.v.Token().BalanceOf(owner)
}

// TokenAllowance returns the amount spender may pull from owner.
func (r *Runtime) TokenAllowance(owner, spender credo.Address) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.v.Token().Allowance(owner, spender)
}

// GetClaim returns the aggregate totals for claimID, zero totals when the
// claim has no active stakes.
func (r *Runtime) GetClaim(claimID credo.Bytes32) (*vault.ClaimTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.v.GetClaim(claimID)
}

// Status is a point-in-time snapshot of the ledger's top-level figures.
type Status struct {
	Token          credo.Address
	Owner          credo.Address
	PendingOwner   credo.Address
	Treasury       credo.Address
	ActiveStrategy credo.Address
	StrategyKind   string
	StakeAmount    *big.Int
	TotalPrincipal *big.Int
	TotalValue     *big.Int
	PendingYield   *big.Int
}

// Status assembles a consistent snapshot under a single lock acquisition.
func (r *Runtime) Status() (*Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		s   Status
		err error
	)
	s.Token = r.v.Token().Address()
	if s.Owner, err = r.v.Owner(); err != nil {
		return nil, err
	}
	if s.PendingOwner, err = r.v.PendingOwner(); err != nil {
		return nil, err
	}
	if s.Treasury, err = r.v.Treasury(); err != nil {
		return nil, err
	}
	if s.ActiveStrategy, err = r.v.ActiveStrategyAddress(); err != nil {
		return nil, err
	}
	if s.StakeAmount, err = r.v.StakeAmount(); err != nil {
		return nil, err
	}
	if s.TotalPrincipal, err = r.v.TotalPrincipal(); err != nil {
		return nil, err
	}
	strat, err := r.v.ActiveStrategy()
	if err != nil {
		return nil, err
	}
	s.StrategyKind = strat.Kind()
	if s.TotalValue, err = strat.TotalValue(); err != nil {
		return nil, err
	}
	if s.PendingYield, err = strat.PendingYield(); err != nil {
		return nil, err
	}
	return &s, nil
}

//
// Mutating operations
//

// Stake locks the fixed stake amount of caller's tokens against claimID.
func (r *Runtime) Stake(caller credo.Address, claimID credo.Bytes32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.observe(opStake, time.Now())

	opTime := r.now()
	cp := r.st.NewCheckpoint()

	amount, err := r.v.StakeAmount()
	if err != nil {
		return r.fail(opStake, cp, err)
	}
	if err := r.v.Stake(caller, claimID, opTime); err != nil {
		return r.fail(opStake, cp, err)
	}
	return r.commit(opStake, cp, &eventdb.Event{
		Kind:      eventdb.Staked,
		ClaimID:   &claimID,
		Depositor: &caller,
		Amount:    amount,
		Timestamp: opTime,
		OpTime:    opTime,
	})
}

// Unstake withdraws caller's stake on claimID and returns the amount paid out.
func (r *Runtime) Unstake(caller credo.Address, claimID credo.Bytes32) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.observe(opUnstake, time.Now())

	opTime := r.now()
	cp := r.st.NewCheckpoint()

	amount, err := r.v.Unstake(caller, claimID)
	if err != nil {
		return nil, r.fail(opUnstake, cp, err)
	}
	if err := r.commit(opUnstake, cp, &eventdb.Event{
		Kind:      eventdb.Unstaked,
		ClaimID:   &claimID,
		Depositor: &caller,
		Amount:    amount,
		OpTime:    opTime,
	}); err != nil {
		return nil, err
	}
	return amount, nil
}

// CreateStrategy provisions a new strategy instance. Only the vault owner may
// grow the registry.
func (r *Runtime) CreateStrategy(caller credo.Address, kind string, params strategy.Params) (credo.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.observe(opCreateStrategy, time.Now())

	cp := r.st.NewCheckpoint()

	owner, err := r.v.Owner()
	if err != nil {
		return credo.Address{}, r.fail(opCreateStrategy, cp, err)
	}
	if owner.IsZero() || caller != owner {
		return credo.Address{}, r.fail(opCreateStrategy, cp, vault.ErrNotOwner)
	}
	strat, err := r.strategies.Create(kind, params)
	if err != nil {
		return credo.Address{}, r.fail(opCreateStrategy, cp, err)
	}
	if err := r.commit(opCreateStrategy, cp); err != nil {
		return credo.Address{}, err
	}
	log.Info("strategy created", "kind", kind, "addr", strat.Address())
	return strat.Address(), nil
}

// MigrateStrategy moves all staked funds to the strategy instance at next.
// It returns the yield surplus routed to the treasury.
func (r *Runtime) MigrateStrategy(caller credo.Address, next credo.Address) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.observe(opMigrateStrategy, time.Now())

	opTime := r.now()
	cp := r.st.NewCheckpoint()

	old, err := r.v.ActiveStrategyAddress()
	if err != nil {
		return nil, r.fail(opMigrateStrategy, cp, err)
	}
	strat, err := r.strategies.Get(next)
	if err != nil {
		return nil, r.fail(opMigrateStrategy, cp, err)
	}
	surplus, err := r.v.MigrateStrategy(caller, strat)
	if err != nil {
		return nil, r.fail(opMigrateStrategy, cp, err)
	}
	principal, err := r.v.TotalPrincipal()
	if err != nil {
		return nil, r.fail(opMigrateStrategy, cp, err)
	}

	var events []*eventdb.Event
	if surplus.Sign() > 0 {
		treasury, err := r.v.Treasury()
		if err != nil {
			return nil, r.fail(opMigrateStrategy, cp, err)
		}
		events = append(events, &eventdb.Event{
			Kind:      eventdb.YieldHarvested,
			Recipient: &treasury,
			Amount:    surplus,
			OpTime:    opTime,
		})
	}
	events = append(events, &eventdb.Event{
		Kind:   eventdb.StrategyMigrated,
		From:   &old,
		To:     &next,
		Amount: principal,
		OpTime: opTime,
	})
	if err := r.commit(opMigrateStrategy, cp, events...); err != nil {
		return nil, err
	}
	return surplus, nil
}

// HarvestYield pays any yield accrued by the active strategy to the treasury.
// Harvesting nothing is a success that journals no event.
func (r *Runtime) HarvestYield() (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.observe(opHarvestYield, time.Now())

	opTime := r.now()
	cp := r.st.NewCheckpoint()

	amount, err := r.v.HarvestYield()
	if err != nil {
		return nil, r.fail(opHarvestYield, cp, err)
	}
	var events []*eventdb.Event
	if amount.Sign() > 0 {
		treasury, err := r.v.Treasury()
		if err != nil {
			return nil, r.fail(opHarvestYield, cp, err)
		}
		events = append(events, &eventdb.Event{
			Kind:      eventdb.YieldHarvested,
			Recipient: &treasury,
			Amount:    amount,
			OpTime:    opTime,
		})
	}
	if err := r.commit(opHarvestYield, cp, events...); err != nil {
		return nil, err
	}
	return amount, nil
}

// SetTreasury points the yield destination at newTreasury.
func (r *Runtime) SetTreasury(caller, newTreasury credo.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.observe(opSetTreasury, time.Now())

	opTime := r.now()
	cp := r.st.NewCheckpoint()

	old, err := r.v.Treasury()
	if err != nil {
		return r.fail(opSetTreasury, cp, err)
	}
	if err := r.v.SetTreasury(caller, newTreasury); err != nil {
		return r.fail(opSetTreasury, cp, err)
	}
	return r.commit(opSetTreasury, cp, &eventdb.Event{
		Kind:   eventdb.TreasuryUpdated,
		From:   &old,
		To:     &newTreasury,
		OpTime: opTime,
	})
}

// TransferOwnership nominates pending as the next owner. A zero nomination
// cancels an outstanding one.
func (r *Runtime) TransferOwnership(caller, pending credo.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.observe(opTransferOwnership, time.Now())

	opTime := r.now()
	cp := r.st.NewCheckpoint()

	owner, err := r.v.Owner()
	if err != nil {
		return r.fail(opTransferOwnership, cp, err)
	}
	if err := r.v.TransferOwnership(caller, pending); err != nil {
		return r.fail(opTransferOwnership, cp, err)
	}
	return r.commit(opTransferOwnership, cp, &eventdb.Event{
		Kind:   eventdb.OwnershipTransferStarted,
		From:   &owner,
		To:     &pending,
		OpTime: opTime,
	})
}

// AcceptOwnership completes a pending ownership transfer.
func (r *Runtime) AcceptOwnership(caller credo.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.observe(opAcceptOwnership, time.Now())

	opTime := r.now()
	cp := r.st.NewCheckpoint()

	old, err := r.v.Owner()
	if err != nil {
		return r.fail(opAcceptOwnership, cp, err)
	}
	if err := r.v.AcceptOwnership(caller); err != nil {
		return r.fail(opAcceptOwnership, cp, err)
	}
	return r.commit(opAcceptOwnership, cp, &eventdb.Event{
		Kind:   eventdb.OwnershipTransferred,
		From:   &old,
		To:     &caller,
		OpTime: opTime,
	})
}

// RescueTokens sweeps tokens held by the vault outside staked principal to
// the address to. It returns the amount swept.
func (r *Runtime) RescueTokens(caller, tokenAddr, to credo.Address) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.observe(opRescueTokens, time.Now())

	opTime := r.now()
	cp := r.st.NewCheckpoint()

	amount, err := r.v.RescueTokens(caller, tokenAddr, to)
	if err != nil {
		return nil, r.fail(opRescueTokens, cp, err)
	}
	var events []*eventdb.Event
	if amount.Sign() > 0 {
		events = append(events, &eventdb.Event{
			Kind:      eventdb.TokensRescued,
			From:      &tokenAddr,
			Recipient: &to,
			Amount:    amount,
			OpTime:    opTime,
		})
	}
	if err := r.commit(opRescueTokens, cp, events...); err != nil {
		return nil, err
	}
	return amount, nil
}

//
// Token operations - the approve/transfer surface depositors need before
// they can stake. These serialize and commit like ledger operations but
// write no journal rows; the journal records attestation history only.
//

// TokenApprove sets spender's allowance over caller's tokens.
func (r *Runtime) TokenApprove(caller, spender credo.Address, amount *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.observe(opTokenApprove, time.Now())

	cp := r.st.NewCheckpoint()
	if err := r.v.Token().Approve(caller, spender, amount); err != nil {
		return r.fail(opTokenApprove, cp, err)
	}
	return r.commit(opTokenApprove, cp)
}

// TokenTransfer moves tokens from caller to the address to.
func (r *Runtime) TokenTransfer(caller, to credo.Address, amount *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.observe(opTokenTransfer, time.Now())

	cp := r.st.NewCheckpoint()
	if err := r.v.Token().Transfer(caller, to, amount); err != nil {
		return r.fail(opTokenTransfer, cp, err)
	}
	return r.commit(opTokenTransfer, cp)
}

//
// Execution plumbing
//

func (r *Runtime) observe(op string, start time.Time) {
	metricOpDuration().ObserveWithLabels(time.Since(start).Microseconds(), map[string]string{"op": op})
}

// fail rolls the state back to the checkpoint and classifies the error.
func (r *Runtime) fail(op string, cp int, err error) error {
	r.st.RevertTo(cp)
	if reverts.IsRevertErr(err) {
		log.Debug("operation reverted", "op", op, "err", err)
		metricOpCounter().AddWithLabel(1, map[string]string{"op": op, "outcome": "reverted"})
	} else {
		log.Warn("operation failed", "op", op, "err", err)
		metricOpCounter().AddWithLabel(1, map[string]string{"op": op, "outcome": "failed"})
	}
	return err
}

// commit flushes the state, journals the events of the operation and wakes
// subscribers. A failed flush reverts to the checkpoint like any other error.
func (r *Runtime) commit(op string, cp int, events ...*eventdb.Event) error {
	if err := r.st.Commit(); err != nil {
		return r.fail(op, cp, errors.Wrap(err, "failed to flush state"))
	}
	r.journal(events)
	metricOpCounter().AddWithLabel(1, map[string]string{"op": op, "outcome": "ok"})
	r.refreshGauges()
	r.tick.Broadcast()
	return nil
}

// journal assigns sequence numbers and writes the events. The state is
// already flushed at this point, so a write failure drops the rows rather
// than fail the operation. Numbering continues from the last row actually
// written and stays dense.
func (r *Runtime) journal(events []*eventdb.Event) {
	if len(events) == 0 {
		return
	}
	seq := r.seq
	for _, ev := range events {
		seq++
		ev.Seq = seq
	}
	if err := r.edb.Insert(events); err != nil {
		log.Warn("failed to journal events", "err", err)
		metricJournalErrors().Add(1)
		return
	}
	r.seq = seq
	for _, ev := range events {
		metricEventCounter().AddWithLabel(1, map[string]string{"kind": string(ev.Kind)})
	}
}

func (r *Runtime) refreshGauges() {
	principal, err := r.v.TotalPrincipal()
	if err != nil || !principal.IsInt64() {
		return
	}
	metricTotalPrincipal().Set(principal.Int64())

	unit, err := r.v.StakeAmount()
	if err != nil || unit.Sign() <= 0 {
		return
	}
	metricStakeCount().Set(new(big.Int).Div(principal, unit).Int64())
}
