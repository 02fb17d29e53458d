// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testledger assembles a complete in-memory ledger stack for tests.
package testledger

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/eventdb"
	"github.com/credo-network/credo/genesis"
	"github.com/credo-network/credo/lvldb"
	"github.com/credo-network/credo/runtime"
	"github.com/credo-network/credo/state"
	"github.com/credo-network/credo/strategy"
	"github.com/credo-network/credo/token"
	"github.com/credo-network/credo/vault"
)

// Ledger bundles the pieces a running node assembles: the store, the state
// over it, the system ledgers, the event journal and the runtime. The clock
// is settable so tests control operation timestamps.
type Ledger struct {
	store    *lvldb.LevelDB
	st       *state.State
	tok      *token.Ledger
	registry *strategy.Registry
	vault    *vault.Vault
	edb      *eventdb.EventDB
	rt       *runtime.Runtime
	genesis  *genesis.Genesis
	clock    atomic.Uint64
}

// New builds the devnet genesis into an in-memory store and wires a runtime
// over it. The clock starts at the genesis launch time.
func New() (*Ledger, error) {
	return NewWithGenesis(genesis.NewDevnet())
}

// NewWithGenesis is like New but starts from the given genesis.
func NewWithGenesis(gene *genesis.Genesis) (*Ledger, error) {
	store, err := lvldb.NewMem()
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}

	st := state.New(store)
	if err := gene.Build(st); err != nil {
		store.Close()
		return nil, errors.Wrap(err, "build genesis")
	}

	l := &Ledger{store: store, st: st, genesis: gene}
	l.clock.Store(gene.Timestamp())

	l.tok = token.NewLedger(credo.TokenAddress, st)
	l.registry = strategy.NewRegistry(credo.RegistryAddress, st, l.tok, credo.VaultAddress, l.Now)
	l.vault = vault.New(credo.VaultAddress, st, l.tok, l.registry)

	edb, err := eventdb.NewMem()
	if err != nil {
		store.Close()
		return nil, errors.Wrap(err, "open event db")
	}
	l.edb = edb

	rt, err := runtime.New(st, l.vault, l.registry, edb, l.Now)
	if err != nil {
		edb.Close()
		store.Close()
		return nil, errors.Wrap(err, "create runtime")
	}
	l.rt = rt

	return l, nil
}

// Store returns the backing key-value store.
func (l *Ledger) Store() *lvldb.LevelDB {
	return l.store
}

// State returns the state the ledgers operate on.
func (l *Ledger) State() *state.State {
	return l.st
}

// Token returns the token ledger view.
func (l *Ledger) Token() *token.Ledger {
	return l.tok
}

// Registry returns the strategy registry view.
func (l *Ledger) Registry() *strategy.Registry {
	return l.registry
}

// Vault returns the vault view.
func (l *Ledger) Vault() *vault.Vault {
	return l.vault
}

// EventDB returns the event journal.
func (l *Ledger) EventDB() *eventdb.EventDB {
	return l.edb
}

// Runtime returns the runtime all operations go through.
func (l *Ledger) Runtime() *runtime.Runtime {
	return l.rt
}

// Genesis returns the genesis the ledger was built from.
func (l *Ledger) Genesis() *genesis.Genesis {
	return l.genesis
}

// GenesisID identifies the ledger instance.
func (l *Ledger) GenesisID() credo.Bytes32 {
	return l.genesis.ID()
}

// Accounts returns the funded development accounts.
func (l *Ledger) Accounts() []genesis.DevAccount {
	return genesis.DevAccounts()
}

// Now returns the current clock reading as unix seconds.
func (l *Ledger) Now() uint64 {
	return l.clock.Load()
}

// SetNow moves the clock to ts.
func (l *Ledger) SetNow(ts uint64) {
	l.clock.Store(ts)
}

// AdvanceTime moves the clock forward by d seconds.
func (l *Ledger) AdvanceTime(d uint64) {
	l.clock.Add(d)
}

// Close releases the journal and the store.
func (l *Ledger) Close() {
	l.edb.Close()
	l.store.Close()
}
