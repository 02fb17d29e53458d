// Copyright (c) 2025 The Credo developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node assembles the ledger, the event journal and the REST API
// into a single runnable service.
package node

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/credo-network/credo/api"
	"github.com/credo-network/credo/co"
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

var log = log15.New("pkg", "node")

// genesisKey locates the genesis ID marker in the main database.
// State records live under hashed keys, so a plain ASCII key never collides.
var genesisKey = []byte("credo-genesis-id")

// Options configures a node instance.
type Options struct {
	// DataDir is the root directory for databases. Empty runs everything
	// in memory.
	DataDir string

	// APIAddr is the listen address of the REST API, e.g. "localhost:8669".
	APIAddr string

	// APICORS is the comma separated list of origins allowed for
	// cross-origin requests.
	APICORS string

	// CacheSizeMB is the main database cache budget. Values below the
	// minimum are raised, values above half the physical RAM are clamped.
	CacheSizeMB int

	// EventsLimit caps rows per event query. Zero applies the default cap.
	EventsLimit uint64

	EnableMetrics bool
	EnableAPILogs bool
}

// Node hosts a staking ledger and serves it over HTTP.
type Node struct {
	goes co.Goes

	gene  *genesis.Genesis
	store *lvldb.LevelDB
	edb   *eventdb.EventDB
	rt    *runtime.Runtime

	listener net.Listener
	srv      *http.Server
	apiClose func()
}

// New opens the databases under opts.DataDir, builds the genesis state on
// first run and binds the API listener. The node does not serve until Run
// is called.
func New(gene *genesis.Genesis, opts Options) (*Node, error) {
	store, err := openMainDB(opts.DataDir, opts.CacheSizeMB)
	if err != nil {
		return nil, err
	}

	st := state.New(store)
	if err := ensureGenesis(store, st, gene); err != nil {
		_ = store.Close()
		return nil, err
	}

	now := func() uint64 { return uint64(time.Now().Unix()) }

	tok := token.NewLedger(credo.TokenAddress, st)
	registry := strategy.NewRegistry(credo.RegistryAddress, st, tok, credo.VaultAddress, now)
	v := vault.New(credo.VaultAddress, st, tok, registry)

	edb, err := openEventDB(opts.DataDir)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	rt, err := runtime.New(st, v, registry, edb, now)
	if err != nil {
		edb.Close()
		_ = store.Close()
		return nil, errors.Wrap(err, "create runtime")
	}

	handler, apiClose := api.New(rt, edb, gene.ID(), api.Options{
		AllowedOrigins:  opts.APICORS,
		EventsLimit:     opts.EventsLimit,
		EnableMetrics:   opts.EnableMetrics,
		EnableReqLogger: opts.EnableAPILogs,
	})

	listener, err := net.Listen("tcp", opts.APIAddr)
	if err != nil {
		apiClose()
		edb.Close()
		_ = store.Close()
		return nil, errors.Wrapf(err, "listen API addr [%v]", opts.APIAddr)
	}

	return &Node{
		gene:     gene,
		store:    store,
		edb:      edb,
		rt:       rt,
		listener: listener,
		srv:      &http.Server{Handler: handler},
		apiClose: apiClose,
	}, nil
}

// ensureGenesis builds the genesis state on an empty store, or verifies the
// stored marker on reopen. Mixing data directories across genesis presets
// corrupts the ledger, so a mismatch is an error.
func ensureGenesis(store *lvldb.LevelDB, st *state.State, gene *genesis.Genesis) error {
	stored, err := store.Get(genesisKey)
	if err != nil {
		if !store.IsNotFound(err) {
			return errors.Wrap(err, "read genesis marker")
		}
		if err := gene.Build(st); err != nil {
			return errors.Wrap(err, "build genesis")
		}
		if err := store.Put(genesisKey, gene.ID().Bytes()); err != nil {
			return errors.Wrap(err, "write genesis marker")
		}
		log.Info("genesis initialized", "name", gene.Name(), "id", gene.ID())
		return nil
	}

	if storedID := credo.BytesToBytes32(stored); storedID != gene.ID() {
		return errors.Errorf("genesis mismatch: store was initialized with %v, want %v", storedID, gene.ID())
	}
	return nil
}

// Run serves the API until ctx is canceled, then shuts down gracefully.
func (n *Node) Run(ctx context.Context) error {
	n.goes.Go(func() { n.serveAPI() })
	n.goes.Go(func() { n.houseKeeping(ctx) })

	log.Info("node started", "api", n.APIURL(), "genesis", n.gene.ID())

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := n.srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown API server", "err", err)
	}
	// the http shutdown does not cover hijacked websocket connections
	n.apiClose()

	n.goes.Wait()
	return nil
}

func (n *Node) serveAPI() {
	if err := n.srv.Serve(n.listener); err != http.ErrServerClosed {
		log.Error("serve API", "err", err)
	}
}

// APIURL returns the base URL of the bound API listener.
func (n *Node) APIURL() string {
	return "http://" + n.listener.Addr().String()
}

// Runtime exposes the ledger runtime for in-process access.
func (n *Node) Runtime() *runtime.Runtime {
	return n.rt
}

// Close releases the listener and the databases. Call after Run has
// returned, or in place of Run.
func (n *Node) Close() {
	// already closed by the server shutdown when Run was used
	_ = n.listener.Close()

	log.Info("closing event database...")
	n.edb.Close()
	log.Info("closing main database...")
	if err := n.store.Close(); err != nil {
		log.Warn("close main database", "err", err)
	}
}
