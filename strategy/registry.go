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

var (
	ErrUnknownKind     = reverts.New("strategy: unknown kind")
	ErrUnknownInstance = reverts.New("strategy: unknown instance")

	slotInstances = credo.BytesToBytes32([]byte("instances"))
	slotCount     = credo.BytesToBytes32([]byte("instance-count"))
)

// descriptor is the persisted construction record of a strategy instance.
// Rate and Reserve are meaningful for the simulated kind only.
type descriptor struct {
	Kind    string
	Rate    *big.Int
	Reserve credo.Address
}

// Params carries kind-specific construction parameters.
type Params struct {
	Rate    *big.Int      // simulated: accrued base units per second
	Reserve credo.Address // simulated: account yield is paid from
}

// Registry creates strategy instances and rebuilds them from persisted
// descriptors across restarts. Instance addresses derive from the vault
// address, the kind and a creation counter.
type Registry struct {
	st    *state.State
	tok   token.Token
	vault credo.Address
	now   func() uint64

	instances *sslot.Mapping[credo.Address, *descriptor]
	count     *sslot.Uint256
}

// NewRegistry binds the registry to its storage address.
func NewRegistry(addr credo.Address, st *state.State, tok token.Token, vault credo.Address, now func() uint64) *Registry {
	ctx := sslot.NewContext(addr, st)
	return &Registry{
		st:        st,
		tok:       tok,
		vault:     vault,
		now:       now,
		instances: sslot.NewMapping[credo.Address, *descriptor](ctx, slotInstances),
		count:     sslot.NewUint256(ctx, slotCount),
	}
}

// Create instantiates a new strategy of the given kind and persists its
// descriptor.
func (r *Registry) Create(kind string, params Params) (Strategy, error) {
	switch kind {
	case KindIdle, KindSimulated:
	default:
		return nil, ErrUnknownKind
	}

	count, err := r.count.Get()
	if err != nil {
		return nil, err
	}
	addr := credo.CreateStrategyAddress(r.vault, kind, count.Uint64())

	desc := &descriptor{Kind: kind, Rate: new(big.Int), Reserve: params.Reserve}
	if params.Rate != nil {
		desc.Rate.Set(params.Rate)
	}
	if err := r.instances.Set(addr, desc); err != nil {
		return nil, errors.Wrap(err, "failed to persist strategy descriptor")
	}
	if err := r.count.Add(big.NewInt(1)); err != nil {
		return nil, err
	}
	return r.build(addr, desc)
}

// Get rebuilds the strategy instance recorded at addr.
func (r *Registry) Get(addr credo.Address) (Strategy, error) {
	has, err := r.instances.Has(addr)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, ErrUnknownInstance
	}
	desc, err := r.instances.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load strategy descriptor")
	}
	return r.build(addr, desc)
}

func (r *Registry) build(addr credo.Address, desc *descriptor) (Strategy, error) {
	switch desc.Kind {
	case KindIdle:
		return NewIdle(addr, r.vault, r.tok, r.st), nil
	case KindSimulated:
		return NewSimulated(addr, r.vault, r.tok, r.st, desc.Rate, desc.Reserve, r.now), nil
	}
	return nil, ErrUnknownKind
}
