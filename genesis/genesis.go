// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/state"
)

// Genesis describes the initial state of a ledger instance.
type Genesis struct {
	builder *Builder
	id      credo.Bytes32
	name    string
}

// Build builds the genesis state into st.
func (g *Genesis) Build(st *state.State) error {
	return g.builder.Build(st)
}

// ID returns the genesis ID.
// Two instances share a history only if their IDs match.
func (g *Genesis) ID() credo.Bytes32 {
	return g.id
}

// Name returns the network name.
func (g *Genesis) Name() string {
	return g.name
}

// Timestamp returns the launch time.
func (g *Genesis) Timestamp() uint64 {
	return g.builder.timestamp
}
