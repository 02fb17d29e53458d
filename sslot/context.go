// Copyright (c) 2025 The Credo developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sslot

import (
	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/state"
)

// Context binds typed slots to the storage space of one contract address.
type Context struct {
	address credo.Address
	state   *state.State
}

func NewContext(address credo.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() credo.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
