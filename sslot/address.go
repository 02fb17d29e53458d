// Copyright (c) 2025 The Credo developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sslot

import (
	"github.com/credo-network/credo/credo"
)

// Address is a wrapper for storage and retrieval of an address, similar to
// storing an address in a smart contract.
type Address struct {
	context *Context
	pos     credo.Bytes32
}

func NewAddress(context *Context, pos credo.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (credo.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return credo.Address{}, err
	}
	return credo.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr *credo.Address) {
	var storage credo.Bytes32
	if addr != nil {
		storage = credo.BytesToBytes32(addr.Bytes())
	}
	a.context.state.SetStorage(a.context.address, a.pos, storage)
}
