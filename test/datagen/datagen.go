// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen provides random value generators for tests.
package datagen

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand/v2"

	"github.com/credo-network/credo/credo"
)

func RandBytes32() (b credo.Bytes32) {
	rand.Read(b[:])
	return
}

func RandAddress() (addr credo.Address) {
	rand.Read(addr[:])
	return
}

func RandAmount() *big.Int {
	return new(big.Int).SetUint64(mathrand.Uint64N(1_000_000) + 1) //#nosec G404
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}
