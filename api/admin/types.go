// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"math/big"

	"github.com/credo-network/credo/credo"
)

// CreateStrategyRequest provisions a new strategy instance. Rate and
// Reserve apply to the simulated kind only.
type CreateStrategyRequest struct {
	Caller  credo.Address  `json:"caller"`
	Kind    string         `json:"kind"`
	Rate    *big.Int       `json:"rate,omitempty"`
	Reserve *credo.Address `json:"reserve,omitempty"`
}

// CreateStrategyResult reports where the new instance lives.
type CreateStrategyResult struct {
	Address credo.Address `json:"address"`
}

// MigrateRequest moves the vault's principal to another strategy.
type MigrateRequest struct {
	Caller   credo.Address `json:"caller"`
	Strategy credo.Address `json:"strategy"`
}

// MigrateResult reports the yield surplus routed to the treasury while the
// principal moved strategies.
type MigrateResult struct {
	Surplus *big.Int `json:"surplus"`
}

// TreasuryRequest points yield payouts at a new treasury.
type TreasuryRequest struct {
	Caller   credo.Address `json:"caller"`
	Treasury credo.Address `json:"treasury"`
}

// OwnershipTransferRequest nominates a pending owner. A zero pending owner
// cancels an open handover.
type OwnershipTransferRequest struct {
	Caller       credo.Address `json:"caller"`
	PendingOwner credo.Address `json:"pendingOwner"`
}

// OwnershipAcceptRequest completes a handover. Caller must be the pending
// owner on record.
type OwnershipAcceptRequest struct {
	Caller credo.Address `json:"caller"`
}

// RescueRequest sweeps a stray token balance out of the vault.
type RescueRequest struct {
	Caller credo.Address `json:"caller"`
	Token  credo.Address `json:"token"`
	To     credo.Address `json:"to"`
}

// RescueResult reports the swept amount.
type RescueResult struct {
	Amount *big.Int `json:"amount"`
}
