// Copyright (c) 2025 The Credo developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"
)

// StakeRecord is the deposit entry of one depositor on one claim. A record
// exists only while the stake is active.
type StakeRecord struct {
	Amount    *big.Int
	Timestamp uint64
}

// IsEmpty returns whether no active stake is recorded.
func (r *StakeRecord) IsEmpty() bool {
	return r.Amount == nil || r.Amount.Sign() == 0
}

// ClaimTotals aggregates the active stakes on one claim. Both counters are
// stored under a single key so they move together.
type ClaimTotals struct {
	TotalStaked *big.Int
	StakerCount uint64
}

// IsEmpty returns whether the claim has no active stakes.
func (c *ClaimTotals) IsEmpty() bool {
	return c.StakerCount == 0
}
