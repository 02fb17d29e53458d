// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"math/big"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/vault"
)

// StakeRequest names the depositor and the claim an operation acts on.
// Caller identity is declared, not proven; authentication sits in front of
// the API.
type StakeRequest struct {
	Caller  credo.Address `json:"caller"`
	ClaimID credo.Bytes32 `json:"claimID"`
}

// Stake is the JSON form of an active stake record.
type Stake struct {
	ClaimID   credo.Bytes32 `json:"claimID"`
	Depositor credo.Address `json:"depositor"`
	Amount    *big.Int      `json:"amount"`
	Timestamp uint64        `json:"timestamp"`
}

// UnstakeResult reports the amount returned to the depositor.
type UnstakeResult struct {
	Amount *big.Int `json:"amount"`
}

// Claim is the JSON form of per-claim totals.
type Claim struct {
	ClaimID     credo.Bytes32 `json:"claimID"`
	TotalStaked *big.Int      `json:"totalStaked"`
	StakerCount uint64        `json:"stakerCount"`
}

func convertStake(claimID credo.Bytes32, depositor credo.Address, rec *vault.StakeRecord) *Stake {
	amount := rec.Amount
	if amount == nil {
		amount = new(big.Int)
	}
	return &Stake{
		ClaimID:   claimID,
		Depositor: depositor,
		Amount:    amount,
		Timestamp: rec.Timestamp,
	}
}

func convertClaim(claimID credo.Bytes32, totals *vault.ClaimTotals) *Claim {
	total := totals.TotalStaked
	if total == nil {
		total = new(big.Int)
	}
	return &Claim{
		ClaimID:     claimID,
		TotalStaked: total,
		StakerCount: totals.StakerCount,
	}
}
