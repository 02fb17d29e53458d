// Copyright (c) 2025 The Credo developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/sslot"
	"github.com/credo-network/credo/state"
)

var (
	slotStakes = nameToSlot("stakes")
	slotClaims = nameToSlot("claims")
	// aggregates
	slotTotalPrincipal = nameToSlot("total-principal")
	slotActiveStrategy = nameToSlot("active-strategy")
	// admin
	slotOwner        = nameToSlot("owner")
	slotPendingOwner = nameToSlot("pending-owner")
	slotTreasury     = nameToSlot("treasury")
	slotStakeAmount  = nameToSlot("stake-amount")
)

func nameToSlot(name string) credo.Bytes32 {
	return credo.BytesToBytes32([]byte(name))
}

// stakeKey is the composite key of the stakes mapping.
type stakeKey struct {
	claim     credo.Bytes32
	depositor credo.Address
}

func (k stakeKey) Bytes() []byte {
	return append(k.claim.Bytes(), k.depositor.Bytes()...)
}

// storage represents the root storage for the vault contract.
type storage struct {
	context *sslot.Context
	stakes  *sslot.Mapping[stakeKey, *StakeRecord]
	claims  *sslot.Mapping[credo.Bytes32, *ClaimTotals]

	totalPrincipal *sslot.Uint256
	activeStrategy *sslot.Address
	owner          *sslot.Address
	pendingOwner   *sslot.Address
	treasury       *sslot.Address
	stakeAmount    *sslot.Uint256
}

// newStorage creates a new instance of storage.
func newStorage(addr credo.Address, state *state.State) *storage {
	context := sslot.NewContext(addr, state)
	return &storage{
		context:        context,
		stakes:         sslot.NewMapping[stakeKey, *StakeRecord](context, slotStakes),
		claims:         sslot.NewMapping[credo.Bytes32, *ClaimTotals](context, slotClaims),
		totalPrincipal: sslot.NewUint256(context, slotTotalPrincipal),
		activeStrategy: sslot.NewAddress(context, slotActiveStrategy),
		owner:          sslot.NewAddress(context, slotOwner),
		pendingOwner:   sslot.NewAddress(context, slotPendingOwner),
		treasury:       sslot.NewAddress(context, slotTreasury),
		stakeAmount:    sslot.NewUint256(context, slotStakeAmount),
	}
}

func (s *storage) GetStake(claim credo.Bytes32, depositor credo.Address) (*StakeRecord, error) {
	r, err := s.stakes.Get(stakeKey{claim, depositor})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake record")
	}
	return r, nil
}

func (s *storage) SetStake(claim credo.Bytes32, depositor credo.Address, entry *StakeRecord) error {
	if err := s.stakes.Set(stakeKey{claim, depositor}, entry); err != nil {
		return errors.Wrap(err, "failed to set stake record")
	}
	return nil
}

func (s *storage) DeleteStake(claim credo.Bytes32, depositor credo.Address) error {
	if err := s.stakes.Delete(stakeKey{claim, depositor}); err != nil {
		return errors.Wrap(err, "failed to delete stake record")
	}
	return nil
}

func (s *storage) GetClaim(claim credo.Bytes32) (*ClaimTotals, error) {
	c, err := s.claims.Get(claim)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get claim totals")
	}
	if c.TotalStaked == nil {
		c.TotalStaked = new(big.Int)
	}
	return c, nil
}

func (s *storage) SetClaim(claim credo.Bytes32, entry *ClaimTotals) error {
	if err := s.claims.Set(claim, entry); err != nil {
		return errors.Wrap(err, "failed to set claim totals")
	}
	return nil
}

func (s *storage) DeleteClaim(claim credo.Bytes32) error {
	if err := s.claims.Delete(claim); err != nil {
		return errors.Wrap(err, "failed to delete claim totals")
	}
	return nil
}
