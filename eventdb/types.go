package eventdb

import (
	"math/big"

	"github.com/credo-network/credo/credo"
)

// Kind tags the ledger operation an event row records.
type Kind string

const (
	Staked                   Kind = "staked"
	Unstaked                 Kind = "unstaked"
	StrategyMigrated         Kind = "strategy-migrated"
	YieldHarvested           Kind = "yield-harvested"
	TreasuryUpdated          Kind = "treasury-updated"
	OwnershipTransferStarted Kind = "ownership-transfer-started"
	OwnershipTransferred     Kind = "ownership-transferred"
	TokensRescued            Kind = "tokens-rescued"
)

// Event is one committed ledger operation. A row carries enough data for an
// off-chain indexer to reconstruct ledger state without reading storage.
// Fields not meaningful for a kind are nil.
type Event struct {
	Seq       uint64         `json:"seq"`
	Kind      Kind           `json:"kind"`
	ClaimID   *credo.Bytes32 `json:"claimID"`
	Depositor *credo.Address `json:"depositor"`
	From      *credo.Address `json:"from"`
	To        *credo.Address `json:"to"`
	Recipient *credo.Address `json:"recipient"`
	Amount    *big.Int       `json:"amount"`
	Timestamp uint64         `json:"timestamp"`
	OpTime    uint64         `json:"opTime"`
}

type RangeType string

const (
	Seq  RangeType = "Seq"
	Time RangeType = "Time"
)

type OrderType string

const (
	ASC  OrderType = "ASC"
	DESC OrderType = "DESC"
)

type Range struct {
	Unit RangeType `json:"unit"`
	From uint64    `json:"from"`
	To   uint64    `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects event rows.
type Filter struct {
	Kinds     []Kind         `json:"kinds"`
	ClaimID   *credo.Bytes32 `json:"claimID"`
	Depositor *credo.Address `json:"depositor"`
	Order     OrderType      `json:"order"` // default asc
	Range     *Range         `json:"range"`
	Options   *Options       `json:"options"`
}

func bytes32Value(b *credo.Bytes32) []byte {
	if b == nil {
		return nil
	}
	return b.Bytes()
}

func addressValue(addr *credo.Address) []byte {
	if addr == nil {
		return nil
	}
	return addr.Bytes()
}

func amountValue(amount *big.Int) []byte {
	if amount == nil {
		return nil
	}
	return amount.Bytes()
}
