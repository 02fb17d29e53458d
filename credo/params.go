package credo

import (
	"math/big"
)

// Constants of the staking protocol.
const (
	// TokenDecimals decimal places of the staking token.
	TokenDecimals uint8 = 6

	// TokenName and TokenSymbol of the staking token.
	TokenName   = "Credo"
	TokenSymbol = "CRD"

	// MaxEventQueryLimit caps the number of journal entries a single query may return.
	MaxEventQueryLimit uint64 = 1000
)

// Protocol defaults, overridable via genesis.
var (
	// InitialStakeAmount the fixed amount locked per attestation, in base units.
	// 2,000,000 base units = 2 CRD with 6 decimals.
	InitialStakeAmount = big.NewInt(2_000_000)

	// InitialTokenSupply total supply minted at genesis, in base units.
	InitialTokenSupply = new(big.Int).Mul(big.NewInt(1_000_000_000), big.NewInt(1_000_000))
)

// Well-known addresses the system ledgers live at. The raw ASCII names are
// left-padded, so they read back out of a hex dump.
var (
	TokenAddress    = BytesToAddress([]byte("Token"))
	VaultAddress    = BytesToAddress([]byte("Vault"))
	RegistryAddress = BytesToAddress([]byte("Registry"))
)
