// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/state"
	"github.com/credo-network/credo/strategy"
	"github.com/credo-network/credo/token"
	"github.com/credo-network/credo/vault"
)

// DevAccount account for development.
type DevAccount struct {
	Address    credo.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for solo mode.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
		"88d2d80b12b92feaa0da6d62309463d20408157723f2d7e799b6a74ead9a673b",
		"fbb9e7ba5fe9969a71c6599052237b91adeb1e5fc0c96727b66e56ff5d02f9d0",
		"547fb081e73dc2e22b4aae5c60e2970b008ac4fc3073aebc27d41ace9c4f53e9",
		"c8c53657e41a8d669349fc287f57457bd746cb1fcfc38cf94d235deb2cfca81b",
		"87e0eba9c86c494d98353800571089f316740b0cb84c9a7cdf2fe5c9997c7966",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{credo.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// devYieldRate base units per second accrued by the devnet's simulated
// strategy. Generous on purpose, so yield shows up without waiting.
var devYieldRate = big.NewInt(100)

// NewDevnet create genesis for solo mode.
//
// The token supply is split evenly across the dev accounts. The vault starts
// on an idle strategy, owned by the first account with the second as treasury,
// and a simulated strategy is provisioned as a ready migration target with the
// last account backing its reserve.
func NewDevnet() *Genesis {
	launchTime := uint64(1735689600) // 'Wed Jan 01 2025 00:00:00 GMT+0000 (UTC)'

	builder := new(Builder).
		Timestamp(launchTime).
		State(func(st *state.State) error {
			accs := DevAccounts()
			tok := token.NewLedger(credo.TokenAddress, st)

			share := new(big.Int).Div(credo.InitialTokenSupply, big.NewInt(int64(len(accs))))
			for _, a := range accs {
				if err := tok.Mint(a.Address, share); err != nil {
					return err
				}
			}

			registry := strategy.NewRegistry(
				credo.RegistryAddress, st, tok, credo.VaultAddress,
				func() uint64 { return launchTime })

			idle, err := registry.Create(strategy.KindIdle, strategy.Params{})
			if err != nil {
				return err
			}
			if _, err := registry.Create(strategy.KindSimulated, strategy.Params{
				Rate:    devYieldRate,
				Reserve: accs[len(accs)-1].Address,
			}); err != nil {
				return err
			}

			return vault.New(credo.VaultAddress, st, tok, registry).Initialize(vault.Config{
				Owner:       accs[0].Address,
				Treasury:    accs[1].Address,
				StakeAmount: credo.InitialStakeAmount,
			}, idle)
		})

	id, err := builder.ComputeID()
	if err != nil {
		panic(err)
	}
	return &Genesis{builder, id, "devnet"}
}
