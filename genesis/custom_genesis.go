// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/credo-network/credo/credo"
)

// CustomGenesis is user customized genesis
type CustomGenesis struct {
	Name       string           `json:"name"`
	LaunchTime uint64           `json:"launchTime"`
	Accounts   []Account        `json:"accounts"`
	Vault      VaultConfig      `json:"vault"`
	Strategies []StrategyConfig `json:"strategies"`
}

// Account is a balance allocated at genesis.
type Account struct {
	Address credo.Address    `json:"address"`
	Balance *HexOrDecimal256 `json:"balance"`
}

// VaultConfig is the initial vault setup.
type VaultConfig struct {
	Owner       credo.Address    `json:"owner"`
	Treasury    credo.Address    `json:"treasury"`
	StakeAmount *HexOrDecimal256 `json:"stakeAmount"`
}

// StrategyConfig provisions a strategy instance beyond the initial idle one.
type StrategyConfig struct {
	Kind    string           `json:"kind"`
	Rate    *HexOrDecimal256 `json:"rate"`
	Reserve *credo.Address   `json:"reserve"`
}

// HexOrDecimal256 marshals big.Int as hex or decimal.
// Copied from go-ethereum/common/math and implement json. Marshaler
type HexOrDecimal256 math.HexOrDecimal256

// UnmarshalJSON implements the json.Unmarshaler interface.
func (i *HexOrDecimal256) UnmarshalJSON(input []byte) error {
	var hex string
	if err := json.Unmarshal(input, &hex); err != nil {
		if err = (*big.Int)(i).UnmarshalJSON(input); err != nil {
			return err
		}
		return nil
	}
	bigint, ok := math.ParseBig256(hex)
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", input)
	}
	*i = HexOrDecimal256(*bigint)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (i HexOrDecimal256) MarshalJSON() ([]byte, error) {
	decimal256 := math.HexOrDecimal256(i)
	text, err := decimal256.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// Sign reports the sign of the wrapped integer.
func (i *HexOrDecimal256) Sign() int {
	return (*big.Int)(i).Sign()
}

// Big returns the wrapped integer.
func (i *HexOrDecimal256) Big() *big.Int {
	return (*big.Int)(i)
}
