// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/state"
	"github.com/credo-network/credo/strategy"
	"github.com/credo-network/credo/token"
	"github.com/credo-network/credo/vault"
)

// NewCustomNet create custom network genesis.
//
// An idle strategy is always created and installed as the vault's active
// strategy; entries in gen.Strategies provision additional instances on top.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	launchTime := gen.LaunchTime
	if launchTime == 0 {
		return nil, errors.New("launchTime must be set")
	}
	if gen.Vault.Owner.IsZero() {
		return nil, errors.New("vault: owner must be set")
	}
	if gen.Vault.Treasury.IsZero() {
		return nil, errors.New("vault: treasury must be set")
	}
	stakeAmount := credo.InitialStakeAmount
	if gen.Vault.StakeAmount != nil {
		if gen.Vault.StakeAmount.Sign() < 1 {
			return nil, errors.New("vault: stakeAmount must be a positive integer")
		}
		stakeAmount = gen.Vault.StakeAmount.Big()
	}
	for _, a := range gen.Accounts {
		if a.Balance == nil {
			return nil, fmt.Errorf("%s: balance must be set", a.Address)
		}
		if a.Balance.Sign() < 1 {
			return nil, fmt.Errorf("%s: balance must be a non-zero integer", a.Address)
		}
	}
	for _, cfg := range gen.Strategies {
		switch cfg.Kind {
		case strategy.KindIdle:
		case strategy.KindSimulated:
			if cfg.Rate == nil || cfg.Rate.Sign() < 1 {
				return nil, fmt.Errorf("strategy %q: rate must be a positive integer", cfg.Kind)
			}
			if cfg.Reserve == nil || cfg.Reserve.IsZero() {
				return nil, fmt.Errorf("strategy %q: reserve must be set", cfg.Kind)
			}
		default:
			return nil, fmt.Errorf("strategy %q: unknown kind", cfg.Kind)
		}
	}

	builder := new(Builder).
		Timestamp(launchTime).
		State(func(st *state.State) error {
			tok := token.NewLedger(credo.TokenAddress, st)
			for _, a := range gen.Accounts {
				if err := tok.Mint(a.Address, a.Balance.Big()); err != nil {
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
			for _, cfg := range gen.Strategies {
				params := strategy.Params{}
				if cfg.Rate != nil {
					params.Rate = cfg.Rate.Big()
				}
				if cfg.Reserve != nil {
					params.Reserve = *cfg.Reserve
				}
				if _, err := registry.Create(cfg.Kind, params); err != nil {
					return errors.Wrapf(err, "strategy %q", cfg.Kind)
				}
			}

			return vault.New(credo.VaultAddress, st, tok, registry).Initialize(vault.Config{
				Owner:       gen.Vault.Owner,
				Treasury:    gen.Vault.Treasury,
				StakeAmount: stakeAmount,
			}, idle)
		})

	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}

	name := gen.Name
	if name == "" {
		name = "customnet"
	}
	return &Genesis{builder, id, name}, nil
}
