// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vaultapi

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/credo-network/credo/api/restutil"
	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/reverts"
	"github.com/credo-network/credo/runtime"
)

type VaultAPI struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *VaultAPI {
	return &VaultAPI{rt}
}

// Status is the JSON form of the vault's top-level figures.
type Status struct {
	Token          credo.Address `json:"token"`
	Owner          credo.Address `json:"owner"`
	PendingOwner   credo.Address `json:"pendingOwner"`
	Treasury       credo.Address `json:"treasury"`
	ActiveStrategy credo.Address `json:"activeStrategy"`
	StrategyKind   string        `json:"strategyKind"`
	StakeAmount    *big.Int      `json:"stakeAmount"`
	TotalPrincipal *big.Int      `json:"totalPrincipal"`
	TotalValue     *big.Int      `json:"totalValue"`
	PendingYield   *big.Int      `json:"pendingYield"`
}

// HarvestResult reports the yield paid out to the treasury.
type HarvestResult struct {
	Amount *big.Int `json:"amount"`
}

func (v *VaultAPI) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	status, err := v.rt.Status()
	if err != nil {
		if reverts.IsRevertErr(err) {
			return restutil.BadRequest(err)
		}
		return err
	}
	return restutil.WriteJSON(w, &Status{
		Token:          status.Token,
		Owner:          status.Owner,
		PendingOwner:   status.PendingOwner,
		Treasury:       status.Treasury,
		ActiveStrategy: status.ActiveStrategy,
		StrategyKind:   status.StrategyKind,
		StakeAmount:    status.StakeAmount,
		TotalPrincipal: status.TotalPrincipal,
		TotalValue:     status.TotalValue,
		PendingYield:   status.PendingYield,
	})
}

func (v *VaultAPI) handleHarvest(w http.ResponseWriter, _ *http.Request) error {
	amount, err := v.rt.HarvestYield()
	if err != nil {
		if reverts.IsRevertErr(err) {
			return restutil.BadRequest(err)
		}
		return err
	}
	return restutil.WriteJSON(w, &HarvestResult{Amount: amount})
}

func (v *VaultAPI) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("vault_get_status").
		HandlerFunc(restutil.WrapHandlerFunc(v.handleGetStatus))
	sub.Path("/harvest").
		Methods(http.MethodPost).
		Name("vault_harvest").
		HandlerFunc(restutil.WrapHandlerFunc(v.handleHarvest))
}
