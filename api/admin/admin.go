// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin exposes the owner-gated vault operations. Callers declare
// their identity in the request body; the vault enforces ownership against
// its persisted state, so a wrong caller fails with 403 regardless.
package admin

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	pkgerrors "github.com/pkg/errors"

	"github.com/credo-network/credo/api/restutil"
	"github.com/credo-network/credo/reverts"
	"github.com/credo-network/credo/runtime"
	"github.com/credo-network/credo/strategy"
	"github.com/credo-network/credo/vault"
)

type Admin struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Admin {
	return &Admin{rt}
}

// convertErr maps ownership violations to 403, other rule violations to 400
// and leaves infrastructure failures to the 500 fallback.
func convertErr(err error) error {
	switch {
	case errors.Is(err, vault.ErrNotOwner), errors.Is(err, vault.ErrNotPendingOwner):
		return restutil.Forbidden(err)
	case reverts.IsRevertErr(err):
		return restutil.BadRequest(err)
	}
	return err
}

func (a *Admin) handleCreateStrategy(w http.ResponseWriter, req *http.Request) error {
	var cr CreateStrategyRequest
	if err := restutil.ParseJSON(req.Body, &cr); err != nil {
		return restutil.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	params := strategy.Params{Rate: cr.Rate}
	if cr.Reserve != nil {
		params.Reserve = *cr.Reserve
	}
	addr, err := a.rt.CreateStrategy(cr.Caller, cr.Kind, params)
	if err != nil {
		return convertErr(err)
	}
	return restutil.WriteJSON(w, &CreateStrategyResult{Address: addr})
}

func (a *Admin) handleMigrate(w http.ResponseWriter, req *http.Request) error {
	var mr MigrateRequest
	if err := restutil.ParseJSON(req.Body, &mr); err != nil {
		return restutil.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	surplus, err := a.rt.MigrateStrategy(mr.Caller, mr.Strategy)
	if err != nil {
		return convertErr(err)
	}
	return restutil.WriteJSON(w, &MigrateResult{Surplus: surplus})
}

func (a *Admin) handleSetTreasury(w http.ResponseWriter, req *http.Request) error {
	var tr TreasuryRequest
	if err := restutil.ParseJSON(req.Body, &tr); err != nil {
		return restutil.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	if err := a.rt.SetTreasury(tr.Caller, tr.Treasury); err != nil {
		return convertErr(err)
	}
	return restutil.WriteJSON(w, restutil.M{})
}

func (a *Admin) handleTransferOwnership(w http.ResponseWriter, req *http.Request) error {
	var or OwnershipTransferRequest
	if err := restutil.ParseJSON(req.Body, &or); err != nil {
		return restutil.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	if err := a.rt.TransferOwnership(or.Caller, or.PendingOwner); err != nil {
		return convertErr(err)
	}
	return restutil.WriteJSON(w, restutil.M{})
}

func (a *Admin) handleAcceptOwnership(w http.ResponseWriter, req *http.Request) error {
	var or OwnershipAcceptRequest
	if err := restutil.ParseJSON(req.Body, &or); err != nil {
		return restutil.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	if err := a.rt.AcceptOwnership(or.Caller); err != nil {
		return convertErr(err)
	}
	return restutil.WriteJSON(w, restutil.M{})
}

func (a *Admin) handleRescue(w http.ResponseWriter, req *http.Request) error {
	var rr RescueRequest
	if err := restutil.ParseJSON(req.Body, &rr); err != nil {
		return restutil.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	amount, err := a.rt.RescueTokens(rr.Caller, rr.Token, rr.To)
	if err != nil {
		return convertErr(err)
	}
	return restutil.WriteJSON(w, &RescueResult{Amount: amount})
}

func (a *Admin) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/strategies").
		Methods(http.MethodPost).
		Name("admin_create_strategy").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleCreateStrategy))
	sub.Path("/migrate").
		Methods(http.MethodPost).
		Name("admin_migrate_strategy").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleMigrate))
	sub.Path("/treasury").
		Methods(http.MethodPut).
		Name("admin_set_treasury").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleSetTreasury))
	sub.Path("/ownership/transfer").
		Methods(http.MethodPost).
		Name("admin_transfer_ownership").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleTransferOwnership))
	sub.Path("/ownership/accept").
		Methods(http.MethodPost).
		Name("admin_accept_ownership").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleAcceptOwnership))
	sub.Path("/rescue").
		Methods(http.MethodPost).
		Name("admin_rescue_tokens").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleRescue))
}
