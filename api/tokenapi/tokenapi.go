// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tokenapi exposes the token surface depositors interact with
// before the vault ever sees them: balances, allowances, approvals and
// plain transfers.
package tokenapi

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/credo-network/credo/api/restutil"
	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/reverts"
	"github.com/credo-network/credo/runtime"
)

type TokenAPI struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *TokenAPI {
	return &TokenAPI{rt}
}

// Info is the JSON form of the token metadata.
type Info struct {
	Address     credo.Address `json:"address"`
	Name        string        `json:"name"`
	Symbol      string        `json:"symbol"`
	Decimals    uint8         `json:"decimals"`
	TotalSupply *big.Int      `json:"totalSupply"`
}

// Balance reports one holder's balance.
type Balance struct {
	Address credo.Address `json:"address"`
	Balance *big.Int      `json:"balance"`
}

// Allowance reports what spender may pull from owner.
type Allowance struct {
	Owner     credo.Address `json:"owner"`
	Spender   credo.Address `json:"spender"`
	Allowance *big.Int      `json:"allowance"`
}

// ApproveRequest grants spender an allowance over caller's tokens.
type ApproveRequest struct {
	Caller  credo.Address `json:"caller"`
	Spender credo.Address `json:"spender"`
	Amount  *big.Int      `json:"amount"`
}

// TransferRequest moves tokens from caller to another holder.
type TransferRequest struct {
	Caller credo.Address `json:"caller"`
	To     credo.Address `json:"to"`
	Amount *big.Int      `json:"amount"`
}

func (t *TokenAPI) handleGetInfo(w http.ResponseWriter, _ *http.Request) error {
	info, err := t.rt.TokenInfo()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Info{
		Address:     info.Address,
		Name:        info.Name,
		Symbol:      info.Symbol,
		Decimals:    info.Decimals,
		TotalSupply: info.TotalSupply,
	})
}

func (t *TokenAPI) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := credo.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	balance, err := t.rt.TokenBalanceOf(*addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Balance{Address: *addr, Balance: balance})
}

func (t *TokenAPI) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	owner, err := credo.ParseAddress(mux.Vars(req)["owner"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "owner"))
	}
	spender, err := credo.ParseAddress(mux.Vars(req)["spender"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "spender"))
	}
	allowance, err := t.rt.TokenAllowance(*owner, *spender)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Allowance{Owner: *owner, Spender: *spender, Allowance: allowance})
}

func (t *TokenAPI) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var ar ApproveRequest
	if err := restutil.ParseJSON(req.Body, &ar); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := t.rt.TokenApprove(ar.Caller, ar.Spender, ar.Amount); err != nil {
		if reverts.IsRevertErr(err) {
			return restutil.BadRequest(err)
		}
		return err
	}
	return restutil.WriteJSON(w, restutil.M{})
}

func (t *TokenAPI) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var tr TransferRequest
	if err := restutil.ParseJSON(req.Body, &tr); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := t.rt.TokenTransfer(tr.Caller, tr.To, tr.Amount); err != nil {
		if reverts.IsRevertErr(err) {
			return restutil.BadRequest(err)
		}
		return err
	}
	return restutil.WriteJSON(w, restutil.M{})
}

func (t *TokenAPI) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("token_get_info").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetInfo))
	sub.Path("/balances/{address}").
		Methods(http.MethodGet).
		Name("token_get_balance").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/allowances/{owner}/{spender}").
		Methods(http.MethodGet).
		Name("token_get_allowance").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetAllowance))
	sub.Path("/approve").
		Methods(http.MethodPost).
		Name("token_approve").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleApprove))
	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("token_transfer").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleTransfer))
}
