// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/credo-network/credo/api/restutil"
	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/reverts"
	"github.com/credo-network/credo/runtime"
)

type Stakes struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Stakes {
	return &Stakes{rt}
}

func (s *Stakes) handleStake(w http.ResponseWriter, req *http.Request) error {
	var sr StakeRequest
	if err := restutil.ParseJSON(req.Body, &sr); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.rt.Stake(sr.Caller, sr.ClaimID); err != nil {
		if reverts.IsRevertErr(err) {
			return restutil.BadRequest(err)
		}
		return err
	}
	rec, err := s.rt.GetStake(sr.ClaimID, sr.Caller)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertStake(sr.ClaimID, sr.Caller, rec))
}

func (s *Stakes) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	var sr StakeRequest
	if err := restutil.ParseJSON(req.Body, &sr); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := s.rt.Unstake(sr.Caller, sr.ClaimID)
	if err != nil {
		if reverts.IsRevertErr(err) {
			return restutil.BadRequest(err)
		}
		return err
	}
	return restutil.WriteJSON(w, &UnstakeResult{Amount: amount})
}

func (s *Stakes) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	claimID, err := credo.ParseBytes32(mux.Vars(req)["claimID"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "claimID"))
	}
	depositor, err := credo.ParseAddress(mux.Vars(req)["depositor"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "depositor"))
	}
	rec, err := s.rt.GetStake(claimID, *depositor)
	if err != nil {
		return err
	}
	if rec == nil {
		return restutil.WriteJSON(w, nil)
	}
	return restutil.WriteJSON(w, convertStake(claimID, *depositor, rec))
}

func (s *Stakes) handleGetClaim(w http.ResponseWriter, req *http.Request) error {
	claimID, err := credo.ParseBytes32(mux.Vars(req)["claimID"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "claimID"))
	}
	totals, err := s.rt.GetClaim(claimID)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertClaim(claimID, totals))
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("stakes_stake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleStake))
	sub.Path("").
		Methods(http.MethodDelete).
		Name("stakes_unstake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleUnstake))
	sub.Path("/{claimID}/{depositor}").
		Methods(http.MethodGet).
		Name("stakes_get_stake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStake))
}

// MountClaims exposes per-claim totals under their own prefix.
func (s *Stakes) MountClaims(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{claimID}").
		Methods(http.MethodGet).
		Name("claims_get_claim").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetClaim))
}
