// Copyright (c) 2025 The Credo developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package healthapi serves liveness probes over the ledger and the journal.
package healthapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/credo-network/credo/api/restutil"
	"github.com/credo-network/credo/eventdb"
	"github.com/credo-network/credo/runtime"
)

// Status reports whether the node's stores answer.
type Status struct {
	Healthy    bool   `json:"healthy"`
	Ledger     bool   `json:"ledger"`
	Journal    bool   `json:"journal"`
	JournalSeq uint64 `json:"journalSeq"`
}

type HealthAPI struct {
	rt  *runtime.Runtime
	edb *eventdb.EventDB
}

func New(rt *runtime.Runtime, edb *eventdb.EventDB) *HealthAPI {
	return &HealthAPI{rt, edb}
}

// status probes both stores with cheap reads.
func (h *HealthAPI) status() *Status {
	ledgerOK := true
	if _, err := h.rt.Status(); err != nil {
		ledgerOK = false
	}

	seq, err := h.edb.MaxSeq()
	journalOK := err == nil

	return &Status{
		Healthy:    ledgerOK && journalOK,
		Ledger:     ledgerOK,
		Journal:    journalOK,
		JournalSeq: seq,
	}
}

func (h *HealthAPI) handleGetHealth(w http.ResponseWriter, _ *http.Request) error {
	status := h.status()
	if !status.Healthy {
		// headers must be final before the 503 is committed
		w.Header().Set("Content-Type", restutil.JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return restutil.WriteJSON(w, status)
}

func (h *HealthAPI) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(restutil.WrapHandlerFunc(h.handleGetHealth))
}
