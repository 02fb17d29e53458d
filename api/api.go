// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/inconshreveable/log15"

	"github.com/credo-network/credo/api/admin"
	"github.com/credo-network/credo/api/doc"
	"github.com/credo-network/credo/api/events"
	"github.com/credo-network/credo/api/healthapi"
	"github.com/credo-network/credo/api/stakes"
	"github.com/credo-network/credo/api/subscriptions"
	"github.com/credo-network/credo/api/tokenapi"
	"github.com/credo-network/credo/api/vaultapi"
	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/eventdb"
	"github.com/credo-network/credo/metrics"
	"github.com/credo-network/credo/runtime"
)

var log = log15.New("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EventsLimit     uint64
	EnableMetrics   bool
	EnableReqLogger bool
}

// New assembles the REST router over the runtime and the event journal.
// The returned closer shuts down live websocket subscriptions, which the
// http server's own shutdown does not cover.
func New(rt *runtime.Runtime, edb *eventdb.EventDB, genesisID credo.Bytes32, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	eventsLimit := opts.EventsLimit
	if eventsLimit == 0 {
		eventsLimit = credo.MaxEventQueryLimit
	}

	router := mux.NewRouter()

	// serve the open api doc
	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/credo.yaml", http.StatusTemporaryRedirect)
		})

	stks := stakes.New(rt)
	stks.Mount(router, "/stakes")
	stks.MountClaims(router, "/claims")
	tokenapi.New(rt).
		Mount(router, "/token")
	vaultapi.New(rt).
		Mount(router, "/vault")
	admin.New(rt).
		Mount(router, "/admin")
	events.New(edb, eventsLimit).
		Mount(router, "/events")
	subs := subscriptions.New(rt, edb, origins)
	subs.Mount(router, "/subscriptions")
	healthapi.New(rt, edb).
		Mount(router, "/health")

	if opts.EnableMetrics {
		router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	// every response names the instance it came from
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("x-genesis-id", genesisID.String())
			next.ServeHTTP(w, r)
		})
	})

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-genesis-id"}),
		handlers.ExposedHeaders([]string{"x-genesis-id"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, log)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
