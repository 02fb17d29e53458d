// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credo-network/credo/api/stakes"
	"github.com/credo-network/credo/api/subscriptions"
	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/metrics"
	"github.com/credo-network/credo/test/testledger"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

var claimID = credo.BytesToBytes32([]byte("claim-1"))

func TestMetricsMiddleware(t *testing.T) {
	ledger, err := testledger.New()
	require.NoError(t, err)
	t.Cleanup(ledger.Close)

	router := mux.NewRouter()
	stakes.New(ledger.Runtime()).Mount(router, "/stakes")
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(metricsMiddleware)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	depositor := ledger.Accounts()[0].Address

	_, code := httpGet(t, ts.URL+"/stakes/"+claimID.String()+"/"+depositor.String())
	assert.Equal(t, 200, code)

	_, code = httpGet(t, ts.URL+"/stakes/invalid/"+depositor.String())
	assert.Equal(t, 400, code)

	body, _ := httpGet(t, ts.URL+"/metrics")
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	assert.Nil(t, err)

	m := families["credo_metrics_api_request_count"].GetMetric()
	require.Equal(t, 2, len(m), "should be 2 metric entries")
	assert.Equal(t, float64(1), m[0].GetCounter().GetValue())
	assert.Equal(t, float64(1), m[1].GetCounter().GetValue())

	labels := m[0].GetLabel()
	require.Equal(t, 3, len(labels))
	assert.Equal(t, "code", labels[0].GetName())
	assert.Equal(t, "200", labels[0].GetValue())
	assert.Equal(t, "method", labels[1].GetName())
	assert.Equal(t, "GET", labels[1].GetValue())
	assert.Equal(t, "name", labels[2].GetName())
	assert.Equal(t, "stakes_get_stake", labels[2].GetValue())

	labels = m[1].GetLabel()
	require.Equal(t, 3, len(labels))
	assert.Equal(t, "code", labels[0].GetName())
	assert.Equal(t, "400", labels[0].GetValue())
	assert.Equal(t, "name", labels[2].GetName())
	assert.Equal(t, "stakes_get_stake", labels[2].GetValue())
}

func TestWebsocketMetrics(t *testing.T) {
	ledger, err := testledger.New()
	require.NoError(t, err)
	t.Cleanup(ledger.Close)

	router := mux.NewRouter()
	sub := subscriptions.New(ledger.Runtime(), ledger.EventDB(), []string{"*"})
	sub.Mount(router, "/subscriptions")
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(metricsMiddleware)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	t.Cleanup(sub.Close)

	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/event"}
	conn1, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	assert.Nil(t, err)
	defer conn1.Close()

	parser := expfmt.TextParser{}
	body, _ := httpGet(t, ts.URL+"/metrics")
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	assert.Nil(t, err)

	m := families["credo_metrics_api_active_websocket_count"].GetMetric()
	require.Equal(t, 1, len(m), "should be 1 metric entry")
	assert.Equal(t, float64(1), m[0].GetGauge().GetValue())

	labels := m[0].GetLabel()
	assert.Equal(t, "subject", labels[0].GetName())
	assert.Equal(t, "event", labels[0].GetValue())

	conn2, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	assert.Nil(t, err)
	defer conn2.Close()

	body, _ = httpGet(t, ts.URL+"/metrics")
	families, err = parser.TextToMetricFamilies(bytes.NewReader(body))
	assert.Nil(t, err)

	m = families["credo_metrics_api_active_websocket_count"].GetMetric()
	require.Equal(t, 1, len(m))
	assert.Equal(t, float64(2), m[0].GetGauge().GetValue())
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	if err != nil {
		t.Fatal(err)
	}
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return r, res.StatusCode
}
