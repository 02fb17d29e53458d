// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inconshreveable/log15"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerHandler(t *testing.T) {
	var records []*log15.Record
	logger := log15.New()
	logger.SetHandler(log15.FuncHandler(func(r *log15.Record) error {
		records = append(records, r)
		return nil
	}))

	// echo the body back, proving the buffered body is still readable
	handler := RequestLoggerHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		data := make([]byte, 9)
		r.Body.Read(data)
		w.Write(data)
	}), logger)

	request := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString("test body"))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusAccepted, recorder.Code)
	assert.Equal(t, "test body", recorder.Body.String())

	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, "api request", record.Msg)

	ctx := map[string]any{}
	for i := 0; i+1 < len(record.Ctx); i += 2 {
		if key, ok := record.Ctx[i].(string); ok {
			ctx[key] = record.Ctx[i+1]
		}
	}
	assert.Equal(t, "/test", ctx["uri"])
	assert.Equal(t, http.MethodPost, ctx["method"])
	assert.Equal(t, "test body", ctx["body"])
}
