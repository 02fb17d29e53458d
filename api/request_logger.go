// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/inconshreveable/log15"
)

// RequestLoggerHandler logs every request with its body and duration.
// The body is buffered up front so downstream handlers can still read it.
func RequestLoggerHandler(next http.Handler, logger log15.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var bodyBytes []byte
		var err error
		if r.Body != nil {
			bodyBytes, err = io.ReadAll(r.Body)
			if err != nil {
				logger.Warn("unexpected body read error", "err", err)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		start := time.Now()
		next.ServeHTTP(w, r)

		logger.Info("api request",
			"durationMs", time.Since(start).Milliseconds(),
			"uri", r.URL.String(),
			"method", r.Method,
			"body", string(bodyBytes),
		)
	})
}
