// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name       string
		handler    HandlerFunc
		wantStatus int
		wantBody   string
	}{
		{
			"no error",
			func(w http.ResponseWriter, _ *http.Request) error {
				return WriteJSON(w, M{"ok": true})
			},
			http.StatusOK,
			`{"ok":true}`,
		},
		{
			"bad request",
			func(http.ResponseWriter, *http.Request) error {
				return BadRequest(errors.New("body: broken"))
			},
			http.StatusBadRequest,
			"body: broken",
		},
		{
			"forbidden",
			func(http.ResponseWriter, *http.Request) error {
				return Forbidden(errors.New("not allowed"))
			},
			http.StatusForbidden,
			"not allowed",
		},
		{
			"status only",
			func(http.ResponseWriter, *http.Request) error {
				return HTTPError(nil, http.StatusTeapot)
			},
			http.StatusTeapot,
			"",
		},
		{
			"plain error",
			func(http.ResponseWriter, *http.Request) error {
				return errors.New("boom")
			},
			http.StatusInternalServerError,
			"boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WrapHandlerFunc(tt.handler)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestParseJSONStrict(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"name":"x"}`), &v))
	assert.Equal(t, "x", v.Name)

	err := ParseJSON(strings.NewReader(`{"name":"x","bogus":1}`), &v)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}
