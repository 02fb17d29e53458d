// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package credo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"with 0x prefix", "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"without prefix", "7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"uppercase prefix", "0X7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"bad prefix", "zz7567d83b7b8d80addcb281a71d54fc7b3364ffed", true},
		{"too short", "0x7567d83b", true},
		{"too long", "0x7567d83b7b8d80addcb281a71d54fc7b3364ffeda1", true},
		{"non hex", "0x7567d83b7b8d80addcb281a71d54fc7b3364ffzz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseAddress(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())
			}
		})
	}
}

func TestAddressIsZero(t *testing.T) {
	assert.True(t, Address{}.IsZero())
	assert.False(t, BytesToAddress([]byte("treasury")).IsZero())
}

func TestAddressMarshalUnmarshal(t *testing.T) {
	originalJSON := `"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"`

	var addr Address
	assert.NoError(t, json.Unmarshal([]byte(originalJSON), &addr))

	marshaled, err := json.Marshal(&addr)
	assert.NoError(t, err)
	assert.Equal(t, originalJSON, string(marshaled))
}

func TestBytesToAddress(t *testing.T) {
	// shorter input extends from the left
	addr := BytesToAddress([]byte("vault"))
	assert.Equal(t, "0x000000000000000000000000000000007661756c74", addr.String())
	assert.Equal(t, []byte("vault"), addr.Bytes()[15:])
}

func TestCreateStrategyAddress(t *testing.T) {
	vault := BytesToAddress([]byte("vault"))

	a0 := CreateStrategyAddress(vault, "idle", 0)
	a1 := CreateStrategyAddress(vault, "idle", 1)
	b0 := CreateStrategyAddress(vault, "simulated", 0)

	// deterministic
	assert.Equal(t, a0, CreateStrategyAddress(vault, "idle", 0))

	// distinct per kind and per creation count
	assert.NotEqual(t, a0, a1)
	assert.NotEqual(t, a0, b0)

	// distinct per vault
	other := BytesToAddress([]byte("other"))
	assert.NotEqual(t, a0, CreateStrategyAddress(other, "idle", 0))
}
