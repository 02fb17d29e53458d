// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokenapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credo-network/credo/api/tokenapi"
	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/test/testledger"
)

func initTokenServer(t *testing.T) (*httptest.Server, *testledger.Ledger) {
	ledger, err := testledger.New()
	require.NoError(t, err)
	t.Cleanup(ledger.Close)

	router := mux.NewRouter()
	tokenapi.New(ledger.Runtime()).Mount(router, "/token")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, ledger
}

func httpGetJSON(t *testing.T, url string, out any) int {
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(data, out))
	}
	return res.StatusCode
}

func httpPostJSON(t *testing.T, url string, body any) ([]byte, int) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return out, res.StatusCode
}

func TestGetInfo(t *testing.T) {
	ts, _ := initTokenServer(t)

	var info tokenapi.Info
	status := httpGetJSON(t, ts.URL+"/token", &info)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, credo.TokenAddress, info.Address)
	assert.Equal(t, "Credo", info.Name)
	assert.Equal(t, "CRD", info.Symbol)
	assert.Equal(t, uint8(6), info.Decimals)
	assert.Equal(t, credo.InitialTokenSupply, info.TotalSupply)
}

func TestGetBalance(t *testing.T) {
	ts, ledger := initTokenServer(t)
	accs := ledger.Accounts()
	share := new(big.Int).Div(credo.InitialTokenSupply, big.NewInt(int64(len(accs))))

	var balance tokenapi.Balance
	status := httpGetJSON(t, ts.URL+"/token/balances/"+accs[0].Address.String(), &balance)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, accs[0].Address, balance.Address)
	assert.Equal(t, share, balance.Balance)

	status = httpGetJSON(t, ts.URL+"/token/balances/invalid", &balance)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestApproveAndAllowance(t *testing.T) {
	ts, ledger := initTokenServer(t)
	owner := ledger.Accounts()[0].Address
	amount := big.NewInt(12345)

	body, status := httpPostJSON(t, ts.URL+"/token/approve", &tokenapi.ApproveRequest{
		Caller:  owner,
		Spender: credo.VaultAddress,
		Amount:  amount,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var allowance tokenapi.Allowance
	status = httpGetJSON(t, ts.URL+"/token/allowances/"+owner.String()+"/"+credo.VaultAddress.String(), &allowance)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, owner, allowance.Owner)
	assert.Equal(t, credo.VaultAddress, allowance.Spender)
	assert.Equal(t, amount, allowance.Allowance)
}

func TestTransfer(t *testing.T) {
	ts, ledger := initTokenServer(t)
	accs := ledger.Accounts()
	from, to := accs[0].Address, accs[1].Address
	amount := big.NewInt(777)

	var before tokenapi.Balance
	httpGetJSON(t, ts.URL+"/token/balances/"+to.String(), &before)

	body, status := httpPostJSON(t, ts.URL+"/token/transfer", &tokenapi.TransferRequest{
		Caller: from,
		To:     to,
		Amount: amount,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var after tokenapi.Balance
	httpGetJSON(t, ts.URL+"/token/balances/"+to.String(), &after)
	assert.Equal(t, new(big.Int).Add(before.Balance, amount), after.Balance)
}

func TestTransferExceedsBalance(t *testing.T) {
	ts, ledger := initTokenServer(t)
	accs := ledger.Accounts()

	over := new(big.Int).Add(credo.InitialTokenSupply, big.NewInt(1))
	body, status := httpPostJSON(t, ts.URL+"/token/transfer", &tokenapi.TransferRequest{
		Caller: accs[0].Address,
		To:     accs[1].Address,
		Amount: over,
	})
	assert.Equal(t, http.StatusBadRequest, status, string(body))
}
