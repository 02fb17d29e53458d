// Copyright (c) 2025 The Credo developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package client provides an HTTP client for the staking ledger API.
// It covers stake bookkeeping, token queries, vault administration and the
// event journal.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"

	"github.com/credo-network/credo/api/admin"
	"github.com/credo-network/credo/api/stakes"
	"github.com/credo-network/credo/api/tokenapi"
	"github.com/credo-network/credo/api/vaultapi"
	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/eventdb"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNot200Status = errors.New("not 200 status code")
)

// Client talks to a ledger node over HTTP.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: strings.TrimSuffix(url, "/"),
		c:   c,
	}
}

// URL returns the node URL the client talks to.
func (c *Client) URL() string {
	return c.url
}

// GenesisID returns the genesis ID of the instance the node serves.
func (c *Client) GenesisID() (credo.Bytes32, error) {
	resp, err := c.c.Get(c.url + "/vault")
	if err != nil {
		return credo.Bytes32{}, fmt.Errorf("unable to reach node - %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	id, err := credo.ParseBytes32(resp.Header.Get("x-genesis-id"))
	if err != nil {
		return credo.Bytes32{}, fmt.Errorf("unable to parse genesis id - %w", err)
	}
	return id, nil
}

// VaultStatus retrieves the vault configuration and live valuation.
func (c *Client) VaultStatus() (*vaultapi.Status, error) {
	body, err := c.httpGET(c.url + "/vault")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve vault status - %w", err)
	}

	var status vaultapi.Status
	if err = json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("unable to unmarshal vault status - %w", err)
	}
	return &status, nil
}

// Harvest realizes the pending yield and pays it to the treasury.
func (c *Client) Harvest() (*vaultapi.HarvestResult, error) {
	body, err := c.httpPOST(c.url+"/vault/harvest", nil)
	if err != nil {
		return nil, fmt.Errorf("unable to harvest - %w", err)
	}

	var res vaultapi.HarvestResult
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal harvest result - %w", err)
	}
	return &res, nil
}

// Stake locks the fixed stake amount of caller behind claimID.
func (c *Client) Stake(caller credo.Address, claimID credo.Bytes32) (*stakes.Stake, error) {
	body, err := c.httpPOST(c.url+"/stakes", &stakes.StakeRequest{Caller: caller, ClaimID: claimID})
	if err != nil {
		return nil, fmt.Errorf("unable to stake - %w", err)
	}

	var stake stakes.Stake
	if err = json.Unmarshal(body, &stake); err != nil {
		return nil, fmt.Errorf("unable to unmarshal stake - %w", err)
	}
	return &stake, nil
}

// Unstake releases caller's stake on claimID.
func (c *Client) Unstake(caller credo.Address, claimID credo.Bytes32) (*stakes.UnstakeResult, error) {
	body, err := c.httpRequest(http.MethodDelete, c.url+"/stakes", &stakes.StakeRequest{Caller: caller, ClaimID: claimID})
	if err != nil {
		return nil, fmt.Errorf("unable to unstake - %w", err)
	}

	var res stakes.UnstakeResult
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal unstake result - %w", err)
	}
	return &res, nil
}

// GetStake retrieves the stake of depositor on claimID, ErrNotFound when
// absent.
func (c *Client) GetStake(claimID credo.Bytes32, depositor credo.Address) (*stakes.Stake, error) {
	body, err := c.httpGET(c.url + "/stakes/" + claimID.String() + "/" + depositor.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve stake - %w", err)
	}

	var stake *stakes.Stake
	if err = json.Unmarshal(body, &stake); err != nil {
		return nil, fmt.Errorf("unable to unmarshal stake - %w", err)
	}
	if stake == nil {
		return nil, ErrNotFound
	}
	return stake, nil
}

// GetClaim retrieves the aggregate totals of claimID.
func (c *Client) GetClaim(claimID credo.Bytes32) (*stakes.Claim, error) {
	body, err := c.httpGET(c.url + "/claims/" + claimID.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve claim - %w", err)
	}

	var claim stakes.Claim
	if err = json.Unmarshal(body, &claim); err != nil {
		return nil, fmt.Errorf("unable to unmarshal claim - %w", err)
	}
	return &claim, nil
}

// TokenInfo retrieves the staking token metadata.
func (c *Client) TokenInfo() (*tokenapi.Info, error) {
	body, err := c.httpGET(c.url + "/token")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token info - %w", err)
	}

	var info tokenapi.Info
	if err = json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("unable to unmarshal token info - %w", err)
	}
	return &info, nil
}

// TokenBalance retrieves the token balance of addr.
func (c *Client) TokenBalance(addr credo.Address) (*tokenapi.Balance, error) {
	body, err := c.httpGET(c.url + "/token/balances/" + addr.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve balance - %w", err)
	}

	var balance tokenapi.Balance
	if err = json.Unmarshal(body, &balance); err != nil {
		return nil, fmt.Errorf("unable to unmarshal balance - %w", err)
	}
	return &balance, nil
}

// TokenAllowance retrieves what spender may pull from owner.
func (c *Client) TokenAllowance(owner, spender credo.Address) (*tokenapi.Allowance, error) {
	body, err := c.httpGET(c.url + "/token/allowances/" + owner.String() + "/" + spender.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve allowance - %w", err)
	}

	var allowance tokenapi.Allowance
	if err = json.Unmarshal(body, &allowance); err != nil {
		return nil, fmt.Errorf("unable to unmarshal allowance - %w", err)
	}
	return &allowance, nil
}

// ApproveToken sets spender's allowance over caller's tokens.
func (c *Client) ApproveToken(caller, spender credo.Address, amount *big.Int) error {
	_, err := c.httpPOST(c.url+"/token/approve", &tokenapi.ApproveRequest{Caller: caller, Spender: spender, Amount: amount})
	if err != nil {
		return fmt.Errorf("unable to approve - %w", err)
	}
	return nil
}

// TransferToken moves tokens from caller to the address to.
func (c *Client) TransferToken(caller, to credo.Address, amount *big.Int) error {
	_, err := c.httpPOST(c.url+"/token/transfer", &tokenapi.TransferRequest{Caller: caller, To: to, Amount: amount})
	if err != nil {
		return fmt.Errorf("unable to transfer - %w", err)
	}
	return nil
}

// FilterEvents queries the event journal with the given filter.
func (c *Client) FilterEvents(filter *eventdb.Filter) ([]*eventdb.Event, error) {
	body, err := c.httpPOST(c.url+"/events/filter", filter)
	if err != nil {
		return nil, fmt.Errorf("unable to filter events - %w", err)
	}

	var events []*eventdb.Event
	if err = json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("unable to unmarshal events - %w", err)
	}
	return events, nil
}

// CreateStrategy provisions a new yield strategy instance.
func (c *Client) CreateStrategy(req *admin.CreateStrategyRequest) (*admin.CreateStrategyResult, error) {
	body, err := c.httpPOST(c.url+"/admin/strategies", req)
	if err != nil {
		return nil, fmt.Errorf("unable to create strategy - %w", err)
	}

	var res admin.CreateStrategyResult
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal create strategy result - %w", err)
	}
	return &res, nil
}

// MigrateStrategy moves the vault's principal to another strategy.
func (c *Client) MigrateStrategy(req *admin.MigrateRequest) (*admin.MigrateResult, error) {
	body, err := c.httpPOST(c.url+"/admin/migrate", req)
	if err != nil {
		return nil, fmt.Errorf("unable to migrate strategy - %w", err)
	}

	var res admin.MigrateResult
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal migrate result - %w", err)
	}
	return &res, nil
}

// SetTreasury points yield payouts at a new treasury.
func (c *Client) SetTreasury(req *admin.TreasuryRequest) error {
	if _, err := c.httpRequest(http.MethodPut, c.url+"/admin/treasury", req); err != nil {
		return fmt.Errorf("unable to set treasury - %w", err)
	}
	return nil
}

// TransferOwnership opens an ownership handover to a pending owner.
func (c *Client) TransferOwnership(req *admin.OwnershipTransferRequest) error {
	if _, err := c.httpPOST(c.url+"/admin/ownership/transfer", req); err != nil {
		return fmt.Errorf("unable to transfer ownership - %w", err)
	}
	return nil
}

// AcceptOwnership completes an open ownership handover.
func (c *Client) AcceptOwnership(req *admin.OwnershipAcceptRequest) error {
	if _, err := c.httpPOST(c.url+"/admin/ownership/accept", req); err != nil {
		return fmt.Errorf("unable to accept ownership - %w", err)
	}
	return nil
}

// RescueTokens sweeps a stray token balance out of the vault.
func (c *Client) RescueTokens(req *admin.RescueRequest) (*admin.RescueResult, error) {
	body, err := c.httpPOST(c.url+"/admin/rescue", req)
	if err != nil {
		return nil, fmt.Errorf("unable to rescue tokens - %w", err)
	}

	var res admin.RescueResult
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal rescue result - %w", err)
	}
	return &res, nil
}

func (c *Client) httpGET(url string) ([]byte, error) {
	return c.httpRequest(http.MethodGet, url, nil)
}

func (c *Client) httpPOST(url string, payload any) ([]byte, error) {
	return c.httpRequest(http.MethodPost, url, payload)
}

func (c *Client) httpRequest(method, url string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("unable to marshal payload - %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("unable to create request - %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to perform request - %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response body - %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d %s", ErrNot200Status, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
