// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package strategy

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/sslot"
	"github.com/credo-network/credo/state"
	"github.com/credo-network/credo/token"
)

// KindSimulated names the deterministic dev-mode yield strategy.
const KindSimulated = "simulated"

var slotLastAccrual = credo.BytesToBytes32([]byte("last-accrual"))

// Simulated accrues yield linearly over wall time, paid out of a pre-funded
// reserve account it controls. It never inflates supply: once the reserve
// runs dry the pending yield stays capped at whatever remains.
type Simulated struct {
	custody
	rate        *big.Int // base units per second
	reserve     credo.Address
	lastAccrual *sslot.Uint256
	now         func() uint64
}

var _ Strategy = (*Simulated)(nil)

// NewSimulated binds a simulated yield strategy instance.
func NewSimulated(
	addr, vault credo.Address,
	tok token.Token,
	st *state.State,
	rate *big.Int,
	reserve credo.Address,
	now func() uint64,
) *Simulated {
	return &Simulated{
		custody:     newCustody(addr, vault, tok, st),
		rate:        rate,
		reserve:     reserve,
		lastAccrual: sslot.NewUint256(sslot.NewContext(addr, st), slotLastAccrual),
		now:         now,
	}
}

func (s *Simulated) Kind() string {
	return KindSimulated
}

// Rate returns the configured accrual rate in base units per second.
func (s *Simulated) Rate() *big.Int {
	return new(big.Int).Set(s.rate)
}

// Reserve returns the account yield is paid from.
func (s *Simulated) Reserve() credo.Address {
	return s.reserve
}

func (s *Simulated) TotalValue() (*big.Int, error) {
	balance, err := s.tok.BalanceOf(s.addr)
	if err != nil {
		return nil, err
	}
	pending, err := s.PendingYield()
	if err != nil {
		return nil, err
	}
	return balance.Add(balance, pending), nil
}

// PendingYield grows by rate per elapsed second since the last accrual,
// capped by what the reserve still holds.
func (s *Simulated) PendingYield() (*big.Int, error) {
	principal, err := s.principal.Get()
	if err != nil {
		return nil, err
	}
	if principal.Sign() == 0 {
		// nothing at work, nothing accrues
		return new(big.Int), nil
	}

	last, err := s.lastAccrual.Get()
	if err != nil {
		return nil, err
	}
	elapsed := new(big.Int).SetUint64(s.now())
	elapsed.Sub(elapsed, last)
	if elapsed.Sign() <= 0 {
		return new(big.Int), nil
	}

	pending := new(big.Int).Mul(s.rate, elapsed)

	reserveBalance, err := s.tok.BalanceOf(s.reserve)
	if err != nil {
		return nil, err
	}
	if pending.Cmp(reserveBalance) > 0 {
		pending = reserveBalance
	}
	return pending, nil
}

func (s *Simulated) Deposit(caller credo.Address, amount *big.Int) error {
	principal, err := s.principal.Get()
	if err != nil {
		return err
	}
	if err := s.deposit(caller, amount); err != nil {
		return err
	}
	if principal.Sign() == 0 {
		// the clock starts when principal is first put to work
		return s.touchAccrual()
	}
	return nil
}

func (s *Simulated) Withdraw(caller credo.Address, amount *big.Int) error {
	return s.withdraw(caller, amount)
}

// WithdrawAll realizes pending yield into custody first, so the vault
// receives principal plus accrued yield in one transfer.
func (s *Simulated) WithdrawAll(caller credo.Address) (*big.Int, error) {
	if err := s.requireVault(caller); err != nil {
		return nil, err
	}
	if err := s.realizeYield(s.addr); err != nil {
		return nil, err
	}
	return s.withdrawAll(caller)
}

func (s *Simulated) HarvestYield(caller, recipient credo.Address) (*big.Int, error) {
	if err := s.requireVault(caller); err != nil {
		return nil, err
	}
	pending, err := s.PendingYield()
	if err != nil {
		return nil, err
	}
	if pending.Sign() > 0 {
		if err := s.tok.Transfer(s.reserve, recipient, pending); err != nil {
			return nil, errors.WithMessage(err, "harvest")
		}
	}
	if err := s.touchAccrual(); err != nil {
		return nil, err
	}
	return pending, nil
}

// realizeYield moves pending yield from the reserve to the given account
// and restarts accrual.
func (s *Simulated) realizeYield(to credo.Address) error {
	pending, err := s.PendingYield()
	if err != nil {
		return err
	}
	if pending.Sign() > 0 {
		if err := s.tok.Transfer(s.reserve, to, pending); err != nil {
			return errors.WithMessage(err, "realize yield")
		}
	}
	return s.touchAccrual()
}

func (s *Simulated) touchAccrual() error {
	s.lastAccrual.Set(new(big.Int).SetUint64(s.now()))
	return nil
}
