// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"encoding/binary"
	"math/big"

	"github.com/nftstake/vault/vault"
)

// Snapshot is one piecewise-constant segment of a stake history.
// The segment covers cycles [StartCycle, next.StartCycle), or every cycle
// from StartCycle on if it is the last entry of its history.
type Snapshot struct {
	Stake      *big.Int // aggregate weight, never exceeds 128 bits
	StartCycle uint16
}

// IsZero returns whether the snapshot is a zeroed (or sentinel) entry.
func (s *Snapshot) IsZero() bool {
	return s.StartCycle == 0 && (s.Stake == nil || s.Stake.Sign() == 0)
}

func (s *Snapshot) stake() *big.Int {
	if s.Stake == nil {
		return new(big.Int)
	}
	return s.Stake
}

// TokenInfo records the lifecycle of one NFT known to the vault.
// An entry is created on first stake of an id and never deleted;
// a zero Owner means "not currently staked".
type TokenInfo struct {
	Owner         vault.Address
	Weight        uint64 // immutable once set on deposit
	DepositCycle  uint16
	WithdrawCycle uint16 // retains the last unstake cycle even after Owner is cleared
}

// IsEmpty returns whether the entry can be treated as absent.
func (t *TokenInfo) IsEmpty() bool {
	return t.Owner.IsZero() && t.Weight == 0 && t.DepositCycle == 0 && t.WithdrawCycle == 0
}

// NextClaim is the per-staker resume pointer of the claim walk.
// Period 0 means the staker has never staked, or exhausted all claims
// with zero stake remaining.
type NextClaim struct {
	Period    uint16 // next not-yet-claimed period
	GlobalIdx uint64
	StakerIdx uint64
}

// IsZero returns whether the cursor is uninitialized.
func (c *NextClaim) IsZero() bool {
	return c.Period == 0
}

// Computed is the outcome of a claim or estimate.
type Computed struct {
	StartPeriod uint16
	Periods     uint16
	Amount      *big.Int
}

// mapping keys

type addrKey vault.Address

func (k addrKey) Bytes() []byte { return vault.Address(k).Bytes() }

type periodKey uint16

func (k periodKey) Bytes() []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(k))
	return b[:]
}

type tokenKey vault.Bytes32

func (k tokenKey) Bytes() []byte { return vault.Bytes32(k).Bytes() }

func newTokenKey(id *big.Int) tokenKey {
	return tokenKey(vault.BytesToBytes32(id.Bytes()))
}
