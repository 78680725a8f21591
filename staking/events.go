// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/event"

	"github.com/nftstake/vault/vault"
)

// Event is the union of all notifications published by the engine.
type Event interface {
	isEvent()
}

// Started signals the one-shot start of the time grid.
type Started struct {
	StartTimestamp uint64
}

// Disabled signals the one-way disable switch flipping.
type Disabled struct{}

// RewardsAdded signals a schedule credit over [StartPeriod, EndPeriod].
type RewardsAdded struct {
	StartPeriod     uint16
	EndPeriod       uint16
	RewardsPerCycle *big.Int
}

// NftStaked signals a token entering the vault.
type NftStaked struct {
	Staker  vault.Address
	Cycle   uint16
	TokenID *big.Int
	Weight  uint64
}

// NftUnstaked signals a token leaving the vault.
type NftUnstaked struct {
	Staker  vault.Address
	Cycle   uint16
	TokenID *big.Int
	Weight  uint64
}

// RewardsClaimed signals a completed claim of one or more periods.
type RewardsClaimed struct {
	Staker      vault.Address
	Cycle       uint16
	StartPeriod uint16
	Periods     uint16
	Amount      *big.Int
}

// HistoriesUpdated signals both histories having absorbed a stake delta.
type HistoriesUpdated struct {
	Staker      vault.Address
	StartCycle  uint16
	StakerStake *big.Int
	GlobalStake *big.Int
}

func (Started) isEvent()          {}
func (Disabled) isEvent()         {}
func (RewardsAdded) isEvent()     {}
func (NftStaked) isEvent()        {}
func (NftUnstaked) isEvent()      {}
func (RewardsClaimed) isEvent()   {}
func (HistoriesUpdated) isEvent() {}

// SubscribeEvents registers ch to receive every event the engine emits from
// now on. Events are published after the originating operation has committed,
// in operation order.
func (s *Staking) SubscribeEvents(ch chan<- Event) event.Subscription {
	return s.feed.Subscribe(ch)
}

func (s *Staking) publish(events []Event) {
	for _, ev := range events {
		s.feed.Send(ev)
	}
}
