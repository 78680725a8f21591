// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements a cycle-based NFT staking and reward
// distribution engine.
//
// Time is a 1-based grid of fixed-length cycles grouped into fixed-length
// periods. Stake totals are piecewise-constant snapshot histories, one global
// and one per staker. Rewards for completed periods are distributed pro rata
// over the overlap of the global history, the staker history and the reward
// schedule, resumable through a per-staker claim cursor.
package staking

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/nftstake/vault/log"
	"github.com/nftstake/vault/metrics"
	"github.com/nftstake/vault/state"
	"github.com/nftstake/vault/staking/reverts"
	"github.com/nftstake/vault/vault"
)

var (
	logger = log.WithContext("pkg", "staking")

	metricOpCount = metrics.LazyLoadCounterVec("staking_operation_count", []string{"op", "result"})
)

// Config carries the immutable wiring of the engine.
type Config struct {
	CycleSeconds uint32 // length of one cycle, at least vault.MinCycleSeconds
	PeriodCycles uint16 // cycles per period, at least vault.MinPeriodCycles

	Owner       vault.Address // admin identity
	Self        vault.Address // identity the vault presents to the transports
	NFTContract vault.Address // only accepted sender of receiver hooks

	NFTs        NFTTransport
	RewardToken RewardToken
	WeightOf    WeightFunc

	// Now returns the current unix timestamp in seconds.
	// Defaults to the system clock.
	Now func() uint64
}

// Staking is the engine controller. All operations are serial and atomic:
// a single mutex enforces single-writer semantics and every mutation runs
// against a state checkpoint that is reverted wholly on error.
type Staking struct {
	mu     sync.Mutex
	state  *state.State
	store  *storage
	grid   timeGrid
	config Config
	nowFn  func() uint64
	feed   event.FeedOf[Event]
}

// New creates the engine over the given state.
func New(st *state.State, config Config) (*Staking, error) {
	if config.CycleSeconds < vault.MinCycleSeconds {
		return nil, errors.Errorf("cycle seconds must be at least %d", vault.MinCycleSeconds)
	}
	if config.PeriodCycles < vault.MinPeriodCycles {
		return nil, errors.Errorf("period cycles must be at least %d", vault.MinPeriodCycles)
	}
	if config.Owner.IsZero() {
		return nil, errors.New("owner address must be set")
	}
	if config.NFTs == nil || config.RewardToken == nil {
		return nil, errors.New("transports must be set")
	}
	if config.WeightOf == nil {
		return nil, errors.New("weight func must be set")
	}
	nowFn := config.Now
	if nowFn == nil {
		nowFn = func() uint64 { return uint64(time.Now().Unix()) }
	}
	return &Staking{
		state:  st,
		store:  newStorage(st),
		grid:   timeGrid{cycleSeconds: config.CycleSeconds, periodCycles: config.PeriodCycles},
		config: config,
		nowFn:  nowFn,
	}, nil
}

// mutate runs fn under the single-writer lock with a state checkpoint.
// On error the checkpoint is reverted and nothing is persisted; on success
// the journal commits atomically and the collected events are published
// once the lock is released.
func (s *Staking) mutate(op string, fn func(now uint64) ([]Event, error)) error {
	events, err := func() ([]Event, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		checkpoint := s.state.NewCheckpoint()
		events, err := fn(s.nowFn())
		if err != nil {
			s.state.RevertTo(checkpoint)
			metricOpCount().AddWithLabel(1, map[string]string{"op": op, "result": "revert"})
			return nil, err
		}
		if err := s.state.Commit(); err != nil {
			metricOpCount().AddWithLabel(1, map[string]string{"op": op, "result": "error"})
			return nil, errors.Wrap(err, "failed to commit state")
		}
		metricOpCount().AddWithLabel(1, map[string]string{"op": op, "result": "ok"})
		return events, nil
	}()
	if err != nil {
		return err
	}
	s.publish(events)
	return nil
}

func (s *Staking) requireOwner(caller vault.Address) error {
	if caller != s.config.Owner {
		return reverts.ErrUnauthorized
	}
	return nil
}

func (s *Staking) requireEnabled() error {
	enabled, err := s.store.isEnabled()
	if err != nil {
		return err
	}
	if !enabled {
		return reverts.ErrDisabled
	}
	return nil
}

// currentCycle maps now onto the cycle grid.
func (s *Staking) currentCycle(now uint64) (uint16, error) {
	startTS, err := s.store.startTimestamp.Get()
	if err != nil {
		return 0, err
	}
	return s.grid.cycleAt(now, startTS)
}

// currentGrid maps now onto both grid dimensions.
func (s *Staking) currentGrid(now uint64) (cycle, period uint16, err error) {
	if cycle, err = s.currentCycle(now); err != nil {
		return
	}
	period, err = s.grid.periodOf(cycle)
	return
}

// Start anchors the time grid at the current timestamp. One-shot, owner-only.
func (s *Staking) Start(caller vault.Address) error {
	return s.mutate("start", func(now uint64) ([]Event, error) {
		if err := s.requireOwner(caller); err != nil {
			return nil, err
		}
		startTS, err := s.store.startTimestamp.Get()
		if err != nil {
			return nil, err
		}
		if startTS != 0 {
			return nil, reverts.ErrAlreadyStarted
		}
		s.store.startTimestamp.Set(now)

		logger.Info("started", "timestamp", now)
		return []Event{Started{StartTimestamp: now}}, nil
	})
}

// Disable flips the engine off for good. Owner-only, one-way. Afterwards
// only emergency unstakes and the rewards pool withdrawal are possible.
func (s *Staking) Disable(caller vault.Address) error {
	return s.mutate("disable", func(uint64) ([]Event, error) {
		if err := s.requireOwner(caller); err != nil {
			return nil, err
		}
		if err := s.requireEnabled(); err != nil {
			return nil, err
		}
		s.store.setDisabled()

		logger.Info("disabled")
		return []Event{Disabled{}}, nil
	})
}

// OnNFTReceived is the single-token receiver hook. Only the whitelisted NFT
// transport may invoke it; the deposited token is staked to from.
func (s *Staking) OnNFTReceived(sender, _ vault.Address, from vault.Address, id *big.Int, _ uint64, _ []byte) ([4]byte, error) {
	err := s.mutate("stake", func(now uint64) ([]Event, error) {
		if sender != s.config.NFTContract {
			return nil, reverts.ErrNotWhitelisted
		}
		return s.stakeNFT(from, id, now)
	})
	if err != nil {
		return [4]byte{}, err
	}
	return ReceivedAck, nil
}

// OnNFTBatchReceived is the batch receiver hook. Each id is staked
// independently; a failing id aborts the whole batch.
func (s *Staking) OnNFTBatchReceived(sender, _ vault.Address, from vault.Address, ids []*big.Int, _ []uint64, _ []byte) ([4]byte, error) {
	err := s.mutate("stake_batch", func(now uint64) ([]Event, error) {
		if sender != s.config.NFTContract {
			return nil, reverts.ErrNotWhitelisted
		}
		var events []Event
		for _, id := range ids {
			evs, err := s.stakeNFT(from, id, now)
			if err != nil {
				return nil, err
			}
			events = append(events, evs...)
		}
		return events, nil
	})
	if err != nil {
		return [4]byte{}, err
	}
	return BatchReceivedAck, nil
}

// stakeNFT applies one deposit: both histories absorb the token weight, the
// claim cursor is initialized if needed and the registry entry is written.
func (s *Staking) stakeNFT(owner vault.Address, id *big.Int, now uint64) ([]Event, error) {
	if err := s.requireEnabled(); err != nil {
		return nil, err
	}
	cycle, period, err := s.currentGrid(now)
	if err != nil {
		return nil, err
	}

	weight, err := s.config.WeightOf(id)
	if err != nil {
		return nil, err
	}

	info, err := s.store.getTokenInfo(id)
	if err != nil {
		return nil, err
	}
	// a just-unstaked token cannot re-stake within the same cycle
	if info.WithdrawCycle == cycle {
		return nil, reverts.ErrCooldown
	}

	delta := new(big.Int).SetUint64(weight)
	globalIdx, globalStake, err := updateHistory(s.store.global, delta, cycle)
	if err != nil {
		return nil, err
	}
	_, stakerStake, err := updateHistory(s.store.stakerHistory(owner), delta, cycle)
	if err != nil {
		return nil, err
	}

	next, err := s.store.getNextClaim(owner)
	if err != nil {
		return nil, err
	}
	if next.IsZero() {
		// fresh accounting starts at the current period; earlier periods
		// contain no stake for this staker
		err := s.store.setNextClaim(owner, &NextClaim{Period: period, GlobalIdx: globalIdx})
		if err != nil {
			return nil, err
		}
	}

	info.Owner = owner
	info.Weight = weight
	info.DepositCycle = cycle
	info.WithdrawCycle = 0
	if err := s.store.setTokenInfo(id, info); err != nil {
		return nil, err
	}

	logger.Debug("nft staked", "owner", owner, "id", id, "weight", weight, "cycle", cycle)
	return []Event{
		HistoriesUpdated{Staker: owner, StartCycle: cycle, StakerStake: stakerStake, GlobalStake: globalStake},
		NftStaked{Staker: owner, Cycle: cycle, TokenID: id, Weight: weight},
	}, nil
}

// Unstake returns the token to its staker. While enabled the token must have
// completed two full cycles since deposit and both histories shed its weight.
// While disabled all accounting is skipped and the token is just returned.
func (s *Staking) Unstake(caller vault.Address, id *big.Int) error {
	return s.mutate("unstake", func(now uint64) ([]Event, error) {
		info, err := s.store.getTokenInfo(id)
		if err != nil {
			return nil, err
		}
		if info.Owner != caller {
			return nil, reverts.ErrUnauthorized
		}

		enabled, err := s.store.isEnabled()
		if err != nil {
			return nil, err
		}

		var events []Event
		if enabled {
			cycle, err := s.currentCycle(now)
			if err != nil {
				return nil, err
			}
			if uint64(cycle) < uint64(info.DepositCycle)+2 {
				return nil, reverts.ErrFrozen
			}

			delta := new(big.Int).Neg(new(big.Int).SetUint64(info.Weight))
			_, globalStake, err := updateHistory(s.store.global, delta, cycle)
			if err != nil {
				return nil, err
			}
			_, stakerStake, err := updateHistory(s.store.stakerHistory(caller), delta, cycle)
			if err != nil {
				return nil, err
			}

			info.Owner = vault.Address{}
			info.WithdrawCycle = cycle
			if err := s.store.setTokenInfo(id, info); err != nil {
				return nil, err
			}

			logger.Debug("nft unstaked", "owner", caller, "id", id, "cycle", cycle)
			events = []Event{
				HistoriesUpdated{Staker: caller, StartCycle: cycle, StakerStake: stakerStake, GlobalStake: globalStake},
				NftUnstaked{Staker: caller, Cycle: cycle, TokenID: id, Weight: info.Weight},
			}
		}

		// accounting is settled; the external transfer is the last step
		if err := s.transferNFTOut(caller, id); err != nil {
			return nil, err
		}
		return events, nil
	})
}

// transferNFTOut returns id to recipient, preferring the safe transfer and
// falling back to the unsafe one when the receiver callback rejects.
func (s *Staking) transferNFTOut(recipient vault.Address, id *big.Int) error {
	if err := s.config.NFTs.SafeTransferFrom(s.config.Self, recipient, id, 1, nil); err != nil {
		logger.Warn("safe transfer rejected, falling back", "id", id, "err", err)
		if err := s.config.NFTs.TransferFrom(s.config.Self, recipient, id); err != nil {
			return errors.Wrap(err, "failed to transfer nft")
		}
	}
	return nil
}

// Claim settles up to maxPeriods completed periods for the caller: computes
// the reward, advances (or drops) the cursor and transfers the amount out.
func (s *Staking) Claim(caller vault.Address, maxPeriods uint16) (*Computed, error) {
	var computed *Computed
	err := s.mutate("claim", func(now uint64) ([]Event, error) {
		if err := s.requireEnabled(); err != nil {
			return nil, err
		}
		cycle, period, err := s.currentGrid(now)
		if err != nil {
			return nil, err
		}

		oldNext, err := s.store.getNextClaim(caller)
		if err != nil {
			return nil, err
		}
		c, newNext, err := s.computeRewards(caller, maxPeriods, period)
		if err != nil {
			return nil, err
		}
		computed = c
		if c.Periods == 0 {
			return nil, nil
		}

		if err := s.settleCursor(caller, c, oldNext, newNext); err != nil {
			return nil, err
		}

		if c.Amount.Sign() != 0 {
			ok, err := s.config.RewardToken.Transfer(caller, c.Amount)
			if err != nil {
				return nil, errors.Wrap(err, "failed to transfer rewards")
			}
			if !ok {
				return nil, reverts.ErrTransferFailed
			}
		}

		logger.Debug("rewards claimed",
			"staker", caller, "startPeriod", c.StartPeriod, "periods", c.Periods, "amount", c.Amount)
		return []Event{RewardsClaimed{
			Staker:      caller,
			Cycle:       cycle,
			StartPeriod: c.StartPeriod,
			Periods:     c.Periods,
			Amount:      c.Amount,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return computed, nil
}

// Estimate computes what Claim would settle, without touching any state.
func (s *Staking) Estimate(staker vault.Address, maxPeriods uint16) (*Computed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireEnabled(); err != nil {
		return nil, err
	}
	_, period, err := s.currentGrid(s.nowFn())
	if err != nil {
		return nil, err
	}
	computed, _, err := s.computeRewards(staker, maxPeriods, period)
	if err != nil {
		return nil, err
	}
	return computed, nil
}

// read surface

// CurrentCycle returns the 1-based cycle containing the current timestamp.
func (s *Staking) CurrentCycle() (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentCycle(s.nowFn())
}

// CurrentPeriod returns the 1-based period containing the current timestamp.
func (s *Staking) CurrentPeriod() (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, period, err := s.currentGrid(s.nowFn())
	return period, err
}

// LastGlobalSnapshotIndex returns the index of the newest global snapshot.
func (s *Staking) LastGlobalSnapshotIndex() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	length, err := s.store.global.Len()
	if err != nil {
		return 0, err
	}
	if length == 0 {
		return 0, reverts.ErrEmptyHistory
	}
	return length - 1, nil
}

// LastStakerSnapshotIndex returns the index of the staker's newest snapshot.
func (s *Staking) LastStakerSnapshotIndex(staker vault.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	length, err := s.store.stakerHistory(staker).Len()
	if err != nil {
		return 0, err
	}
	if length == 0 {
		return 0, reverts.ErrEmptyHistory
	}
	return length - 1, nil
}

// GlobalSnapshot returns the global history entry at index.
func (s *Staking) GlobalSnapshot(index uint64) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.global.Get(index)
}

// StakerSnapshot returns the staker's history entry at index.
func (s *Staking) StakerSnapshot(staker vault.Address, index uint64) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.stakerHistory(staker).Get(index)
}

// TokenInfo returns the registry entry of id, zero-valued if unknown.
func (s *Staking) TokenInfo(id *big.Int) (*TokenInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.getTokenInfo(id)
}

// NextClaim returns the staker's claim cursor, zero-valued if uninitialized.
func (s *Staking) NextClaim(staker vault.Address) (*NextClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.getNextClaim(staker)
}

// RewardsPerCycle returns the scheduled per-cycle reward of a period.
func (s *Staking) RewardsPerCycle(period uint16) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.getRewardsPerCycle(period)
}

// TotalRewardsPool returns the funded, not yet withdrawn reward balance.
func (s *Staking) TotalRewardsPool() (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.rewardsPool.Get()
}

// Enabled reports whether the engine accepts stake/claim operations.
func (s *Staking) Enabled() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.isEnabled()
}

// StartTimestamp returns the grid origin, zero before Start.
func (s *Staking) StartTimestamp() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.startTimestamp.Get()
}
