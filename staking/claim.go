// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/nftstake/vault/staking/reverts"
	"github.com/nftstake/vault/vault"
)

// computeRewards walks the global and staker snapshot series period by
// period, segment by segment, and computes the reward owed to the staker
// for up to maxPeriods completed periods past the claim cursor.
//
// Over any half-open cycle interval the global stake, the staker stake and
// the per-cycle reward are each piecewise-constant. The inner loop advances
// `start` to the earliest cycle where all three pieces overlap and `end` to
// the earliest boundary any of them crosses, so every sub-interval
// contributes exactly (end-start)·reward·stakerStake/globalStake.
//
// The state is not mutated; the caller decides what to do with the new
// cursor.
func (s *Staking) computeRewards(staker vault.Address, maxPeriods, currentPeriod uint16) (*Computed, *NextClaim, error) {
	next, err := s.store.getNextClaim(staker)
	if err != nil {
		return nil, nil, err
	}

	globalLen, err := s.store.global.Len()
	if err != nil {
		return nil, nil, err
	}

	// nothing to claim: zero reward, cursor unchanged; the current period is
	// never claimable
	if maxPeriods == 0 || globalLen == 0 || next.IsZero() || next.Period >= currentPeriod {
		return &Computed{StartPeriod: next.Period, Amount: new(big.Int)}, next, nil
	}

	periodsToClaim := currentPeriod - next.Period
	if maxPeriods < periodsToClaim {
		periodsToClaim = maxPeriods
	}
	endPeriod := uint64(next.Period) + uint64(periodsToClaim) // exclusive

	history := s.store.stakerHistory(staker)
	stakerLen, err := history.Len()
	if err != nil {
		return nil, nil, err
	}

	gIdx, sIdx := next.GlobalIdx, next.StakerIdx
	g, err := snapshotAt(s.store.global, gIdx, globalLen)
	if err != nil {
		return nil, nil, err
	}
	gNext, err := snapshotAt(s.store.global, gIdx+1, globalLen)
	if err != nil {
		return nil, nil, err
	}
	sSnap, err := snapshotAt(history, sIdx, stakerLen)
	if err != nil {
		return nil, nil, err
	}
	sNext, err := snapshotAt(history, sIdx+1, stakerLen)
	if err != nil {
		return nil, nil, err
	}

	periodCycles := uint64(s.grid.periodCycles)
	amount := new(uint256.Int)

	for p := uint64(next.Period); p < endPeriod; p++ {
		nextPeriodStart := p*periodCycles + 1

		rewardPerCycle, err := s.store.getRewardsPerCycle(uint16(p))
		if err != nil {
			return nil, nil, err
		}
		reward, overflow := uint256.FromBig(rewardPerCycle)
		if overflow {
			return nil, nil, reverts.ErrOverflow
		}

		start := (p-1)*periodCycles + 1
		end := uint64(0)

		for end != nextPeriodStart {
			// the first cycle where global segment, staker segment and
			// period all overlap
			if uint64(g.StartCycle) > start {
				start = uint64(g.StartCycle)
			}
			if uint64(sSnap.StartCycle) > start {
				start = uint64(sSnap.StartCycle)
			}

			// the earliest boundary any of the three pieces crosses;
			// start cycle 0 is the "no next segment" sentinel
			end = nextPeriodStart
			if gNext.StartCycle != 0 && uint64(gNext.StartCycle) < end {
				end = uint64(gNext.StartCycle)
			}
			if sNext.StartCycle != 0 && uint64(sNext.StartCycle) < end {
				end = uint64(sNext.StartCycle)
			}

			if g.Stake.Sign() != 0 && sSnap.Stake.Sign() != 0 && reward.Sign() != 0 {
				globalStake, of := uint256.FromBig(g.Stake)
				if of {
					return nil, nil, reverts.ErrOverflow
				}
				stakerStake, of := uint256.FromBig(sSnap.Stake)
				if of {
					return nil, nil, reverts.ErrOverflow
				}

				v := uint256.NewInt(end - start)
				v, of = v.MulOverflow(v, reward)
				if of {
					return nil, nil, reverts.ErrOverflow
				}
				v, of = v.MulOverflow(v, stakerStake)
				if of {
					return nil, nil, reverts.ErrOverflow
				}
				v.Div(v, globalStake) // truncating

				amount, of = amount.AddOverflow(amount, v)
				if of {
					return nil, nil, reverts.ErrOverflow
				}
			}

			if uint64(gNext.StartCycle) == end {
				g, gIdx = gNext, gIdx+1
				if gNext, err = snapshotAt(s.store.global, gIdx+1, globalLen); err != nil {
					return nil, nil, err
				}
			}
			if uint64(sNext.StartCycle) == end {
				sSnap, sIdx = sNext, sIdx+1
				if sNext, err = snapshotAt(history, sIdx+1, stakerLen); err != nil {
					return nil, nil, err
				}
			}
		}
	}

	computed := &Computed{
		StartPeriod: next.Period,
		Periods:     periodsToClaim,
		Amount:      amount.ToBig(),
	}
	newNext := &NextClaim{
		Period:    uint16(endPeriod),
		GlobalIdx: gIdx,
		StakerIdx: sIdx,
	}
	return computed, newNext, nil
}

// settleCursor persists the post-claim cursor and zeroes the consumed prefix
// of the staker history. When the staker has exhausted all segments with no
// stake left, the cursor and the whole history are dropped instead, so that
// the next stake starts a fresh accounting at index zero.
func (s *Staking) settleCursor(staker vault.Address, computed *Computed, oldNext, newNext *NextClaim) error {
	history := s.store.stakerHistory(staker)
	length, err := history.Len()
	if err != nil {
		return err
	}

	if length > 0 {
		last, err := history.Get(length - 1)
		if err != nil {
			return err
		}
		lastClaimedCycle := s.grid.lastCycle(computed.StartPeriod + computed.Periods - 1)
		if lastClaimedCycle >= uint64(last.StartCycle) && last.stake().Sign() == 0 {
			if err := history.Clear(); err != nil {
				return err
			}
			return s.store.deleteNextClaim(staker)
		}
	}

	// consumed slots are never re-read; reclaim the storage
	for i := oldNext.StakerIdx; i < newNext.StakerIdx; i++ {
		if err := history.Delete(i); err != nil {
			return err
		}
	}
	return s.store.setNextClaim(staker, newNext)
}
