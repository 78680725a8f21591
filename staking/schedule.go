// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/nftstake/vault/staking/reverts"
	"github.com/nftstake/vault/vault"
)

// AddRewards credits rewardsPerCycle to every period in [startPeriod,
// endPeriod] and pulls the total funding from the caller through the reward
// token. Owner-only. Once started, past periods cannot be scheduled.
func (s *Staking) AddRewards(caller vault.Address, startPeriod, endPeriod uint16, rewardsPerCycle *big.Int) error {
	return s.mutate("add_rewards", func(now uint64) ([]Event, error) {
		if err := s.requireOwner(caller); err != nil {
			return nil, err
		}
		if startPeriod == 0 || endPeriod < startPeriod {
			return nil, reverts.ErrBadRange
		}
		if rewardsPerCycle == nil || rewardsPerCycle.Sign() < 0 {
			return nil, reverts.ErrBadRange
		}

		startTS, err := s.store.startTimestamp.Get()
		if err != nil {
			return nil, err
		}
		if startTS != 0 {
			cycle, err := s.grid.cycleAt(now, startTS)
			if err != nil {
				return nil, err
			}
			currentPeriod, err := s.grid.periodOf(cycle)
			if err != nil {
				return nil, err
			}
			if startPeriod < currentPeriod {
				return nil, reverts.ErrBadRange
			}
		}

		for p := uint64(startPeriod); p <= uint64(endPeriod); p++ {
			if err := s.store.addRewardsPerCycle(uint16(p), rewardsPerCycle); err != nil {
				return nil, err
			}
		}

		// funding = rewardsPerCycle · periodCycles · periods
		periods := uint64(endPeriod) - uint64(startPeriod) + 1
		total := new(big.Int).Mul(rewardsPerCycle, new(big.Int).SetUint64(uint64(s.grid.periodCycles)*periods))
		if total.BitLen() > 256 {
			return nil, reverts.ErrOverflow
		}
		if err := s.store.rewardsPool.Add(total); err != nil {
			return nil, reverts.ErrOverflow
		}

		ok, err := s.config.RewardToken.TransferFrom(caller, s.config.Self, total)
		if err != nil {
			return nil, errors.Wrap(err, "failed to pull reward funding")
		}
		if !ok {
			return nil, reverts.ErrTransferFailed
		}

		logger.Info("rewards added",
			"startPeriod", startPeriod, "endPeriod", endPeriod, "rewardsPerCycle", rewardsPerCycle)
		return []Event{RewardsAdded{
			StartPeriod:     startPeriod,
			EndPeriod:       endPeriod,
			RewardsPerCycle: rewardsPerCycle,
		}}, nil
	})
}

// WithdrawRewardsPool moves amount of the remaining reward balance to the
// owner. Owner-only and allowed only after Disable.
func (s *Staking) WithdrawRewardsPool(caller vault.Address, amount *big.Int) error {
	return s.mutate("withdraw_rewards_pool", func(uint64) ([]Event, error) {
		if err := s.requireOwner(caller); err != nil {
			return nil, err
		}
		enabled, err := s.store.isEnabled()
		if err != nil {
			return nil, err
		}
		if enabled {
			return nil, reverts.ErrEnabled
		}
		if amount == nil || amount.Sign() < 0 {
			return nil, reverts.ErrBadRange
		}

		pool, err := s.store.rewardsPool.Get()
		if err != nil {
			return nil, err
		}
		if pool.Cmp(amount) < 0 {
			return nil, reverts.ErrUnderflow
		}
		if err := s.store.rewardsPool.Sub(amount); err != nil {
			return nil, reverts.ErrUnderflow
		}

		ok, err := s.config.RewardToken.Transfer(caller, amount)
		if err != nil {
			return nil, errors.Wrap(err, "failed to transfer pool balance")
		}
		if !ok {
			return nil, reverts.ErrTransferFailed
		}

		logger.Info("rewards pool withdrawn", "amount", amount)
		return nil, nil
	})
}
