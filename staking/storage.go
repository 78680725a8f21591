// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/nftstake/vault/cell"
	"github.com/nftstake/vault/state"
	"github.com/nftstake/vault/vault"
)

var (
	slotGlobalHistory   = nameToSlot("global-history")
	slotStakerHistories = nameToSlot("staker-histories")
	slotTokenInfos      = nameToSlot("token-infos")
	slotNextClaims      = nameToSlot("next-claims")
	slotRewardsSchedule = nameToSlot("rewards-schedule")
	slotRewardsPool     = nameToSlot("total-rewards-pool")
	slotDisabled        = nameToSlot("disabled")
	slotStartTimestamp  = nameToSlot("start-timestamp")
)

func nameToSlot(name string) vault.Bytes32 {
	return vault.BytesToBytes32([]byte(name))
}

// storage is the root storage of the staking engine.
type storage struct {
	context *cell.Context

	global   *cell.Array[Snapshot]
	tokens   *cell.Mapping[tokenKey, TokenInfo]
	claims   *cell.Mapping[addrKey, NextClaim]
	schedule *cell.Mapping[periodKey, *big.Int]

	rewardsPool    *cell.Uint256
	disabled       *cell.Uint64
	startTimestamp *cell.Uint64
}

func newStorage(st *state.State) *storage {
	context := cell.NewContext(st)
	return &storage{
		context:        context,
		global:         cell.NewArray[Snapshot](context, slotGlobalHistory),
		tokens:         cell.NewMapping[tokenKey, TokenInfo](context, slotTokenInfos),
		claims:         cell.NewMapping[addrKey, NextClaim](context, slotNextClaims),
		schedule:       cell.NewMapping[periodKey, *big.Int](context, slotRewardsSchedule),
		rewardsPool:    cell.NewUint256(context, slotRewardsPool),
		disabled:       cell.NewUint64(context, slotDisabled),
		startTimestamp: cell.NewUint64(context, slotStartTimestamp),
	}
}

// stakerHistory returns the snapshot history scoped to one staker.
func (s *storage) stakerHistory(staker vault.Address) *cell.Array[Snapshot] {
	pos := vault.Blake2b(staker.Bytes(), slotStakerHistories.Bytes())
	return cell.NewArray[Snapshot](s.context, pos)
}

func (s *storage) getTokenInfo(id *big.Int) (*TokenInfo, error) {
	info, err := s.tokens.Get(newTokenKey(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get token info")
	}
	return &info, nil
}

func (s *storage) setTokenInfo(id *big.Int, info *TokenInfo) error {
	if err := s.tokens.Set(newTokenKey(id), *info); err != nil {
		return errors.Wrap(err, "failed to set token info")
	}
	return nil
}

func (s *storage) getNextClaim(staker vault.Address) (*NextClaim, error) {
	next, err := s.claims.Get(addrKey(staker))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get claim cursor")
	}
	return &next, nil
}

func (s *storage) setNextClaim(staker vault.Address, next *NextClaim) error {
	if err := s.claims.Set(addrKey(staker), *next); err != nil {
		return errors.Wrap(err, "failed to set claim cursor")
	}
	return nil
}

func (s *storage) deleteNextClaim(staker vault.Address) error {
	if err := s.claims.Delete(addrKey(staker)); err != nil {
		return errors.Wrap(err, "failed to delete claim cursor")
	}
	return nil
}

// getRewardsPerCycle returns the budget of one period, zero if unscheduled.
func (s *storage) getRewardsPerCycle(period uint16) (*big.Int, error) {
	reward, err := s.schedule.Get(periodKey(period))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rewards schedule")
	}
	if reward == nil {
		return new(big.Int), nil
	}
	return reward, nil
}

func (s *storage) addRewardsPerCycle(period uint16, amount *big.Int) error {
	reward, err := s.getRewardsPerCycle(period)
	if err != nil {
		return err
	}
	if err := s.schedule.Set(periodKey(period), new(big.Int).Add(reward, amount)); err != nil {
		return errors.Wrap(err, "failed to set rewards schedule")
	}
	return nil
}

// isEnabled reports whether the engine accepts stake/claim operations.
// A fresh store is enabled; Disable flips it off for good.
func (s *storage) isEnabled() (bool, error) {
	v, err := s.disabled.Get()
	if err != nil {
		return false, err
	}
	return v == 0, nil
}

func (s *storage) setDisabled() {
	s.disabled.Set(1)
}
