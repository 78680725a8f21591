// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftstake/vault/staking/reverts"
)

func TestAddRewardsValidation(t *testing.T) {
	e := newEnv(t)

	err := e.staking.AddRewards(stakerA, 1, 2, big.NewInt(100))
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)

	err = e.staking.AddRewards(testOwner, 0, 2, big.NewInt(100))
	assert.ErrorIs(t, err, reverts.ErrBadRange)

	err = e.staking.AddRewards(testOwner, 3, 2, big.NewInt(100))
	assert.ErrorIs(t, err, reverts.ErrBadRange)

	err = e.staking.AddRewards(testOwner, 1, 2, big.NewInt(-1))
	assert.ErrorIs(t, err, reverts.ErrBadRange)
}

func TestAddRewardsBeforeStart(t *testing.T) {
	e := newEnv(t)

	// scheduling ahead of start is allowed for any future period
	e.addRewards(1, 4, 250)

	reward, err := e.staking.RewardsPerCycle(2)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(250), reward)

	pool, err := e.staking.TotalRewardsPool()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(250*7*4), pool)

	transfer := e.lastRewardTransfer()
	assert.Equal(t, testOwner, transfer.from)
	assert.Equal(t, testSelf, transfer.to)
	assert.Equal(t, big.NewInt(250*7*4), transfer.amount)
}

func TestAddRewardsNoRetroScheduling(t *testing.T) {
	e := newEnv(t)
	e.start()
	e.atCycle(8) // period 2

	err := e.staking.AddRewards(testOwner, 1, 3, big.NewInt(100))
	assert.ErrorIs(t, err, reverts.ErrBadRange)

	// the current period is still schedulable
	e.addRewards(2, 3, 100)
}

func TestAddRewardsAccumulates(t *testing.T) {
	e := newEnv(t)
	e.addRewards(1, 2, 100)
	e.addRewards(2, 3, 50)

	for _, tt := range []struct {
		period uint16
		reward int64
	}{
		{1, 100}, {2, 150}, {3, 50}, {4, 0},
	} {
		reward, err := e.staking.RewardsPerCycle(tt.period)
		require.NoError(t, err)
		assert.Zero(t, reward.Cmp(big.NewInt(tt.reward)), "period %d", tt.period)
	}
}

func TestAddRewardsRefusedTransferRollsBack(t *testing.T) {
	e := newEnv(t)
	e.reward.refuse = true

	err := e.staking.AddRewards(testOwner, 1, 1, big.NewInt(100))
	assert.ErrorIs(t, err, reverts.ErrTransferFailed)

	// schedule and pool credits must have been reverted
	reward, err := e.staking.RewardsPerCycle(1)
	require.NoError(t, err)
	assert.Zero(t, reward.Sign())
	pool, err := e.staking.TotalRewardsPool()
	require.NoError(t, err)
	assert.Zero(t, pool.Sign())
}

func TestWithdrawRewardsPool(t *testing.T) {
	e := newEnv(t)
	e.addRewards(1, 1, 100) // pool: 700

	err := e.staking.WithdrawRewardsPool(testOwner, big.NewInt(100))
	assert.ErrorIs(t, err, reverts.ErrEnabled)

	require.NoError(t, e.staking.Disable(testOwner))

	err = e.staking.WithdrawRewardsPool(stakerA, big.NewInt(100))
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)

	err = e.staking.WithdrawRewardsPool(testOwner, big.NewInt(701))
	assert.ErrorIs(t, err, reverts.ErrUnderflow)

	require.NoError(t, e.staking.WithdrawRewardsPool(testOwner, big.NewInt(700)))
	pool, err := e.staking.TotalRewardsPool()
	require.NoError(t, err)
	assert.Zero(t, pool.Sign())

	transfer := e.lastRewardTransfer()
	assert.Equal(t, testOwner, transfer.to)
	assert.Equal(t, big.NewInt(700), transfer.amount)
}
