// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimSingleStakerFlatSchedule(t *testing.T) {
	e := newEnv(t)
	e.start()
	e.addRewards(1, 2, 1000)

	nft := e.newToken(1, 1)
	e.mustStake(stakerA, nft)

	e.atCycle(15) // start of period 3
	e.mustUnstake(stakerA, nft)

	computed := e.mustClaim(stakerA, 10)
	assert.Equal(t, uint16(1), computed.StartPeriod)
	assert.Equal(t, uint16(2), computed.Periods)
	assert.Equal(t, big.NewInt(14000), computed.Amount)

	transfer := e.lastRewardTransfer()
	assert.Equal(t, stakerA, transfer.to)
	assert.Equal(t, big.NewInt(14000), transfer.amount)
}

func TestClaimProportionalSplit(t *testing.T) {
	e := newEnv(t)
	e.start()
	e.addRewards(1, 1, 1000)

	e.mustStake(stakerA, e.newToken(1, 1))
	e.mustStake(stakerB, e.newToken(2, 3))

	e.atCycle(8)
	assert.Equal(t, big.NewInt(1750), e.mustClaim(stakerA, 1).Amount)
	assert.Equal(t, big.NewInt(5250), e.mustClaim(stakerB, 1).Amount)
}

func TestClaimMidPeriodStakeChange(t *testing.T) {
	e := newEnv(t)
	e.start()
	e.addRewards(1, 1, 1000)

	e.mustStake(stakerA, e.newToken(1, 1))
	e.atCycle(4)
	e.mustStake(stakerB, e.newToken(2, 1))

	// A: cycles [1,4) alone, [4,8) splitting with B
	e.atCycle(8)
	assert.Equal(t, big.NewInt(5000), e.mustClaim(stakerA, 1).Amount)
	assert.Equal(t, big.NewInt(2000), e.mustClaim(stakerB, 1).Amount)
}

func TestClaimCurrentPeriodExcluded(t *testing.T) {
	e := newEnv(t)
	e.start()
	e.addRewards(1, 1, 1000)
	e.mustStake(stakerA, e.newToken(1, 1))

	e.atCycle(5) // still period 1
	computed := e.mustClaim(stakerA, math.MaxUint16)
	assert.Equal(t, uint16(0), computed.Periods)
	assert.Equal(t, big.NewInt(0), computed.Amount)

	next, err := e.staking.NextClaim(stakerA)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), next.Period)
}

func TestClaimReinitializesAfterFullExit(t *testing.T) {
	e := newEnv(t)
	e.start()
	e.mustStake(stakerA, e.newToken(1, 1))

	e.atCycle(10)
	e.mustUnstake(stakerA, e.newToken(1, 1))

	e.atCycle(20)
	computed := e.mustClaim(stakerA, math.MaxUint16)
	assert.Equal(t, uint16(2), computed.Periods)

	next, err := e.staking.NextClaim(stakerA)
	require.NoError(t, err)
	assert.True(t, next.IsZero())

	// fresh accounting starts over at the current grid position
	e.atCycle(22)
	e.mustStake(stakerA, e.newToken(2, 2))
	next, err = e.staking.NextClaim(stakerA)
	require.NoError(t, err)
	assert.Equal(t, uint16(4), next.Period)
	lastGlobal, err := e.staking.LastGlobalSnapshotIndex()
	require.NoError(t, err)
	assert.Equal(t, lastGlobal, next.GlobalIdx)
	assert.Equal(t, uint64(0), next.StakerIdx)

	lastStaker, err := e.staking.LastStakerSnapshotIndex(stakerA)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), lastStaker)
}

func TestClaimMaxPeriodsBound(t *testing.T) {
	e := newEnv(t)
	e.start()
	e.addRewards(1, 10, 1000)
	e.mustStake(stakerA, e.newToken(1, 1))

	e.atCycle(71) // period 11, ten completed periods behind
	computed := e.mustClaim(stakerA, 3)
	assert.Equal(t, uint16(1), computed.StartPeriod)
	assert.Equal(t, uint16(3), computed.Periods)
	assert.Equal(t, big.NewInt(21000), computed.Amount)

	next, err := e.staking.NextClaim(stakerA)
	require.NoError(t, err)
	assert.Equal(t, uint16(4), next.Period)

	// the remaining seven periods are still claimable
	computed = e.mustClaim(stakerA, math.MaxUint16)
	assert.Equal(t, uint16(4), computed.StartPeriod)
	assert.Equal(t, uint16(7), computed.Periods)
	assert.Equal(t, big.NewInt(49000), computed.Amount)
}

func TestEstimateMatchesClaim(t *testing.T) {
	e := newEnv(t)
	e.start()
	e.addRewards(1, 3, 500)
	e.mustStake(stakerA, e.newToken(1, 1))
	e.atCycle(4)
	e.mustStake(stakerB, e.newToken(2, 3))

	e.atCycle(25)
	estimated, err := e.staking.Estimate(stakerA, 2)
	require.NoError(t, err)
	claimed := e.mustClaim(stakerA, 2)
	assert.Equal(t, estimated, claimed)
}

func TestClaimZeroPeriodsIsNoop(t *testing.T) {
	e := newEnv(t)
	e.start()
	e.addRewards(1, 1, 1000)
	e.mustStake(stakerA, e.newToken(1, 1))

	e.atCycle(8)
	computed := e.mustClaim(stakerA, 0)
	assert.Equal(t, uint16(0), computed.Periods)
	assert.Empty(t, e.reward.transfers[1:]) // only the AddRewards funding

	next, err := e.staking.NextClaim(stakerA)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), next.Period)
}

func TestSecondClaimYieldsZero(t *testing.T) {
	e := newEnv(t)
	e.start()
	e.addRewards(1, 2, 1000)
	e.mustStake(stakerA, e.newToken(1, 1))

	e.atCycle(20)
	first := e.mustClaim(stakerA, math.MaxUint16)
	assert.Equal(t, big.NewInt(14000), first.Amount)

	second := e.mustClaim(stakerA, math.MaxUint16)
	assert.Equal(t, uint16(0), second.Periods)
	assert.Equal(t, big.NewInt(0), second.Amount)
}

func TestClaimAfterMinimalHold(t *testing.T) {
	e := newEnv(t)
	e.start()
	e.addRewards(1, 1, 1000)
	e.mustStake(stakerA, e.newToken(1, 1))

	e.atCycle(3)
	e.mustUnstake(stakerA, e.newToken(1, 1))

	// staked over cycles [1,3) of period 1, sole staker
	e.atCycle(8)
	computed := e.mustClaim(stakerA, math.MaxUint16)
	assert.Equal(t, big.NewInt(2000), computed.Amount)
}

func TestClaimTruncatingDivision(t *testing.T) {
	e := newEnv(t)
	e.start()
	e.addRewards(1, 1, 10)
	e.mustStake(stakerA, e.newToken(1, 1))
	e.mustStake(stakerB, e.newToken(2, 2))

	// per sub-segment: 7 cycles · 10 · 1 / 3 truncates to 23
	e.atCycle(8)
	assert.Equal(t, big.NewInt(23), e.mustClaim(stakerA, 1).Amount)
	assert.Equal(t, big.NewInt(46), e.mustClaim(stakerB, 1).Amount)
}

func TestClaimUnscheduledPeriodsEarnNothing(t *testing.T) {
	e := newEnv(t)
	e.start()
	e.addRewards(2, 2, 1000)
	e.mustStake(stakerA, e.newToken(1, 1))

	e.atCycle(22) // period 4; periods 1-3 completed, only 2 scheduled
	computed := e.mustClaim(stakerA, math.MaxUint16)
	assert.Equal(t, uint16(1), computed.StartPeriod)
	assert.Equal(t, uint16(3), computed.Periods)
	assert.Equal(t, big.NewInt(7000), computed.Amount)
}
