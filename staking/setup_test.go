// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/nftstake/vault/lvldb"
	"github.com/nftstake/vault/state"
	"github.com/nftstake/vault/staking/reverts"
	"github.com/nftstake/vault/vault"
)

const (
	testStart        = uint64(1_000_000)
	testCycleSeconds = uint32(60)
	testPeriodCycles = uint16(7)
)

var (
	testOwner   = vault.BytesToAddress([]byte("owner"))
	testSelf    = vault.BytesToAddress([]byte("vault"))
	testNFTAddr = vault.BytesToAddress([]byte("nft-contract"))
	stakerA     = vault.BytesToAddress([]byte("staker-a"))
	stakerB     = vault.BytesToAddress([]byte("staker-b"))
)

type nftTransfer struct {
	from, to vault.Address
	id       *big.Int
	safe     bool
}

type fakeNFTs struct {
	rejectSafe bool
	transfers  []nftTransfer
}

func (f *fakeNFTs) SafeTransferFrom(from, to vault.Address, id *big.Int, _ uint64, _ []byte) error {
	if f.rejectSafe {
		return errors.New("receiver rejected")
	}
	f.transfers = append(f.transfers, nftTransfer{from, to, id, true})
	return nil
}

func (f *fakeNFTs) TransferFrom(from, to vault.Address, id *big.Int) error {
	f.transfers = append(f.transfers, nftTransfer{from, to, id, false})
	return nil
}

type tokenTransfer struct {
	from, to vault.Address
	amount   *big.Int
}

type fakeRewardToken struct {
	refuse    bool
	transfers []tokenTransfer
}

func (f *fakeRewardToken) TransferFrom(sender, recipient vault.Address, amount *big.Int) (bool, error) {
	if f.refuse {
		return false, nil
	}
	f.transfers = append(f.transfers, tokenTransfer{sender, recipient, new(big.Int).Set(amount)})
	return true, nil
}

func (f *fakeRewardToken) Transfer(recipient vault.Address, amount *big.Int) (bool, error) {
	return f.TransferFrom(testSelf, recipient, amount)
}

// env drives one engine instance over an in-memory store with a manual clock
// and a table-lookup weight policy.
type env struct {
	t       *testing.T
	now     uint64
	staking *Staking
	nfts    *fakeNFTs
	reward  *fakeRewardToken
	weights map[uint64]uint64
}

func newEnv(t *testing.T) *env {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := &env{
		t:       t,
		now:     testStart,
		nfts:    &fakeNFTs{},
		reward:  &fakeRewardToken{},
		weights: make(map[uint64]uint64),
	}
	e.staking, err = New(state.New(db), Config{
		CycleSeconds: testCycleSeconds,
		PeriodCycles: testPeriodCycles,
		Owner:        testOwner,
		Self:         testSelf,
		NFTContract:  testNFTAddr,
		NFTs:         e.nfts,
		RewardToken:  e.reward,
		WeightOf: func(id *big.Int) (uint64, error) {
			w, ok := e.weights[id.Uint64()]
			if !ok {
				return 0, reverts.ErrNotWhitelisted
			}
			return w, nil
		},
		Now: func() uint64 { return e.now },
	})
	require.NoError(t, err)
	return e
}

// newToken registers a token id with the weight table.
func (e *env) newToken(id, weight uint64) *big.Int {
	e.weights[id] = weight
	return new(big.Int).SetUint64(id)
}

// atCycle moves the clock to the first timestamp of cycle c.
func (e *env) atCycle(c uint16) {
	e.now = testStart + uint64(c-1)*uint64(testCycleSeconds)
}

func (e *env) start() {
	require.NoError(e.t, e.staking.Start(testOwner))
}

func (e *env) addRewards(startPeriod, endPeriod uint16, perCycle int64) {
	require.NoError(e.t, e.staking.AddRewards(testOwner, startPeriod, endPeriod, big.NewInt(perCycle)))
}

func (e *env) stake(staker vault.Address, id *big.Int) error {
	_, err := e.staking.OnNFTReceived(testNFTAddr, staker, staker, id, 1, nil)
	return err
}

func (e *env) mustStake(staker vault.Address, id *big.Int) {
	require.NoError(e.t, e.stake(staker, id))
}

func (e *env) mustUnstake(staker vault.Address, id *big.Int) {
	require.NoError(e.t, e.staking.Unstake(staker, id))
}

func (e *env) mustClaim(staker vault.Address, maxPeriods uint16) *Computed {
	computed, err := e.staking.Claim(staker, maxPeriods)
	require.NoError(e.t, err)
	return computed
}

// lastRewardTransfer returns the most recent reward-token transfer.
func (e *env) lastRewardTransfer() tokenTransfer {
	require.NotEmpty(e.t, e.reward.transfers)
	return e.reward.transfers[len(e.reward.transfers)-1]
}
