// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/nftstake/vault/cell"
	"github.com/nftstake/vault/staking/reverts"
	"github.com/nftstake/vault/vault"
)

// updateHistory applies a signed stake delta to a snapshot history at the
// given cycle. The history stays a canonical piecewise-constant series: at
// most one snapshot per start cycle, totals always exact.
//
// It returns the index of the snapshot now covering currentCycle together
// with the new total.
func updateHistory(history *cell.Array[Snapshot], delta *big.Int, currentCycle uint16) (uint64, *big.Int, error) {
	length, err := history.Len()
	if err != nil {
		return 0, nil, err
	}

	if length == 0 {
		if delta.Sign() <= 0 {
			return 0, nil, reverts.ErrUnderflow
		}
		if delta.BitLen() > vault.MaxStakeBits {
			return 0, nil, reverts.ErrOverflow
		}
		idx, err := history.Push(Snapshot{Stake: delta, StartCycle: currentCycle})
		if err != nil {
			return 0, nil, errors.Wrap(err, "failed to push snapshot")
		}
		return idx, delta, nil
	}

	tail, err := history.Get(length - 1)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to get tail snapshot")
	}

	newStake := new(big.Int).Add(tail.stake(), delta)
	if newStake.Sign() < 0 {
		return 0, nil, reverts.ErrUnderflow
	}
	if newStake.BitLen() > vault.MaxStakeBits {
		return 0, nil, reverts.ErrOverflow
	}

	if tail.StartCycle == currentCycle {
		// coalesce into the current-cycle head
		if err := history.Set(length-1, Snapshot{Stake: newStake, StartCycle: currentCycle}); err != nil {
			return 0, nil, errors.Wrap(err, "failed to overwrite tail snapshot")
		}
		return length - 1, newStake, nil
	}

	idx, err := history.Push(Snapshot{Stake: newStake, StartCycle: currentCycle})
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to push snapshot")
	}
	return idx, newStake, nil
}

// snapshotAt loads history[idx], or the {0,0} sentinel when idx is past the end.
func snapshotAt(history *cell.Array[Snapshot], idx, length uint64) (Snapshot, error) {
	if idx >= length {
		return Snapshot{Stake: new(big.Int)}, nil
	}
	snap, err := history.Get(idx)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "failed to get snapshot")
	}
	if snap.Stake == nil {
		snap.Stake = new(big.Int)
	}
	return snap, nil
}
