// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/nftstake/vault/staking/reverts"
	"github.com/nftstake/vault/vault"
)

// timeGrid maps wall-clock timestamps onto the 1-based cycle/period grid.
// Both dimensions are immutable once the engine is constructed.
type timeGrid struct {
	cycleSeconds uint32
	periodCycles uint16
}

// cycleAt returns the cycle containing ts, given the grid origin.
func (g timeGrid) cycleAt(ts, startTimestamp uint64) (uint16, error) {
	if startTimestamp == 0 {
		return 0, reverts.ErrNotStarted
	}
	if ts < startTimestamp {
		return 0, reverts.ErrPreStart
	}
	cycle := (ts-startTimestamp)/uint64(g.cycleSeconds) + 1
	if cycle > vault.MaxCycle {
		return 0, reverts.ErrOverflow
	}
	return uint16(cycle), nil
}

// periodOf returns the period containing the given cycle.
func (g timeGrid) periodOf(cycle uint16) (uint16, error) {
	if cycle == 0 {
		return 0, reverts.ErrBadRange
	}
	return uint16((uint64(cycle)-1)/uint64(g.periodCycles) + 1), nil
}

// firstCycle returns the first cycle of period p.
// Computed in uint64: the result may exceed the u16 cycle range by one
// period when p is the last representable period.
func (g timeGrid) firstCycle(p uint16) uint64 {
	return (uint64(p)-1)*uint64(g.periodCycles) + 1
}

// lastCycle returns the last cycle of period p.
func (g timeGrid) lastCycle(p uint16) uint64 {
	return uint64(p) * uint64(g.periodCycles)
}
