// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import "math"

// Constants of the staking protocol.
const (
	// MinCycleSeconds the smallest permitted cycle length.
	MinCycleSeconds uint32 = 60

	// MinPeriodCycles the smallest permitted number of cycles per period.
	MinPeriodCycles uint16 = 2

	// MaxCycle the largest representable cycle index.
	MaxCycle uint64 = math.MaxUint16

	// MaxPeriod the largest representable period index.
	MaxPeriod uint64 = math.MaxUint16

	// MaxStakeBits width of an aggregate stake total.
	MaxStakeBits = 128
)
