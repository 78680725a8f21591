// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/nftstake/vault/staking/reverts"
)

// WeightFunc resolves the stake weight of a token id. It is fixed at
// construction; rejecting an id aborts the stake.
type WeightFunc func(id *big.Int) (uint64, error)

// TokenTypeWeights builds a WeightFunc for ids that pack metadata into the
// high bytes of a 256-bit value: byte 30 (bits 240-247) is the token type,
// byte 29 (bits 232-239) is the rarity. Only token type 1 is stakeable; the
// rarity maps through the given weight table.
func TokenTypeWeights(weights map[uint8]uint64) WeightFunc {
	return func(id *big.Int) (uint64, error) {
		tokenType := uint8(new(big.Int).Rsh(id, 240).Uint64() & 0xff)
		if tokenType != 1 {
			return 0, reverts.ErrNotWhitelisted
		}
		rarity := uint8(new(big.Int).Rsh(id, 232).Uint64() & 0xff)
		weight, ok := weights[rarity]
		if !ok {
			return 0, reverts.ErrNotWhitelisted
		}
		return weight, nil
	}
}
