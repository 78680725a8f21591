// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nftstake/vault/staking/reverts"
)

// packedID builds a 256-bit id with the token type in byte 30 and the rarity
// in byte 29.
func packedID(tokenType, rarity uint8, serial uint64) *big.Int {
	id := new(big.Int).Lsh(new(big.Int).SetUint64(uint64(tokenType)), 240)
	id.Or(id, new(big.Int).Lsh(new(big.Int).SetUint64(uint64(rarity)), 232))
	return id.Or(id, new(big.Int).SetUint64(serial))
}

func TestTokenTypeWeights(t *testing.T) {
	weightOf := TokenTypeWeights(map[uint8]uint64{
		0: 1,
		1: 10,
		2: 100,
	})

	weight, err := weightOf(packedID(1, 2, 42))
	assert.NoError(t, err)
	assert.Equal(t, uint64(100), weight)

	weight, err = weightOf(packedID(1, 0, 7))
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), weight)

	// only token type 1 is stakeable
	_, err = weightOf(packedID(2, 1, 42))
	assert.ErrorIs(t, err, reverts.ErrNotWhitelisted)
	_, err = weightOf(big.NewInt(42))
	assert.ErrorIs(t, err, reverts.ErrNotWhitelisted)

	// unmapped rarity
	_, err = weightOf(packedID(1, 9, 42))
	assert.ErrorIs(t, err, reverts.ErrNotWhitelisted)
}
