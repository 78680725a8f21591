// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/nftstake/vault/vault"
)

// NFTTransport moves tokens between the vault and stakers. SafeTransferFrom
// is the preferred path; when the recipient rejects the receiver callback the
// engine falls back to the unsafe TransferFrom.
type NFTTransport interface {
	SafeTransferFrom(from, to vault.Address, id *big.Int, value uint64, data []byte) error
	TransferFrom(from, to vault.Address, id *big.Int) error
}

// RewardToken moves reward value. A false return without error means the
// transport refused the transfer; the engine aborts the operation either way.
type RewardToken interface {
	TransferFrom(sender, recipient vault.Address, amount *big.Int) (bool, error)
	Transfer(recipient vault.Address, amount *big.Int) (bool, error)
}

// Receiver hook acknowledgment tokens returned by OnNFTReceived and
// OnNFTBatchReceived.
var (
	ReceivedAck      = [4]byte{0xf2, 0x3a, 0x6e, 0x61}
	BatchReceivedAck = [4]byte{0xbc, 0x19, 0x7c, 0x81}
)
