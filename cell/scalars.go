// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cell

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/nftstake/vault/vault"
)

// Address is a wrapper for storage and retrieval of an address,
// similar to an address variable of a smart contract.
type Address struct {
	context *Context
	pos     vault.Bytes32
}

func NewAddress(context *Context, pos vault.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (vault.Address, error) {
	storage, err := a.context.state.GetStorage(a.pos)
	if err != nil {
		return vault.Address{}, err
	}
	return vault.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr *vault.Address) {
	var storage vault.Bytes32
	if addr != nil {
		storage = vault.BytesToBytes32(addr.Bytes())
	}
	a.context.state.SetStorage(a.pos, storage)
}

// Bytes32 is a wrapper for storage and retrieval of [32]byte.
type Bytes32 struct {
	context *Context
	pos     vault.Bytes32
}

func NewBytes32(context *Context, pos vault.Bytes32) *Bytes32 {
	return &Bytes32{context: context, pos: pos}
}

func (b *Bytes32) Get() (vault.Bytes32, error) {
	return b.context.state.GetStorage(b.pos)
}

func (b *Bytes32) Set(bytes *vault.Bytes32) {
	if bytes == nil {
		bytes = &vault.Bytes32{}
	}
	b.context.state.SetStorage(b.pos, *bytes)
}

// Uint256 is a wrapper for storage and retrieval of an unsigned 256-bit number.
// If the provided value exceeds 256 bits it will be truncated to fit vault.Bytes32.
type Uint256 struct {
	context *Context
	pos     vault.Bytes32
}

func NewUint256(context *Context, pos vault.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) {
	storage := vault.BytesToBytes32(value.Bytes())
	u.context.state.SetStorage(u.pos, storage)
}

func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	storage.Add(storage, value)
	if storage.BitLen() > 256 {
		return errors.New("uint256 overflow")
	}
	u.Set(storage)
	return nil
}

func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	storage.Sub(storage, value)
	if storage.Sign() < 0 {
		return errors.New("uint256 underflow")
	}
	u.Set(storage)
	return nil
}

// Uint64 is a wrapper for storage and retrieval of an unsigned 64-bit number.
type Uint64 struct {
	context *Context
	pos     vault.Bytes32
}

func NewUint64(context *Context, pos vault.Bytes32) *Uint64 {
	return &Uint64{context: context, pos: pos}
}

func (u *Uint64) Get() (uint64, error) {
	storage, err := u.context.state.GetStorage(u.pos)
	if err != nil {
		return 0, err
	}
	num := new(big.Int).SetBytes(storage.Bytes())
	if !num.IsUint64() {
		return 0, errors.New("stored value exceeds 64 bits")
	}
	return num.Uint64(), nil
}

func (u *Uint64) Set(value uint64) {
	storage := vault.BytesToBytes32(new(big.Int).SetUint64(value).Bytes())
	u.context.state.SetStorage(u.pos, storage)
}

// Uint32 is a wrapper for storage and retrieval of an unsigned 32-bit number.
type Uint32 struct {
	inner *Uint64
}

func NewUint32(context *Context, pos vault.Bytes32) *Uint32 {
	return &Uint32{inner: NewUint64(context, pos)}
}

func (u *Uint32) Get() (uint32, error) {
	num, err := u.inner.Get()
	if err != nil {
		return 0, err
	}
	if num > math.MaxUint32 {
		return 0, errors.New("stored value exceeds 32 bits")
	}
	return uint32(num), nil
}

func (u *Uint32) Set(value uint32) {
	u.inner.Set(uint64(value))
}
