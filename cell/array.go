// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cell

import (
	"encoding/binary"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/nftstake/vault/vault"
)

// Array is a dynamic array over storage, similar to a Solidity storage array.
// The length lives at basePos; element i lives at Blake2b(basePos, i).
type Array[V any] struct {
	context *Context
	basePos vault.Bytes32
	length  *Uint64
}

func NewArray[V any](context *Context, pos vault.Bytes32) *Array[V] {
	return &Array[V]{
		context: context,
		basePos: pos,
		length:  NewUint64(context, pos),
	}
}

func (a *Array[V]) elemPos(index uint64) vault.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], index)
	return vault.Blake2b(a.basePos.Bytes(), b[:])
}

// Len returns the number of elements.
func (a *Array[V]) Len() (uint64, error) {
	return a.length.Get()
}

// Get returns the element at index. Index must be < Len.
func (a *Array[V]) Get(index uint64) (value V, err error) {
	length, err := a.Len()
	if err != nil {
		return value, err
	}
	if index >= length {
		return value, errors.Errorf("array index %d out of range %d", index, length)
	}
	err = a.context.state.DecodeStorage(a.elemPos(index), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set overwrites the element at index. Index must be < Len.
func (a *Array[V]) Set(index uint64, value V) error {
	length, err := a.Len()
	if err != nil {
		return err
	}
	if index >= length {
		return errors.Errorf("array index %d out of range %d", index, length)
	}
	return a.context.state.EncodeStorage(a.elemPos(index), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete clears the element storage at index without shrinking the array.
// A deleted slot decodes as the zero value.
func (a *Array[V]) Delete(index uint64) error {
	length, err := a.Len()
	if err != nil {
		return err
	}
	if index >= length {
		return errors.Errorf("array index %d out of range %d", index, length)
	}
	return a.context.state.EncodeStorage(a.elemPos(index), func() ([]byte, error) {
		return nil, nil
	})
}

// Clear deletes every element and resets the length to zero.
func (a *Array[V]) Clear() error {
	length, err := a.Len()
	if err != nil {
		return err
	}
	for i := uint64(0); i < length; i++ {
		if err := a.Delete(i); err != nil {
			return err
		}
	}
	a.length.Set(0)
	return nil
}

// Push appends an element and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	length, err := a.Len()
	if err != nil {
		return 0, err
	}
	if err := a.context.state.EncodeStorage(a.elemPos(length), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	}); err != nil {
		return 0, err
	}
	a.length.Set(length + 1)
	return length, nil
}
