// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cell

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/nftstake/vault/vault"
)

// Key of a Mapping entry.
type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction, similar to the mapping in Solidity.
// Entry positions are derived as Blake2b(key, basePos), so distinct mappings with
// distinct base positions never collide.
type Mapping[K Key, V any] struct {
	context *Context
	basePos vault.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos vault.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

// Get returns the stored value, or the zero value for absent entries.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	position := vault.Blake2b(key.Bytes(), m.basePos.Bytes())
	err = m.context.state.DecodeStorage(position, func(raw []byte) error {
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

func (m *Mapping[K, V]) Set(key K, value V) error {
	position := vault.Blake2b(key.Bytes(), m.basePos.Bytes())
	return m.context.state.EncodeStorage(position, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete removes the entry for the given key.
func (m *Mapping[K, V]) Delete(key K) error {
	position := vault.Blake2b(key.Bytes(), m.basePos.Bytes())
	return m.context.state.EncodeStorage(position, func() ([]byte, error) {
		return nil, nil
	})
}
