// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/nftstake/vault/kv"
	"github.com/nftstake/vault/stackedmap"
	"github.com/nftstake/vault/vault"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// State provides journaled structured storage over a kv store.
//
// All writes land in an in-memory journal first. NewCheckpoint/RevertTo
// give save-restore semantics within one operation, and Commit drains the
// whole journal into a single atomic kv batch.
type State struct {
	store kv.Store
	sm    *stackedmap.StackedMap
}

// storageKey distinguishes storage entries in the journal.
type storageKey vault.Bytes32

// New creates a state object backed by the given store.
func New(store kv.Store) *State {
	state := &State{store: store}
	state.sm = stackedmap.New(state.cacheGetter)
	// the base layer collecting committed-but-unflushed writes
	state.sm.Push()
	return state
}

// cacheGetter reads through to the underlying store.
func (s *State) cacheGetter(key any) (any, bool, error) {
	k := key.(storageKey)
	raw, err := s.store.Get(vault.Bytes32(k).Bytes())
	if err != nil {
		if s.store.IsNotFound(err) {
			return rlp.RawValue(nil), true, nil
		}
		return nil, false, &Error{err}
	}
	return rlp.RawValue(raw), true, nil
}

// GetRawStorage returns storage value in rlp raw for given key.
func (s *State) GetRawStorage(key vault.Bytes32) (rlp.RawValue, error) {
	raw, _, err := s.sm.Get(storageKey(key))
	if err != nil {
		return nil, err
	}
	return raw.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(key vault.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey(key), raw)
}

// GetStorage returns storage value for the given key.
func (s *State) GetStorage(key vault.Bytes32) (vault.Bytes32, error) {
	raw, err := s.GetRawStorage(key)
	if err != nil {
		return vault.Bytes32{}, err
	}
	if len(raw) == 0 {
		return vault.Bytes32{}, nil
	}
	_, content, _, err := rlp.Split(raw)
	if err != nil {
		return vault.Bytes32{}, &Error{err}
	}
	return vault.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given key.
// Setting the zero value removes the entry.
func (s *State) SetStorage(key, value vault.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value.Bytes(), "\x00"))
	s.SetRawStorage(key, v)
}

// EncodeStorage set storage value encoded by given enc method.
// An empty encoded value removes the entry.
func (s *State) EncodeStorage(key vault.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// The dec method is called with nil raw when the entry is absent.
func (s *State) DecodeStorage(key vault.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts state to the given revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit drains the journal into one atomic batch of the underlying store.
func (s *State) Commit() error {
	batch := s.store.NewBatch()
	s.sm.Journal(func(key, value any) bool {
		k := vault.Bytes32(key.(storageKey))
		raw := value.(rlp.RawValue)
		if len(raw) == 0 {
			_ = batch.Delete(k.Bytes())
		} else {
			_ = batch.Put(k.Bytes(), raw)
		}
		return true
	})
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	// restart the journal on top of the flushed store
	s.sm = stackedmap.New(s.cacheGetter)
	s.sm.Push()
	return nil
}
