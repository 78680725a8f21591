// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nftstake/vault/stackedmap"
)

func TestStackedMap(t *testing.T) {
	src := make(map[string]string)
	src["base"] = "base-value"

	sm := stackedmap.New(func(key any) (any, bool, error) {
		v, ok := src[key.(string)]
		return v, ok, nil
	})

	// read through to src
	v, ok, err := sm.Get("base")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "base-value", v)

	sm.Push()
	sm.Put("k1", "v1")
	v, ok, _ = sm.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	depth := sm.Push()
	sm.Put("k1", "v2")
	v, _, _ = sm.Get("k1")
	assert.Equal(t, "v2", v)

	sm.PopTo(depth)
	v, _, _ = sm.Get("k1")
	assert.Equal(t, "v1", v)

	sm.Pop()
	_, ok, _ = sm.Get("k1")
	assert.False(t, ok)
	assert.Equal(t, 0, sm.Depth())
}

func TestJournal(t *testing.T) {
	sm := stackedmap.New(func(_ any) (any, bool, error) {
		return nil, false, nil
	})

	sm.Push()
	sm.Put("a", 1)
	sm.Push()
	sm.Put("b", 2)
	sm.Put("a", 3)

	var keys []string
	sm.Journal(func(key, _ any) bool {
		keys = append(keys, key.(string))
		return true
	})
	assert.Equal(t, []string{"a", "b", "a"}, keys)

	// abandoned traversal
	n := 0
	sm.Journal(func(_, _ any) bool {
		n++
		return false
	})
	assert.Equal(t, 1, n)
}
