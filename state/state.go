// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/credo-network/credo/cache"
	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/kv"
	"github.com/credo-network/credo/stackedmap"
)

// storagePrefix leads every persisted storage key.
var storagePrefix = []byte("s")

const readCacheSize = 16384

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// State manages a persistent storage state of address/key slots.
// All changes are journaled in memory until Commit.
type State struct {
	kv    kv.GetPutter
	sm    *stackedmap.StackedMap // keeps revisions of storage values
	cache *cache.LRU             // read-through cache of persisted values
}

// New create state object over the given key-value store.
func New(kv kv.GetPutter) *State {
	readCache, _ := cache.NewLRU(readCacheSize)

	state := State{
		kv:    kv,
		cache: readCache,
	}
	state.sm = stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		return state.cacheGetter(key.(storageKey))
	})
	return &state
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key storageKey) (interface{}, bool, error) {
	raw, err := s.cache.GetOrLoad(key, func(interface{}) (interface{}, error) {
		data, err := s.kv.Get(key.persistKey())
		if err != nil {
			if s.kv.IsNotFound(err) {
				return rlp.RawValue(nil), nil
			}
			return nil, err
		}
		return rlp.RawValue(data), nil
	})
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr credo.Address, key credo.Bytes32) (credo.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return credo.Bytes32{}, err
	}
	if len(raw) == 0 {
		return credo.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return credo.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return credo.Blake2b(raw), nil
	}
	return credo.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr credo.Address, key, value credo.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr credo.Address, key credo.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr credo.Address, key credo.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr credo.Address, key credo.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr credo.Address, key credo.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
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

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit flushes journaled changes into the key-value store in one batch,
// then resets the journal. The read cache is only updated once the batch
// is on disk, so a failed flush leaves cache and store consistent and the
// journal intact for a revert or a retry.
func (s *State) Commit() error {
	batch := s.kv.NewBatch()

	var jerr error
	s.sm.Journal(func(k, v interface{}) bool {
		key := k.(storageKey)
		raw := v.(rlp.RawValue)

		if len(raw) == 0 {
			jerr = batch.Delete(key.persistKey())
		} else {
			jerr = batch.Put(key.persistKey(), raw)
		}
		return jerr == nil
	})
	if jerr != nil {
		return &Error{jerr}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	s.sm.Journal(func(k, v interface{}) bool {
		s.cache.Add(k.(storageKey), v.(rlp.RawValue))
		return true
	})

	// start over with a clean journal
	s.sm.PopTo(0)
	s.sm.Push()
	return nil
}

// CacheStats returns the hit/miss stats of the read cache and whether
// the hit rate changed since the last call.
func (s *State) CacheStats() (bool, int64, int64) {
	return s.cache.Stats()
}

type storageKey struct {
	addr credo.Address
	key  credo.Bytes32
}

func (k storageKey) persistKey() []byte {
	b := make([]byte, 0, len(storagePrefix)+len(k.addr)+len(k.key))
	b = append(b, storagePrefix...)
	b = append(b, k.addr[:]...)
	b = append(b, k.key[:]...)
	return b
}
