// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/lvldb"
)

func M(a ...interface{}) []interface{} {
	return a
}

func TestStorage(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := New(kv)

	addr := credo.BytesToAddress([]byte("vault"))
	key := credo.BytesToBytes32([]byte("key"))
	value := credo.BytesToBytes32([]byte("value"))

	// unset storage reads zero
	assert.Equal(t, M(credo.Bytes32{}, nil), M(st.GetStorage(addr, key)))

	st.SetStorage(addr, key, value)
	assert.Equal(t, M(value, nil), M(st.GetStorage(addr, key)))

	// zero value clears the slot
	st.SetStorage(addr, key, credo.Bytes32{})
	assert.Equal(t, M(credo.Bytes32{}, nil), M(st.GetStorage(addr, key)))

	raw, err := st.GetRawStorage(addr, key)
	assert.Nil(t, err)
	assert.Zero(t, len(raw))
}

func TestEncodeDecodeStorage(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := New(kv)

	addr := credo.BytesToAddress([]byte("vault"))
	key := credo.BytesToBytes32([]byte("counter"))

	type record struct {
		Count  uint64
		Staker credo.Address
	}

	saved := record{42, credo.BytesToAddress([]byte("staker"))}
	err := st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&saved)
	})
	assert.Nil(t, err)

	var loaded record
	err = st.DecodeStorage(addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &loaded)
	})
	assert.Nil(t, err)
	assert.Equal(t, saved, loaded)
}

func TestCheckpointRevert(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := New(kv)

	addr := credo.BytesToAddress([]byte("vault"))
	key := credo.BytesToBytes32([]byte("slot"))
	v1 := credo.BytesToBytes32([]byte("v1"))
	v2 := credo.BytesToBytes32([]byte("v2"))

	st.SetStorage(addr, key, v1)

	rev := st.NewCheckpoint()
	st.SetStorage(addr, key, v2)
	assert.Equal(t, M(v2, nil), M(st.GetStorage(addr, key)))

	st.RevertTo(rev)
	assert.Equal(t, M(v1, nil), M(st.GetStorage(addr, key)))
}

func TestCommitAndReopen(t *testing.T) {
	kv, _ := lvldb.NewMem()

	addr := credo.BytesToAddress([]byte("vault"))
	key := credo.BytesToBytes32([]byte("slot"))
	value := credo.BytesToBytes32([]byte("value"))

	st := New(kv)
	st.SetStorage(addr, key, value)
	assert.Nil(t, st.Commit())

	// a fresh state over the same kv sees committed values
	st2 := New(kv)
	assert.Equal(t, M(value, nil), M(st2.GetStorage(addr, key)))

	// uncommitted changes do not survive reopen
	st2.SetStorage(addr, key, credo.BytesToBytes32([]byte("other")))
	st3 := New(kv)
	assert.Equal(t, M(value, nil), M(st3.GetStorage(addr, key)))
}

func TestRevertedChangesNotCommitted(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := New(kv)

	addr := credo.BytesToAddress([]byte("vault"))
	keep := credo.BytesToBytes32([]byte("keep"))
	drop := credo.BytesToBytes32([]byte("drop"))

	st.SetStorage(addr, keep, credo.BytesToBytes32([]byte("v")))

	rev := st.NewCheckpoint()
	st.SetStorage(addr, drop, credo.BytesToBytes32([]byte("x")))
	st.RevertTo(rev)

	assert.Nil(t, st.Commit())

	st2 := New(kv)
	assert.Equal(t, M(credo.BytesToBytes32([]byte("v")), nil), M(st2.GetStorage(addr, keep)))
	assert.Equal(t, M(credo.Bytes32{}, nil), M(st2.GetStorage(addr, drop)))
}

func TestStorageFuzz(t *testing.T) {
	kv, _ := lvldb.NewMem()
	st := New(kv)

	f := fuzz.New().NilChance(0)
	shadow := make(map[storageKey]credo.Bytes32)

	addr := credo.BytesToAddress([]byte("addr"))
	for range 200 {
		var key, value credo.Bytes32
		f.Fuzz(&key)
		f.Fuzz(&value)

		st.SetStorage(addr, key, value)
		shadow[storageKey{addr, key}] = value
	}
	assert.Nil(t, st.Commit())

	st2 := New(kv)
	for k, want := range shadow {
		assert.Equal(t, M(want, nil), M(st2.GetStorage(k.addr, k.key)))
	}
}
