// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"io"

	"github.com/pkg/errors"

	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/kv"
	"github.com/credo-network/credo/lvldb"
	"github.com/credo-network/credo/state"
)

// Builder helper to build genesis state.
type Builder struct {
	timestamp uint64

	stateProcs []func(st *state.State) error
}

// Timestamp set the genesis launch time.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process function.
func (b *Builder) State(proc func(st *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Build runs all state process functions against st and commits the result.
func (b *Builder) Build(st *state.State) error {
	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return errors.Wrap(err, "state process")
		}
	}
	return st.Commit()
}

// ComputeID derives the genesis ID by building the state into a throwaway
// store and hashing every key/value pair it produced, plus the launch time.
// Two builders that write the same state at the same time produce the same ID.
func (b *Builder) ComputeID() (credo.Bytes32, error) {
	store, err := lvldb.NewMem()
	if err != nil {
		return credo.Bytes32{}, err
	}
	defer store.Close()

	if err := b.Build(state.New(store)); err != nil {
		return credo.Bytes32{}, err
	}

	var hashErr error
	id := credo.Blake2bFn(func(w io.Writer) {
		var b8 [8]byte
		for i := range b8 {
			b8[7-i] = byte(b.timestamp >> (8 * i))
		}
		w.Write(b8[:])

		iter := store.NewIterator(kv.Range{})
		defer iter.Release()
		for iter.Next() {
			w.Write(iter.Key())
			w.Write(iter.Value())
		}
		hashErr = iter.Error()
	})
	if hashErr != nil {
		return credo.Bytes32{}, hashErr
	}
	return id, nil
}
