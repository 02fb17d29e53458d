// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/eventdb"
)

// readBatch rows are pulled per poll; a full batch means more may be waiting.
const readBatch = 256

// eventReader walks the journal forward from a position, applying the
// subscriber's filter. Read never blocks; the caller decides when to poll
// again.
type eventReader struct {
	db       *eventdb.EventDB
	claimID  *credo.Bytes32
	kinds    []eventdb.Kind
	position uint64
}

func newEventReader(db *eventdb.EventDB, position uint64, claimID *credo.Bytes32, kinds []eventdb.Kind) *eventReader {
	return &eventReader{
		db:       db,
		claimID:  claimID,
		kinds:    kinds,
		position: position,
	}
}

// Read returns journal rows past the current position and whether a full
// batch came back, which hints at more rows being immediately available.
func (r *eventReader) Read() ([]*eventdb.Event, bool, error) {
	rows, err := r.db.Filter(&eventdb.Filter{
		Kinds:   r.kinds,
		ClaimID: r.claimID,
		Range:   &eventdb.Range{Unit: eventdb.Seq, From: r.position + 1},
		Options: &eventdb.Options{Limit: readBatch},
	})
	if err != nil {
		return nil, false, err
	}
	if len(rows) > 0 {
		r.position = rows[len(rows)-1].Seq
	}
	return rows, len(rows) == readBatch, nil
}
