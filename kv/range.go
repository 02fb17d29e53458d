// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Range describes key range of iteration.
type Range struct {
	From []byte // the key to start iteration (included)
	To   []byte // the key to end iteration (excluded)
}

// NewRangeWithBytesPrefix create a range defined by bytes prefix.
func NewRangeWithBytesPrefix(prefix []byte) Range {
	from := make([]byte, len(prefix))
	copy(from, prefix)

	to := make([]byte, len(prefix))
	copy(to, prefix)
	for i := len(to) - 1; i >= 0; i-- {
		to[i]++
		if to[i] != 0 {
			return Range{from, to}
		}
		to = to[:i]
	}
	// all 0xff prefix, iterate to the end
	return Range{From: from, To: nil}
}
