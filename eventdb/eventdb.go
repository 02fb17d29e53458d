package eventdb

import (
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/credo-network/credo/credo"
)

const eventTableSchema = `
create table if not exists event (
	seq integer primary key,
	kind text not null,
	claimID blob(32),
	depositor blob(20),
	addrFrom blob(20),
	addrTo blob(20),
	recipient blob(20),
	amount blob,
	timestamp decimal(20,0),
	opTime decimal(20,0)
);

CREATE INDEX if not exists kindIndex on event(kind);
CREATE INDEX if not exists claimIndex on event(claimID);
CREATE INDEX if not exists depositorIndex on event(depositor);
CREATE INDEX if not exists opTimeIndex on event(opTime);
`

// EventDB manages the journal of committed ledger operations.
type EventDB struct {
	path          string
	db            *sql.DB
	stmts         *stmtCache
	sqliteVersion string
}

// New opens an event db at path.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		db.Close()
		return nil, err
	}
	s, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		stmts:         newStmtCache(db),
		sqliteVersion: s,
	}, nil
}

// NewMem creates an in-memory event db.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Insert writes events in one transaction. Sequence numbers are assigned by
// the caller.
func (db *EventDB) Insert(events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for _, event := range events {
		if _, err = tx.Exec("INSERT OR REPLACE INTO event(seq, kind, claimID, depositor, addrFrom, addrTo, recipient, amount, timestamp, opTime) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
			event.Seq,
			string(event.Kind),
			bytes32Value(event.ClaimID),
			addressValue(event.Depositor),
			addressValue(event.From),
			addressValue(event.To),
			addressValue(event.Recipient),
			amountValue(event.Amount),
			event.Timestamp,
			event.OpTime); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// MaxSeq returns the highest assigned sequence number, 0 when the journal is
// empty.
func (db *EventDB) MaxSeq() (uint64, error) {
	var seq uint64
	if err := db.db.QueryRow("SELECT coalesce(max(seq), 0) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

// Filter returns events matching the filter, all events when nil.
func (db *EventDB) Filter(filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.query("SELECT * FROM event ORDER BY seq ASC")
	}
	var args []interface{}
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Range != nil {
		condition := "seq"
		if filter.Range.Unit == Time {
			condition = "opTime"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ? "
		}
	}
	if len(filter.Kinds) > 0 {
		stmt += " AND kind IN ("
		for i, kind := range filter.Kinds {
			if i > 0 {
				stmt += ","
			}
			stmt += "?"
			args = append(args, string(kind))
		}
		stmt += ") "
	}
	if filter.ClaimID != nil {
		args = append(args, filter.ClaimID.Bytes())
		stmt += " AND claimID = ? "
	}
	if filter.Depositor != nil {
		args = append(args, filter.Depositor.Bytes())
		stmt += " AND depositor = ? "
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(stmt, args...)
}

// query runs stmt through the prepared-statement cache.
func (db *EventDB) query(stmt string, args ...interface{}) ([]*Event, error) {
	prepared, err := db.stmts.Prepare(stmt)
	if err != nil {
		return nil, err
	}
	rows, err := prepared.Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			seq       uint64
			kind      string
			claimID   []byte
			depositor []byte
			addrFrom  []byte
			addrTo    []byte
			recipient []byte
			amount    []byte
			timestamp uint64
			opTime    uint64
		)
		if err := rows.Scan(
			&seq,
			&kind,
			&claimID,
			&depositor,
			&addrFrom,
			&addrTo,
			&recipient,
			&amount,
			&timestamp,
			&opTime,
		); err != nil {
			return nil, err
		}
		event := &Event{
			Seq:       seq,
			Kind:      Kind(kind),
			Timestamp: timestamp,
			OpTime:    opTime,
		}
		if len(claimID) > 0 {
			id := credo.BytesToBytes32(claimID)
			event.ClaimID = &id
		}
		if len(depositor) > 0 {
			a := credo.BytesToAddress(depositor)
			event.Depositor = &a
		}
		if len(addrFrom) > 0 {
			a := credo.BytesToAddress(addrFrom)
			event.From = &a
		}
		if len(addrTo) > 0 {
			a := credo.BytesToAddress(addrTo)
			event.To = &a
		}
		if len(recipient) > 0 {
			a := credo.BytesToAddress(recipient)
			event.Recipient = &a
		}
		// a zero amount is stored as an empty blob, distinct from NULL
		if amount != nil {
			event.Amount = new(big.Int).SetBytes(amount)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Path returns the db path.
func (db *EventDB) Path() string {
	return db.path
}

// Close closes the db.
func (db *EventDB) Close() {
	db.stmts.Clear()
	db.db.Close()
}
