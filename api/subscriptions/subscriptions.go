// Copyright (c) 2025 The Credo developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/credo-network/credo/api/restutil"
	"github.com/credo-network/credo/co"
	"github.com/credo-network/credo/credo"
	"github.com/credo-network/credo/eventdb"
	"github.com/credo-network/credo/runtime"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

var log = log15.New("pkg", "subscriptions")

// Subscriptions streams committed journal events over websocket.
type Subscriptions struct {
	rt       *runtime.Runtime
	db       *eventdb.EventDB
	upgrader *websocket.Upgrader
	done     chan struct{}
	goes     co.Goes
}

func New(rt *runtime.Runtime, db *eventdb.EventDB, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		rt: rt,
		db: db,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(req *http.Request) bool {
				origin := req.Header.Get("Origin")
				if origin == "" {
					return true
				}
				origin = strings.ToLower(origin)
				for _, allowed := range allowedOrigins {
					if allowed == "*" || origin == strings.ToLower(allowed) {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	reader, err := s.parseEventReader(req)
	if err != nil {
		return restutil.BadRequest(err)
	}

	conn, closed, err := s.setupConn(w, req)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := s.pipe(conn, reader, closed); err != nil {
		log.Debug("event subscription closed", "remote", req.RemoteAddr, "err", err)
	}
	return nil
}

// parseEventReader builds the reader from query parameters: pos is the seq
// to resume after (defaults to the journal head, so only new events flow),
// claimID and kind narrow the stream.
func (s *Subscriptions) parseEventReader(req *http.Request) (*eventReader, error) {
	query := req.URL.Query()

	position, err := s.db.MaxSeq()
	if err != nil {
		return nil, err
	}
	if pos := query.Get("pos"); pos != "" {
		position, err = strconv.ParseUint(pos, 10, 64)
		if err != nil {
			return nil, errors.WithMessage(err, "pos")
		}
	}

	var claimID *credo.Bytes32
	if cid := query.Get("claimID"); cid != "" {
		parsed, err := credo.ParseBytes32(cid)
		if err != nil {
			return nil, errors.WithMessage(err, "claimID")
		}
		claimID = &parsed
	}

	var kinds []eventdb.Kind
	for _, kind := range query["kind"] {
		kinds = append(kinds, eventdb.Kind(kind))
	}

	return newEventReader(s.db, position, claimID, kinds), nil
}

// setupConn upgrades the request and starts the read pump that detects the
// peer going away.
func (s *Subscriptions) setupConn(w http.ResponseWriter, req *http.Request) (*websocket.Conn, chan struct{}, error) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, nil, err
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	closed := make(chan struct{})
	s.goes.Go(func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	return conn, closed, nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader *eventReader, closed chan struct{}) error {
	ticker := s.rt.NewTicker()
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		rows, hasMore, err := reader.Read()
		if err != nil {
			return err
		}
		for _, row := range rows {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(row); err != nil {
				return err
			}
		}
		if hasMore {
			continue
		}
		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case <-ticker.C():
		}
	}
}

// Close terminates all live subscriptions. Websocket connections are
// hijacked, so the http server's shutdown does not cover them.
func (s *Subscriptions) Close() {
	close(s.done)
	s.goes.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("subscriptions_event").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeEvents))
}
