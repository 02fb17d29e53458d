// Copyright (c) 2025 The Credo developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package client

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/credo-network/credo/eventdb"
)

// ErrUnexpectedMsg is wrapped into an EventWrapper when a subscription
// stream breaks.
var ErrUnexpectedMsg = errors.New("unexpected message")

// EventWrapper carries one journal row or the error that ended the stream.
type EventWrapper struct {
	Data  *eventdb.Event
	Error error
}

// SubscribeEvents opens a websocket stream of journal rows. query uses the
// subscription endpoint's parameters (pos, claimID, kind). The
// channel closes when the stream ends; close the subscription by draining
// after the node goes away, or abandon the channel and let the node's ping
// cycle reap the connection.
func (c *Client) SubscribeEvents(query string) (<-chan EventWrapper, error) {
	conn, err := c.connectWS("/subscriptions/event", query)
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}

	eventChan := make(chan EventWrapper)

	go func() {
		defer close(eventChan)
		defer conn.Close()

		for {
			var ev eventdb.Event
			if err := conn.ReadJSON(&ev); err != nil {
				eventChan <- EventWrapper{Error: fmt.Errorf("%w: %w", ErrUnexpectedMsg, err)}
				return
			}
			eventChan <- EventWrapper{Data: &ev}
		}
	}()

	return eventChan, nil
}

func (c *Client) connectWS(endpoint, rawQuery string) (*websocket.Conn, error) {
	scheme := "ws"
	host := c.url
	switch {
	case strings.HasPrefix(host, "https://"):
		scheme = "wss"
		host = strings.TrimPrefix(host, "https://")
	case strings.HasPrefix(host, "http://"):
		host = strings.TrimPrefix(host, "http://")
	default:
		return nil, fmt.Errorf("invalid url %q", c.url)
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     endpoint,
		RawQuery: rawQuery,
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
