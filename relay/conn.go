package relay

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is a client-side connection to the relay hub for one table.
type Conn struct {
	tableID  string
	clientID string

	writeMu sync.Mutex
	ws      *websocket.Conn

	closeOnce sync.Once
}

// Dial connects to the relay at addr (host:port) and joins the table room.
func Dial(addr, tableID, clientID string) (*Conn, error) {
	u := url.URL{
		Scheme:   "ws",
		Host:     addr,
		Path:     "/ws",
		RawQuery: url.Values{"table": {tableID}, "client": {clientID}}.Encode(),
	}
	ws, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("relay: dial %s: %w", u.String(), err)
	}
	return &Conn{tableID: tableID, clientID: clientID, ws: ws}, nil
}

// Publish sends one shared-key update. The value must already be
// JSON-encoded.
func (c *Conn) Publish(key string, value json.RawMessage) error {
	msg := Message{
		Type:     TypeSet,
		TableID:  c.tableID,
		ClientID: c.clientID,
		Key:      key,
		Value:    value,
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("relay: publish %s: %w", key, err)
	}
	return nil
}

// Receive blocks until the next shared-key update arrives.
func (c *Conn) Receive() (Message, error) {
	var msg Message
	if err := c.ws.ReadJSON(&msg); err != nil {
		return Message{}, fmt.Errorf("relay: receive: %w", err)
	}
	return msg, nil
}

// Close shuts the connection down.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.ws.Close()
	})
	return err
}
