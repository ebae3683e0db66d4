package websocket

import (
	"sync"

	"bidding-engine/pkg/logger"

	"github.com/gorilla/websocket"
)

type Connection struct {
	conn      *websocket.Conn
	userID    string
	auctionID string
	writeMu   sync.Mutex
	log       logger.Logger
}

func NewConnection(conn *websocket.Conn, userID, auctionID string, log logger.Logger) *Connection {
	return &Connection{
		conn:      conn,
		userID:    userID,
		auctionID: auctionID,
		log:       log,
	}
}

func (c *Connection) Send(message interface{}) error {
	// gorilla allows one concurrent writer per connection
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if raw, ok := message.([]byte); ok {
		return c.conn.WriteMessage(websocket.TextMessage, raw)
	}
	return c.conn.WriteJSON(message)
}

func (c *Connection) ReadJSON(v interface{}) error {
	return c.conn.ReadJSON(v)
}

func (c *Connection) Close() error {
	return c.conn.Close()
}

func (c *Connection) UserID() string {
	return c.userID
}

func (c *Connection) AuctionID() string {
	return c.auctionID
}
