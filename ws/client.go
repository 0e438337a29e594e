package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"civiclens-be/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one dashboard connection. It only receives.
type Client struct {
	conn      *websocket.Conn
	hub       *Hub
	user      string
	send      chan []byte
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, hub *Hub, user string) *Client {
	return &Client{
		conn: conn,
		hub:  hub,
		user: user,
		send: make(chan []byte, 16),
	}
}

// Serve registers the client and blocks until the connection ends.
func (c *Client) Serve() {
	if !c.hub.Register(c) {
		c.close()
		return
	}
	go c.writePump()
	c.readPump()
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}

func (c *Client) readPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("ws: read pump panic: %v", r)
		}
		c.hub.Unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(4 * 1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.WithField("user", c.user).Debugf("ws: connection closed: %v", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("ws: write pump panic: %v", r)
		}
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
