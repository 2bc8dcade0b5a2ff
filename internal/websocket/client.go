package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client is one open admin page. Pages only listen, so the read side is
// left to CloseRead and Serve runs the write side alone.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	send   chan []byte
	remote string
}

func NewClient(hub *Hub, conn *ws.Conn, remote string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		remote: remote,
	}
}

// Serve registers the client and forwards hub messages until the page goes
// away, a write fails or the hub drops the client.
func (c *Client) Serve(ctx context.Context) error {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	// A data message from the page closes the connection with a policy
	// violation and cancels ctx.
	ctx = c.conn.CloseRead(ctx)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return c.conn.Close(ws.StatusGoingAway, "")
			}
			if err := c.write(ctx, msg); err != nil {
				return err
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, msg)
}
