package net

import (
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one client connection, independent of transport. TCP clients use
// length-prefixed frames; websocket clients use binary messages. Both carry
// identical payloads.
type Conn interface {
	// ReadMessage blocks until one whole message payload is available.
	ReadMessage() ([]byte, error)
	// WriteMessage writes one whole message payload before deadline.
	WriteMessage(data []byte, deadline time.Time) error
	Close() error
	RemoteAddr() string
}

type tcpConn struct {
	conn net.Conn
}

// NewTCPConn wraps a raw TCP connection with the frame codec.
func NewTCPConn(c net.Conn) Conn {
	return &tcpConn{conn: c}
}

func (c *tcpConn) ReadMessage() ([]byte, error) {
	return ReadFrame(c.conn)
}

func (c *tcpConn) WriteMessage(data []byte, deadline time.Time) error {
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return WriteFrame(c.conn, data)
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

func (c *tcpConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

type wsConn struct {
	conn *websocket.Conn
}

// NewWSConn wraps an upgraded websocket connection. Websocket does its own
// framing, so payloads travel as binary messages without the 2-byte header.
func NewWSConn(c *websocket.Conn) Conn {
	return &wsConn{conn: c}
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if mt != websocket.BinaryMessage {
			// Text/control noise from the client is not part of the
			// protocol; skip it rather than kill the connection.
			continue
		}
		return data, nil
	}
}

func (c *wsConn) WriteMessage(data []byte, deadline time.Time) error {
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
