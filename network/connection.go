package network

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	helloWait      = 10 * time.Second
	maxMessageSize = 1 << 20
	sendBuffer     = 256
)

var (
	ErrSendBufferFull = errors.New("send buffer full")
	ErrConnClosed     = errors.New("connection closed")
)

type frame struct {
	kind int
	data []byte
}

// Connection wraps a websocket with a buffered outgoing queue. Send never
// blocks: the room goroutine writes into the queue and WritePump drains it.
type Connection struct {
	ws        *websocket.Conn
	send      chan frame
	done      chan struct{}
	closeOnce sync.Once
	log       *zap.Logger
}

func NewConnection(ws *websocket.Conn, log *zap.Logger) *Connection {
	if log == nil {
		log = zap.NewNop()
	}
	ws.SetReadLimit(maxMessageSize)
	return &Connection{
		ws:   ws,
		send: make(chan frame, sendBuffer),
		done: make(chan struct{}),
		log:  log,
	}
}

// Send queues a text frame. A full queue drops the frame.
func (c *Connection) Send(b []byte) error {
	return c.enqueue(frame{kind: websocket.TextMessage, data: b})
}

// SendBinary queues a binary frame.
func (c *Connection) SendBinary(b []byte) error {
	return c.enqueue(frame{kind: websocket.BinaryMessage, data: b})
}

func (c *Connection) enqueue(f frame) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- f:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close asks WritePump to flush queued frames and shut the socket down.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// Done is closed once Close has been called.
func (c *Connection) Done() <-chan struct{} { return c.done }

// ReadPump delivers each incoming message to handle until the socket fails.
func (c *Connection) ReadPump(handle func(msg []byte)) {
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Debug("read failed", zap.Error(err))
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		handle(msg)
	}
}

// ReadFirst reads one message with a short deadline.
func (c *Connection) ReadFirst() ([]byte, error) {
	_ = c.ws.SetReadDeadline(time.Now().Add(helloWait))
	_, msg, err := c.ws.ReadMessage()
	return msg, err
}

// WritePump owns all writes to the socket, including pings.
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case f := <-c.send:
			if err := c.write(f); err != nil {
				c.log.Debug("write failed", zap.Error(err))
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			c.flush()
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Connection) flush() {
	for {
		select {
		case f := <-c.send:
			if err := c.write(f); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Connection) write(f frame) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(f.kind, f.data)
}
