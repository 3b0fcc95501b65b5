package wsclient

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the part of a websocket connection the supervisor reads from.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	Close() error
}

// Dialer opens websocket connections.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// GorillaDialer dials with gorilla/websocket.
type GorillaDialer struct {
	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
	Header http.Header
	// ReadTimeout bounds the wait for the next frame. Zero waits forever.
	ReadTimeout time.Duration
}

func (d GorillaDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, url, d.Header)
	if err != nil {
		return nil, err
	}
	if d.ReadTimeout <= 0 {
		return conn, nil
	}

	// Server pings extend the deadline so idle but healthy feeds survive.
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(d.ReadTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(10*time.Second))
	})
	return &deadlineConn{Conn: conn, timeout: d.ReadTimeout}, nil
}

type deadlineConn struct {
	*websocket.Conn
	timeout time.Duration
}

func (c *deadlineConn) ReadMessage() (int, []byte, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, nil, err
	}
	return c.Conn.ReadMessage()
}
