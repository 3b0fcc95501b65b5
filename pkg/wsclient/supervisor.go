// Package wsclient keeps one websocket endpoint streaming into a handler,
// reconnecting after a fixed delay whenever the connection fails.
package wsclient

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"wslogger/pkg/router"
)

// DefaultReconnectDelay is the pause between a lost connection and the next dial.
const DefaultReconnectDelay = time.Second

// Handler consumes text frames in the order they arrive.
type Handler interface {
	Handle(msg []byte) router.Action
}

// State is the lifecycle position of a Supervisor.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Options configures a Supervisor. Zero values select the defaults.
type Options struct {
	ReconnectDelay time.Duration
	Dialer         Dialer
	// Wait pauses for d and reports false if ctx ended first.
	Wait   func(ctx context.Context, d time.Duration) bool
	Logger *slog.Logger
}

// Supervisor owns the connect, stream, reconnect loop of one endpoint.
type Supervisor struct {
	url     string
	handler Handler
	delay   time.Duration
	dialer  Dialer
	wait    func(ctx context.Context, d time.Duration) bool
	logger  *slog.Logger

	state    atomic.Int32
	attempts atomic.Int64
}

// NewSupervisor creates a Supervisor for url.
func NewSupervisor(url string, h Handler, opts Options) *Supervisor {
	s := &Supervisor{
		url:     url,
		handler: h,
		delay:   opts.ReconnectDelay,
		dialer:  opts.Dialer,
		wait:    opts.Wait,
		logger:  opts.Logger,
	}
	if s.delay <= 0 {
		s.delay = DefaultReconnectDelay
	}
	if s.dialer == nil {
		s.dialer = GorillaDialer{}
	}
	if s.wait == nil {
		s.wait = sleep
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("url", url)
	return s
}

// URL returns the endpoint address.
func (s *Supervisor) URL() string { return s.url }

// State returns the current lifecycle state.
func (s *Supervisor) State() State { return State(s.state.Load()) }

// Attempts returns the number of dials made so far.
func (s *Supervisor) Attempts() int64 { return s.attempts.Load() }

// Run streams until ctx is done. Connection failures of any kind are logged
// and retried after the reconnect delay; Run itself always returns nil.
func (s *Supervisor) Run(ctx context.Context) error {
	defer s.setState(StateStopped)

	for ctx.Err() == nil {
		s.setState(StateConnecting)
		s.attempts.Add(1)

		conn, err := s.dialer.Dial(ctx, s.url)
		if err != nil {
			s.logger.Info("connect failed", "error", err)
		} else {
			s.setState(StateConnected)
			session := uuid.NewString()
			s.logger.Info("connected", "session", session)
			err = s.stream(ctx, conn)
			s.logger.Info("connection closed", "session", session, "error", err)
		}

		if ctx.Err() != nil {
			break
		}
		s.setState(StateReconnecting)
		if !s.wait(ctx, s.delay) {
			break
		}
		s.logger.Info("reconnecting")
	}
	return nil
}

// stream hands every text frame to the handler until the read fails.
func (s *Supervisor) stream(ctx context.Context, conn Conn) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()
	defer conn.Close()

	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if typ != websocket.TextMessage {
			s.logger.Debug("ignoring non-text frame", "type", typ, "bytes", len(data))
			continue
		}
		s.handler.Handle(data)
	}
}

func (s *Supervisor) setState(st State) {
	s.state.Store(int32(st))
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
