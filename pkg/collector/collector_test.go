package collector

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"wslogger/pkg/config"
	"wslogger/pkg/sink"
	"wslogger/pkg/wsclient"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type lineSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *lineSink) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, string(data))
	return nil
}

func (s *lineSink) Close() error { return nil }

func (s *lineSink) get() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

type refusingDialer struct{}

func (refusingDialer) Dial(ctx context.Context, url string) (wsclient.Conn, error) {
	return nil, errors.New("connection refused")
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func feedServer(t *testing.T, frames ...string) (*httptest.Server, func()) {
	release := make(chan struct{})
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		<-release
	}))
	return srv, func() {
		close(release)
		srv.Close()
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newConfig(targets ...string) *config.Config {
	cfg := &config.Config{Targets: targets}
	cfg.ApplyDefaults()
	return cfg
}

func TestEndToEndFilteredPrintLogged(t *testing.T) {
	srv, stop := feedServer(t, "TICK 100", "TRADE 50")
	defer stop()

	dir := t.TempDir()
	cfg := newConfig(wsURL(srv))
	cfg.Folders = []string{dir}
	cfg.ListenFor = []string{"TRADE"}
	cfg.PrintLogged = true
	require.NoError(t, cfg.Validate())

	var console syncBuffer
	mirror := &lineSink{}
	day := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	c, err := New(context.Background(), cfg,
		WithLogger(quietLogger),
		WithConsole(sink.NewWriterSink(&console)),
		WithClock(func() time.Time { return day }),
		WithMirrors(mirror),
	)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return console.String() != "" }, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}

	data, err := os.ReadFile(filepath.Join(dir, "2024-03-09.log"))
	require.NoError(t, err)
	require.Equal(t, "TRADE 50\n", string(data))
	require.Equal(t, "TRADE 50\n", console.String())
	require.Equal(t, []string{"TRADE 50"}, mirror.get())
}

func TestSharedTargetsShareOneFile(t *testing.T) {
	dir := t.TempDir()
	cfg := newConfig("ws://a", "ws://b", "ws://c")
	cfg.Folders = []string{dir}
	cfg.Prefixes = []string{"x-", "x-", "y-"}
	cfg.Shared = true
	require.NoError(t, cfg.Validate())

	c, err := New(context.Background(), cfg, WithLogger(quietLogger), WithDialer(refusingDialer{}))
	require.NoError(t, err)
	defer c.Close()

	require.Len(t, c.Files(), 2)
	conns := c.Connections()
	require.Len(t, conns, 3)
	require.Same(t, conns[0].File, conns[1].File)
	require.NotSame(t, conns[0].File, conns[2].File)
	require.True(t, conns[0].Filter.All())
}

func TestNewFailsWhenFolderCannotBeCreated(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	cfg := newConfig("ws://a")
	cfg.Folders = []string{filepath.Join(blocker, "logs")}

	_, err := New(context.Background(), cfg, WithLogger(quietLogger))
	require.Error(t, err)
	require.True(t, sink.IsPersistError(err))
}

func TestRunStopsOnRotationFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	cfg := newConfig("ws://a", "ws://b")
	cfg.Folders = []string{dir}
	cfg.Prefixes = []string{"a-", "b-"}
	cfg.RotationInterval = 5 * time.Millisecond
	cfg.ReconnectDelay = 5 * time.Millisecond
	require.NoError(t, cfg.Validate())

	clk := &clock{t: time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC)}
	c, err := New(context.Background(), cfg,
		WithLogger(quietLogger),
		WithClock(clk.Now),
		WithDialer(refusingDialer{}),
	)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, nil, 0644))
	clk.Set(clk.Now().Add(time.Minute))

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
		require.True(t, sink.IsPersistError(err))
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop on rotation failure")
	}
}

func TestRunRotatesAtMidnight(t *testing.T) {
	dir := t.TempDir()
	cfg := newConfig("ws://a")
	cfg.Folders = []string{dir}
	cfg.RotationInterval = 5 * time.Millisecond
	cfg.ReconnectDelay = 5 * time.Millisecond

	clk := &clock{t: time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC)}
	c, err := New(context.Background(), cfg,
		WithLogger(quietLogger),
		WithClock(clk.Now),
		WithDialer(refusingDialer{}),
	)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	clk.Set(clk.Now().Add(time.Minute))
	require.Eventually(t, func() bool {
		return c.Files()[0].Path() == filepath.Join(dir, "2024-03-10.log")
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.Equal(t, "2024-03-10", c.Scheduler().Stamp())
}
