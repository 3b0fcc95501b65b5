package pipeline

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"wslogger/pkg/router"
	"wslogger/pkg/sink"
)

type memSink struct {
	lines []string
	err   error
}

func (m *memSink) Write(data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.lines = append(m.lines, string(data))
	return nil
}

func (m *memSink) Close() error { return nil }

func TestHandleFilteredPrintLogged(t *testing.T) {
	file := &memSink{}
	var out bytes.Buffer
	p := New(router.NewFilter([]string{"TRADE"}), router.Flags{PrintLogged: true}, file, sink.NewWriterSink(&out), nil)

	p.Handle([]byte("TICK 100"))
	p.Handle([]byte("TRADE 50"))

	require.Equal(t, []string{"TRADE 50"}, file.lines)
	require.Equal(t, "TRADE 50\n", out.String())
}

func TestHandleSentinelPrintAll(t *testing.T) {
	file := &memSink{}
	var out bytes.Buffer
	p := New(router.NewFilter(nil), router.Flags{PrintAll: true}, file, sink.NewWriterSink(&out), nil)

	got := p.Handle([]byte("TICK 100"))
	require.Equal(t, router.Action{ToFile: true, ToConsole: true}, got)
	require.Equal(t, []string{"TICK 100"}, file.lines)
	require.Equal(t, "TICK 100\n", out.String())
}

func TestHandleNilConsole(t *testing.T) {
	file := &memSink{}
	p := New(router.NewFilter(nil), router.Flags{PrintAll: true}, file, nil, nil)

	require.NotPanics(t, func() { p.Handle([]byte("x")) })
	require.Equal(t, []string{"x"}, file.lines)
}

func TestHandleSinkErrorDoesNotStopConsole(t *testing.T) {
	file := &memSink{err: errors.New("disk full")}
	var out bytes.Buffer
	p := New(router.NewFilter(nil), router.Flags{PrintAll: true}, file, sink.NewWriterSink(&out), nil)

	p.Handle([]byte("TRADE 1"))
	require.Equal(t, "TRADE 1\n", out.String())
}
