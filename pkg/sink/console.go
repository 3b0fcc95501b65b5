package sink

import (
	"io"
	"os"
	"sync"
)

// ConsoleSink writes data to stdout, one line per call.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleSink creates a new ConsoleSink.
func NewConsoleSink() *ConsoleSink {
	return NewWriterSink(os.Stdout)
}

// NewWriterSink creates a ConsoleSink writing to w.
func NewWriterSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{out: w}
}

func (s *ConsoleSink) Write(data []byte) error {
	line := append(append(make([]byte, 0, len(data)+1), data...), '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.out.Write(line)
	return err
}

func (s *ConsoleSink) Close() error {
	return nil
}
