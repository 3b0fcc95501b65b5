package sink

import (
	"errors"
	"fmt"
)

// MultiSink broadcasts data to multiple sinks. A persisted line goes to the
// file first and then to each mirror.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a new MultiSink.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Len returns the number of wrapped sinks.
func (s *MultiSink) Len() int {
	return len(s.sinks)
}

// Write hands data to every sink, even when an earlier one fails. The
// returned error wraps each failure.
func (s *MultiSink) Write(data []byte) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Write(data); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multi sink: %w", errors.Join(errs...))
	}
	return nil
}

func (s *MultiSink) Close() error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multi sink close: %w", errors.Join(errs...))
	}
	return nil
}
