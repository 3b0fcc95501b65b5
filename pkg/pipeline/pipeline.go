// Package pipeline applies a routing decision to a received message.
package pipeline

import (
	"log/slog"

	"wslogger/pkg/router"
	"wslogger/pkg/sink"
)

// Pipeline routes the messages of one connection to its persist sink and
// the shared console.
type Pipeline struct {
	filter  router.Filter
	flags   router.Flags
	persist sink.Sink
	console sink.Sink
	logger  *slog.Logger
}

// New creates a Pipeline. console may be nil when nothing is ever echoed.
func New(filter router.Filter, flags router.Flags, persist, console sink.Sink, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		filter:  filter,
		flags:   flags,
		persist: persist,
		console: console,
		logger:  logger,
	}
}

// Handle classifies msg and writes it where the resulting Action says.
// Sink errors are logged; they never stop the stream.
func (p *Pipeline) Handle(msg []byte) router.Action {
	action := router.Classify(string(msg), p.filter, p.flags)

	if action.ToFile {
		if err := p.persist.Write(msg); err != nil {
			p.logger.Error("sink error", "error", err)
		}
	}
	if action.ToConsole && p.console != nil {
		if err := p.console.Write(msg); err != nil {
			p.logger.Warn("console error", "error", err)
		}
	}
	return action
}
