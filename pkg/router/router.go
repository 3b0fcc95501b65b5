// Package router decides what happens to a raw websocket message: whether it
// is persisted, echoed to the console, both or neither.
package router

import (
	"strings"
	"unicode"
)

// ListenForEverything is the filter token that disables type matching.
const ListenForEverything = "LISTEN_FOR_EVERYTHING"

// Action is the outcome of classifying one message.
type Action struct {
	ToFile    bool
	ToConsole bool
}

// Flags controls console echo for a connection.
type Flags struct {
	// PrintAll echoes every message that is not persisted, and every
	// message when the filter listens for everything.
	PrintAll bool
	// PrintLogged echoes messages persisted because their type matched.
	PrintLogged bool
}

// Filter is the set of message types a connection persists.
// The zero value listens for everything.
type Filter struct {
	all   bool
	types map[string]struct{}
}

// NewFilter builds a filter from configured type tokens. An empty list, or
// one containing ListenForEverything, yields the sentinel filter.
func NewFilter(tokens []string) Filter {
	if len(tokens) == 0 {
		return Filter{all: true}
	}
	types := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t == ListenForEverything {
			return Filter{all: true}
		}
		types[t] = struct{}{}
	}
	return Filter{types: types}
}

// All reports whether f is the sentinel filter.
func (f Filter) All() bool {
	return f.all || f.types == nil
}

// Match reports whether messages of the given type are persisted by f.
func (f Filter) Match(typ string) bool {
	if f.All() {
		return true
	}
	_, ok := f.types[typ]
	return ok
}

// TypeToken returns the first whitespace-delimited word of msg, or "" when
// msg holds no such word.
func TypeToken(msg string) string {
	msg = strings.TrimLeftFunc(msg, unicode.IsSpace)
	if i := strings.IndexFunc(msg, unicode.IsSpace); i >= 0 {
		return msg[:i]
	}
	return msg
}

// Classify maps a message to an Action.
func Classify(msg string, f Filter, flags Flags) Action {
	if f.All() {
		return Action{ToFile: true, ToConsole: flags.PrintAll}
	}
	if f.Match(TypeToken(msg)) {
		return Action{ToFile: true, ToConsole: flags.PrintLogged}
	}
	return Action{ToConsole: flags.PrintAll}
}
