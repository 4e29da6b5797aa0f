// Package notify delivers alert lines produced by the engine to
// external channels. The engine only knows a plain func(string)
// callback; this package supplies implementations for it.
package notify

import (
	"github.com/rs/zerolog"
)

// Notifier sends a single text notification, best effort.
type Notifier interface {
	Notify(text string)
}

// Func adapts a Notifier to the engine's callback signature.
func Func(n Notifier) func(string) {
	if n == nil {
		return nil
	}
	return n.Notify
}

// LogNotifier writes notifications to the structured log. Used when no
// delivery channel is configured, so alert traffic is still visible.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notify").Logger()}
}

// Notify logs the text at info level.
func (n *LogNotifier) Notify(text string) {
	n.log.Info().Str("event", "notify").Msg(text)
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

// Notify delivers to every channel; a failing channel never blocks the
// others.
func (m Multi) Notify(text string) {
	for _, n := range m {
		if n != nil {
			n.Notify(text)
		}
	}
}
