package engine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"mork-fetch/internal/models"
)

// eventCapacity is the ring size of the human-readable event log.
const eventCapacity = 100

// EventLog is a bounded ring buffer of human-readable decision and
// alert lines. When full, the oldest line is evicted. It is the
// display surface only; reactive consumers use the typed alert
// channel instead of re-parsing these strings.
type EventLog struct {
	mu      sync.Mutex
	entries []string
	cap     int
}

func newEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = eventCapacity
	}
	return &EventLog{cap: capacity}
}

func (l *EventLog) append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, line)
	if len(l.entries) > l.cap {
		l.entries = l.entries[len(l.entries)-l.cap:]
	}
}

// Tail returns the last n lines, oldest first. n is clamped to
// [1, capacity].
func (l *EventLog) Tail(n int) []string {
	if n < 1 {
		n = 1
	}
	if n > l.cap {
		n = l.cap
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	start := len(l.entries) - n
	if start < 0 {
		start = 0
	}
	out := make([]string, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

// Len returns the number of buffered lines.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// logEvent appends a timestamped line to the ring and relays alert and
// auto-trader lines to the notifier callback, best effort.
func (e *Engine) logEvent(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	line := time.Now().Format("15:04:05") + " " + msg
	e.events.append(line)

	if e.notify != nil && (strings.Contains(msg, "[ALERT]") || strings.Contains(msg, "[AUTO]")) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.log.Warn().Interface("panic", r).Msg("notifier callback panicked")
				}
			}()
			e.notify(msg)
		}()
	}
}

// publishAlert pushes a typed alert onto the bounded channel. A full
// channel drops the alert rather than blocking the evaluation loop.
func (e *Engine) publishAlert(a models.PriceAlert) {
	select {
	case e.alerts <- a:
	default:
		e.log.Warn().Str("mint", a.Mint).Msg("alert channel full, alert dropped")
	}
}

// Events returns the last n event lines, n clamped to [1, 100].
func (e *Engine) Events(n int) []string {
	return e.events.Tail(n)
}

// shortMint abbreviates long mint addresses for display.
func shortMint(mint string) string {
	if len(mint) <= 13 {
		return mint
	}
	return mint[:6] + "…" + mint[len(mint)-6:]
}
