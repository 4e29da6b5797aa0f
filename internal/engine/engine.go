// Package engine implements the autosell core: per-token exit rules
// evaluated by a background loop, a watchlist with move alerts, a
// paper-trading ledger, a reactive paper-auto trader, and atomic JSON
// persistence of the lot.
//
// The loop is dry-run only. It logs hold / would-sell decisions and
// never places a real order; there is no order-dispatch path to turn
// on.
package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mork-fetch/internal/models"
)

const (
	defaultInterval = 10 * time.Second
	minInterval     = 3 * time.Second

	defaultWatchSens = 2.0
	minWatchSens     = 0.1
	maxWatchSens     = 100.0

	defaultAlertBuffer = 64

	defaultAutoQty = 1.0
	minAutoQty     = 0.000001
)

// PriceFeed resolves prices for the engine. Lookup may fail (no
// override, cache or live quote); Sim never does and is the fallback
// of every caller.
type PriceFeed interface {
	Lookup(mint string) (price float64, source string, ok bool)
	Sim(mint string) float64
}

// Journal records simulated fills. Optional; failures are logged and
// never block a trade.
type Journal interface {
	RecordFill(fill models.Fill) error
}

// Config holds engine construction settings.
type Config struct {
	StatePath  string
	BackupPath string
	Interval   time.Duration // floor 3s, default 10s
	WatchSens  float64       // clamp [0.1, 100], default 2.0
	Journal    Journal
	Notify     func(text string) // relayed [ALERT]/[AUTO] lines, best effort
}

// Engine owns all mutable autosell state behind a single mutex.
type Engine struct {
	mu   sync.Mutex
	log  zerolog.Logger
	feed PriceFeed

	statePath  string
	backupPath string
	journal    Journal
	notify     func(string)

	enabled   bool
	dryRun    bool // always true
	interval  time.Duration
	alertsOn  bool
	watchSens float64

	rules  []*models.Rule
	watch  map[string]*models.WatchEntry
	ledger models.Ledger

	events *EventLog
	alerts chan models.PriceAlert

	stop     chan struct{}
	alive    bool
	lastTick time.Time

	autoEnabled bool
	autoQty     float64
	autoStop    chan struct{}
	autoAlive   bool
}

// New creates an engine. State is not loaded automatically; call
// Reload to restore a previous snapshot.
func New(cfg Config, feed PriceFeed, log zerolog.Logger) *Engine {
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultInterval
	}
	if interval < minInterval {
		interval = minInterval
	}
	sens := cfg.WatchSens
	if sens == 0 {
		sens = defaultWatchSens
	}
	sens = clampSens(sens)

	return &Engine{
		log:        log.With().Str("component", "engine").Logger(),
		feed:       feed,
		statePath:  cfg.StatePath,
		backupPath: cfg.BackupPath,
		journal:    cfg.Journal,
		notify:     cfg.Notify,
		dryRun:     true,
		interval:   interval,
		alertsOn:   true,
		watchSens:  sens,
		watch:      make(map[string]*models.WatchEntry),
		ledger:     models.NewLedger(),
		events:     newEventLog(eventCapacity),
		alerts:     make(chan models.PriceAlert, defaultAlertBuffer),
		autoQty:    defaultAutoQty,
	}
}

// Enable starts the evaluation loop, spawning the worker goroutine if
// none is alive.
func (e *Engine) Enable() {
	e.mu.Lock()
	e.enabled = true
	if !e.alive {
		e.alive = true
		e.stop = make(chan struct{})
		go e.worker(e.stop)
	}
	e.mu.Unlock()
	e.logEvent("AutoSell enabled.")
}

// Disable signals the worker to stop. The worker finishes its current
// tick and observes the flag at the top of its next sleep cycle; it is
// never interrupted mid-tick.
func (e *Engine) Disable() {
	e.mu.Lock()
	e.enabled = false
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	e.mu.Unlock()
	e.logEvent("AutoSell disabled.")
}

// SetInterval sets the evaluation interval in seconds, floor 3.
// Returns the applied value.
func (e *Engine) SetInterval(seconds int) int {
	if seconds < int(minInterval/time.Second) {
		seconds = int(minInterval / time.Second)
	}
	e.mu.Lock()
	e.interval = time.Duration(seconds) * time.Second
	e.mu.Unlock()
	e.saveState()
	e.logEvent("[cfg] interval=%ds", seconds)
	return seconds
}

// SetAlerts toggles watchlist alert emission.
func (e *Engine) SetAlerts(enabled bool) {
	e.mu.Lock()
	e.alertsOn = enabled
	e.mu.Unlock()
	e.saveState()
	e.logEvent("[cfg] alerts=%t", enabled)
}

// LedgerSummary is the ledger part of a status report.
type LedgerSummary struct {
	Positions int     // entries in the book, including closed ones
	Open      int     // entries with qty > 0
	Realized  float64
}

// Status is a point-in-time engine snapshot for the admin surface.
type Status struct {
	Enabled     bool
	Alive       bool
	DryRun      bool
	IntervalSec int
	RuleCount   int
	WatchMints  []string
	WatchSens   float64
	AlertsOn    bool
	LastTickAge int // seconds; -1 before the first tick
	Ledger      LedgerSummary
	AutoEnabled bool
	AutoQty     float64
}

// Status reports flags, watch keys, sensitivity and a ledger summary.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	mints := make([]string, 0, len(e.watch))
	for m := range e.watch {
		mints = append(mints, m)
	}

	open := 0
	for _, p := range e.ledger.Positions {
		if p.Qty > 0 {
			open++
		}
	}

	age := -1
	if !e.lastTick.IsZero() {
		age = int(time.Since(e.lastTick) / time.Second)
	}

	return Status{
		Enabled:     e.enabled,
		Alive:       e.alive,
		DryRun:      e.dryRun,
		IntervalSec: int(e.interval / time.Second),
		RuleCount:   len(e.rules),
		WatchMints:  mints,
		WatchSens:   e.watchSens,
		AlertsOn:    e.alertsOn,
		LastTickAge: age,
		Ledger: LedgerSummary{
			Positions: len(e.ledger.Positions),
			Open:      open,
			Realized:  round6(e.ledger.Realized),
		},
		AutoEnabled: e.autoEnabled,
		AutoQty:     e.autoQty,
	}
}

// Alive reports whether the evaluation worker goroutine is running.
func (e *Engine) Alive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alive
}

func clampSens(v float64) float64 {
	if v < minWatchSens {
		return minWatchSens
	}
	if v > maxWatchSens {
		return maxWatchSens
	}
	return v
}
