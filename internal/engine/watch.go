package engine

import (
	"math"

	"mork-fetch/internal/models"
	"mork-fetch/internal/prices"
)

// Watchlist keys are exact mint strings, unlike the rule store's
// case-insensitive matching. Persisted watchlists rely on the exact
// keys, so this discrepancy is kept deliberately.

// WatchAdd starts tracking a mint. The baseline price is recorded
// silently on the next tick; no alert fires for the first observation.
func (e *Engine) WatchAdd(mint string) {
	e.mu.Lock()
	if _, ok := e.watch[mint]; !ok {
		e.watch[mint] = &models.WatchEntry{}
	}
	e.mu.Unlock()
	e.saveState()
	e.logEvent("[cfg] watch %s", shortMint(mint))
}

// WatchRemove stops tracking a mint. Returns whether it was tracked.
func (e *Engine) WatchRemove(mint string) bool {
	e.mu.Lock()
	_, ok := e.watch[mint]
	delete(e.watch, mint)
	e.mu.Unlock()
	if ok {
		e.saveState()
		e.logEvent("[cfg] unwatch %s", shortMint(mint))
	}
	return ok
}

// WatchClear drops the whole watchlist and returns how many entries
// were tracked.
func (e *Engine) WatchClear() int {
	e.mu.Lock()
	n := len(e.watch)
	e.watch = make(map[string]*models.WatchEntry)
	e.mu.Unlock()
	if n > 0 {
		e.saveState()
	}
	e.logEvent("[cfg] watchlist cleared (%d)", n)
	return n
}

// SetWatchSens sets the alert sensitivity in percent, clamped to
// [0.1, 100]. Returns the applied value.
func (e *Engine) SetWatchSens(percent float64) float64 {
	percent = clampSens(percent)
	e.mu.Lock()
	e.watchSens = percent
	e.mu.Unlock()
	e.saveState()
	e.logEvent("[cfg] watch_sens=%.2f%%", percent)
	return percent
}

// watchTick prices every watched mint and emits an alert when the move
// from the baseline meets the sensitivity. The baseline only advances
// when an alert fires, so sub-threshold drift accumulates against the
// original baseline rather than the last observed price.
func (e *Engine) watchTick() {
	e.mu.Lock()
	mints := make([]string, 0, len(e.watch))
	baselines := make(map[string]*float64, len(e.watch))
	sens := e.watchSens
	alertsOn := e.alertsOn
	for m, w := range e.watch {
		mints = append(mints, m)
		baselines[m] = w.Last
	}
	e.mu.Unlock()

	for _, mint := range mints {
		price, src, ok := e.feed.Lookup(mint)
		if !ok {
			price = e.feed.Sim(mint)
			src = prices.TagSim
		}

		last := baselines[mint]
		if last == nil {
			// First observation: record the baseline, no alert.
			e.setWatchLast(mint, price)
			continue
		}

		change := 0.0
		if *last != 0 {
			change = (price - *last) / *last * 100
		}

		if !alertsOn || math.Abs(change) < sens {
			continue
		}

		direction := models.AlertUp
		if change < 0 {
			direction = models.AlertDown
		}
		e.logEvent("[ALERT]\n%s %+.2f%%\nprice=%.6f src=%s", shortMint(mint), change, price, src)
		e.publishAlert(models.PriceAlert{
			Mint:      mint,
			Price:     price,
			ChangePct: change,
			Direction: direction,
		})
		e.setWatchLast(mint, price)
	}
}

// setWatchLast updates the stored baseline if the entry still exists.
func (e *Engine) setWatchLast(mint string, price float64) {
	e.mu.Lock()
	if w, ok := e.watch[mint]; ok {
		p := price
		w.Last = &p
	}
	e.mu.Unlock()
}
