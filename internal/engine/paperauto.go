package engine

import (
	"mork-fetch/internal/models"
)

// PaperAutoEnable starts the reactive paper trader with the given
// per-trade quantity. A non-positive qty keeps the current setting;
// the floor is 0.000001. Alerts queued before enabling are discarded,
// so the trader never replays history. Returns the applied quantity.
func (e *Engine) PaperAutoEnable(qty float64) float64 {
	e.mu.Lock()
	if qty > 0 {
		if qty < minAutoQty {
			qty = minAutoQty
		}
		e.autoQty = qty
	}
	applied := e.autoQty
	e.autoEnabled = true
	spawn := !e.autoAlive
	if spawn {
		e.autoAlive = true
		e.autoStop = make(chan struct{})
	}
	stop := e.autoStop
	e.mu.Unlock()

	if spawn {
		e.drainAlerts()
		go e.autoWorker(stop)
	}
	e.logEvent("[AUTO] paper-auto enabled qty=%.6f", applied)
	return applied
}

// PaperAutoDisable signals the paper trader to stop. In-flight work
// finishes; the goroutine is never killed.
func (e *Engine) PaperAutoDisable() {
	e.mu.Lock()
	e.autoEnabled = false
	if e.autoStop != nil {
		close(e.autoStop)
		e.autoStop = nil
	}
	e.mu.Unlock()
	e.logEvent("[AUTO] paper-auto disabled")
}

// drainAlerts empties the alert channel so only alerts emitted after
// enabling are acted on.
func (e *Engine) drainAlerts() {
	for {
		select {
		case <-e.alerts:
		default:
			return
		}
	}
}

// autoWorker reacts to typed price alerts until stopped.
func (e *Engine) autoWorker(stop <-chan struct{}) {
	defer func() {
		e.mu.Lock()
		e.autoAlive = false
		e.mu.Unlock()
	}()

	for {
		select {
		case <-stop:
			return
		case alert := <-e.alerts:
			e.reactToAlert(alert)
		}
	}
}

// reactToAlert places a simulated ledger trade for one alert: a move
// up sells the configured quantity when something is held (take
// profit), a move down buys unconditionally (average down). Failures
// are logged and the loop continues.
func (e *Engine) reactToAlert(alert models.PriceAlert) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("mint", alert.Mint).Msg("paper-auto reaction failed")
			e.logEvent("[AUTO] error %s: %v", shortMint(alert.Mint), r)
		}
	}()

	e.mu.Lock()
	qty := e.autoQty
	held := 0.0
	if pos, ok := e.ledger.Positions[alert.Mint]; ok {
		held = pos.Qty
	}
	e.mu.Unlock()

	switch alert.Direction {
	case models.AlertUp:
		if held <= 0 {
			return // nothing to take profit on
		}
		if ok, reason := e.LedgerSell(alert.Mint, qty, alert.Price); !ok {
			e.logEvent("[AUTO] error sell %s: %s", shortMint(alert.Mint), reason)
		} else {
			e.logEvent("[AUTO] sold %s qty=%.6f price=%.6f (%+.2f%%)",
				shortMint(alert.Mint), qty, alert.Price, alert.ChangePct)
		}
	case models.AlertDown:
		if ok, reason := e.LedgerBuy(alert.Mint, qty, alert.Price); !ok {
			e.logEvent("[AUTO] error buy %s: %s", shortMint(alert.Mint), reason)
		} else {
			e.logEvent("[AUTO] bought %s qty=%.6f price=%.6f (%+.2f%%)",
				shortMint(alert.Mint), qty, alert.Price, alert.ChangePct)
		}
	}
}
