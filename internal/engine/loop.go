package engine

import (
	"fmt"
	"strings"
	"time"

	"mork-fetch/internal/models"
	"mork-fetch/internal/prices"
)

// worker is the evaluation loop goroutine. It re-prices every rule on
// each tick, evaluates exit conditions, runs the watchlist, and sleeps
// for the configured interval. It exits when stop is closed, observed
// at the top of the sleep cycle, never mid-tick.
func (e *Engine) worker(stop <-chan struct{}) {
	e.logEvent("[hb] worker started")
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("evaluation worker died")
			e.logEvent("[err] worker %v", r)
		}
		e.mu.Lock()
		e.alive = false
		e.mu.Unlock()
		e.logEvent("[hb] worker stopped")
	}()

	for {
		e.mu.Lock()
		interval := e.interval
		enabled := e.enabled
		e.lastTick = time.Now()
		e.mu.Unlock()

		if enabled {
			e.tick()
			e.logEvent("[tick] ok")
		}

		select {
		case <-stop:
			return
		case <-time.After(interval):
		}
	}
}

// tick runs one full evaluation cycle: every rule, then the watchlist.
func (e *Engine) tick() {
	rules := e.Rules()

	refInitialized := false
	for _, rule := range rules {
		if strings.TrimSpace(rule.Mint) == "" {
			continue
		}
		if e.evaluateOne(rule, true) {
			refInitialized = true
		}
	}

	if refInitialized {
		e.saveState()
	}

	e.watchTick()
}

// evaluateOne prices a rule, applies the exit conditions and logs the
// decision. With writeBack set, mutated ref/peak are merged into the
// canonical rule list. Returns whether ref was newly initialized.
// A failure on one rule never stops the rest of the tick.
func (e *Engine) evaluateOne(rule *models.Rule, writeBack bool) (refInit bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("mint", rule.Mint).Msg("rule evaluation failed")
			e.logEvent("[err] rule %s: %v", shortMint(rule.Mint), r)
		}
	}()

	price, src, ok := e.feed.Lookup(rule.Mint)
	if !ok {
		price = e.feed.Sim(rule.Mint)
		src = prices.TagSim
	}

	if rule.Ref == 0 {
		rule.Ref = price
		refInit = true
	}
	if rule.Peak == 0 {
		rule.Peak = price
	}
	if price > rule.Peak {
		rule.Peak = price
	}

	reason, fired := evalExit(rule, price)
	if fired {
		// Dry-run only: the decision is logged, no order exists to place.
		e.logEvent("[DRY] would SELL %s reason=%s price=%.6f src=%s ref=%.6f peak=%.6f",
			shortMint(rule.Mint), reason, price, src, rule.Ref, rule.Peak)
	} else {
		e.logEvent("[DRY] hold %s price=%.6f src=%s ref=%.6f peak=%.6f",
			shortMint(rule.Mint), price, src, rule.Ref, rule.Peak)
	}

	if writeBack {
		e.mergeRuleRuntime(rule.Mint, rule.Ref, rule.Peak)
	}
	return refInit
}

// evalExit checks the exit conditions in fixed priority order:
// stop-loss, then take-profit, then trailing-stop. Only the first
// matching reason is reported.
func evalExit(r *models.Rule, price float64) (reason string, fired bool) {
	if r.SL != nil && r.Ref > 0 && price <= r.Ref*(1-float64(*r.SL)/100) {
		return fmt.Sprintf("SL%d%%", *r.SL), true
	}
	if r.TP != nil && r.Ref > 0 && price >= r.Ref*(1+float64(*r.TP)/100) {
		return fmt.Sprintf("TP%d%%", *r.TP), true
	}
	if r.Trail != nil && r.Peak > 0 && price <= r.Peak*(1-float64(*r.Trail)/100) {
		return fmt.Sprintf("TRAIL%d%%", *r.Trail), true
	}
	return "", false
}

// DryRunEval evaluates rules synchronously without persisting or
// writing ref/peak back. With an empty mint every rule is evaluated;
// otherwise only the case-insensitive match. Returns the decision
// lines.
func (e *Engine) DryRunEval(mint string) []string {
	var snapshot []*models.Rule
	if strings.TrimSpace(mint) == "" {
		snapshot = e.Rules()
	} else {
		e.mu.Lock()
		if r := e.findRuleLocked(mint); r != nil {
			snapshot = append(snapshot, r.Clone())
		}
		e.mu.Unlock()
	}
	if len(snapshot) == 0 {
		return []string{"No matching rules."}
	}

	out := make([]string, 0, len(snapshot))
	for _, rule := range snapshot {
		price, src, ok := e.feed.Lookup(rule.Mint)
		if !ok {
			price = e.feed.Sim(rule.Mint)
			src = prices.TagSim
		}
		ref, peak := rule.Ref, rule.Peak
		if ref == 0 {
			ref = price
		}
		if peak < price {
			peak = price
		}
		probe := rule.Clone()
		probe.Ref, probe.Peak = ref, peak

		if reason, fired := evalExit(probe, price); fired {
			out = append(out, fmt.Sprintf("[DRY] would SELL %s reason=%s price=%.6f src=%s ref=%.6f peak=%.6f",
				shortMint(rule.Mint), reason, price, src, ref, peak))
		} else {
			out = append(out, fmt.Sprintf("[DRY] hold %s price=%.6f src=%s ref=%.6f peak=%.6f",
				shortMint(rule.Mint), price, src, ref, peak))
		}
	}
	return out
}
