package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"mork-fetch/internal/models"
	"mork-fetch/internal/prices"
)

// Ledger mutations return (false, reason) instead of an error; callers
// of the original trading commands branch on the pair, and the
// convention is kept. Ledger keys are exact mint strings, matching the
// watchlist whose alerts drive the paper-auto trader.

// LedgerBuy records a simulated buy, recomputing the volume-weighted
// average cost. A non-positive price is resolved via the price feed
// with the sim fallback.
func (e *Engine) LedgerBuy(mint string, qty, price float64) (bool, string) {
	if qty <= 0 {
		return false, "qty must be > 0"
	}
	price, src := e.resolvePrice(mint, price)
	if price <= 0 {
		return false, "no valid price"
	}

	e.mu.Lock()
	pos, ok := e.ledger.Positions[mint]
	if !ok {
		pos = &models.Position{}
		e.ledger.Positions[mint] = pos
	}
	newQty := pos.Qty + qty
	pos.Avg = (pos.Avg*pos.Qty + price*qty) / newQty
	pos.Qty = newQty
	e.mu.Unlock()

	e.saveState()
	e.logEvent("[LEDGER] BUY %s qty=%.6f price=%.6f src=%s", shortMint(mint), qty, price, src)
	e.recordFill(models.Fill{
		Timestamp: time.Now(),
		Mint:      mint,
		Side:      models.FillBuy,
		Qty:       qty,
		Price:     price,
		Source:    src,
	})
	return true, ""
}

// LedgerSell records a simulated sell. The quantity is clamped to the
// held amount; selling more than held is never possible. Realized P&L
// accrues as (price - avg) * sold, and avg resets to zero when the
// position fully closes.
func (e *Engine) LedgerSell(mint string, qty, price float64) (bool, string) {
	if qty <= 0 {
		return false, "qty must be > 0"
	}
	price, src := e.resolvePrice(mint, price)
	if price <= 0 {
		return false, "no valid price"
	}

	e.mu.Lock()
	pos, ok := e.ledger.Positions[mint]
	if !ok || pos.Qty <= 0 {
		e.mu.Unlock()
		return false, "no position"
	}
	sold := math.Min(qty, pos.Qty)
	pnl := (price - pos.Avg) * sold
	e.ledger.Realized += pnl
	pos.Qty -= sold
	if pos.Qty == 0 {
		pos.Avg = 0
	}
	e.mu.Unlock()

	e.saveState()
	e.logEvent("[LEDGER] SELL %s qty=%.6f price=%.6f pnl=%.6f src=%s",
		shortMint(mint), sold, price, pnl, src)
	e.recordFill(models.Fill{
		Timestamp: time.Now(),
		Mint:      mint,
		Side:      models.FillSell,
		Qty:       sold,
		Price:     price,
		Realized:  pnl,
		Source:    src,
	})
	return true, ""
}

// MarkToMarket values every open position at the current price. All
// figures are rounded to 6 decimals.
func (e *Engine) MarkToMarket() models.MarkReport {
	e.mu.Lock()
	mints := make([]string, 0, len(e.ledger.Positions))
	book := make(map[string]models.Position, len(e.ledger.Positions))
	realized := e.ledger.Realized
	for m, p := range e.ledger.Positions {
		if p.Qty > 0 {
			mints = append(mints, m)
			book[m] = *p
		}
	}
	e.mu.Unlock()
	sort.Strings(mints)

	report := models.MarkReport{RealizedTotal: round6(realized)}
	for _, mint := range mints {
		pos := book[mint]
		price, src, ok := e.feed.Lookup(mint)
		if !ok {
			price = e.feed.Sim(mint)
			src = prices.TagSim
		}
		unrealized := (price - pos.Avg) * pos.Qty
		report.Lines = append(report.Lines, models.MarkLine{
			Mint:       mint,
			Qty:        round6(pos.Qty),
			Avg:        round6(pos.Avg),
			Price:      round6(price),
			Source:     src,
			Unrealized: round6(unrealized),
		})
		report.UnrealizedTotal += unrealized
	}
	report.UnrealizedTotal = round6(report.UnrealizedTotal)
	report.GrandTotal = round6(report.UnrealizedTotal + report.RealizedTotal)
	return report
}

// MarkToMarketCSV renders the mark-to-market report as CSV.
func (e *Engine) MarkToMarketCSV() string {
	report := e.MarkToMarket()
	var b strings.Builder
	b.WriteString("mint,qty,avg,price,src,unrealized\n")
	for _, l := range report.Lines {
		fmt.Fprintf(&b, "%s,%.6f,%.6f,%.6f,%s,%.6f\n",
			l.Mint, l.Qty, l.Avg, l.Price, l.Source, l.Unrealized)
	}
	fmt.Fprintf(&b, "totals,,,,,%.6f\nrealized,,,,,%.6f\ngrand,,,,,%.6f\n",
		report.UnrealizedTotal, report.RealizedTotal, report.GrandTotal)
	return b.String()
}

// LedgerReset clears all positions and realized P&L.
func (e *Engine) LedgerReset() {
	e.mu.Lock()
	e.ledger = models.NewLedger()
	e.mu.Unlock()
	e.saveState()
	e.logEvent("[LEDGER] reset")
}

// Ledger returns a snapshot copy of the position book.
func (e *Engine) Ledger() models.Ledger {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := models.NewLedger()
	out.Realized = e.ledger.Realized
	for m, p := range e.ledger.Positions {
		cp := *p
		out.Positions[m] = &cp
	}
	return out
}

// resolvePrice uses the provided price when positive, otherwise the
// feed with the sim fallback.
func (e *Engine) resolvePrice(mint string, price float64) (float64, string) {
	if price > 0 {
		return price, "given"
	}
	if p, src, ok := e.feed.Lookup(mint); ok {
		return p, src
	}
	return e.feed.Sim(mint), prices.TagSim
}

func (e *Engine) recordFill(fill models.Fill) {
	if e.journal == nil {
		return
	}
	if err := e.journal.RecordFill(fill); err != nil {
		e.log.Warn().Err(err).Str("mint", fill.Mint).Msg("journal write failed")
	}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
