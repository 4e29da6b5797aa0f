// Package models provides domain models for the autosell engine.
package models

import "time"

// Rule represents a user-configured exit strategy for one token.
// TP, SL and Trail are integer percentages relative to the reference
// price (TP/SL) or the running peak (Trail). Size is advisory only and
// plays no part in exit evaluation.
type Rule struct {
	Mint  string `json:"mint"`
	TP    *int   `json:"tp,omitempty"`
	SL    *int   `json:"sl,omitempty"`
	Trail *int   `json:"trail,omitempty"`
	Size  *int   `json:"size,omitempty"`

	// Ref is set to the first observed price and never recomputed.
	// Peak is the highest price seen since Ref was set; it only moves up.
	// Both are zero until the first evaluation tick observes a price.
	Ref  float64 `json:"ref"`
	Peak float64 `json:"peak"`
}

// Clone returns a deep copy of the rule.
func (r *Rule) Clone() *Rule {
	c := *r
	c.TP = cloneInt(r.TP)
	c.SL = cloneInt(r.SL)
	c.Trail = cloneInt(r.Trail)
	c.Size = cloneInt(r.Size)
	return &c
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// WatchEntry tracks one watched mint. Last is nil until the first
// observed price sets the baseline; after that it is updated only when
// an alert fires.
type WatchEntry struct {
	Last *float64 `json:"last"`
}

// Position is one paper-trading ledger line. Qty never goes negative;
// Avg is a volume-weighted average cost that resets to zero when the
// position is fully closed.
type Position struct {
	Qty float64 `json:"qty"`
	Avg float64 `json:"avg"`
}

// Ledger is the paper position book. Positions persist at qty=0 after
// a full sell rather than being deleted. Realized is a single P&L
// accumulator across all tokens.
type Ledger struct {
	Positions map[string]*Position `json:"positions"`
	Realized  float64              `json:"realized"`
}

// NewLedger returns an empty ledger.
func NewLedger() Ledger {
	return Ledger{Positions: make(map[string]*Position)}
}

// AlertDirection is the direction of a watchlist price move.
type AlertDirection string

const (
	AlertUp   AlertDirection = "up"
	AlertDown AlertDirection = "down"
)

// PriceAlert is the typed form of a watchlist alert. The event log
// keeps a human-readable line for the same trigger; consumers that
// react to alerts use this instead of re-parsing log text.
type PriceAlert struct {
	Mint      string
	Price     float64
	ChangePct float64
	Direction AlertDirection
}

// FillSide is the side of a simulated fill.
type FillSide string

const (
	FillBuy  FillSide = "BUY"
	FillSell FillSide = "SELL"
)

// Fill records one simulated ledger trade for the journal.
type Fill struct {
	ID        string
	Timestamp time.Time
	Mint      string
	Side      FillSide
	Qty       float64
	Price     float64
	Realized  float64 // per-trade realized P&L, zero for buys
	Source    string  // price source tag: dex, dex(cache), override, sim
}

// MarkLine is one position valued at the current price.
type MarkLine struct {
	Mint       string
	Qty        float64
	Avg        float64
	Price      float64
	Source     string
	Unrealized float64
}

// MarkReport is the result of a mark-to-market pass over the ledger.
type MarkReport struct {
	Lines           []MarkLine
	UnrealizedTotal float64
	RealizedTotal   float64
	GrandTotal      float64
}
