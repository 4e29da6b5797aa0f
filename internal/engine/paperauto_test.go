package engine

import (
	"testing"

	"mork-fetch/internal/models"
)

func TestReactToAlertUpWithoutPositionIsNoop(t *testing.T) {
	e := newTestEngine(t, nil)
	e.autoQty = 1

	e.reactToAlert(models.PriceAlert{
		Mint: "M1", Price: 2.0, ChangePct: 5, Direction: models.AlertUp,
	})

	if len(e.Ledger().Positions) != 0 {
		t.Error("up alert with nothing held must not mutate the ledger")
	}
}

func TestReactToAlertUpSellsHeldPosition(t *testing.T) {
	e := newTestEngine(t, nil)
	e.autoQty = 1
	e.LedgerBuy("M1", 5, 1.0)

	e.reactToAlert(models.PriceAlert{
		Mint: "M1", Price: 2.0, ChangePct: 5, Direction: models.AlertUp,
	})

	led := e.Ledger()
	if led.Positions["M1"].Qty != 4 {
		t.Errorf("qty = %v, want 4 after auto sell of 1", led.Positions["M1"].Qty)
	}
	if led.Realized != 1.0 {
		t.Errorf("realized = %v, want (2-1)*1 = 1", led.Realized)
	}
}

func TestReactToAlertDownBuysUnconditionally(t *testing.T) {
	e := newTestEngine(t, nil)
	e.autoQty = 2

	e.reactToAlert(models.PriceAlert{
		Mint: "M1", Price: 0.5, ChangePct: -5, Direction: models.AlertDown,
	})

	pos := e.Ledger().Positions["M1"]
	if pos == nil || pos.Qty != 2 || pos.Avg != 0.5 {
		t.Errorf("position = %+v, want qty 2 avg 0.5", pos)
	}
}

func TestPaperAutoEnableQtyFloor(t *testing.T) {
	e := newTestEngine(t, nil)

	if got := e.PaperAutoEnable(0.0000001); got != minAutoQty {
		t.Errorf("qty = %v, want floor %v", got, minAutoQty)
	}
	// Non-positive keeps the current setting.
	if got := e.PaperAutoEnable(0); got != minAutoQty {
		t.Errorf("qty = %v, want previous %v preserved", got, minAutoQty)
	}
	e.PaperAutoDisable()
}

func TestPaperAutoDiscardsQueuedAlerts(t *testing.T) {
	e := newTestEngine(t, nil)

	// Alerts queued before enabling must never be replayed.
	e.publishAlert(models.PriceAlert{Mint: "OLD", Price: 1, ChangePct: -5, Direction: models.AlertDown})
	e.PaperAutoEnable(1)
	defer e.PaperAutoDisable()

	if len(e.alerts) != 0 {
		t.Error("enable should drain queued alerts")
	}
	if _, ok := e.Ledger().Positions["OLD"]; ok {
		t.Error("queued alert must not be acted on")
	}
}
