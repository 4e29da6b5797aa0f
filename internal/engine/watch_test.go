package engine

import (
	"strings"
	"testing"

	"mork-fetch/internal/models"
)

func alertLines(e *Engine) []string {
	var out []string
	for _, line := range e.Events(100) {
		if strings.Contains(line, "[ALERT]") {
			out = append(out, line)
		}
	}
	return out
}

func TestWatchBaselineThenAlert(t *testing.T) {
	feed := newStubFeed()
	feed.set("M1", 1.0)
	e := newTestEngine(t, feed)
	e.SetWatchSens(0.1)
	e.WatchAdd("M1")

	// First tick records the baseline silently.
	e.watchTick()
	if got := alertLines(e); len(got) != 0 {
		t.Fatalf("baseline tick must not alert, got %q", got)
	}

	// Second tick: +2% >= 0.1% sensitivity fires exactly one alert.
	feed.set("M1", 1.02)
	e.watchTick()

	got := alertLines(e)
	if len(got) != 1 {
		t.Fatalf("got %d alerts, want exactly 1", len(got))
	}
	if !strings.Contains(got[0], "+2.00%") {
		t.Errorf("alert %q should contain +2.00%%", got[0])
	}
}

func TestWatchBaselineOnlyAdvancesOnAlert(t *testing.T) {
	feed := newStubFeed()
	feed.set("M1", 100.0)
	e := newTestEngine(t, feed)
	e.SetWatchSens(5.0)
	e.WatchAdd("M1")

	e.watchTick() // baseline 100

	// Three sub-threshold drifts of +2% each accumulate against the
	// original baseline.
	for _, p := range []float64{102, 104, 106} {
		feed.set("M1", p)
		e.watchTick()
	}

	got := alertLines(e)
	if len(got) != 1 {
		t.Fatalf("got %d alerts, want 1 (cumulative drift past 5%%)", len(got))
	}
	if !strings.Contains(got[0], "+6.00%") {
		t.Errorf("alert %q should report +6.00%% against the original baseline", got[0])
	}
}

func TestWatchAlertsDisabled(t *testing.T) {
	feed := newStubFeed()
	feed.set("M1", 1.0)
	e := newTestEngine(t, feed)
	e.SetWatchSens(0.1)
	e.SetAlerts(false)
	e.WatchAdd("M1")

	e.watchTick()
	feed.set("M1", 2.0)
	e.watchTick()

	if got := alertLines(e); len(got) != 0 {
		t.Errorf("alerts disabled, got %q", got)
	}
}

func TestWatchZeroBaselineGuard(t *testing.T) {
	feed := newStubFeed()
	feed.set("M1", 1.0)
	e := newTestEngine(t, feed)
	e.SetWatchSens(0.1)
	e.WatchAdd("M1")

	// Force a zero baseline; the change must be treated as 0%.
	e.mu.Lock()
	zero := 0.0
	e.watch["M1"].Last = &zero
	e.mu.Unlock()

	e.watchTick()

	if got := alertLines(e); len(got) != 0 {
		t.Errorf("zero baseline must never alert, got %q", got)
	}
}

func TestWatchKeysAreExact(t *testing.T) {
	e := newTestEngine(t, nil)
	e.WatchAdd("MiNt")

	if e.WatchRemove("mint") {
		t.Error("watch keys are exact strings; different casing must not match")
	}
	if !e.WatchRemove("MiNt") {
		t.Error("exact key should remove")
	}
}

func TestWatchAlertPublishesTypedEvent(t *testing.T) {
	feed := newStubFeed()
	feed.set("M1", 1.0)
	e := newTestEngine(t, feed)
	e.SetWatchSens(0.1)
	e.WatchAdd("M1")

	e.watchTick()
	feed.set("M1", 0.9)
	e.watchTick()

	select {
	case a := <-e.alerts:
		if a.Mint != "M1" || a.Direction != models.AlertDown {
			t.Errorf("alert = %+v, want M1 down", a)
		}
		if a.Price != 0.9 {
			t.Errorf("alert price = %v, want 0.9", a.Price)
		}
	default:
		t.Fatal("no typed alert published")
	}
}

func TestSetWatchSensClamp(t *testing.T) {
	e := newTestEngine(t, nil)

	if got := e.SetWatchSens(0.01); got != 0.1 {
		t.Errorf("SetWatchSens(0.01) = %v, want clamp 0.1", got)
	}
	if got := e.SetWatchSens(500); got != 100 {
		t.Errorf("SetWatchSens(500) = %v, want clamp 100", got)
	}
}

func TestWatchClear(t *testing.T) {
	e := newTestEngine(t, nil)
	e.WatchAdd("A")
	e.WatchAdd("B")

	if n := e.WatchClear(); n != 2 {
		t.Errorf("WatchClear = %d, want 2", n)
	}
	if len(e.Status().WatchMints) != 0 {
		t.Error("watchlist should be empty")
	}
}
