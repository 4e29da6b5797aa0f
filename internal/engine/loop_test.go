package engine

import (
	"strings"
	"testing"
	"time"

	"mork-fetch/internal/models"
)

func TestExitPriorityStopLossFirst(t *testing.T) {
	// ref=100, sl=10 (trigger at <=90), trail=5 with peak=100 (trigger
	// at <=95): price 90 crosses both; stop-loss must win.
	rule := &models.Rule{
		Mint:  "MINT",
		SL:    intPtr(10),
		Trail: intPtr(5),
		Ref:   100,
		Peak:  100,
	}

	reason, fired := evalExit(rule, 90)
	if !fired {
		t.Fatal("exit should fire")
	}
	if reason != "SL10%" {
		t.Errorf("reason = %q, want SL10%% (stop-loss before trailing)", reason)
	}
}

func TestExitConditions(t *testing.T) {
	tests := []struct {
		name   string
		rule   models.Rule
		price  float64
		fired  bool
		reason string
	}{
		{"sl exact boundary", models.Rule{SL: intPtr(10), Ref: 100, Peak: 100}, 90, true, "SL10%"},
		{"sl not crossed", models.Rule{SL: intPtr(10), Ref: 100, Peak: 100}, 90.01, false, ""},
		{"tp exact boundary", models.Rule{TP: intPtr(5), Ref: 100, Peak: 100}, 105, true, "TP5%"},
		{"tp not crossed", models.Rule{TP: intPtr(5), Ref: 100, Peak: 100}, 104.99, false, ""},
		{"trail from peak", models.Rule{Trail: intPtr(10), Ref: 100, Peak: 200}, 180, true, "TRAIL10%"},
		{"trail not crossed", models.Rule{Trail: intPtr(10), Ref: 100, Peak: 200}, 180.01, false, ""},
		{"tp before trail", models.Rule{TP: intPtr(1), Trail: intPtr(50), Ref: 100, Peak: 300}, 110, true, "TP1%"},
		{"no thresholds", models.Rule{Ref: 100, Peak: 100}, 1, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, fired := evalExit(&tt.rule, tt.price)
			if fired != tt.fired || reason != tt.reason {
				t.Errorf("evalExit = (%q, %t), want (%q, %t)", reason, fired, tt.reason, tt.fired)
			}
		})
	}
}

func TestFirstTickHoldsAtBaseline(t *testing.T) {
	feed := newStubFeed()
	feed.set("ABC", 1.0)
	e := newTestEngine(t, feed)
	if _, err := e.SetRule("ABC", RuleFields{TP: intPtr(10), SL: intPtr(5)}); err != nil {
		t.Fatal(err)
	}

	e.tick()

	var dry string
	for _, line := range e.Events(100) {
		if strings.Contains(line, "[DRY]") {
			dry = line
		}
	}
	if dry == "" {
		t.Fatal("no decision logged")
	}
	if !strings.Contains(dry, "hold") {
		t.Errorf("first tick at the baseline price must hold, got %q", dry)
	}

	r := e.Rules()[0]
	if r.Ref != 1.0 || r.Peak != 1.0 {
		t.Errorf("ref/peak = %v/%v, want lazy init to 1.0", r.Ref, r.Peak)
	}
}

func TestTickUsesSimFallback(t *testing.T) {
	e := newTestEngine(t, newStubFeed()) // no scripted price: sim fallback
	if _, err := e.SetRule("NOQUOTE", RuleFields{SL: intPtr(10)}); err != nil {
		t.Fatal(err)
	}

	e.tick()

	found := false
	for _, line := range e.Events(100) {
		if strings.Contains(line, "[DRY]") && strings.Contains(line, "src=sim") {
			found = true
		}
	}
	if !found {
		t.Error("decision should be tagged src=sim when no live price exists")
	}
}

func TestTickPeakOnlyMovesUp(t *testing.T) {
	feed := newStubFeed()
	feed.set("ABC", 1.0)
	e := newTestEngine(t, feed)
	if _, err := e.SetRule("ABC", RuleFields{}); err != nil {
		t.Fatal(err)
	}

	e.tick()
	feed.set("ABC", 2.0)
	e.tick()
	feed.set("ABC", 0.5)
	e.tick()

	r := e.Rules()[0]
	if r.Ref != 1.0 {
		t.Errorf("ref = %v, must never move after first set", r.Ref)
	}
	if r.Peak != 2.0 {
		t.Errorf("peak = %v, want 2.0 (monotonically non-decreasing)", r.Peak)
	}
}

func TestTickSkipsEmptyMint(t *testing.T) {
	e := newTestEngine(t, nil)
	e.mu.Lock()
	e.rules = append(e.rules, &models.Rule{Mint: "  "})
	e.mu.Unlock()

	e.tick() // must not panic or log a decision

	for _, line := range e.Events(100) {
		if strings.Contains(line, "[DRY]") {
			t.Errorf("no decision expected for an empty mint, got %q", line)
		}
	}
}

func TestDryRunEvalDoesNotMutate(t *testing.T) {
	feed := newStubFeed()
	feed.set("ABC", 1.0)
	e := newTestEngine(t, feed)
	if _, err := e.SetRule("ABC", RuleFields{SL: intPtr(10)}); err != nil {
		t.Fatal(err)
	}

	lines := e.DryRunEval("abc")
	if len(lines) != 1 || !strings.Contains(lines[0], "hold") {
		t.Errorf("dry run = %q, want a single hold line", lines)
	}

	if r := e.Rules()[0]; r.Ref != 0 || r.Peak != 0 {
		t.Error("dry-run evaluation must not write ref/peak back")
	}

	if got := e.DryRunEval("missing"); len(got) != 1 || got[0] != "No matching rules." {
		t.Errorf("dry run unknown mint = %q", got)
	}
}

func TestEnableDisableLifecycle(t *testing.T) {
	feed := newStubFeed()
	e := newTestEngine(t, feed)
	e.SetInterval(3)

	e.Enable()
	deadline := time.Now().Add(2 * time.Second)
	for !e.Alive() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !e.Alive() {
		t.Fatal("worker did not come alive")
	}

	e.Disable()
	deadline = time.Now().Add(5 * time.Second)
	for e.Alive() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if e.Alive() {
		t.Fatal("worker did not stop")
	}

	if s := e.Status(); s.Enabled {
		t.Error("status should show disabled")
	}
}
