package store

import (
	"testing"
	"time"

	"mork-fetch/internal/models"
)

func newMemJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := NewJournal(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecentFills(t *testing.T) {
	j := newMemJournal(t)

	base := time.Now().Add(-time.Minute)
	fills := []models.Fill{
		{Timestamp: base, Mint: "AAA", Side: models.FillBuy, Qty: 10, Price: 1.0, Source: "dex"},
		{Timestamp: base.Add(10 * time.Second), Mint: "AAA", Side: models.FillSell, Qty: 5, Price: 1.5, Realized: 2.5, Source: "given"},
		{Timestamp: base.Add(20 * time.Second), Mint: "BBB", Side: models.FillBuy, Qty: 1, Price: 0.5, Source: "sim"},
	}
	for _, f := range fills {
		if err := j.RecordFill(f); err != nil {
			t.Fatalf("RecordFill: %v", err)
		}
	}

	got, err := j.RecentFills(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentFills(2) returned %d fills", len(got))
	}
	// Newest first.
	if got[0].Mint != "BBB" || got[1].Side != models.FillSell {
		t.Errorf("unexpected order: %+v", got)
	}
	if got[0].ID == "" {
		t.Error("fill ID not assigned on insert")
	}
}

func TestStatsAggregates(t *testing.T) {
	j := newMemJournal(t)

	if err := j.RecordFill(models.Fill{Mint: "A", Side: models.FillBuy, Qty: 1, Price: 1}); err != nil {
		t.Fatal(err)
	}
	if err := j.RecordFill(models.Fill{Mint: "A", Side: models.FillSell, Qty: 1, Price: 2, Realized: 1}); err != nil {
		t.Fatal(err)
	}
	if err := j.RecordFill(models.Fill{Mint: "B", Side: models.FillSell, Qty: 1, Price: 2, Realized: -0.5}); err != nil {
		t.Fatal(err)
	}

	s, err := j.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if s.Fills != 3 || s.Buys != 1 || s.Sells != 2 {
		t.Errorf("stats = %+v, want 3 fills, 1 buy, 2 sells", s)
	}
	if s.Realized != 0.5 {
		t.Errorf("realized = %v, want 0.5", s.Realized)
	}
}

func TestStatsEmptyJournal(t *testing.T) {
	j := newMemJournal(t)

	s, err := j.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if s.Fills != 0 || s.Realized != 0 {
		t.Errorf("empty journal stats = %+v", s)
	}

	fills, err := j.RecentFills(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(fills) != 0 {
		t.Errorf("empty journal returned %d fills", len(fills))
	}
}
