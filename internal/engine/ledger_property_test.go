package engine

import (
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: for any sequence of buys and sells, every position keeps
// qty >= 0, and avg resets to exactly 0 whenever qty reaches 0.
func TestProperty_LedgerInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	type op struct {
		Buy   bool
		Mint  int // index into a small mint set
		Qty   float64
		Price float64
	}

	mints := []string{"AAA", "BBB", "CCC"}

	opGen := gen.Struct(reflect.TypeOf(op{}), map[string]gopter.Gen{
		"Buy":   gen.Bool(),
		"Mint":  gen.IntRange(0, len(mints)-1),
		"Qty":   gen.Float64Range(0.001, 100),
		"Price": gen.Float64Range(0.0001, 1000),
	})

	properties.Property("qty never negative, avg zero at qty zero", prop.ForAll(
		func(ops []op) bool {
			e := newTestEngine(t, nil)
			for _, o := range ops {
				mint := mints[o.Mint]
				if o.Buy {
					e.LedgerBuy(mint, o.Qty, o.Price)
				} else {
					e.LedgerSell(mint, o.Qty, o.Price)
				}
				for _, pos := range e.Ledger().Positions {
					if pos.Qty < 0 {
						return false
					}
					if pos.Qty == 0 && pos.Avg != 0 {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(opGen),
	))

	properties.TestingRun(t)
}

// Property: once initialized, peak >= ref for every rule, and peak is
// monotonically non-decreasing across ticks.
func TestProperty_PeakNeverBelowRef(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("peak >= ref after any price path", prop.ForAll(
		func(path []float64) bool {
			feed := newStubFeed()
			e := newTestEngine(t, feed)
			if _, err := e.SetRule("MINT", RuleFields{SL: intPtr(10), TP: intPtr(10), Trail: intPtr(5)}); err != nil {
				return false
			}

			prevPeak := 0.0
			for _, price := range path {
				feed.set("MINT", price)
				e.tick()

				r := e.Rules()[0]
				if r.Ref == 0 || r.Peak == 0 {
					return false // initialized on first tick
				}
				if r.Peak < r.Ref {
					return false
				}
				if r.Peak < prevPeak {
					return false
				}
				prevPeak = r.Peak
			}
			return true
		},
		gen.SliceOfN(8, gen.Float64Range(0.0001, 1000)),
	))

	properties.TestingRun(t)
}
