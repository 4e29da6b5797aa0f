package prices

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"time"
)

const simPeriod = 12.0 // seconds per full oscillation

// Sim returns a deterministic pseudo-price for mint: a base value in
// [0.5, 1.0) derived from a hash of the mint, with a smooth sinusoidal
// oscillation whose phase is also hash-derived. Only for offline use;
// callers must tag the result "sim" so it is never mistaken for market
// data.
func (s *Source) Sim(mint string) float64 {
	return simAt(mint, time.Now())
}

func simAt(mint string, now time.Time) float64 {
	sum := sha256.Sum256([]byte(normalize(mint)))
	baseBits := binary.BigEndian.Uint64(sum[:8])
	phaseBits := binary.BigEndian.Uint64(sum[8:16])

	base := 0.5 + 0.5*(float64(baseBits)/float64(math.MaxUint64))
	phase := 2 * math.Pi * (float64(phaseBits) / float64(math.MaxUint64))

	t := float64(now.UnixNano()) / float64(time.Second)
	wobble := 0.05 * math.Sin(2*math.Pi*t/simPeriod+phase)

	return round6(base * (1 + wobble))
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
