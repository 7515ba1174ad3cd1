package chain

import (
	"math"
	"sort"
)

// Side identifies which leg of a strike pair a quote belongs to.
type Side string

const (
	// SideCall selects the call leg of a strike pair.
	SideCall Side = "call"
	// SidePut selects the put leg of a strike pair.
	SidePut Side = "put"
)

// StrikePair holds the call and put quotes listed at one strike. A side
// the exchange does not list stays nil, never zero-filled.
type StrikePair struct {
	Call *OptionQuote `json:"call,omitempty"`
	Put  *OptionQuote `json:"put,omitempty"`
}

// Quote returns the requested leg of the pair, nil when absent.
func (p StrikePair) Quote(side Side) *OptionQuote {
	if side == SidePut {
		return p.Put
	}
	return p.Call
}

// Snapshot is a point-in-time view of one expiry's option chain, keyed
// by exact listed strike. It is immutable after construction.
type Snapshot struct {
	strikes        map[float64]StrikePair
	sorted         []float64
	referencePrice float64
}

// NewSnapshot builds a snapshot from already-normalized strike pairs.
// referencePrice is the chain-reported last traded price of the
// underlying; pass 0 when the chain carries none.
func NewSnapshot(strikes map[float64]StrikePair, referencePrice float64) *Snapshot {
	sorted := make([]float64, 0, len(strikes))
	for k := range strikes {
		sorted = append(sorted, k)
	}
	sort.Float64s(sorted)
	cloned := make(map[float64]StrikePair, len(strikes))
	for k, v := range strikes {
		cloned[k] = v
	}
	return &Snapshot{strikes: cloned, sorted: sorted, referencePrice: referencePrice}
}

// Len returns the number of listed strikes.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.sorted)
}

// Strikes returns all listed strikes in ascending order. The returned
// slice is shared; callers must not mutate it.
func (s *Snapshot) Strikes() []float64 {
	if s == nil {
		return nil
	}
	return s.sorted
}

// Pair returns the call/put pair listed at an exact strike.
func (s *Snapshot) Pair(strike float64) (StrikePair, bool) {
	if s == nil {
		return StrikePair{}, false
	}
	p, ok := s.strikes[strike]
	return p, ok
}

// Quote returns one leg at an exact strike, nil when the strike or the
// side is not listed.
func (s *Snapshot) Quote(strike float64, side Side) *OptionQuote {
	p, ok := s.Pair(strike)
	if !ok {
		return nil
	}
	return p.Quote(side)
}

// ReferencePrice returns the chain-reported underlying price, false
// when the chain carries none.
func (s *Snapshot) ReferencePrice() (float64, bool) {
	if s == nil || s.referencePrice <= 0 {
		return 0, false
	}
	return s.referencePrice, true
}

// NearestStrike returns the listed strike closest to target by absolute
// distance, false for an empty chain. Ties resolve to the lower strike.
func (s *Snapshot) NearestStrike(target float64) (float64, bool) {
	if s.Len() == 0 {
		return 0, false
	}
	best := s.sorted[0]
	bestDist := math.Abs(best - target)
	for _, k := range s.sorted[1:] {
		if d := math.Abs(k - target); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best, true
}
