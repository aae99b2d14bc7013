package design

import (
	"math/rand"
	"sync/atomic"
	"time"
)

var freshSeeds atomic.Int64

// NewRand returns the random source for one analysis run together with the
// seed it was built from. A zero seed picks a fresh, time-derived seed; the
// returned value lets callers record it so the run can be replayed.
//
// Every random draw of an analysis (design construction only; the transform
// is deterministic) must come from this one generator.
func NewRand(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano() ^ (freshSeeds.Add(1) << 40)
		if seed == 0 {
			seed = 1
		}
	}
	return rand.New(rand.NewSource(seed)), seed
}
