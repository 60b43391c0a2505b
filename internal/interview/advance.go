package interview

import "sync/atomic"

// advanceGuard is the exclusive claim on a topic transition. The claim
// is taken synchronously before any asynchronous work begins and
// released only after the next phase has fully resolved, so a manual
// confirmation racing the grace countdown produces exactly one
// transition.
type advanceGuard struct {
	claimed atomic.Bool
}

// tryClaim returns true if the caller now owns the transition. A
// second concurrent caller gets false and must treat the call as a
// no-op rather than retry.
func (g *advanceGuard) tryClaim() bool {
	return g.claimed.CompareAndSwap(false, true)
}

func (g *advanceGuard) release() {
	g.claimed.Store(false)
}

func (g *advanceGuard) held() bool {
	return g.claimed.Load()
}
