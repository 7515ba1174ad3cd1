package analyzer

import "time"

// Clock supplies the current time to the engine. The delta-floor
// schedule and the expiry-day late-entry check read it; inject a fixed
// implementation to make analysis reproducible.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns a Clock backed by the system time.
func RealClock() Clock { return realClock{} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// FixedClock returns a Clock pinned to t.
func FixedClock(t time.Time) Clock { return fixedClock{t: t} }
