package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// RecentWindowSpan is how far back the recent readings window reaches.
const RecentWindowSpan = 7 * 24 * time.Hour

// clock is a package-level time source so tests can freeze time via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// RecentWindow returns the closed interval [now-7d, now] in UTC.
func RecentWindow() (start, end time.Time) {
	end = clock.Now().UTC()
	return end.Add(-RecentWindowSpan), end
}
