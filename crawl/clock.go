package crawl

import "time"

// Clock abstracts wall-clock time so the limiter's state machine can be
// driven in tests without real delays.
type Clock interface {
	Now() time.Time
}

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
