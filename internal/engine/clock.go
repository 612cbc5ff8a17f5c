package engine

import "time"

// Clock abstracts time retrieval so the countdown logic can be tested against
// fixed instants.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system time.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
