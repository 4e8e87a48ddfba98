package osutil

import "time"

// MonotonicClock reports elapsed seconds since an arbitrary epoch fixed at
// first use. The Dummy backend's stream workers use it to count how many
// frames' worth of time has elapsed; it is built on Go's monotonic time
// reading, so it does not jump backwards the way a wall clock can across an
// NTP step.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock returns a clock whose epoch is the current instant.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Seconds returns the elapsed time since the clock was created, in seconds.
func (c *MonotonicClock) Seconds() float64 {
	return time.Since(c.start).Seconds()
}
