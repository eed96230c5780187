// Package clock abstracts time so grace and retention deadlines can be
// tested without real waiting.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// New returns a Clock backed by the system clock.
func New() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}
