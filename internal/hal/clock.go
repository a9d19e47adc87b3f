package hal

import "time"

type systemClock struct{}

// NewSystemClock returns a Clock backed by the host timer.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
