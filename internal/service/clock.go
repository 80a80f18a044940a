package service

import "time"

// Clock supplies the wall clock used for elapsed and remaining times.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns the system clock.
func RealClock() Clock {
	return realClock{}
}
