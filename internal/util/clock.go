package util

import "time"

// Clock abstracts wall-clock reads so time-dependent behavior (the access
// window, OTP expiry) can be driven by tests without waiting real minutes.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }
