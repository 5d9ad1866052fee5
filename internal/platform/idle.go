package platform

import "time"

// IdleProbe returns the duration since last user input.
type IdleProbe interface {
	IdleDuration() (time.Duration, error)
}

// NewIdleProbe returns a platform-specific idle probe.
func NewIdleProbe() IdleProbe {
	return newIdleProbe()
}
