package config

import "time"

type GuardConfig interface {
	GetGuardTimeout() time.Duration
}

type Guard struct{}

var _ GuardConfig = Guard{}

// GetGuardTimeout bounds a single identity validation; zero disables it
func (Guard) GetGuardTimeout() time.Duration {
	return GetDurationEnv("GUARD_TIMEOUT", 10*time.Second)
}
