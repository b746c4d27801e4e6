package service

import "time"

// nowFunc is injected into services so tests can pin the clock.
type nowFunc func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
