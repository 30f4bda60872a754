package store

import (
	"time"

	"github.com/google/uuid"
)

var timeNow = time.Now

func SetTimeNowFn(f func() time.Time) {
	timeNow = f
}

func RestoreTimeNow() {
	timeNow = time.Now
}

// stamp returns now, or prev when the clock went backwards, so updatedAt never decreases.
func stamp(prev time.Time) time.Time {
	now := timeNow()
	if now.Before(prev) {
		return prev
	}
	return now
}

// newID returns a time-ordered UUIDv7 string.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
