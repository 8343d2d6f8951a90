// Package presence derives a user's online state from the last time they were seen.
package presence

import "time"

// Window is how long after last-seen a user still counts as online.
const Window = 5 * time.Minute

// IsOnline reports whether a user last seen at lastSeen is online at now.
// The stored status flag is never consulted: it is only written on login and
// logout and goes stale.
func IsOnline(lastSeen, now time.Time) bool {
	return now.Sub(lastSeen) < Window
}
