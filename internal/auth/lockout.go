package auth

import (
	"time"

	"github.com/tablero-dev/tablero/internal/models"
	"github.com/tablero-dev/tablero/internal/types"
)

// Lockout state machine for login attempts. The counters live on the user row
// and are mutated here; persisting the change is the caller's job.

// LockExpired reports whether a locked account's window has elapsed, meaning
// the account may proceed as if it were active again.
func LockExpired(user *models.User, now time.Time) bool {
	if !user.Locked {
		return true
	}

	if user.LastFailedAt == nil {
		return true
	}

	return now.Sub(*user.LastFailedAt) >= types.LockoutWindow
}

// RecordFailure increments the failure counter and stamps the attempt time.
// It returns true when this failure locked the account.
func RecordFailure(user *models.User, now time.Time) bool {
	user.FailedAttempts++
	user.LastFailedAt = &now

	if user.FailedAttempts >= types.MaxFailedAttempts {
		user.Locked = true
	}

	return user.Locked
}

// ClearFailures resets the account to the active state. Used on successful
// login and on auto-unlock after the window elapses.
func ClearFailures(user *models.User) {
	user.FailedAttempts = 0
	user.Locked = false
	user.LastFailedAt = nil
}
