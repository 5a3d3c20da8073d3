package types

import (
	"os"
	"strings"
	"time"
)

const ContextUserKey = "user"

// Project roles. Owner memberships are only ever created together with the
// project itself; AddMembers accepts editor and reader.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleReader = "reader"
)

// Login lockout policy: the account locks on the 4th consecutive failure and
// unlocks by itself once the window has elapsed since the locking failure.
const (
	MaxFailedAttempts = 4
	LockoutWindow     = 5 * time.Minute
)

// Password recovery codes expire shortly after they are mailed out.
const ResetCodeTTL = 10 * time.Minute

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

func ValidMemberRole(role string) bool {
	return role == RoleEditor || role == RoleReader
}
