package config

import (
	"os"
	"strconv"
	"time"
)

const (
	tokenRefreshIntervalVar      = "TOKEN_REFRESH_INTERVAL_MS"
	fallbackInactivityTimeoutVar = "FALLBACK_INACTIVITY_TIMEOUT"
	signInPathVar                = "SIGN_IN_PATH"
)

// Defaults used when the environment variables are unset or not numeric.
const (
	DefaultTokenRefreshInterval      = 10 * time.Minute
	DefaultFallbackInactivityTimeout = 30 * time.Minute
	defaultSignInPath                = "/auth/signin"
)

// SessionConfig holds the timings for session liveness: how often tokens are
// refreshed while authenticated and how long a session without a known expiry
// may live before forced sign-out.
type SessionConfig interface {
	GetTokenRefreshInterval() time.Duration
	GetFallbackInactivityTimeout() time.Duration
	GetSignInPath() string
}

type SessionVars struct{}

var _ SessionConfig = SessionVars{}

func (SessionVars) GetTokenRefreshInterval() time.Duration {
	return durationMSEnv(tokenRefreshIntervalVar, DefaultTokenRefreshInterval)
}

func (SessionVars) GetFallbackInactivityTimeout() time.Duration {
	return durationMSEnv(fallbackInactivityTimeoutVar, DefaultFallbackInactivityTimeout)
}

func (SessionVars) GetSignInPath() string {
	return GetEnv(signInPathVar, defaultSignInPath)
}

// durationMSEnv reads a millisecond value from the environment. Unset,
// non-numeric, and non-positive values silently fall back to the default.
func durationMSEnv(envVar string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(envVar)
	if raw == "" {
		return defaultValue
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
