package oidcrt

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim from a JWT without verifying the
// signature. Used as a fallback when the token response carries no expiry of
// its own. Returns the zero time for non-JWT tokens or tokens without exp.
func TokenExpiry(rawToken string) time.Time {
	if strings.TrimSpace(rawToken) == "" {
		return time.Time{}
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
