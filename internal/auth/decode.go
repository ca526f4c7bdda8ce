package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")
)

// Decode extracts claims from a raw JWT without verifying its signature.
// The trust boundary is the issuing backend over HTTPS; signature checks
// belong to Manager.Verify and to the backend itself.
//
// Decode is a pure parser: it returns an error and nothing else. Whether a
// failure means "redirect to login" is a policy decision for the caller.
//
// A token is rejected when it is empty, does not have exactly three
// segments, its payload is not base64-encoded JSON, or its exp claim is
// strictly in the past relative to now.
func Decode(raw string, now time.Time) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrMalformedToken
	}
	if strings.Count(raw, ".") != 2 {
		return Claims{}, ErrMalformedToken
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Unix() < now.Unix() {
		return Claims{}, ErrTokenExpired
	}
	return claims, nil
}

// UserFromToken decodes a token and projects its identity claims.
// Unknown extra claims in the payload are ignored.
func UserFromToken(raw string, now time.Time) (UserInfo, error) {
	claims, err := Decode(raw, now)
	if err != nil {
		return UserInfo{}, err
	}
	return claims.User(), nil
}
