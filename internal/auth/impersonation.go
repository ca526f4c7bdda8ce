package auth

import (
	"errors"
	"fmt"
	"time"
)

// TransitionKind classifies what a new token represents relative to the one
// it replaces.
type TransitionKind string

const (
	// TransitionSwitch is a same-user organization/workspace switch.
	TransitionSwitch TransitionKind = "switch"
	// TransitionImpersonation is a cross-user support impersonation.
	TransitionImpersonation TransitionKind = "impersonation"
)

// TransitionResult carries the outcome of validating a token transition.
// Errors accumulate so the caller can surface every mismatch at once.
type TransitionResult struct {
	Valid  bool
	Kind   TransitionKind
	Errors []string
}

// ValidateTransition checks that a token issued by a switch or impersonation
// landed where the caller expected. expectedTeamID may be empty, in which
// case the team scope is not checked.
//
// On failure the caller must reject the switch and keep serving the original
// token; cookies must never end up referencing a token that fails these
// expectations.
func ValidateTransition(originalToken, newToken, expectedTenantID, expectedTeamID string, now time.Time) TransitionResult {
	res := TransitionResult{Kind: TransitionSwitch}

	original, err := Decode(originalToken, now)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("original token invalid: %v", err))
	}

	next, err := Decode(newToken, now)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			res.Errors = append(res.Errors, "new token is expired")
		} else {
			res.Errors = append(res.Errors, fmt.Sprintf("new token invalid: %v", err))
		}
		return res
	}

	if original.UserID != "" && next.UserID != original.UserID {
		res.Kind = TransitionImpersonation
		// The backend does not reliably stamp is_impersonate on support
		// sessions, so its absence here is tolerated rather than rejected.
	}

	if next.TenantID != expectedTenantID {
		res.Errors = append(res.Errors, fmt.Sprintf("tenant_id not updated correctly. Expected: %s, Got: %s", expectedTenantID, next.TenantID))
	}
	if expectedTeamID != "" && next.TeamID != expectedTeamID {
		res.Errors = append(res.Errors, fmt.Sprintf("team_id not updated correctly. Expected: %s, Got: %s", expectedTeamID, next.TeamID))
	}
	if next.UserID == "" {
		res.Errors = append(res.Errors, "new token is missing user_id")
	}

	res.Valid = len(res.Errors) == 0
	return res
}
