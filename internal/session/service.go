package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"geniefy-platform/internal/audit"
	"geniefy-platform/internal/auth"
	"geniefy-platform/internal/authsync"
	"geniefy-platform/pkg/utils"
)

var (
	ErrInvalidRefresh = errors.New("session: refresh token invalid")
	ErrRefreshReused  = errors.New("session: refresh token reused")
)

// TokenVerifier asks an upstream authority whether an access token is still
// good. *backend.Client satisfies it.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (bool, error)
}

// TransitionError rejects a workspace switch or impersonation whose issued
// token did not land on the expected scope. Every mismatch is listed.
type TransitionError struct {
	Result auth.TransitionResult
}

func (e *TransitionError) Error() string {
	return "session: transition rejected: " + strings.Join(e.Result.Errors, "; ")
}

// Session is the outcome of login, refresh, switch or impersonation.
type Session struct {
	Tokens   auth.TokenPair
	User     auth.UserInfo
	Remember bool
}

// ServiceDeps wires a Service. Tokens and Repo are required; the rest
// degrade gracefully when nil.
type ServiceDeps struct {
	Tokens      *auth.Manager
	Repo        Repository
	Verifier    TokenVerifier
	Broadcaster authsync.Broadcaster
	Audit       *audit.Service
	Logger      *slog.Logger

	// ValidityTTL bounds how long a token-validity verdict is trusted
	// without re-checking upstream.
	ValidityTTL time.Duration

	Clock func() time.Time
}

// Service owns the session lifecycle: issuing token pairs, rotating refresh
// tokens, validating access tokens through a short-lived cache, and fanning
// auth-state changes out to peer instances.
type Service struct {
	tokens      *auth.Manager
	repo        Repository
	verifier    TokenVerifier
	broadcaster authsync.Broadcaster
	audit       *audit.Service
	log         *slog.Logger

	validity *utils.TTLCache[string, bool]
	clock    func() time.Time
}

func NewService(d ServiceDeps) (*Service, error) {
	if d.Tokens == nil {
		return nil, errors.New("session: token manager is required")
	}
	if d.Repo == nil {
		return nil, errors.New("session: repository is required")
	}
	if d.ValidityTTL <= 0 {
		d.ValidityTTL = 5 * time.Minute
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	return &Service{
		tokens:      d.Tokens,
		repo:        d.Repo,
		verifier:    d.Verifier,
		broadcaster: d.Broadcaster,
		audit:       d.Audit,
		log:         d.Logger,
		validity:    utils.NewTTLCache[string, bool](d.ValidityTTL, d.Clock),
		clock:       d.Clock,
	}, nil
}

/* ===================== VALIDATE ===================== */

// Validate reports whether an access token is currently good. Verdicts are
// cached; within the cache window a revoked token still reads as valid
// unless something flushes the entry first.
func (s *Service) Validate(ctx context.Context, token string) (bool, error) {
	if ok, hit := s.validity.Get(token); hit {
		return ok, nil
	}

	ok, err := s.check(ctx, token)
	if err != nil {
		// Upstream failures are not cached; the next call retries.
		return false, err
	}

	s.validity.Set(token, ok)
	return ok, nil
}

func (s *Service) check(ctx context.Context, token string) (bool, error) {
	if s.verifier != nil {
		return s.verifier.VerifyToken(ctx, token)
	}
	_, err := s.tokens.Verify(token, auth.TokenTypeAccess, s.clock())
	return err == nil, nil
}

// FlushValidity drops every cached verdict. Peer sign-out notifications call
// this so a revoked token does not coast on a stale cache entry.
func (s *Service) FlushValidity() {
	s.validity.Clear()
}

/* ===================== LOGIN ===================== */

// Login issues a fresh token pair for an already-authenticated identity and
// records the refresh token server-side.
func (s *Service) Login(ctx context.Context, user auth.UserInfo, remember bool, ip string) (Session, error) {
	now := s.clock()

	pair, err := s.tokens.IssuePair(now, user)
	if err != nil {
		return Session{}, fmt.Errorf("issue tokens: %w", err)
	}

	if err := s.saveRefresh(ctx, pair.RefreshToken, user, remember, now); err != nil {
		return Session{}, err
	}

	s.validity.Set(pair.AccessToken, true)
	s.announce(ctx, authsync.NewState(true, &user, now))
	s.record(ctx, audit.EventTypeLogin, user, ip)

	return Session{Tokens: pair, User: user, Remember: remember}, nil
}

/* ===================== REFRESH ===================== */

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued from the server-side record. Presenting an already-revoked
// token revokes every session of that user.
func (s *Service) Refresh(ctx context.Context, rawRefresh, ip string) (Session, error) {
	now := s.clock()

	claims, err := s.tokens.Verify(rawRefresh, auth.TokenTypeRefresh, now)
	if err != nil {
		return Session{}, ErrInvalidRefresh
	}

	hash := HashToken(rawRefresh)
	rec, err := s.repo.Get(ctx, hash)
	if errors.Is(err, ErrTokenNotFound) {
		return Session{}, ErrInvalidRefresh
	}
	if err != nil {
		return Session{}, err
	}

	if rec.Revoked {
		if err := s.repo.RevokeAllForUser(ctx, rec.UserID); err != nil {
			s.log.Warn("revoke-all after refresh reuse failed", "error", err, "user_id", rec.UserID)
		}
		return Session{}, ErrRefreshReused
	}
	if !rec.ExpiresAt.After(now) || claims.UserID != rec.UserID {
		return Session{}, ErrInvalidRefresh
	}

	// The refresh JWT carries scoping claims only; profile and role come
	// back from the stored record.
	user := rec.User()

	pair, err := s.tokens.IssuePair(now, user)
	if err != nil {
		return Session{}, fmt.Errorf("issue tokens: %w", err)
	}
	next, err := s.buildRefresh(pair.RefreshToken, user, rec.Remember, now)
	if err != nil {
		return Session{}, err
	}
	// Revoking the old token and storing its replacement is one atomic step;
	// a failure in between must not leave the user without a refresh token.
	if err := s.repo.Rotate(ctx, hash, next); err != nil {
		return Session{}, err
	}

	s.validity.Set(pair.AccessToken, true)
	s.record(ctx, audit.EventTypeRefresh, user, ip)

	return Session{Tokens: pair, User: user, Remember: rec.Remember}, nil
}

/* ===================== SWITCH / IMPERSONATE ===================== */

// Switch moves a session to another organization or workspace. The issued
// token is validated against the requested scope before anything is
// persisted; on rejection the caller keeps serving the original token.
func (s *Service) Switch(ctx context.Context, originalToken, tenantID, teamID, ip string) (Session, error) {
	now := s.clock()

	original, err := auth.Decode(originalToken, now)
	if err != nil {
		return Session{}, fmt.Errorf("current token: %w", err)
	}

	target := original.User()
	target.TenantID = tenantID
	target.TeamID = teamID

	return s.transition(ctx, originalToken, original.User(), target, audit.EventTypeSwitch, ip)
}

// Impersonate starts a support session acting as subject. The actor comes
// from originalToken; the issued tokens carry the subject identity with
// is_impersonate set.
func (s *Service) Impersonate(ctx context.Context, originalToken string, subject auth.UserInfo, ip string) (Session, error) {
	now := s.clock()

	original, err := auth.Decode(originalToken, now)
	if err != nil {
		return Session{}, fmt.Errorf("current token: %w", err)
	}

	subject.IsImpersonate = true
	return s.transition(ctx, originalToken, original.User(), subject, audit.EventTypeImpersonationStart, ip)
}

func (s *Service) transition(ctx context.Context, originalToken string, actor, target auth.UserInfo, typ audit.EventType, ip string) (Session, error) {
	now := s.clock()

	pair, err := s.tokens.IssuePair(now, target)
	if err != nil {
		return Session{}, fmt.Errorf("issue tokens: %w", err)
	}

	res := auth.ValidateTransition(originalToken, pair.AccessToken, target.TenantID, target.TeamID, now)
	if !res.Valid {
		if s.audit != nil {
			if err := s.audit.LogTransitionDenied(ctx, actor.TenantID, actor.UserID, res.Errors); err != nil {
				s.log.Warn("audit write failed", "error", err)
			}
		}
		return Session{}, &TransitionError{Result: res}
	}

	if err := s.saveRefresh(ctx, pair.RefreshToken, target, false, now); err != nil {
		return Session{}, err
	}

	s.validity.Set(pair.AccessToken, true)
	s.announce(ctx, authsync.NewState(true, &target, now))

	if s.audit != nil {
		var err error
		if typ == audit.EventTypeImpersonationStart {
			err = s.audit.LogImpersonation(ctx, target.TenantID, actor.UserID, target.UserID, target.TeamID, ip)
		} else {
			err = s.audit.LogSession(ctx, typ, target.TenantID, actor.UserID, target.TeamID, ip)
		}
		if err != nil {
			s.log.Warn("audit write failed", "error", err)
		}
	}

	return Session{Tokens: pair, User: target}, nil
}

/* ===================== LOGOUT ===================== */

// Logout revokes the refresh token, forgets the access token's cached
// verdict and announces the sign-out. Cleanup is best effort; logout never
// fails the user out of logging out.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken, ip string) {
	now := s.clock()

	s.validity.Delete(accessToken)

	if refreshToken != "" {
		if err := s.repo.Revoke(ctx, HashToken(refreshToken)); err != nil && !errors.Is(err, ErrTokenNotFound) {
			s.log.Warn("refresh token revoke failed", "error", err)
		}
	}

	s.announce(ctx, authsync.NewState(false, nil, now))

	if claims, err := auth.Decode(accessToken, now); err == nil {
		s.record(ctx, audit.EventTypeLogout, claims.User(), ip)
	}
}

/* ===================== INTERNAL ===================== */

func (s *Service) buildRefresh(rawRefresh string, user auth.UserInfo, remember bool, now time.Time) (RefreshToken, error) {
	claims, err := auth.Decode(rawRefresh, now)
	if err != nil {
		return RefreshToken{}, fmt.Errorf("decode issued refresh token: %w", err)
	}

	expires := now
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	return RefreshToken{
		TokenHash: HashToken(rawRefresh),
		UserID:    user.UserID,
		Username:  user.Username,
		Name:      user.Name,
		TenantID:  user.TenantID,
		TeamID:    user.TeamID,
		RoleID:    user.RoleID,
		Remember:  remember,
		CreatedAt: now,
		ExpiresAt: expires,
	}, nil
}

func (s *Service) saveRefresh(ctx context.Context, rawRefresh string, user auth.UserInfo, remember bool, now time.Time) error {
	rec, err := s.buildRefresh(rawRefresh, user, remember, now)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (s *Service) announce(ctx context.Context, state authsync.State) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Publish(ctx, state); err != nil {
		s.log.Warn("auth-state broadcast failed", "error", err)
	}
}

func (s *Service) record(ctx context.Context, typ audit.EventType, user auth.UserInfo, ip string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogSession(ctx, typ, user.TenantID, user.UserID, user.TeamID, ip); err != nil {
		s.log.Warn("audit write failed", "error", err)
	}
}
