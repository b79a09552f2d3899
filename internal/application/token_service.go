package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matiasb-dev/authkeep/pkg/helpers"
)

// TokenService issues, verifies, refreshes and revokes bearer tokens.
//
// A token moves through Issued -> Valid -> {Refreshed | Revoked | Expired}.
// The JWT itself carries identity and expiry; the session keyed by the token's
// sid is what makes revocation and refresh rotation observable. When Sessions
// is nil the service degrades to stateless JWTs.
type TokenService struct {
	JWT      *helpers.JWTManager
	Sessions SessionStore
	Logger   *logrus.Logger

	// SingleSession revokes every outstanding session of a user when a new
	// token is issued. Default is multi-session.
	SingleSession bool
}

func NewTokenService(jwt *helpers.JWTManager, sessions SessionStore, logger *logrus.Logger, singleSession bool) *TokenService {
	return &TokenService{JWT: jwt, Sessions: sessions, Logger: logger, SingleSession: singleSession}
}

// Issue creates a new session and signs a token bound to it.
func (s *TokenService) Issue(ctx context.Context, userID string) (string, time.Time, error) {
	sid := uuid.NewString()

	if s.Sessions != nil {
		if s.SingleSession {
			if err := s.Sessions.DeleteAll(ctx, userID); err != nil && s.Logger != nil {
				s.Logger.WithError(err).WithField("user_id", userID).Warn("revoke prior sessions failed")
			}
		}
		if err := s.Sessions.Put(ctx, userID, sid, s.JWT.RefreshTTL); err != nil {
			return "", time.Time{}, err
		}
	}

	return s.JWT.Generate(userID, sid)
}

// Verify resolves the identity behind a token. Malformed tokens fail with
// ErrUnauthenticated, expired ones with ErrTokenExpired, and tokens whose
// session is gone (logout or rotation) with ErrTokenRevoked.
func (s *TokenService) Verify(ctx context.Context, token string) (string, error) {
	claims, err := s.JWT.Parse(token)
	if err != nil {
		if errors.Is(err, helpers.ErrExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrUnauthenticated
	}
	if err := s.checkSession(ctx, claims); err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// Refresh exchanges a valid-or-recently-expired token for a fresh one and
// invalidates the old session so the prior token stops verifying.
func (s *TokenService) Refresh(ctx context.Context, token string) (string, time.Time, error) {
	claims, err := s.JWT.ParseAllowExpired(token)
	if err != nil {
		return "", time.Time{}, ErrUnauthenticated
	}
	if !s.JWT.WithinRefreshWindow(claims) {
		return "", time.Time{}, ErrTokenExpired
	}
	if err := s.checkSession(ctx, claims); err != nil {
		return "", time.Time{}, err
	}

	if s.Sessions != nil {
		if _, err := s.Sessions.Delete(ctx, claims.UserID, claims.SessionID); err != nil {
			return "", time.Time{}, err
		}
	}

	return s.Issue(ctx, claims.UserID)
}

// Revoke terminates the token's session. Revoking a token whose session is
// already gone fails with ErrUnauthenticated, mirroring "already logged out".
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := s.JWT.Parse(token)
	if err != nil {
		return ErrUnauthenticated
	}
	if s.Sessions == nil {
		return nil
	}
	existed, err := s.Sessions.Delete(ctx, claims.UserID, claims.SessionID)
	if err != nil {
		return err
	}
	if !existed {
		return ErrUnauthenticated
	}
	return nil
}

func (s *TokenService) checkSession(ctx context.Context, claims *helpers.Claims) error {
	if s.Sessions == nil {
		return nil
	}
	uid, err := s.Sessions.Lookup(ctx, claims.SessionID)
	if err != nil {
		return err
	}
	if uid == "" || uid != claims.UserID {
		return ErrTokenRevoked
	}
	return nil
}
