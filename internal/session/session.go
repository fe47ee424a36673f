package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no access token available")

// Session is the identity boundary: a signed-in flag and a bearer token
// source. Both are allowed to be unavailable, which downgrades every
// operation to guest behavior.
type Session interface {
	SignedIn() bool
	Token(ctx context.Context) (string, error)
}

type guest struct{}

// Guest is a permanently signed-out session.
func Guest() Session {
	return guest{}
}

func (guest) SignedIn() bool { return false }

func (guest) Token(ctx context.Context) (string, error) {
	return "", ErrNoToken
}

// TokenSource produces the current bearer token, or an error when none is
// available (signed out, refresh failed).
type TokenSource func(ctx context.Context) (string, error)

type tokenSession struct {
	source TokenSource
	now    func() time.Time
}

// FromTokenSource builds a session whose signed-in state follows the token:
// present and unexpired means signed in. The JWT exp claim is read without
// signature verification; a client never holds the signing key, and the
// server re-validates every request anyway.
func FromTokenSource(source TokenSource) Session {
	return &tokenSession{source: source, now: time.Now}
}

func (s *tokenSession) SignedIn() bool {
	token, err := s.source(context.Background())
	if err != nil || token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		// An opaque (non-JWT) token still counts as signed in; only a
		// provably expired JWT does not.
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return s.now().Before(exp.Time)
}

func (s *tokenSession) Token(ctx context.Context) (string, error) {
	token, err := s.source(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
