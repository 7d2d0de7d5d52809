// Package auth owns the credential collaborators: bcrypt password hashing and
// the token issuer/validator. Access tokens are stateless HS256 JWTs; refresh
// tokens are opaque random strings stored server-side and consumed exactly
// once per use (rotate-on-use), so a stolen refresh token dies the moment its
// legitimate holder refreshes.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"inkwell/apperr"
	"inkwell/model"
	"inkwell/store"
)

const (
	// DefaultAccessTokenTTL matches the upstream same-day access expiry.
	DefaultAccessTokenTTL = 24 * time.Hour
	// DefaultRefreshTokenTTL is the 7-day refresh window.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	refreshTokenBytes = 32
)

// Claims carries the registered claim set plus the user id the token was
// minted for.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService issues, rotates, revokes and validates session tokens.
// Validation is stateless; rotation and revocation go through the token store.
type TokenService struct {
	tokens     store.TokenStore
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(tokens store.TokenStore, secret []byte) *TokenService {
	return &TokenService{
		tokens:     tokens,
		secret:     secret,
		accessTTL:  DefaultAccessTokenTTL,
		refreshTTL: DefaultRefreshTokenTTL,
		now:        time.Now,
	}
}

// WithTTLs overrides the token lifetimes, mainly for tests.
func (s *TokenService) WithTTLs(access, refresh time.Duration) *TokenService {
	s.accessTTL = access
	s.refreshTTL = refresh
	return s
}

// Issue mints a fresh token pair for userID and persists the refresh half.
func (s *TokenService) Issue(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := s.signAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := randomToken()
	if err != nil {
		return nil, err
	}
	record := &model.RefreshToken{
		Token:     refresh,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.tokens.SaveRefreshToken(ctx, record); err != nil {
		return nil, apperr.ErrUnavailable
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh consumes the presented refresh token and mints a new pair. The old
// token is unusable afterwards regardless of outcome; a replayed or expired
// token reads as unauthenticated.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	record, err := s.tokens.ConsumeRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrUnauthenticated
		}
		return nil, apperr.ErrUnavailable
	}
	if record.Expired(s.now()) {
		return nil, apperr.ErrUnauthenticated
	}
	return s.Issue(ctx, record.UserID)
}

// Revoke permanently invalidates a refresh token (logout). Revoking a token
// that is absent, already consumed or already revoked reads as
// unauthenticated.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	if _, err := s.tokens.ConsumeRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.ErrUnauthenticated
		}
		return apperr.ErrUnavailable
	}
	return nil
}

// Validate statelessly checks an access token and returns the user id it was
// minted for. Expired, malformed and badly signed tokens are all just
// unauthenticated.
func (s *TokenService) Validate(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", apperr.ErrUnauthenticated
	}
	return claims.UserID, nil
}

func (s *TokenService) signAccessToken(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
		UserID: userID,
	})
	return token.SignedString(s.secret)
}

func randomToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
