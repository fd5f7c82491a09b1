// Package auth provides session token generation/validation, password
// hashing, and the session cookie policy for the LocalLynk API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. User submits the signup or login form
// 2. Server verifies the credentials (bcrypt compare on login)
// 3. Server issues a JWT carrying {id, username, email}, signed HS256,
//    valid for 7 days, and stores it in an HttpOnly "token" cookie
// 4. On page load the frontend calls GET /api/auth/check; the server
//    validates the cookie's JWT and reports the authentication state
// 5. Sign-out clears the cookie; the token itself stays valid until expiry
//    (stateless tokens — there is no server-side session table to delete from)
//
// WHY JWT?
// The token is self-contained: the server verifies the signature and reads
// the claims without any database lookup. No session store, no sticky
// sessions, nothing to replicate if a second server instance appears.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mahirfaisal/locallynk/internal/model"
)

// SessionDuration is how long an issued session token (and its cookie)
// remains valid. Expiry is checked lazily at validation time — there is no
// background sweep because there is nothing server-side to sweep.
const SessionDuration = 7 * 24 * time.Hour

const issuer = "locallynk"

// SessionClaims is the JWT payload for a logged-in session.
//
// It carries exactly the public identity fields — id, username, email —
// plus the registered claims (expiry, issuer, issued-at). Nothing else goes
// in: the token is readable by anyone holding it (base64, not encrypted),
// so it must never carry the password hash or other private data.
type SessionClaims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Public converts the claims back into the client-facing user shape.
func (c *SessionClaims) Public() model.PublicUser {
	return model.PublicUser{
		ID:       c.ID,
		Username: c.Username,
		Email:    c.Email,
	}
}

// TokenService issues and validates signed session tokens.
//
// It holds the HMAC secret used for both signing and verification. The same
// secret must survive restarts or every outstanding session dies with the
// process.
type TokenService struct {
	secret []byte
	now    func() time.Time // injectable clock for expiry tests
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// Generate creates and signs a session token for the given user.
//
// Token lifetime: 7 days, matching the cookie's MaxAge. Both are set from
// SessionDuration so they cannot drift apart.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and sufficient
// for a single-server deployment where signer and verifier are the same
// process.
func (s *TokenService) Generate(user *model.User) (string, error) {
	now := s.now()

	c := SessionClaims{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionDuration)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// generateWithDuration issues a token with a custom expiry.
// Unexported helper used by the tests to produce already-expired tokens.
func (s *TokenService) generateWithDuration(user *model.User, d time.Duration) (string, error) {
	now := s.now()

	c := SessionClaims{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token string and returns its claims.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (ExpiresAt is in the future)
//   - Issuer matches "locallynk" (prevents tokens minted by other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
//
// ALGORITHM CONFUSION ATTACK:
// Without pinning the algorithm, an attacker could present a token whose
// header declares "none" or an asymmetric method the verifier mishandles.
// jwt.WithValidMethods rejects anything but HS256 outright.
func (s *TokenService) Validate(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&SessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	if c.ID == "" {
		return nil, fmt.Errorf("auth: token has no user id")
	}

	return c, nil
}
