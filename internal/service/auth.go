// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses, sets cookies
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the credential store
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT) + PasswordService (bcrypt)
//
// KEY RESPONSIBILITIES:
//   - Validate signup input and compute the age snapshot
//   - Normalize emails before they touch the store
//   - Hash passwords on signup, verify them on login
//   - Issue session tokens on success
//
// WHAT THIS LAYER DOES NOT DO:
//   - It does NOT set cookies (the handler's job — an HTTP concern)
//   - It does NOT read HTTP requests or know about status codes
//   - It is NOT tied to chi or any routing framework
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mahirfaisal/locallynk/internal/apperror"
	"github.com/mahirfaisal/locallynk/internal/auth"
	"github.com/mahirfaisal/locallynk/internal/model"
	"github.com/mahirfaisal/locallynk/internal/repository"
)

// dobLayout is the wire format for dates of birth. HTML date inputs submit
// "2006-01-02"; we also accept a full RFC 3339 timestamp as a fallback for
// clients that serialize a Date object.
const dobLayout = "2006-01-02"

// AuthService handles the authentication business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository → read/write identity records
//   - tokens     *auth.TokenService        → issue session JWTs
//   - passwords  *auth.PasswordService     → bcrypt hashing/verification
//   - logger     *slog.Logger              → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
	now       func() time.Time // injectable clock for the age calculation
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
		now:       time.Now,
	}
}

// SignupInput carries the raw signup form fields, exactly as submitted.
// Validation and normalization happen inside Signup, not in the handler.
type SignupInput struct {
	Username        string
	Email           string
	DOB             string
	Password        string
	ConfirmPassword string
}

// AuthResult is returned by Signup and Login. It bundles the user record,
// the issued session token, and where the frontend should navigate next,
// so the handler can set the cookie and respond in one step.
type AuthResult struct {
	User        *model.User
	Token       string
	RedirectURL string
}

// Signup registers a new account.
//
// Order of checks matters and is part of the contract:
//  1. all fields present
//  2. password == confirmPassword
//  3. dob parses to a valid date
//  4. age snapshot computed (floor-to-last-birthday)
//  5. email normalized; insert — the store's UNIQUE index decides conflicts
//
// The plaintext password exists only on the stack of this call: it is
// hashed before the record is built and never logged.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if in.Username == "" || in.Email == "" || in.DOB == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, apperror.ValidationFailed("", "All fields are required")
	}

	if in.Password != in.ConfirmPassword {
		return nil, apperror.ValidationFailed("confirmPassword", "Passwords do not match")
	}

	dob, err := parseDOB(in.DOB)
	if err != nil {
		return nil, apperror.ValidationFailed("dob", "Invalid date of birth")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        NormalizeEmail(in.Email),
		DateOfBirth:  dob,
		Age:          computeAge(dob, s.now()),
		PasswordHash: hash,
	}

	// No SELECT-then-INSERT here: Create is atomic and its UNIQUE index is
	// the single authority on email uniqueness, so concurrent signups for
	// the same address cannot both succeed.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{
		User:        user,
		Token:       token,
		RedirectURL: "/login",
	}, nil
}

// Login authenticates an existing account by email and password.
//
// SECURITY: unknown email and wrong password both return the SAME
// apperror.InvalidCredentials error. Distinguishing them would let an
// attacker enumerate which emails have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{
		User:        user,
		Token:       token,
		RedirectURL: "/",
	}, nil
}

// CheckSession validates a raw session token and returns its claims.
//
// A missing, malformed, tampered, or expired token all yield (nil, false) —
// never an error. The /api/auth/check endpoint is polled by anonymous
// clients on every page load, so "not logged in" is a normal answer, not a
// failure.
func (s *AuthService) CheckSession(rawToken string) (*auth.SessionClaims, bool) {
	if rawToken == "" {
		return nil, false
	}

	claims, err := s.tokens.Validate(rawToken)
	if err != nil {
		return nil, false
	}

	return claims, true
}

// GetUserByID returns the full user record for the given internal ID.
// Used by the /api/me handler after RequireAuth validates the session.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}

	return user, nil
}

// NormalizeEmail lower-cases and trims an email address. Every email must
// pass through here before reaching the store, so that "Alex@Example.COM "
// and "alex@example.com" are the same key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// parseDOB parses a date of birth in "YYYY-MM-DD" form, falling back to
// RFC 3339.
func parseDOB(s string) (time.Time, error) {
	if t, err := time.Parse(dobLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// computeAge returns whole years from dob to today, floored to the last
// birthday: the year difference is decremented when today's month/day falls
// before the birth month/day. Someone born 2000-06-16 is 23 on 2024-06-15
// and 24 on 2024-06-16.
func computeAge(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	m := int(today.Month()) - int(dob.Month())
	if m < 0 || (m == 0 && today.Day() < dob.Day()) {
		age--
	}
	return age
}
