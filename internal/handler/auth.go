package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mahirfaisal/locallynk/internal/apperror"
	"github.com/mahirfaisal/locallynk/internal/auth"
	"github.com/mahirfaisal/locallynk/internal/model"
	"github.com/mahirfaisal/locallynk/internal/service"
)

// AuthHandler exposes the authentication flow over HTTP.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignup  → POST /api/auth/signup   register, set session cookie
//   - HandleLogin   → POST /api/auth/login    authenticate, set session cookie
//   - HandleCheck   → GET  /api/auth/check    report session state (never errors)
//   - HandleSignOut → POST /api/auth/signout  clear the session cookie
//   - HandleMe      → GET  /api/me            full profile (behind RequireAuth)
//
// The handler owns everything HTTP: decoding bodies, status codes, and the
// Set-Cookie headers. All decisions about WHO may do WHAT live in the
// service.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. Dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authSvc,
		logger: logger,
	}
}

// signupRequest mirrors the signup form exactly, confirmPassword included.
// The confirm check happens server-side even though the frontend also
// checks — client-side validation is a convenience, not a guarantee.
type signupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	DOB             string `json:"dob"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the success body for signup and login. User is only
// populated on login; signup sends the client to the login page instead.
type authResponse struct {
	Message     string            `json:"message"`
	User        *model.PublicUser `json:"user,omitempty"`
	RedirectURL string            `json:"redirectUrl"`
}

// checkResponse is the body of GET /api/auth/check. User is present only
// when Authenticated is true.
type checkResponse struct {
	Authenticated bool              `json:"authenticated"`
	User          *model.PublicUser `json:"user,omitempty"`
}

// HandleSignup registers a new account.
//
// HTTP: POST /api/auth/signup
//
// On success: 201, session cookie set, body directs the frontend to the
// login page. On any expected failure (missing field, password mismatch,
// bad date, taken email): 400 with the message for the user. Anything
// else: 500 with a generic message, details logged here only.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.auth.Signup(r.Context(), service.SignupInput{
		Username:        req.Username,
		Email:           req.Email,
		DOB:             req.DOB,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		// Expected rejections are normal traffic; only log real failures.
		if !isClientError(err) {
			h.logger.Error("signup failed", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	http.SetCookie(w, auth.SessionCookie(result.Token))
	writeJSON(w, http.StatusCreated, authResponse{
		Message:     "Signup successful",
		RedirectURL: result.RedirectURL,
	})
}

// HandleLogin authenticates an existing account.
//
// HTTP: POST /api/auth/login
//
// On success: 200, session cookie set, body carries the public user fields
// and sends the frontend to the site root. Unknown email and wrong password
// produce byte-identical 400 responses.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if !isClientError(err) {
			h.logger.Error("login failed", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	pub := result.User.Public()
	http.SetCookie(w, auth.SessionCookie(result.Token))
	writeJSON(w, http.StatusOK, authResponse{
		Message:     "Login successful",
		User:        &pub,
		RedirectURL: result.RedirectURL,
	})
}

// HandleCheck reports the current session state.
//
// HTTP: GET /api/auth/check
//
// ALWAYS 200. The frontend polls this on every page load to decide what the
// nav should show, usually before anyone has logged in — so "no session" is
// {"authenticated":false}, not an error status. Missing cookie, garbage
// cookie, expired token: all the same quiet false.
func (h *AuthHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil {
		writeJSON(w, http.StatusOK, checkResponse{Authenticated: false})
		return
	}

	claims, ok := h.auth.CheckSession(cookie.Value)
	if !ok {
		writeJSON(w, http.StatusOK, checkResponse{Authenticated: false})
		return
	}

	pub := claims.Public()
	writeJSON(w, http.StatusOK, checkResponse{
		Authenticated: true,
		User:          &pub,
	})
}

// HandleSignOut clears the session cookie, logging the user out.
//
// HTTP: POST /api/auth/signout
//
// WHY POST AND NOT GET?
// Sign-out is a state-changing operation. GET would be vulnerable to CSRF
// and to browsers pre-fetching the URL.
//
// Since sessions are stateless JWTs, sign-out is purely client-side: the
// cookie is deleted, the token stays valid until its 7-day expiry. A copy
// of the token cached elsewhere would still verify — there is no
// revocation list by design.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearSessionCookie())
	writeJSON(w, http.StatusOK, map[string]string{"message": "Signed out successfully"})
}

// HandleMe returns the full profile of the authenticated user.
//
// HTTP: GET /api/me
// Auth: Required (RequireAuth middleware puts the claims in context)
//
// Unlike /api/auth/check, which answers purely from the token, this hits
// the store — it returns fields the token does not carry (age, createdAt).
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but be safe.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), claims.ID)
	if err != nil {
		h.logger.Error("profile lookup failed",
			slog.String("userID", claims.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// isClientError reports whether err is an expected, client-caused rejection
// (validation, conflict, bad credentials) rather than a server failure.
func isClientError(err error) bool {
	return errors.Is(err, apperror.ErrValidation) ||
		errors.Is(err, apperror.ErrConflict) ||
		errors.Is(err, apperror.ErrInvalidCredentials)
}
