package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "claims", c), ANY package that knows the string
// can read or shadow your value. A package-private key type prevents
// collisions: only this package can read or write session claims in the
// context.
type contextKey string

const claimsKey contextKey = "sessionClaims"

// RequireAuth is a middleware that enforces authentication on protected
// routes.
//
// It reads the JWT from the "token" HttpOnly cookie, validates it, and
// stores the session claims in the request context. If the token is missing
// or invalid it responds 401 with the same JSON shape the frontend's auth
// check understands ({"authenticated":false,...}) and stops the chain.
//
// Note the contrast with GET /api/auth/check: that endpoint answers 200
// with authenticated:false because it exists to be polled by anonymous
// clients. RequireAuth guards routes that only make sense logged-in, so a
// missing session is a 401 there.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractClaims(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"authenticated":false,"message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the authenticated session's claims from the
// request context.
//
// Returns (nil, false) if the request is anonymous.
//
// Usage in handlers behind RequireAuth:
//
//	claims, ok := auth.ClaimsFromContext(r.Context())
//	if !ok {
//	    // should not happen on a protected route, but be safe
//	}
func ClaimsFromContext(ctx context.Context) (*SessionClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*SessionClaims)
	return c, ok && c != nil
}

// extractClaims reads the session cookie and validates the JWT inside it.
//
// COOKIE FLOW:
// 1. Set-Cookie: token=<jwt>; HttpOnly; SameSite=Lax (set on signup/login)
// 2. Browser automatically sends Cookie: token=<jwt> on subsequent requests
// 3. We read r.Cookie("token") and validate it
func extractClaims(r *http.Request, tokens *TokenService) (*SessionClaims, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		// http.ErrNoCookie — the request is simply anonymous
		return nil, err
	}

	return tokens.Validate(cookie.Value)
}
