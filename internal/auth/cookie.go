package auth

import "net/http"

// CookieName is the name of the session cookie carrying the signed JWT.
const CookieName = "token"

// SessionCookie builds the Set-Cookie value for a freshly issued session
// token. The policy is fixed, not configurable:
//
//   - HttpOnly: JavaScript cannot read the cookie, so an XSS bug on the
//     frontend cannot exfiltrate the token
//   - SameSite=Lax: sent on top-level navigations but not cross-site POSTs,
//     which blunts CSRF without breaking normal link-following
//   - Path=/: one session for the whole site
//   - MaxAge = SessionDuration: the cookie dies when the token inside it
//     would expire anyway
//
// Secure is left unset for local development over plain HTTP. Behind TLS in
// production it should be true; flip it when the deployment gets HTTPS.
func SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie builds the Set-Cookie value that deletes the session
// cookie. It must use the same Path the cookie was issued on or the browser
// treats it as a different cookie and keeps the original.
//
// Clearing the cookie is the entirety of sign-out: the token itself remains
// cryptographically valid until its expiry, but without the cookie the
// browser no longer presents it.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
