// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered LocalLynk account.
//
// Accounts are created with a username, email, date of birth, and password.
// Email is the login identifier, so it is normalized (lower-cased, trimmed)
// at signup time and enforced unique by the store. Username is NOT unique —
// two people can both sign up as "alex". Only email identifies an account.
//
// WHY Age int (stored, not computed)?
// Age is calculated once at signup from DateOfBirth and stored. It is never
// recomputed, so it goes stale after the user's next birthday. That snapshot
// behaviour is intentional — signup captures the age at registration time and
// nothing downstream depends on it being current.
//
// WHY PasswordHash json:"-"?
// The bcrypt hash must never leave the server. The json:"-" tag makes it
// impossible to leak through any handler that serializes a User directly.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"` // display name, not unique
	Email        string    `json:"email"     db:"email"`    // normalized: lower-case, trimmed, unique
	DateOfBirth  time.Time `json:"dob"       db:"dob"`
	Age          int       `json:"age"       db:"age"` // snapshot at signup, never refreshed
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// PublicUser is the subset of User that auth endpoints return to the client.
// It matches the session token claims exactly: {id, username, email}.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public returns the client-safe view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
