package repository

import (
	"context"

	"github.com/mahirfaisal/locallynk/internal/model"
)

// UserRepository is the credential store contract.
//
// The store owns identity records exclusively. There are no update or
// delete operations — nothing in the auth flow modifies an account after
// signup.
//
// Emails passed to Create and GetByEmail must already be normalized
// (lower-cased, trimmed) by the caller; the store treats them as opaque
// unique keys. Uniqueness under concurrent signups is the STORE's job:
// two simultaneous Creates with the same email must resolve to exactly one
// success and one apperror.ErrConflict, enforced by the store's own
// concurrency control (a UNIQUE index), never by a check in the service.
type UserRepository interface {
	// Create inserts a new identity record, assigning ID and CreatedAt.
	// Returns apperror.ErrConflict (wrapped) if the email is taken.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail returns the record for a normalized email, or
	// apperror.ErrNotFound (wrapped) if no account exists.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID returns the record for an internal ID, or
	// apperror.ErrNotFound (wrapped) if no account exists.
	GetByID(ctx context.Context, id string) (*model.User, error)
}
