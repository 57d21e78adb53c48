package storage

import (
	"context"
	"errors"

	"github.com/mateusbrg/user-registry/internal/models"
)

// ErrNotFound indicates no user matches the given id or email.
var ErrNotFound = errors.New("user not found")

// ErrEmailTaken indicates another user already owns the email address.
var ErrEmailTaken = errors.New("email already registered")

// UserStore captures persistence operations over the user registry. Every
// mutating method applies its change atomically: implementations serialize
// concurrent mutations so a read-modify-write cycle can never lose an update.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)

	// Insert assigns the next id, enforces email uniqueness, and persists the
	// user. The stored user is returned.
	Insert(ctx context.Context, user models.User) (models.User, error)

	// Update overwrites the record matching user.ID, enforcing email
	// uniqueness against all other records.
	Update(ctx context.Context, user models.User) (models.User, error)

	// Delete removes the record matching id.
	Delete(ctx context.Context, id int64) error
}
