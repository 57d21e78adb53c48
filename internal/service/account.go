// Package service holds the account operations behind the HTTP layer:
// registration, lookup, update, deletion, and login. Field validation is
// batched so one response reports every violation in a payload; persistence is
// synchronous and checked, so a failed write fails the request.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mateusbrg/user-registry/internal/auth"
	"github.com/mateusbrg/user-registry/internal/models"
	"github.com/mateusbrg/user-registry/internal/models/dto"
	"github.com/mateusbrg/user-registry/internal/storage"
	"github.com/mateusbrg/user-registry/internal/validate"
)

// ErrInvalidCredentials covers both unknown email and wrong password, so a
// login failure never reveals which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInactiveAccount indicates a correct login against a deactivated user.
var ErrInactiveAccount = errors.New("inactive account")

// dummyHash is compared against when the email is unknown, so both login
// failure paths cost one bcrypt comparison.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

const duplicateEmailMessage = "email already registered"

// Account orchestrates registry operations over a UserStore.
type Account struct {
	store  storage.UserStore
	tokens *auth.TokenManager
	now    func() time.Time
}

// NewAccount constructs the service.
func NewAccount(store storage.UserStore, tokens *auth.TokenManager) *Account {
	return &Account{store: store, tokens: tokens, now: time.Now}
}

// Register validates the payload, hashes the password, and persists a new
// user. All violations accumulate into a single error; the store is only
// touched when the batch is empty.
func (a *Account) Register(ctx context.Context, req dto.CreateUserRequest) (models.User, error) {
	var v validate.Violations

	if req.Name == nil || *req.Name == "" {
		v.Add("name is required")
	}
	if req.Email == nil || *req.Email == "" {
		v.Add("email is required")
	}
	if req.Password == nil || *req.Password == "" {
		v.Add("password is required")
	}
	if req.Permissions == nil {
		v.Add("permissions are required")
	}
	if req.Active == nil {
		v.Add("active is required")
	}

	if req.Password != nil && *req.Password != "" {
		validate.Password(*req.Password, &v)
	}
	if req.Email != nil && *req.Email != "" {
		validate.Email(*req.Email, &v)
		if taken, err := a.emailTaken(ctx, *req.Email); err != nil {
			return models.User{}, err
		} else if taken {
			v.Add(duplicateEmailMessage)
		}
	}
	validate.Permissions(req.Permissions, &v)

	if len(v) > 0 {
		return models.User{}, v
	}

	hash, err := auth.HashPassword(*req.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:         *req.Name,
		Email:        *req.Email,
		PasswordHash: hash,
		Permissions:  toPermissions(req.Permissions),
		Active:       *req.Active,
		CreatedAt:    a.now().UTC(),
	}

	created, err := a.store.Insert(ctx, user)
	if errors.Is(err, storage.ErrEmailTaken) {
		// lost the race to another registration; same caller-visible shape
		v.Add(duplicateEmailMessage)
		return models.User{}, v
	}
	if err != nil {
		return models.User{}, fmt.Errorf("persist user: %w", err)
	}
	return created, nil
}

// List returns the full registry.
func (a *Account) List(ctx context.Context) ([]models.User, error) {
	return a.store.List(ctx)
}

// GetByID returns the user matching id, or storage.ErrNotFound.
func (a *Account) GetByID(ctx context.Context, id int64) (models.User, error) {
	return a.store.FindByID(ctx, id)
}

// Update merges the supplied fields into the stored user. Provided fields
// overwrite current values; id and created_at are immutable; a provided
// password is re-validated and re-hashed.
func (a *Account) Update(ctx context.Context, id int64, req dto.UpdateUserRequest) (models.User, error) {
	user, err := a.store.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	var v validate.Violations

	if req.Name != nil && *req.Name == "" {
		v.Add("name must not be empty")
	}
	if req.Email != nil {
		validate.Email(*req.Email, &v)
		if *req.Email != user.Email {
			if taken, err := a.emailTaken(ctx, *req.Email); err != nil {
				return models.User{}, err
			} else if taken {
				v.Add(duplicateEmailMessage)
			}
		}
	}
	if req.Password != nil {
		validate.Password(*req.Password, &v)
	}
	if req.Permissions != nil {
		validate.Permissions(req.Permissions, &v)
	}

	if len(v) > 0 {
		return models.User{}, v
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if req.Permissions != nil {
		user.Permissions = toPermissions(req.Permissions)
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	updated, err := a.store.Update(ctx, user)
	if errors.Is(err, storage.ErrEmailTaken) {
		v.Add(duplicateEmailMessage)
		return models.User{}, v
	}
	if err != nil {
		return models.User{}, fmt.Errorf("persist user: %w", err)
	}
	return updated, nil
}

// Delete removes the user matching id, or fails with storage.ErrNotFound.
func (a *Account) Delete(ctx context.Context, id int64) error {
	return a.store.Delete(ctx, id)
}

// Login verifies credentials, records the login time, and issues a token. The
// unknown-email and wrong-password paths return the identical error.
func (a *Account) Login(ctx context.Context, email, password string) (string, models.User, error) {
	user, err := a.store.FindByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		auth.CheckPassword(password, dummyHash)
		return "", models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", models.User{}, fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", models.User{}, ErrInvalidCredentials
	}
	if !user.Active {
		return "", models.User{}, ErrInactiveAccount
	}

	now := a.now().UTC()
	user.LastLoginAt = &now
	user, err = a.store.Update(ctx, user)
	if err != nil {
		return "", models.User{}, fmt.Errorf("record login: %w", err)
	}

	token, err := a.tokens.Generate(user)
	if err != nil {
		return "", models.User{}, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

func (a *Account) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := a.store.FindByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

func toPermissions(perms []string) []models.Permission {
	out := make([]models.Permission, len(perms))
	for i, p := range perms {
		out[i] = models.Permission(p)
	}
	return out
}
