// Package postgres is the transactional registry backend. It implements the
// same storage.UserStore contract as the JSON document store, so the account
// service is unaware of which backend is configured.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mateusbrg/user-registry/internal/models"
	"github.com/mateusbrg/user-registry/internal/storage"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

const (
	uniqueViolationCode   = "23505"
	emailUniqueConstraint = "users_email_unique_idx"
)

// Store provides Postgres-backed persistence for users.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			permissions TEXT[] NOT NULL DEFAULT '{}',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL,
			last_login_at TIMESTAMPTZ
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique_idx ON users (email);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

const userColumns = "id, name, email, password_hash, permissions, active, created_at, last_login_at"

// List returns every user ordered by id.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// FindByID fetches a user by id.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1;`, id)
	return scanUser(row)
}

// FindByEmail fetches a user by exact email match.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email)
	return scanUser(row)
}

// Insert creates the row; the identity column assigns a monotonic, never
// reused id, so concurrent registrations cannot race on id assignment.
func (s *Store) Insert(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	INSERT INTO users (name, email, password_hash, permissions, active, created_at, last_login_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + userColumns + `;`

	row := s.pool.QueryRow(ctx, query,
		user.Name, user.Email, user.PasswordHash, permissionStrings(user.Permissions),
		user.Active, user.CreatedAt, user.LastLoginAt)
	created, err := scanUser(row)
	if err != nil {
		if isEmailConflict(err) {
			return models.User{}, storage.ErrEmailTaken
		}
		return models.User{}, err
	}
	return created, nil
}

// Update overwrites the row matching user.ID. Id and created_at are immutable
// and excluded from the assignment.
func (s *Store) Update(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	UPDATE users
	SET name = $2, email = $3, password_hash = $4, permissions = $5, active = $6, last_login_at = $7
	WHERE id = $1
	RETURNING ` + userColumns + `;`

	row := s.pool.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, permissionStrings(user.Permissions),
		user.Active, user.LastLoginAt)
	updated, err := scanUser(row)
	if err != nil {
		if isEmailConflict(err) {
			return models.User{}, storage.ErrEmailTaken
		}
		return models.User{}, err
	}
	return updated, nil
}

// Delete removes the row matching id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var perms []string
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&perms, &user.Active, &user.CreatedAt, &user.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	user.Permissions = make([]models.Permission, len(perms))
	for i, p := range perms {
		user.Permissions[i] = models.Permission(p)
	}
	return user, nil
}

func permissionStrings(perms []models.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

// isEmailConflict matches unique violations on the email index specifically;
// 23505 alone would also match conflicts on other constraints.
func isEmailConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == uniqueViolationCode &&
		pgErr.ConstraintName == emailUniqueConstraint
}
