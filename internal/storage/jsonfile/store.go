// Package jsonfile persists the whole user registry as a single JSON document.
// The registry is expected to stay small; every lookup is an in-memory scan and
// every mutation rewrites the full document.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/mateusbrg/user-registry/internal/models"
	"github.com/mateusbrg/user-registry/internal/storage"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

// Store owns the on-disk registry document. A write lock serializes every
// load-mutate-save cycle; concurrent mutations can never overwrite each
// other's effect. Reads share a read lock against a consistent snapshot.
type Store struct {
	path string
	mu   sync.RWMutex
}

// New creates a store over the given document path. A missing or empty file
// reads as an empty registry.
func New(path string) *Store {
	return &Store{path: path}
}

// record is the persisted shape of a user. Unlike models.User it serializes
// the password hash, which exists only on disk.
type record struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	PasswordHash string              `json:"password_hash"`
	Permissions  []models.Permission `json:"permissions"`
	Active       bool                `json:"active"`
	CreatedAt    time.Time           `json:"created_at"`
	LastLoginAt  *time.Time          `json:"last_login_at"`
}

func toRecord(u models.User) record {
	return record(u)
}

func (r record) toUser() models.User {
	return models.User(r)
}

func (s *Store) load() ([]record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return records, nil
}

func (s *Store) save(records []record) error {
	if records == nil {
		records = []record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// List returns every user in the registry.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	users := make([]models.User, len(records))
	for i, r := range records {
		users[i] = r.toUser()
	}
	return users, nil
}

// FindByID returns the user with the given id.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.load()
	if err != nil {
		return models.User{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r.toUser(), nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// FindByEmail returns the user with the given email (exact match as stored).
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.load()
	if err != nil {
		return models.User{}, err
	}
	for _, r := range records {
		if r.Email == email {
			return r.toUser(), nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// Insert assigns the next id (max existing + 1, or 1 for an empty registry)
// and persists the user. Returns storage.ErrEmailTaken on a uniqueness
// conflict.
func (s *Store) Insert(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return models.User{}, err
	}

	var maxID int64
	for _, r := range records {
		if r.Email == user.Email {
			return models.User{}, storage.ErrEmailTaken
		}
		if r.ID > maxID {
			maxID = r.ID
		}
	}

	user.ID = maxID + 1
	records = append(records, toRecord(user))
	if err := s.save(records); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Update overwrites the record matching user.ID.
func (s *Store) Update(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return models.User{}, err
	}

	index := -1
	for i, r := range records {
		if r.ID == user.ID {
			index = i
		}
	}
	// establish the target exists before reporting an email conflict
	if index < 0 {
		return models.User{}, storage.ErrNotFound
	}
	for i, r := range records {
		if i != index && r.Email == user.Email {
			return models.User{}, storage.ErrEmailTaken
		}
	}

	records[index] = toRecord(user)
	if err := s.save(records); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Delete removes the record matching id, leaving every other record untouched.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	remaining := records[:0:0]
	for _, r := range records {
		if r.ID != id {
			remaining = append(remaining, r)
		}
	}
	if len(remaining) == len(records) {
		return storage.ErrNotFound
	}
	return s.save(remaining)
}
