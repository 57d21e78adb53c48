package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mateusbrg/user-registry/internal/models"
	"github.com/mateusbrg/user-registry/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "database.json"))
}

func testUser(email string) models.User {
	return models.User{
		Name:         "Mateus",
		Email:        email,
		PasswordHash: "$2a$10$fakehash",
		Permissions:  []models.Permission{models.PermissionRead},
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestLoad_MissingAndEmptyFile(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	users, err := store.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, users)

	require.NoError(t, os.WriteFile(store.path, nil, 0o644))
	users, err = store.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestInsert_AssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Insert(ctx, testUser("first@mail.com"))
	require.NoError(t, err)
	require.EqualValues(t, 1, first.ID)

	second, err := store.Insert(ctx, testUser("second@mail.com"))
	require.NoError(t, err)
	require.EqualValues(t, 2, second.ID)

	require.NoError(t, store.Delete(ctx, first.ID))

	third, err := store.Insert(ctx, testUser("third@mail.com"))
	require.NoError(t, err)
	require.EqualValues(t, 3, third.ID, "id assignment is max existing + 1")
}

func TestInsert_DuplicateEmail(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, testUser("dup@mail.com"))
	require.NoError(t, err)

	_, err = store.Insert(ctx, testUser("dup@mail.com"))
	require.ErrorIs(t, err, storage.ErrEmailTaken)

	users, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestRoundTrip_PreservesFields(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	login := time.Now().UTC().Truncate(time.Second)
	user := testUser("round@trip.com")
	user.LastLoginAt = &login
	user.CreatedAt = user.CreatedAt.Truncate(time.Second)

	created, err := store.Insert(ctx, user)
	require.NoError(t, err)

	got, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
	require.Equal(t, user.PasswordHash, got.PasswordHash, "hash survives persistence")
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Insert(ctx, testUser("update@mail.com"))
	require.NoError(t, err)
	other, err := store.Insert(ctx, testUser("other@mail.com"))
	require.NoError(t, err)

	created.Name = "Adriano"
	updated, err := store.Update(ctx, created)
	require.NoError(t, err)
	require.Equal(t, "Adriano", updated.Name)

	got, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Adriano", got.Name)

	// stealing another user's email violates uniqueness
	created.Email = other.Email
	_, err = store.Update(ctx, created)
	require.ErrorIs(t, err, storage.ErrEmailTaken)

	missing := testUser("ghost@mail.com")
	missing.ID = 99
	_, err = store.Update(ctx, missing)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// a deleted target is not-found even when the email belongs to another
	// record
	ghost := testUser(other.Email)
	ghost.ID = 42
	_, err = store.Update(ctx, ghost)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Insert(ctx, testUser("keep@mail.com"))
	require.NoError(t, err)
	second, err := store.Insert(ctx, testUser("drop@mail.com"))
	require.NoError(t, err)

	require.ErrorIs(t, store.Delete(ctx, 42), storage.ErrNotFound)

	require.NoError(t, store.Delete(ctx, second.ID))
	_, err = store.FindByID(ctx, second.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	got, err := store.FindByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
}

func TestInsert_SaveFailureSurfaces(t *testing.T) {
	t.Parallel()

	// the parent directory does not exist: the registry reads as empty but the
	// document cannot be written back
	store := New(filepath.Join(t.TempDir(), "missing", "database.json"))

	_, err := store.Insert(context.Background(), testUser("fail@mail.com"))
	require.Error(t, err)
	require.NotErrorIs(t, err, storage.ErrEmailTaken)
	require.NotErrorIs(t, err, storage.ErrNotFound)
	require.ErrorContains(t, err, "write registry")
}

func TestUpdateDelete_SaveFailureSurfaces(t *testing.T) {
	t.Parallel()
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not bind root")
	}

	dir := t.TempDir()
	store := New(filepath.Join(dir, "database.json"))
	ctx := context.Background()

	created, err := store.Insert(ctx, testUser("locked@mail.com"))
	require.NoError(t, err)

	// freeze the directory so the rewrite fails while reads keep working
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	created.Name = "Changed"
	_, err = store.Update(ctx, created)
	require.ErrorContains(t, err, "write registry")

	err = store.Delete(ctx, created.ID)
	require.ErrorContains(t, err, "write registry")

	// the failed mutations left the document untouched
	got, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Mateus", got.Name)
}

func TestConcurrentInserts_NoLostUpdate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	wg.Add(writers)
	errs := make([]error, writers)
	for i := range writers {
		go func() {
			defer wg.Done()
			_, errs[i] = store.Insert(ctx, testUser(fmt.Sprintf("user%d@mail.com", i)))
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "writer %d", i)
	}

	users, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, writers)

	seen := make(map[int64]bool, writers)
	for _, u := range users {
		require.False(t, seen[u.ID], "duplicate id %d", u.ID)
		seen[u.ID] = true
	}
}
