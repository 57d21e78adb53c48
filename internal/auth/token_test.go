package auth

import (
	"testing"
	"time"

	"github.com/mateusbrg/user-registry/internal/models"
)

func TestGenerateAndVerify(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", "user-registry", time.Hour)
	user := models.User{
		ID:          42,
		Permissions: []models.Permission{models.PermissionRead, models.PermissionUpdate},
	}

	tok, err := tm.Generate(user)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	claims, err := tm.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID error: %v", err)
	}
	if id != user.ID {
		t.Fatalf("user id mismatch: got %d want %d", id, user.ID)
	}
	if len(claims.Permissions) != 2 || claims.Permissions[0] != models.PermissionRead {
		t.Fatalf("permissions mismatch: got %v", claims.Permissions)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", "user-registry", -time.Minute)
	tok, err := tm.Generate(models.User{ID: 1})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if _, err := tm.Verify(tok); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenManager("right-secret", "user-registry", time.Hour).Generate(models.User{ID: 1})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if _, err := NewTokenManager("wrong-secret", "user-registry", time.Hour).Verify(tok); err == nil {
		t.Fatal("expected error for wrong secret, got nil")
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", "user-registry", time.Hour)
	if _, err := tm.Verify("not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token, got nil")
	}
}
