package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"movietrack/db"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return conn
}

func TestUserCreateAndFind(t *testing.T) {
	users := NewUserStore(newTestDB(t))

	created, err := users.Create("alice", "alice@x.com", "hash1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("Expected a non-zero id")
	}
	if created.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	byEmail, err := users.FindByEmail("alice@x.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if byEmail.ID != created.ID || byEmail.Username != "alice" {
		t.Errorf("FindByEmail returned wrong user: %+v", byEmail)
	}

	byUsername, err := users.FindByUsername("alice")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if byUsername.ID != created.ID {
		t.Errorf("FindByUsername returned wrong user: %+v", byUsername)
	}

	byID, err := users.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if byID.Email != "alice@x.com" {
		t.Errorf("FindByID returned wrong user: %+v", byID)
	}
}

func TestUserLookupsAreExactMatch(t *testing.T) {
	users := NewUserStore(newTestDB(t))
	if _, err := users.Create("alice", "alice@x.com", "hash1"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := users.FindByEmail("ALICE@X.COM"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for different-case email, got %v", err)
	}
	if _, err := users.FindByUsername("Alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for different-case username, got %v", err)
	}
	if _, err := users.FindByEmail("nobody@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown email, got %v", err)
	}
}

func TestUserCreateConflicts(t *testing.T) {
	users := NewUserStore(newTestDB(t))
	if _, err := users.Create("alice", "alice@x.com", "hash1"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := users.Create("alice", "other@x.com", "hash2"); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict for duplicate username, got %v", err)
	}
	if _, err := users.Create("bob42", "alice@x.com", "hash2"); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict for duplicate email, got %v", err)
	}
}

func TestUpdatePasswordHash(t *testing.T) {
	users := NewUserStore(newTestDB(t))
	created, err := users.Create("alice", "alice@x.com", "oldhash")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := users.UpdatePasswordHash(created.ID, "newhash"); err != nil {
		t.Fatalf("UpdatePasswordHash failed: %v", err)
	}

	updated, _ := users.FindByID(created.ID)
	if updated.PasswordHash != "newhash" {
		t.Errorf("Expected hash 'newhash', got '%s'", updated.PasswordHash)
	}

	// Idempotent overwrite
	if err := users.UpdatePasswordHash(created.ID, "newhash"); err != nil {
		t.Errorf("Repeated UpdatePasswordHash failed: %v", err)
	}

	if err := users.UpdatePasswordHash(99999, "hash"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing user, got %v", err)
	}
}
