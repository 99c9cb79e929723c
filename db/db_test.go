package db

import (
	"path/filepath"
	"testing"
)

func TestOpenAndMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	conn, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	if err := Migrate(conn); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	// Verify tables exist by attempting a simple select
	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Errorf("Could not query users table: %v", err)
	}
	if err := conn.QueryRow("SELECT COUNT(*) FROM movies").Scan(&count); err != nil {
		t.Errorf("Could not query movies table: %v", err)
	}
}

func TestUniqueConstraints(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	conn, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()
	if err := Migrate(conn); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	insert := "INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)"
	if _, err := conn.Exec(insert, "alice", "alice@x.com", "hash"); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if _, err := conn.Exec(insert, "alice", "other@x.com", "hash"); err == nil {
		t.Error("Duplicate username should have been rejected")
	}
	if _, err := conn.Exec(insert, "alice2", "alice@x.com", "hash"); err == nil {
		t.Error("Duplicate email should have been rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	password := "mypassword"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !CheckPasswordHash(password, hash) {
		t.Error("CheckPasswordHash failed for correct password")
	}

	if CheckPasswordHash("wrongpassword", hash) {
		t.Error("CheckPasswordHash succeeded for wrong password")
	}
}

func TestDummyHashIsWellFormed(t *testing.T) {
	// The dummy hash must parse as bcrypt so the comparison burns the same
	// time as a real one, while never matching an empty password
	if CheckPasswordHash("", DummyHash) {
		t.Error("DummyHash matched an empty password")
	}
}
