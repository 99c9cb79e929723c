package store

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"movietrack/models"
)

// UserStore is the credential store. Lookups are exact-match and
// case-sensitive; uniqueness is enforced by the schema, not by pre-checks.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = "id, username, email, password_hash, created_at"

func (s *UserStore) FindByEmail(email string) (models.User, error) {
	return s.findOne("SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

func (s *UserStore) FindByUsername(username string) (models.User, error) {
	return s.findOne("SELECT "+userColumns+" FROM users WHERE username = ?", username)
}

func (s *UserStore) FindByID(id int) (models.User, error) {
	return s.findOne("SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (s *UserStore) findOne(query string, arg any) (models.User, error) {
	var u models.User
	err := s.db.QueryRow(query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Create inserts a new user. A username or email already present surfaces as
// ErrConflict via the UNIQUE constraints.
func (s *UserStore) Create(username, email, passwordHash string) (models.User, error) {
	result, err := s.db.Exec("INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)",
		username, email, passwordHash)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return models.User{}, ErrConflict
		}
		return models.User{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return s.FindByID(int(id))
}

// UpdatePasswordHash replaces the stored hash wholesale.
func (s *UserStore) UpdatePasswordHash(id int, newHash string) error {
	result, err := s.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", newHash, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
