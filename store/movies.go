package store

import (
	"database/sql"
	"errors"
	"strings"

	"movietrack/models"
)

// MovieStore manages each user's movie list. Every read and write is scoped
// to an owner id.
type MovieStore struct {
	db *sql.DB
}

func NewMovieStore(db *sql.DB) *MovieStore {
	return &MovieStore{db: db}
}

// ListByOwner returns the owner's movies in insertion order.
func (s *MovieStore) ListByOwner(ownerID int) ([]models.Movie, error) {
	rows, err := s.db.Query(
		"SELECT id, title, year_released, date_added, owner_id FROM movies WHERE owner_id = ? ORDER BY id",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		m, err := scanMovie(rows.Scan)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// Add inserts a movie for the owner. yearReleased of 0 is stored as NULL.
func (s *MovieStore) Add(ownerID int, title string, yearReleased int) (models.Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Movie{}, ErrInvalid
	}

	year := sql.NullInt64{Int64: int64(yearReleased), Valid: yearReleased != 0}
	result, err := s.db.Exec("INSERT INTO movies (title, year_released, owner_id) VALUES (?, ?, ?)",
		title, year, ownerID)
	if err != nil {
		return models.Movie{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Movie{}, err
	}
	return s.Get(int(id))
}

func (s *MovieStore) Get(id int) (models.Movie, error) {
	row := s.db.QueryRow(
		"SELECT id, title, year_released, date_added, owner_id FROM movies WHERE id = ?", id)
	m, err := scanMovie(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Movie{}, ErrNotFound
	}
	if err != nil {
		return models.Movie{}, err
	}
	return m, nil
}

// Delete removes the movie only when the requester owns it.
func (s *MovieStore) Delete(id, requesterID int) error {
	var ownerID int
	err := s.db.QueryRow("SELECT owner_id FROM movies WHERE id = ?", id).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != requesterID {
		return ErrForbidden
	}

	_, err = s.db.Exec("DELETE FROM movies WHERE id = ? AND owner_id = ?", id, requesterID)
	return err
}

func scanMovie(scan func(dest ...any) error) (models.Movie, error) {
	var m models.Movie
	var year sql.NullInt64
	if err := scan(&m.ID, &m.Title, &year, &m.DateAdded, &m.OwnerID); err != nil {
		return models.Movie{}, err
	}
	if year.Valid {
		m.YearReleased = int(year.Int64)
	}
	return m, nil
}
