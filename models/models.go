package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Movie struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	// YearReleased is 0 when the release year is unknown.
	YearReleased int       `json:"year_released,omitempty"`
	DateAdded    time.Time `json:"date_added"`
	OwnerID      int       `json:"owner_id"`
}
