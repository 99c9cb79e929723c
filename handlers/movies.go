package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"movietrack/omdb"
	"movietrack/store"
)

func (h *Handlers) Movies(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	movies, err := h.movies.ListByOwner(user.ID)
	if err != nil {
		log.Printf("Error listing movies: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "movies.html", map[string]any{
		"Movies":   movies,
		"Username": user.Username,
	})
}

func (h *Handlers) NewMovie(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		h.addMovie(w, r, user.ID, r.FormValue("title"), r.FormValue("year_released"), "/movies/new")
		return
	}

	h.render(w, r, "new-movie.html", nil)
}

// addMovie persists a movie from either the manual form or a search-result
// selection. returnTo is where a validation failure sends the submitter.
func (h *Handlers) addMovie(w http.ResponseWriter, r *http.Request, ownerID int, title, yearField, returnTo string) {
	yearReleased := 0
	if yearField = strings.TrimSpace(yearField); yearField != "" {
		year, err := strconv.Atoi(yearField)
		if err != nil {
			h.flashAndReturn(w, r, "warning", "InvalidYear", returnTo)
			return
		}
		yearReleased = year
	}

	movie, err := h.movies.Add(ownerID, title, yearReleased)
	if err != nil {
		if errors.Is(err, store.ErrInvalid) {
			h.flashAndReturn(w, r, "warning", "TitleRequired", returnTo)
			return
		}
		log.Printf("Error adding movie: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.sessions.AddFlash(w, r, "success", fmt.Sprintf(h.t(r, "MovieAdded"), movie.Title))
	http.Redirect(w, r, "/movies", http.StatusSeeOther)
}

func (h *Handlers) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if r.Method == http.MethodPost {
		movie, err := h.movies.Get(id)
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		err = h.movies.Delete(id, user.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.NotFound(w, r)
		case errors.Is(err, store.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		case err != nil:
			log.Printf("Error deleting movie: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		default:
			h.sessions.AddFlash(w, r, "success", fmt.Sprintf(h.t(r, "MovieDeleted"), movie.Title))
			http.Redirect(w, r, "/movies", http.StatusSeeOther)
		}
		return
	}

	movie, err := h.movies.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	// The confirm page is owner-only, same as the delete itself
	if movie.OwnerID != user.ID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	h.render(w, r, "delete-movie.html", map[string]any{"Movie": movie})
}

func (h *Handlers) SearchMovies(w http.ResponseWriter, r *http.Request) {
	_, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		query := strings.TrimSpace(r.FormValue("search"))
		if query == "" {
			h.flashAndReturn(w, r, "warning", "SearchRequired", "/movies/search")
			return
		}

		candidates, err := h.search.Search(query)
		if err != nil {
			log.Printf("Error searching OMDb: %v", err)
			h.flashAndReturn(w, r, "danger", "SearchFailed", "/movies/search")
			return
		}

		// Fetch full metadata for every candidate before rendering
		var results []omdb.Movie
		for _, c := range candidates {
			movie, err := h.search.Get(c.Title, c.Year)
			if err != nil {
				continue
			}
			results = append(results, movie)
		}

		h.render(w, r, "search.html", map[string]any{
			"Results": results,
			"Query":   query,
		})
		return
	}

	h.render(w, r, "search.html", map[string]any{"Query": ""})
}

func (h *Handlers) AddFromSearch(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.addMovie(w, r, user.ID, r.FormValue("title"), r.FormValue("year_released"), "/movies/search")
}
