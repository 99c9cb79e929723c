// Package omdb is a thin client for the OMDb API used by the movie search
// pages.
package omdb

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://www.omdbapi.com/"

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchResult is one candidate from the free-text search endpoint. Year is
// kept as the raw OMDb string ("2021", "2019–2021" for series).
type SearchResult struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// Movie is the full metadata for a single title.
type Movie struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// YearReleased parses the release year, or 0 when OMDb gave none.
func (m Movie) YearReleased() int {
	if len(m.Year) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.Year[:4])
	if err != nil {
		return 0
	}
	return year
}

// Search queries the free-text endpoint. An empty result is not an error.
func (c *Client) Search(query string) ([]SearchResult, error) {
	var payload struct {
		Search   []SearchResult `json:"Search"`
		Response string         `json:"Response"`
		Error    string         `json:"Error"`
	}
	params := url.Values{"s": {query}, "type": {"movie"}}
	if err := c.get(params, &payload); err != nil {
		return nil, err
	}
	if payload.Response != "True" {
		// "Movie not found!" is a miss, anything else is a real failure
		if payload.Error == "Movie not found!" {
			return nil, nil
		}
		return nil, fmt.Errorf("omdb: %s", payload.Error)
	}
	return payload.Search, nil
}

// Get fetches the full metadata for a title/year pair.
func (c *Client) Get(title, year string) (Movie, error) {
	var movie Movie
	params := url.Values{"t": {title}}
	if year != "" {
		params.Set("y", year)
	}
	if err := c.get(params, &movie); err != nil {
		return Movie{}, err
	}
	if movie.Response != "True" {
		return Movie{}, fmt.Errorf("omdb: %s", movie.Error)
	}
	return movie, nil
}

func (c *Client) get(params url.Values, dst any) error {
	params.Set("apikey", c.apiKey)

	resp, err := c.client.Get(c.baseURL + "?" + params.Encode())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("omdb: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
