// Package catalog is the client for the remote book catalog and account API.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hallowedlibrary/shelf/internal/entities"
)

const userAgent = "HallowedShelf/1.0"

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMissingToken is returned before any request is made when an
	// authenticated call has no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
)

// APIError is a non-success response. Message holds the server's "error"
// field when the body had one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api status %d", e.Status)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}

// ServerMessage extracts the server-provided message from err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// SearchOptions pages through search results. Zero values let the server
// pick its defaults.
type SearchOptions struct {
	StartIndex int
	MaxResults int
}

// Client talks to the catalog API over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for baseURL, which includes the /api prefix.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SearchBooks runs a free-text search.
func (c *Client) SearchBooks(ctx context.Context, query string, opts SearchOptions) ([]entities.Book, error) {
	params := url.Values{"q": {query}}
	if opts.StartIndex > 0 {
		params.Set("startIndex", strconv.Itoa(opts.StartIndex))
	}
	if opts.MaxResults > 0 {
		params.Set("maxResults", strconv.Itoa(opts.MaxResults))
	}

	var books []entities.Book
	if err := c.do(ctx, http.MethodGet, "/books/search", params, "", nil, &books); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

// GetBook fetches a single volume by its catalog id.
func (c *Client) GetBook(ctx context.Context, id string) (*entities.Book, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("get book: empty id")
	}

	var book entities.Book
	if err := c.do(ctx, http.MethodGet, "/books/"+url.PathEscape(id), nil, "", nil, &book); err != nil {
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}
	return &book, nil
}

// GetBookByISBN fetches a volume by ISBN-10 or ISBN-13.
func (c *Client) GetBookByISBN(ctx context.Context, isbn string) (*entities.Book, error) {
	normalized := normalizeISBN(isbn)
	if normalized == "" {
		return nil, fmt.Errorf("invalid ISBN %q", isbn)
	}

	var book entities.Book
	if err := c.do(ctx, http.MethodGet, "/books/isbn/"+url.PathEscape(normalized), nil, "", nil, &book); err != nil {
		return nil, fmt.Errorf("get book by ISBN %s: %w", normalized, err)
	}
	return &book, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req entities.SignupRequest) (*entities.User, error) {
	var resp struct {
		Message string        `json:"message"`
		User    entities.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/users", nil, "", req, &resp); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	return &resp.User, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req entities.LoginRequest) (*entities.LoginResponse, error) {
	var resp entities.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", nil, "", req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login: response without access_token")
	}
	return &resp, nil
}

// Profile returns the user owning token.
func (c *Client) Profile(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	var user entities.User
	if err := c.do(ctx, http.MethodGet, "/profile", nil, token, nil, &user); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &user, nil
}

// ListFavorites returns the saved library of the token's user.
func (c *Client) ListFavorites(ctx context.Context, token string) ([]entities.FavoriteEntry, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	var entries []entities.FavoriteEntry
	if err := c.do(ctx, http.MethodGet, "/me/library", nil, token, nil, &entries); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return entries, nil
}

type addFavoriteRequest struct {
	entities.FavoriteEntry
	AuthorsText string `json:"authorsText"`
}

// AddFavorite saves entry to the token's library.
func (c *Client) AddFavorite(ctx context.Context, token string, entry entities.FavoriteEntry) error {
	if token == "" {
		return ErrMissingToken
	}

	body := addFavoriteRequest{FavoriteEntry: entry, AuthorsText: entry.AuthorsText()}
	if err := c.do(ctx, http.MethodPost, "/me/library", nil, token, body, nil); err != nil {
		return fmt.Errorf("add favorite %s: %w", entry.VolumeID, err)
	}
	return nil
}

// RemoveFavorite deletes volumeID from the token's library.
func (c *Client) RemoveFavorite(ctx context.Context, token, volumeID string) error {
	if token == "" {
		return ErrMissingToken
	}

	if err := c.do(ctx, http.MethodDelete, "/me/library/"+url.PathEscape(volumeID), nil, token, nil, nil); err != nil {
		return fmt.Errorf("remove favorite %s: %w", volumeID, err)
	}
	return nil
}

// do sends one request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorMessage returns the message of an {"error": "..."} body. Any
// other body, such as a proxy's HTML error page, yields "".
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error)
}

// normalizeISBN removes hyphens and spaces from ISBN.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	return isbn
}
