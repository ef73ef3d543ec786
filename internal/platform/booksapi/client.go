package booksapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrNotFound    = errors.New("booksapi: book not found")
	ErrUnavailable = errors.New("booksapi: upstream unavailable")
)

// HTTPError is returned for any non-2xx reply.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	text := strings.TrimSpace(strings.TrimPrefix(e.Status, fmt.Sprint(e.StatusCode)))
	if text == "" {
		text = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("Error HTTP: %d %s", e.StatusCode, text)
}

func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnavailable:
		return retryable(e.StatusCode)
	}
	return false
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

type Config struct {
	BaseURL      string
	Token        string
	UserAgent    string
	Timeout      time.Duration
	RPS          float64
	MaxRetries   int
	RetryBackoff time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    backoff,
	}
}

type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// Book is the upstream record as served by the books API.
type Book struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Subtitle      string      `json:"subtitle"`
	Authors       []string    `json:"authors"`
	Author        string      `json:"author"`
	Description   string      `json:"description"`
	ImageLinks    *ImageLinks `json:"imageLinks"`
	ImageURL      string      `json:"imageUrl"`
	Publisher     string      `json:"publisher"`
	PublishedDate string      `json:"publishedDate"`
	PageCount     int         `json:"pageCount"`
	Categories    []string    `json:"categories"`
}

type bookList struct {
	Books json.RawMessage `json:"books"`
}

type bookEnvelope struct {
	Book Book `json:"book"`
}

// decode accepts a list, or the {"error": ..., "items": []} object the upstream sends for empty results.
func (l bookList) decode() ([]Book, error) {
	raw := bytes.TrimSpace(l.Books)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Book{}, nil
	}
	if raw[0] == '{' {
		var empty struct {
			Items []Book `json:"items"`
		}
		if err := json.Unmarshal(raw, &empty); err != nil {
			return nil, fmt.Errorf("decode books: %w", err)
		}
		if empty.Items == nil {
			return []Book{}, nil
		}
		return empty.Items, nil
	}
	var books []Book
	if err := json.Unmarshal(raw, &books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	return books, nil
}

func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	var res bookList
	if err := c.get(ctx, "/books", &res); err != nil {
		return nil, err
	}
	return res.decode()
}

func (c *Client) GetBook(ctx context.Context, id string) (Book, error) {
	var res bookEnvelope
	if err := c.get(ctx, "/books/"+url.PathEscape(id), &res); err != nil {
		return Book{}, err
	}
	// Unknown ids come back as an empty book object on some deployments.
	if res.Book.ID == "" {
		return Book{}, ErrNotFound
	}
	return res.Book, nil
}

func (c *Client) SearchBooks(ctx context.Context, query string) ([]Book, error) {
	var res bookList
	if err := c.get(ctx, "/search?q="+url.QueryEscape(query), &res); err != nil {
		return nil, err
	}
	return res.decode()
}

func (c *Client) get(ctx context.Context, path string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: base, 2x base, 4x base...
			backoff := c.backoff * time.Duration(1<<uint(i-1))
			timer := time.NewTimer(backoff)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := c.attempt(ctx, path, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	if c.maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) attempt(ctx context.Context, path string, target any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
		return retryable(resp.StatusCode), httpErr
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return false, nil
}
