package library

import (
	"errors"
	"time"

	"bookreview/internal/book"
)

var ErrNotFound = errors.New("library entry not found")

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Entry marks a book as saved by a user. A user holds each book at most once.
type Entry struct {
	UserID  string    `json:"user_id"`
	BookID  string    `json:"book_id"`
	AddedAt time.Time `json:"added_at"`
}

// Item is an entry joined with its catalog record. Book is nil and Error is
// set when the catalog lookup failed.
type Item struct {
	BookID  string     `json:"book_id"`
	AddedAt time.Time  `json:"added_at"`
	Book    *book.Book `json:"book"`
	Error   string     `json:"error,omitempty"`
}
