package review

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("review not found")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrBodyTooLong   = errors.New("review is too long")
)

const (
	MinRating     = 1
	MaxRating     = 5
	MaxBodyLength = 2000

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Review is one user's opinion of one book. Writing again replaces it.
type Review struct {
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Body      string    `json:"review"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Author struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
}

// Entry is a review as shown on a book page.
type Entry struct {
	Review
	Author Author `json:"author"`
}

type Page struct {
	Items      []Entry
	NextCursor string
}

type Stats struct {
	AverageRating float64 `json:"average_rating"`
	ReviewsCount  int     `json:"reviews_count"`
}
