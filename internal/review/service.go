package review

import (
	"context"
	"strings"
	"unicode/utf8"
)

type Service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// Save creates or replaces the caller's review of a catalog book.
func (s *Service) Save(ctx context.Context, userID, bookID, body string, rating int) (Review, error) {
	if rating < MinRating || rating > MaxRating {
		return Review{}, ErrInvalidRating
	}
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return Review{}, ErrBodyTooLong
	}
	if _, err := s.catalog.Get(ctx, bookID); err != nil {
		return Review{}, err
	}

	rv := Review{UserID: userID, BookID: bookID, Body: body, Rating: rating}
	if err := s.repo.Upsert(ctx, &rv); err != nil {
		return Review{}, err
	}
	return rv, nil
}

func (s *Service) Get(ctx context.Context, userID, bookID string) (Review, error) {
	return s.repo.Get(ctx, userID, bookID)
}

func (s *Service) Delete(ctx context.Context, userID, bookID string) error {
	return s.repo.Delete(ctx, userID, bookID)
}

// List pages through a book's reviews, newest first. NextCursor is empty on
// the last page.
func (s *Service) List(ctx context.Context, bookID string, limit int, cursor string) (Page, error) {
	after, err := DecodeCursor(cursor)
	if err != nil {
		return Page{}, err
	}

	entries, err := s.repo.ListByBook(ctx, bookID, limit+1, after)
	if err != nil {
		return Page{}, err
	}

	page := Page{Items: entries}
	if len(entries) > limit {
		page.Items = entries[:limit]
		last := page.Items[limit-1]
		page.NextCursor = EncodeCursor(Cursor{UpdatedAt: last.UpdatedAt, UserID: last.UserID})
	}
	return page, nil
}

func (s *Service) BookStats(ctx context.Context, bookID string) (Stats, error) {
	return s.repo.BookStats(ctx, bookID)
}

func (s *Service) UserStats(ctx context.Context, userID string) (Stats, error) {
	return s.repo.UserStats(ctx, userID)
}
