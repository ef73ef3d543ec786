package library

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	repo        Repository
	catalog     Catalog
	concurrency int
	logger      *zap.Logger
}

func NewService(repo Repository, catalog Catalog, concurrency int, logger *zap.Logger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{repo: repo, catalog: catalog, concurrency: concurrency, logger: logger}
}

// Add fails with the catalog's error when the book does not exist.
func (s *Service) Add(ctx context.Context, userID, bookID string) (Entry, error) {
	if _, err := s.catalog.Get(ctx, bookID); err != nil {
		return Entry{}, err
	}
	return s.repo.Add(ctx, userID, bookID)
}

func (s *Service) Remove(ctx context.Context, userID, bookID string) error {
	return s.repo.Remove(ctx, userID, bookID)
}

// Contains reports whether the book is saved and, if so, the entry.
func (s *Service) Contains(ctx context.Context, userID, bookID string) (Entry, bool, error) {
	e, err := s.repo.Get(ctx, userID, bookID)
	if errors.Is(err, ErrNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.repo.CountByUser(ctx, userID)
}

// List returns a page of the library with each book looked up in the
// catalog. A failed lookup is recorded on its item and never fails the page.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Item, int, error) {
	entries, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	items := make([]Item, len(entries))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, e := range entries {
		items[i] = Item{BookID: e.BookID, AddedAt: e.AddedAt}
		g.Go(func() error {
			b, err := s.catalog.Get(ctx, e.BookID)
			if err != nil {
				s.logger.Warn("library hydration failed",
					zap.String("user_id", userID),
					zap.String("book_id", e.BookID),
					zap.Error(err),
				)
				items[i].Error = err.Error()
				return nil
			}
			items[i].Book = &b
			return nil
		})
	}
	_ = g.Wait()

	return items, total, nil
}
