package book

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"bookreview/internal/platform/booksapi"
)

// Source is the remote catalog. *booksapi.Client implements it.
type Source interface {
	ListBooks(ctx context.Context) ([]booksapi.Book, error)
	GetBook(ctx context.Context, id string) (booksapi.Book, error)
	SearchBooks(ctx context.Context, query string) ([]booksapi.Book, error)
}

// Service provides book-related business logic.
type Service struct {
	source          Source
	minSearchLength int
}

// NewService creates a new book service. Queries shorter than minSearchLength list everything.
func NewService(source Source, minSearchLength int) *Service {
	if minSearchLength < 1 {
		minSearchLength = 1
	}
	return &Service{source: source, minSearchLength: minSearchLength}
}

// SearchResult carries the books plus how the query was interpreted.
type SearchResult struct {
	Query    string
	Fallback bool
	Books    []Book
}

func (s *Service) List(ctx context.Context) ([]Book, error) {
	rbs, err := s.source.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	return FromRemoteList(rbs), nil
}

func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Book{}, ErrNotFound
	}
	rb, err := s.source.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, booksapi.ErrNotFound) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return FromRemote(rb), nil
}

// Exists reports whether the catalog knows the id.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) Search(ctx context.Context, query string) (SearchResult, error) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < s.minSearchLength {
		books, err := s.List(ctx)
		if err != nil {
			return SearchResult{}, err
		}
		return SearchResult{Query: q, Fallback: true, Books: books}, nil
	}

	rbs, err := s.source.SearchBooks(ctx, q)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Query: q, Books: FromRemoteList(rbs)}, nil
}
