package book

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bookreview/internal/platform/booksapi"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ListBooks(ctx context.Context) ([]booksapi.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booksapi.Book), args.Error(1)
}

func (m *mockSource) GetBook(ctx context.Context, id string) (booksapi.Book, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(booksapi.Book), args.Error(1)
}

func (m *mockSource) SearchBooks(ctx context.Context, query string) ([]booksapi.Book, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booksapi.Book), args.Error(1)
}
