package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookreview/internal/platform/booksapi"
)

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	catalog := []booksapi.Book{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}

	tests := []struct {
		name         string
		query        string
		wantFallback bool
		wantQuery    string
	}{
		{"empty query lists all", "", true, ""},
		{"two runes lists all", "go", true, "go"},
		{"whitespace is trimmed before counting", "  go  ", true, "go"},
		{"multibyte runes counted as runes", "ñé", true, "ñé"},
		{"three runes searches", "git", false, "git"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := new(mockSource)
			s := NewService(src, 3)

			if tt.wantFallback {
				src.On("ListBooks", ctx).Return(catalog, nil).Once()
			} else {
				src.On("SearchBooks", ctx, tt.wantQuery).Return([]booksapi.Book{{ID: "g", Title: "Git"}}, nil).Once()
			}

			res, err := s.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFallback, res.Fallback)
			assert.Equal(t, tt.wantQuery, res.Query)
			if tt.wantFallback {
				assert.Len(t, res.Books, 2)
			} else {
				assert.Len(t, res.Books, 1)
			}
			src.AssertExpectations(t)
		})
	}
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("maps upstream not found", func(t *testing.T) {
		src := new(mockSource)
		src.On("GetBook", ctx, "nope").Return(booksapi.Book{}, &booksapi.HTTPError{StatusCode: 404}).Once()

		_, err := NewService(src, 3).Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("blank id never hits upstream", func(t *testing.T) {
		src := new(mockSource)

		_, err := NewService(src, 3).Get(ctx, "  ")
		assert.ErrorIs(t, err, ErrNotFound)
		src.AssertNotCalled(t, "GetBook", mock.Anything, mock.Anything)
	})

	t.Run("passes through outage", func(t *testing.T) {
		src := new(mockSource)
		src.On("GetBook", ctx, "x").Return(booksapi.Book{}, booksapi.ErrUnavailable).Once()

		_, err := NewService(src, 3).Get(ctx, "x")
		assert.ErrorIs(t, err, booksapi.ErrUnavailable)
	})
}

func TestService_Exists(t *testing.T) {
	ctx := context.Background()
	src := new(mockSource)
	src.On("GetBook", ctx, "yes").Return(booksapi.Book{ID: "yes"}, nil)
	src.On("GetBook", ctx, "no").Return(booksapi.Book{}, booksapi.ErrNotFound)
	s := NewService(src, 3)

	ok, err := s.Exists(ctx, "yes")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "no")
	require.NoError(t, err)
	assert.False(t, ok)
}
