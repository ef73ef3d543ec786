package review

import (
	"context"
	"testing"
	"time"

	"github.com/qawatake/fixify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview/internal/testutil"
	"bookreview/internal/user"
)

func fixtureUser(email, name string) *fixify.Model[user.User] {
	return fixify.NewModel(&user.User{Email: email, Password: "x", Name: name})
}

func fixtureReview(bookID string, rating int) *fixify.Model[Review] {
	return fixify.NewModel(&Review{BookID: bookID, Rating: rating},
		fixify.ConnectorFunc(func(_ testing.TB, rv *Review, u *user.User) {
			rv.UserID = u.ID
		}),
	)
}

func TestPostgresRepo(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.ResetTables(t, db)
	users := user.NewPostgresRepo(db, 3*time.Second)
	repo := NewPostgresRepo(db, 3*time.Second)
	ctx := context.Background()

	var ada, anon *fixify.Model[user.User]
	fixify.New(t,
		fixtureUser("ada@example.com", "Ada").Bind(&ada).With(
			fixtureReview("b-1", 5),
			fixtureReview("b-2", 2),
		),
		fixtureUser("anon@example.com", "").Bind(&anon).With(
			fixtureReview("b-1", 3),
		),
	).Apply(func(model any) error {
		switch v := model.(type) {
		case *user.User:
			return users.Create(ctx, v)
		case *Review:
			return repo.Upsert(ctx, v)
		}
		return nil
	})
	adaID := ada.Value().ID

	t.Run("upsert keeps created_at", func(t *testing.T) {
		first, err := repo.Get(ctx, adaID, "b-2")
		require.NoError(t, err)

		again := &Review{UserID: adaID, BookID: "b-2", Rating: 4, Body: "changed my mind"}
		require.NoError(t, repo.Upsert(ctx, again))
		assert.True(t, first.CreatedAt.Equal(again.CreatedAt))
		assert.False(t, again.UpdatedAt.Before(first.UpdatedAt))

		got, err := repo.Get(ctx, adaID, "b-2")
		require.NoError(t, err)
		assert.Equal(t, 4, got.Rating)
		assert.Equal(t, "changed my mind", got.Body)
	})

	t.Run("stats", func(t *testing.T) {
		bs, err := repo.BookStats(ctx, "b-1")
		require.NoError(t, err)
		assert.Equal(t, 2, bs.ReviewsCount)
		assert.InDelta(t, 4.0, bs.AverageRating, 0.001)

		us, err := repo.UserStats(ctx, adaID)
		require.NoError(t, err)
		assert.Equal(t, 2, us.ReviewsCount)

		none, err := repo.BookStats(ctx, "unreviewed")
		require.NoError(t, err)
		assert.Equal(t, Stats{}, none)
	})

	t.Run("keyset paging with authors", func(t *testing.T) {
		first, err := repo.ListByBook(ctx, "b-1", 1, nil)
		require.NoError(t, err)
		require.Len(t, first, 1)

		last := first[0]
		rest, err := repo.ListByBook(ctx, "b-1", 10, &Cursor{UpdatedAt: last.UpdatedAt, UserID: last.UserID})
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.NotEqual(t, last.UserID, rest[0].UserID)

		byUser := map[string]Author{}
		for _, e := range append(first, rest...) {
			byUser[e.UserID] = e.Author
		}
		assert.Equal(t, "Ada", byUser[adaID].DisplayName)
		assert.Equal(t, user.DefaultDisplayName, byUser[anon.Value().ID].DisplayName)
		assert.Equal(t, user.DefaultAvatarURL, byUser[anon.Value().ID].PhotoURL)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, anon.Value().ID, "b-1"))
		assert.ErrorIs(t, repo.Delete(ctx, anon.Value().ID, "b-1"), ErrNotFound)
		_, err := repo.Get(ctx, anon.Value().ID, "b-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
