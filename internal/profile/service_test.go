package profile

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gocloud.dev/blob/memblob"

	"bookreview/internal/platform/objectstore"
	"bookreview/internal/review"
	"bookreview/internal/user"
)

const baseURL = "http://localhost:8080"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type deps struct {
	users   *MockUserStore
	library *MockLibraryCounter
	reviews *MockReviewStats
	photos  *objectstore.Store
	svc     *Service
}

func newDeps(t *testing.T, logger *zap.Logger) deps {
	ctrl := gomock.NewController(t)
	d := deps{
		users:   NewMockUserStore(ctrl),
		library: NewMockLibraryCounter(ctrl),
		reviews: NewMockReviewStats(ctrl),
		photos:  objectstore.New(memblob.OpenBucket(nil)),
	}
	t.Cleanup(func() { _ = d.photos.Close() })
	d.svc = NewService(d.users, d.library, d.reviews, d.photos, baseURL+"/", logger)
	return d
}

func (d deps) expectStats(userID string) {
	d.library.EXPECT().Count(gomock.Any(), userID).Return(3, nil)
	d.reviews.EXPECT().UserStats(gomock.Any(), userID).Return(review.Stats{AverageRating: 4.5, ReviewsCount: 2}, nil)
}

func TestService_GetOwnProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("combines user and stats", func(t *testing.T) {
		d := newDeps(t, zap.NewNop())
		d.users.EXPECT().GetByID(ctx, "u-1").Return(user.User{ID: "u-1", Name: "Ada", Surname: "Lovelace"}, nil)
		d.expectStats("u-1")

		p, err := d.svc.GetOwnProfile(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", p.User.DisplayName)
		assert.Equal(t, user.DefaultAvatarURL, p.User.AvatarURL)
		assert.Equal(t, Stats{LibraryCount: 3, ReviewsCount: 2, AverageRating: 4.5}, p.Stats)
	})

	t.Run("missing user", func(t *testing.T) {
		d := newDeps(t, zap.NewNop())
		d.users.EXPECT().GetByID(ctx, "ghost").Return(user.User{}, user.ErrNotFound)

		_, err := d.svc.GetOwnProfile(ctx, "ghost")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("stats failure", func(t *testing.T) {
		d := newDeps(t, zap.NewNop())
		d.users.EXPECT().GetByID(ctx, "u-1").Return(user.User{ID: "u-1"}, nil)
		d.library.EXPECT().Count(ctx, "u-1").Return(0, errors.New("db down"))

		_, err := d.svc.GetOwnProfile(ctx, "u-1")
		assert.EqualError(t, err, "db down")
	})
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	d := newDeps(t, zap.NewNop())
	name := "  Grace "
	d.users.EXPECT().UpdateProfile(ctx, "u-1", map[string]any{"name": "Grace"}).Return(nil)
	d.users.EXPECT().GetByID(ctx, "u-1").Return(user.User{ID: "u-1", Name: "Grace"}, nil)
	d.expectStats("u-1")

	p, err := d.svc.UpdateProfile(ctx, "u-1", UpdateCommand{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Grace", p.User.Name)
}

func TestService_UploadPhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("stores photo and replaces the old one", func(t *testing.T) {
		d := newDeps(t, zap.NewNop())
		oldKey := "photos/u-1/old.png"
		require.NoError(t, d.photos.Put(ctx, oldKey, "image/png", pngBytes))

		var stored string
		d.users.EXPECT().GetByID(ctx, "u-1").Return(user.User{ID: "u-1", PhotoURL: baseURL + "/" + oldKey}, nil)
		d.users.EXPECT().SetPhotoURL(ctx, "u-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, url string) error {
				stored = url
				return nil
			})
		d.users.EXPECT().GetByID(ctx, "u-1").DoAndReturn(func(context.Context, string) (user.User, error) {
			return user.User{ID: "u-1", PhotoURL: stored}, nil
		})
		d.expectStats("u-1")

		p, err := d.svc.UploadPhoto(ctx, "u-1", pngBytes)
		require.NoError(t, err)

		require.True(t, strings.HasPrefix(stored, baseURL+"/photos/u-1/"), stored)
		assert.True(t, strings.HasSuffix(stored, ".png"))
		assert.Equal(t, stored, p.User.PhotoURL)
		assert.Equal(t, stored, p.User.AvatarURL)

		obj, err := d.svc.OpenPhoto(ctx, strings.TrimPrefix(stored, baseURL+"/photos/"))
		require.NoError(t, err)
		defer obj.Close()
		data, err := io.ReadAll(obj)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, data)
		assert.Equal(t, "image/png", obj.ContentType)

		_, err = d.photos.Get(ctx, oldKey)
		assert.ErrorIs(t, err, objectstore.ErrNotFound)
	})

	t.Run("rejects non images", func(t *testing.T) {
		d := newDeps(t, zap.NewNop())

		_, err := d.svc.UploadPhoto(ctx, "u-1", []byte("just some text"))
		assert.ErrorIs(t, err, ErrUnsupportedPhoto)
	})

	t.Run("rejects empty", func(t *testing.T) {
		d := newDeps(t, zap.NewNop())

		_, err := d.svc.UploadPhoto(ctx, "u-1", nil)
		assert.ErrorIs(t, err, ErrEmptyPhoto)
	})

	t.Run("failed url update removes the new object", func(t *testing.T) {
		d := newDeps(t, zap.NewNop())
		var stored string
		d.users.EXPECT().GetByID(ctx, "u-1").Return(user.User{ID: "u-1"}, nil)
		d.users.EXPECT().SetPhotoURL(ctx, "u-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, url string) error {
				stored = url
				return errors.New("db down")
			})

		_, err := d.svc.UploadPhoto(ctx, "u-1", pngBytes)
		require.EqualError(t, err, "db down")

		_, err = d.svc.OpenPhoto(ctx, strings.TrimPrefix(stored, baseURL+"/photos/"))
		assert.ErrorIs(t, err, objectstore.ErrNotFound)
	})
}

func TestService_DeletePhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("clears url and object", func(t *testing.T) {
		d := newDeps(t, zap.NewNop())
		key := "photos/u-1/a.png"
		require.NoError(t, d.photos.Put(ctx, key, "image/png", pngBytes))

		gomock.InOrder(
			d.users.EXPECT().GetByID(ctx, "u-1").Return(user.User{ID: "u-1", PhotoURL: baseURL + "/" + key}, nil),
			d.users.EXPECT().SetPhotoURL(ctx, "u-1", "").Return(nil),
			d.users.EXPECT().GetByID(ctx, "u-1").Return(user.User{ID: "u-1"}, nil),
		)
		d.expectStats("u-1")

		p, err := d.svc.DeletePhoto(ctx, "u-1")
		require.NoError(t, err)
		assert.Empty(t, p.User.PhotoURL)
		assert.Equal(t, user.DefaultAvatarURL, p.User.AvatarURL)

		_, err = d.photos.Get(ctx, key)
		assert.ErrorIs(t, err, objectstore.ErrNotFound)
	})

	t.Run("no photo is a no-op", func(t *testing.T) {
		d := newDeps(t, zap.NewNop())
		d.users.EXPECT().GetByID(ctx, "u-1").Return(user.User{ID: "u-1"}, nil).Times(2)
		d.expectStats("u-1")

		_, err := d.svc.DeletePhoto(ctx, "u-1")
		assert.NoError(t, err)
	})

	t.Run("foreign url is left alone", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		d := newDeps(t, zap.New(core))
		d.users.EXPECT().GetByID(ctx, "u-1").Return(user.User{ID: "u-1", PhotoURL: "https://cdn.example.com/me.png"}, nil)
		d.users.EXPECT().SetPhotoURL(ctx, "u-1", "").Return(nil)
		d.users.EXPECT().GetByID(ctx, "u-1").Return(user.User{ID: "u-1"}, nil)
		d.expectStats("u-1")

		_, err := d.svc.DeletePhoto(ctx, "u-1")
		require.NoError(t, err)
		assert.Zero(t, logs.Len())
	})
}

func TestService_PhotoCleanupFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	core, logs := observer.New(zapcore.WarnLevel)
	users := NewMockUserStore(ctrl)
	photos := NewMockPhotoStore(ctrl)
	library := NewMockLibraryCounter(ctrl)
	reviews := NewMockReviewStats(ctrl)
	svc := NewService(users, library, reviews, photos, baseURL, zap.New(core))

	users.EXPECT().GetByID(ctx, "u-1").Return(user.User{ID: "u-1", PhotoURL: baseURL + "/photos/u-1/a.png"}, nil)
	users.EXPECT().SetPhotoURL(ctx, "u-1", "").Return(nil)
	photos.EXPECT().Delete(ctx, "photos/u-1/a.png").Return(errors.New("bucket offline"))
	users.EXPECT().GetByID(ctx, "u-1").Return(user.User{ID: "u-1"}, nil)
	library.EXPECT().Count(ctx, "u-1").Return(0, nil)
	reviews.EXPECT().UserStats(ctx, "u-1").Return(review.Stats{}, nil)

	_, err := svc.DeletePhoto(ctx, "u-1")
	require.NoError(t, err)

	entries := logs.FilterMessage("photo cleanup failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "photos/u-1/a.png", entries[0].ContextMap()["key"])
}

func TestService_OpenPhotoRejectsTraversal(t *testing.T) {
	d := newDeps(t, zap.NewNop())
	for _, name := range []string{"", "../secret", "u-1/../../x", "/abs", "u-1//a.png", `u-1\a.png`} {
		_, err := d.svc.OpenPhoto(context.Background(), name)
		assert.ErrorIs(t, err, objectstore.ErrNotFound, name)
	}
}
