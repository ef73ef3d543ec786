package user

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with normalized email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().GetByEmail(ctx, "ada@example.com").Return(User{}, ErrNotFound)
		repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *User) error {
			assert.Equal(t, "ada@example.com", u.Email)
			assert.Equal(t, "hash", u.Password)
			assert.Equal(t, RoleUser, u.Role)
			u.ID = "u-1"
			return nil
		})

		got, err := NewService(repo).Register(ctx, "  Ada@Example.com ", "hash", "Ada", "Lovelace")
		require.NoError(t, err)
		assert.Equal(t, "u-1", got.ID)
		assert.Equal(t, "Ada", got.Name)
		assert.Equal(t, "Lovelace", got.Surname)
	})

	t.Run("duplicate email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().GetByEmail(ctx, "ada@example.com").Return(User{ID: "u-1"}, nil)

		_, err := NewService(repo).Register(ctx, "ada@example.com", "hash", "", "")
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("lookup failure is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		boom := errors.New("db down")
		repo.EXPECT().GetByEmail(ctx, gomock.Any()).Return(User{}, boom)

		_, err := NewService(repo).Register(ctx, "ada@example.com", "hash", "", "")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("race on insert still reports duplicate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().GetByEmail(ctx, gomock.Any()).Return(User{}, ErrNotFound)
		repo.EXPECT().Create(ctx, gomock.Any()).Return(ErrAlreadyExists)

		_, err := NewService(repo).Register(ctx, "ada@example.com", "hash", "", "")
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("empty update skips repository", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)

		require.NoError(t, NewService(repo).UpdateProfile(ctx, "u-1", nil))
	})

	t.Run("forwards updates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		updates := map[string]any{"name": "Grace"}
		repo.EXPECT().UpdateProfile(ctx, "u-1", updates).Return(nil)

		require.NoError(t, NewService(repo).UpdateProfile(ctx, "u-1", updates))
	})

	t.Run("set photo url", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().UpdateProfile(ctx, "u-1", map[string]any{"photo_url": "http://x/p.png"}).Return(nil)

		require.NoError(t, NewService(repo).SetPhotoURL(ctx, "u-1", "http://x/p.png"))
	})
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name, first, last, want string
	}{
		{"both", "Ada", "Lovelace", "Ada Lovelace"},
		{"only name", "Ada", "", "Ada"},
		{"only surname", "  ", "Lovelace", "Lovelace"},
		{"neither", "", " ", DefaultDisplayName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.first, tt.last))
		})
	}
}

func TestUser_View(t *testing.T) {
	v := User{ID: "u-1", Email: "a@b.c", Password: "secret"}.View()
	assert.Equal(t, DefaultAvatarURL, v.AvatarURL)
	assert.Equal(t, DefaultDisplayName, v.DisplayName)

	v = User{PhotoURL: "http://cdn/p.png"}.View()
	assert.Equal(t, "http://cdn/p.png", v.AvatarURL)
}
