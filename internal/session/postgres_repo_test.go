package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview/internal/testutil"
)

func insertUser(t *testing.T, ctx context.Context, repo *PostgresRepo, email string) string {
	t.Helper()
	var id string
	err := repo.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, 'x') RETURNING id`, email).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestPostgresRepo_Lifecycle(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.ResetTables(t, db)
	repo := NewPostgresRepo(db, 3*time.Second)
	ctx := context.Background()

	owner := insertUser(t, ctx, repo, "owner@example.com")
	other := insertUser(t, ctx, repo, "other@example.com")

	s := &Session{
		UserID:           owner,
		RefreshTokenHash: "hash-1",
		UserAgent:        "test-agent",
		IPAddress:        "127.0.0.1",
		ExpiresAt:        time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, s))
	require.NotEmpty(t, s.ID)
	require.NotZero(t, s.CreatedAt)

	expired := &Session{UserID: owner, RefreshTokenHash: "hash-old", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, expired))

	_, err := repo.Redeem(ctx, "hash-old")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := repo.ListByUserID(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, repo.DeleteForUser(ctx, other, s.ID), ErrNotFound)
	assert.ErrorIs(t, repo.DeleteForUser(ctx, owner, "not-a-uuid"), ErrNotFound)

	purged, err := repo.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	require.NoError(t, repo.DeleteForUser(ctx, owner, s.ID))
	assert.ErrorIs(t, repo.DeleteByTokenHash(ctx, "hash-1"), ErrNotFound)
}

func TestPostgresRepo_RedeemOnce(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.ResetTables(t, db)
	repo := NewPostgresRepo(db, 3*time.Second)
	ctx := context.Background()

	owner := insertUser(t, ctx, repo, "redeem@example.com")
	s := &Session{UserID: owner, RefreshTokenHash: "hash-r", UserAgent: "ua", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.Redeem(ctx, "hash-r")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "ua", got.UserAgent)

	_, err = repo.Redeem(ctx, "hash-r")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := repo.ListByUserID(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)

	rotated := &Session{UserID: owner, RefreshTokenHash: "hash-r2", UserAgent: "ua", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, rotated))
	assert.False(t, rotated.LastUsedAt.Before(got.LastUsedAt))
	assert.WithinDuration(t, time.Now(), rotated.LastUsedAt, time.Minute)
}

func TestPostgresRepo_ConcurrentRedeem(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.ResetTables(t, db)
	repo := NewPostgresRepo(db, 3*time.Second)
	ctx := context.Background()

	owner := insertUser(t, ctx, repo, "race@example.com")
	require.NoError(t, repo.Create(ctx, &Session{UserID: owner, RefreshTokenHash: "hash-c", ExpiresAt: time.Now().Add(time.Hour)}))

	const callers = 8
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := repo.Redeem(ctx, "hash-c"); err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
}

func TestBlacklistPostgresRepo(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.ResetTables(t, db)
	sessions := NewPostgresRepo(db, 3*time.Second)
	repo := NewBlacklistPostgresRepo(db, 3*time.Second)
	ctx := context.Background()

	userID := insertUser(t, ctx, sessions, "bl@example.com")

	require.NoError(t, repo.AddToken(ctx, "live", userID, time.Now().Add(time.Hour)))
	require.NoError(t, repo.AddToken(ctx, "live", userID, time.Now().Add(time.Hour)))
	require.NoError(t, repo.AddToken(ctx, "dead", userID, time.Now().Add(-time.Hour)))

	live, err := repo.IsBlacklisted(ctx, "live")
	require.NoError(t, err)
	assert.True(t, live)

	dead, err := repo.IsBlacklisted(ctx, "dead")
	require.NoError(t, err)
	assert.False(t, dead)

	n, err := repo.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
