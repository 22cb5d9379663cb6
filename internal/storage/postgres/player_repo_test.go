package postgres_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/integration-quest/internal/storage/postgres"
	"github.com/cory-johannsen/integration-quest/internal/testutil"
)

var uniqueSeq atomic.Int64

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d_%d@example.test", prefix, time.Now().UnixNano(), uniqueSeq.Add(1))
}

func uniqueUsername(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, uniqueSeq.Add(1))
}

func mustToken(t testing.TB) string {
	t.Helper()
	token, err := postgres.NewToken()
	require.NoError(t, err)
	return token
}

func TestPlayerRepository_CreateAndGet(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	email := uniqueEmail("create")
	username := uniqueUsername("hero")
	token := mustToken(t)

	p, err := repo.Create(ctx, email, username, token)
	require.NoError(t, err)
	assert.Positive(t, p.ID)
	assert.Equal(t, email, p.Email)
	assert.Equal(t, username, p.Username)
	assert.NotEmpty(t, p.TokenHash)
	assert.NotEqual(t, token, p.TokenHash, "the raw token must never be stored")
	assert.Zero(t, p.TotalScore)
	assert.Zero(t, p.BestRunScore)
	assert.Zero(t, p.EnemiesDefeated)
	assert.False(t, p.CreatedAt.IsZero())
	assert.False(t, p.LastActive.IsZero())

	got, err := repo.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.TokenHash, got.TokenHash)
}

func TestPlayerRepository_GetByEmail_NotFound(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))

	_, err := repo.GetByEmail(context.Background(), "nobody@example.test")
	assert.ErrorIs(t, err, postgres.ErrPlayerNotFound)
}

func TestPlayerRepository_DuplicateEmail(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	email := uniqueEmail("dup")
	_, err := repo.Create(ctx, email, uniqueUsername("first"), mustToken(t))
	require.NoError(t, err)

	_, err = repo.Create(ctx, email, uniqueUsername("second"), mustToken(t))
	assert.ErrorIs(t, err, postgres.ErrEmailTaken)
}

func TestPlayerRepository_DuplicateUsername(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	username := uniqueUsername("taken")
	_, err := repo.Create(ctx, uniqueEmail("first"), username, mustToken(t))
	require.NoError(t, err)

	_, err = repo.Create(ctx, uniqueEmail("second"), username, mustToken(t))
	assert.ErrorIs(t, err, postgres.ErrUsernameTaken)
}

func TestPlayerRepository_Authenticate(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	email := uniqueEmail("auth")
	token := mustToken(t)
	created, err := repo.Create(ctx, email, uniqueUsername("auth"), token)
	require.NoError(t, err)

	p, err := repo.Authenticate(ctx, email, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, p.ID)
	assert.False(t, p.LastActive.Before(created.LastActive),
		"authentication refreshes last_active")

	_, err = repo.Authenticate(ctx, email, mustToken(t))
	assert.ErrorIs(t, err, postgres.ErrInvalidToken)

	_, err = repo.Authenticate(ctx, "ghost@example.test", token)
	assert.ErrorIs(t, err, postgres.ErrPlayerNotFound)
}

func TestPlayerRepository_RefreshToken(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	email := uniqueEmail("refresh")
	oldToken := mustToken(t)
	_, err := repo.Create(ctx, email, uniqueUsername("refresh"), oldToken)
	require.NoError(t, err)

	newToken := mustToken(t)
	require.NoError(t, repo.RefreshToken(ctx, email, newToken))

	_, err = repo.Authenticate(ctx, email, oldToken)
	assert.ErrorIs(t, err, postgres.ErrInvalidToken, "the old token stops working")

	_, err = repo.Authenticate(ctx, email, newToken)
	assert.NoError(t, err)

	err = repo.RefreshToken(ctx, "ghost@example.test", newToken)
	assert.ErrorIs(t, err, postgres.ErrPlayerNotFound)
}

func TestPlayerRepository_Scores(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	email := uniqueEmail("score")
	_, err := repo.Create(ctx, email, uniqueUsername("score"), mustToken(t))
	require.NoError(t, err)

	require.NoError(t, repo.AddScore(ctx, email, 150))
	require.NoError(t, repo.AddScore(ctx, email, 75))
	require.NoError(t, repo.IncrementEnemiesDefeated(ctx, email, 3))
	require.NoError(t, repo.FinalizeRun(ctx, email, 225))
	require.NoError(t, repo.FinalizeRun(ctx, email, 90))

	p, err := repo.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, int64(225), p.TotalScore)
	assert.Equal(t, int64(3), p.EnemiesDefeated)
	assert.Equal(t, int64(225), p.BestRunScore, "a weaker run never lowers the best")

	assert.ErrorIs(t, repo.AddScore(ctx, "ghost@example.test", 10), postgres.ErrPlayerNotFound)
	assert.ErrorIs(t, repo.IncrementEnemiesDefeated(ctx, "ghost@example.test", 1), postgres.ErrPlayerNotFound)
	assert.ErrorIs(t, repo.FinalizeRun(ctx, "ghost@example.test", 1), postgres.ErrPlayerNotFound)
}

func TestPlayerRepository_TopAndRank(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	type entry struct {
		email string
		score int64
	}
	entries := []entry{
		{uniqueEmail("gold"), 300},
		{uniqueEmail("silver"), 200},
		{uniqueEmail("bronze"), 100},
	}
	for i, e := range entries {
		_, err := repo.Create(ctx, e.email, uniqueUsername(fmt.Sprintf("rank%d", i)), mustToken(t))
		require.NoError(t, err)
		require.NoError(t, repo.AddScore(ctx, e.email, e.score))
	}

	top, err := repo.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, entries[0].email, top[0].Email)
	assert.Equal(t, entries[1].email, top[1].Email)

	for i, e := range entries {
		rank, err := repo.Rank(ctx, e.email)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), rank, "email %s", e.email)
	}

	_, err = repo.Rank(ctx, "ghost@example.test")
	assert.ErrorIs(t, err, postgres.ErrPlayerNotFound)
}

func TestPlayerRepository_Property_ScoreSumsMatch(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	rapid.Check(t, func(t *rapid.T) {
		email := uniqueEmail("prop")
		if _, err := repo.Create(ctx, email, uniqueUsername("prop"), "0123456789abcdef0123456789abcdef"); err != nil {
			t.Fatalf("creating player: %v", err)
		}

		increments := rapid.SliceOfN(rapid.Int64Range(0, 1000), 1, 8).Draw(t, "increments")
		var want, bestRun int64
		for _, inc := range increments {
			if err := repo.AddScore(ctx, email, inc); err != nil {
				t.Fatalf("adding score: %v", err)
			}
			want += inc
			if err := repo.FinalizeRun(ctx, email, inc); err != nil {
				t.Fatalf("finalizing run: %v", err)
			}
			if inc > bestRun {
				bestRun = inc
			}
		}

		p, err := repo.GetByEmail(ctx, email)
		if err != nil {
			t.Fatalf("fetching player: %v", err)
		}
		if p.TotalScore != want {
			t.Fatalf("total score %d, want %d", p.TotalScore, want)
		}
		if p.BestRunScore != bestRun {
			t.Fatalf("best run %d, want %d", p.BestRunScore, bestRun)
		}
	})
}
