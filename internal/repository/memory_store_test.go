package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/klmaterial-hub/internal/models"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
)

func TestMemoryCacheRepositoryRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCacheRepository()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	idx := models.MaterialsIndex{Groups: []models.SubjectGroup{{Subject: "DM", Files: []models.RemoteFile{{Name: "a.pdf", Folder: "DM", Size: 1}}}}}
	require.NoError(t, repo.Set(ctx, "k", idx, time.Minute))

	var got models.MaterialsIndex
	require.NoError(t, repo.Get(ctx, "k", &got))
	assert.Equal(t, idx, got)

	now = now.Add(time.Minute)
	assert.ErrorIs(t, repo.Get(ctx, "k", &got), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "k", idx, 0))
	require.NoError(t, repo.Delete(ctx, "k"))
	assert.ErrorIs(t, repo.Get(ctx, "k", &got), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryWithoutClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil)
	var dest map[string]string
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", dest, time.Minute))
	assert.NoError(t, repo.Delete(context.Background(), "k"))
}

func TestMemoryRatingGuardClaimOnce(t *testing.T) {
	ctx := context.Background()
	guard := NewMemoryRatingGuard()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	guard.claims.now = func() time.Time { return now }

	ok, err := guard.Claim(ctx, "s1", "doc", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = guard.Claim(ctx, "s1", "doc", time.Hour)
	assert.False(t, ok)

	ok, _ = guard.Claim(ctx, "s2", "doc", time.Hour)
	assert.True(t, ok, "other sessions are independent")

	require.NoError(t, guard.Release(ctx, "s1", "doc"))
	ok, _ = guard.Claim(ctx, "s1", "doc", time.Hour)
	assert.True(t, ok)

	now = now.Add(2 * time.Hour)
	ok, _ = guard.Claim(ctx, "s1", "doc", time.Hour)
	assert.True(t, ok, "claims lapse with the session")
}

func TestMemorySearchHistoryKeepsDistinctNewestFirst(t *testing.T) {
	ctx := context.Background()
	history := NewMemorySearchHistory()
	for _, q := range []string{"co1", "dm", "co1", "os"} {
		require.NoError(t, history.Push(ctx, "s1", q, 3, 0))
	}
	got, err := history.Recent(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"os", "co1", "dm"}, got)

	require.NoError(t, history.Push(ctx, "s1", "ai", 3, 0))
	got, _ = history.Recent(ctx, "s1", 2)
	assert.Equal(t, []string{"ai", "os"}, got)

	empty, err := history.Recent(ctx, "other", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemorySearchHistoryExpiresWithSession(t *testing.T) {
	ctx := context.Background()
	history := NewMemorySearchHistory()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	history.queries.now = func() time.Time { return now }

	require.NoError(t, history.Push(ctx, "s1", "co1", 10, time.Hour))
	now = now.Add(59 * time.Minute)
	require.NoError(t, history.Push(ctx, "s1", "dm", 10, time.Hour))

	now = now.Add(59 * time.Minute)
	got, _ := history.Recent(ctx, "s1", 10)
	assert.Equal(t, []string{"dm", "co1"}, got, "a push restarts the session expiry")

	now = now.Add(2 * time.Minute)
	got, _ = history.Recent(ctx, "s1", 10)
	assert.Empty(t, got)
	assert.Zero(t, history.queries.len())
}

func TestMemorySearchHistoryClear(t *testing.T) {
	ctx := context.Background()
	history := NewMemorySearchHistory()
	require.NoError(t, history.Push(ctx, "s1", "co1", 10, time.Hour))
	require.NoError(t, history.Push(ctx, "s2", "os", 10, time.Hour))

	require.NoError(t, history.Clear(ctx, "s1"))

	got, _ := history.Recent(ctx, "s1", 10)
	assert.Empty(t, got)
	other, _ := history.Recent(ctx, "s2", 10)
	assert.Equal(t, []string{"os"}, other)
}

func TestMemoryStoresEvictExpiredSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	history := NewMemorySearchHistory()
	history.queries.now = clock
	guard := NewMemoryRatingGuard()
	guard.claims.now = clock

	for i := 0; i < 10000; i++ {
		session := fmt.Sprintf("s%d", i)
		require.NoError(t, history.Push(ctx, session, "q", 10, time.Nanosecond))
		_, err := guard.Claim(ctx, session, "doc", time.Nanosecond)
		require.NoError(t, err)
		now = now.Add(time.Microsecond)
	}

	assert.Less(t, history.queries.len(), minSweepSize+1)
	assert.Less(t, guard.claims.len(), minSweepSize+1)
	got, _ := history.Recent(ctx, "s0", 10)
	assert.Empty(t, got)
}

func TestExpiringMapKeepsLiveEntriesAcrossSweeps(t *testing.T) {
	m := newExpiringMap[int]()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	for i := 0; i < 3*minSweepSize; i++ {
		m.set(fmt.Sprintf("k%d", i), i, time.Hour)
	}
	assert.Equal(t, 3*minSweepSize, m.len())
	v, ok := m.get("k7")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	m.set("forever", 1, 0)
	now = now.Add(2 * time.Hour)
	m.sweep(now)
	assert.Equal(t, 1, m.len())
	assert.Equal(t, minSweepSize, m.sweepSize)
}

func TestMemoryFavoritesToggle(t *testing.T) {
	ctx := context.Background()
	favs := NewMemoryFavorites()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	favs.sets.now = func() time.Time { return now }

	on, err := favs.Toggle(ctx, "s1", "DM_b_pdf", time.Hour)
	require.NoError(t, err)
	assert.True(t, on)
	on, _ = favs.Toggle(ctx, "s1", "DM_a_pdf", time.Hour)
	assert.True(t, on)

	ids, err := favs.List(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"DM_a_pdf", "DM_b_pdf"}, ids)

	on, _ = favs.Toggle(ctx, "s1", "DM_a_pdf", time.Hour)
	assert.False(t, on)
	ids, _ = favs.List(ctx, "s1")
	assert.Equal(t, []string{"DM_b_pdf"}, ids)

	other, _ := favs.List(ctx, "s2")
	assert.Empty(t, other)

	now = now.Add(2 * time.Hour)
	ids, _ = favs.List(ctx, "s1")
	assert.Empty(t, ids)
}
