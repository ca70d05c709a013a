package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

func favoritesKey(sessionID string) string {
	return "favorites:" + sessionID
}

// FavoritesRepository keeps each session's starred documents in a Redis set.
type FavoritesRepository struct {
	client *redis.Client
}

// NewFavoritesRepository constructs the Redis-backed favorites store.
func NewFavoritesRepository(client *redis.Client) *FavoritesRepository {
	return &FavoritesRepository{client: client}
}

// Toggle removes docID when it is a favorite and adds it otherwise. It reports whether
// the document is a favorite afterwards.
func (r *FavoritesRepository) Toggle(ctx context.Context, sessionID, docID string, ttl time.Duration) (bool, error) {
	key := favoritesKey(sessionID)
	removed, err := r.client.SRem(ctx, key, docID).Result()
	if err != nil {
		return false, fmt.Errorf("redis srem favorite: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if removed == 0 {
			pipe.SAdd(ctx, key, docID)
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis sadd favorite: %w", err)
	}
	return removed == 0, nil
}

// List returns the session's favorite document ids, sorted.
func (r *FavoritesRepository) List(ctx context.Context, sessionID string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, favoritesKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read favorites: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// MemoryFavorites is the in-process favorites store used without Redis.
type MemoryFavorites struct {
	mu   sync.Mutex
	sets *expiringMap[map[string]struct{}]
}

// NewMemoryFavorites builds an empty store.
func NewMemoryFavorites() *MemoryFavorites {
	return &MemoryFavorites{sets: newExpiringMap[map[string]struct{}]()}
}

// Toggle flips docID in the session set and restarts the session's expiry.
func (f *MemoryFavorites) Toggle(_ context.Context, sessionID, docID string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.sets.get(sessionID)
	if !ok {
		set = map[string]struct{}{}
	}
	_, had := set[docID]
	if had {
		delete(set, docID)
	} else {
		set[docID] = struct{}{}
	}
	if len(set) == 0 {
		f.sets.delete(sessionID)
	} else {
		f.sets.set(sessionID, set, ttl)
	}
	return !had, nil
}

// List returns the session's favorite document ids, sorted.
func (f *MemoryFavorites) List(_ context.Context, sessionID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, _ := f.sets.get(sessionID)
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
