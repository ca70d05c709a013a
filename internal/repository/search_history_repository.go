package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SearchHistoryRepository keeps each session's recent queries in a Redis list, newest first.
type SearchHistoryRepository struct {
	client *redis.Client
}

// NewSearchHistoryRepository constructs the repository.
func NewSearchHistoryRepository(client *redis.Client) *SearchHistoryRepository {
	return &SearchHistoryRepository{client: client}
}

func historyKey(sessionID string) string {
	return "search:" + sessionID
}

// Push moves query to the head of the session list, trims it to limit entries and refreshes the TTL.
func (r *SearchHistoryRepository) Push(ctx context.Context, sessionID, query string, limit int, ttl time.Duration) error {
	key := historyKey(sessionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, key, 0, query)
		pipe.LPush(ctx, key, query)
		pipe.LTrim(ctx, key, 0, int64(limit-1))
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis push search history: %w", err)
	}
	return nil
}

// Recent returns up to limit queries, newest first.
func (r *SearchHistoryRepository) Recent(ctx context.Context, sessionID string, limit int) ([]string, error) {
	items, err := r.client.LRange(ctx, historyKey(sessionID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read search history: %w", err)
	}
	return items, nil
}

// Clear drops the session's history.
func (r *SearchHistoryRepository) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, historyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis clear search history: %w", err)
	}
	return nil
}

// MemorySearchHistory keeps recent queries in process memory for the session TTL.
type MemorySearchHistory struct {
	mu      sync.Mutex
	queries *expiringMap[[]string]
}

// NewMemorySearchHistory builds an empty history store.
func NewMemorySearchHistory() *MemorySearchHistory {
	return &MemorySearchHistory{queries: newExpiringMap[[]string]()}
}

// Push moves query to the front of the session history, trims it to limit entries and
// restarts the session's expiry.
func (h *MemorySearchHistory) Push(_ context.Context, sessionID, query string, limit int, ttl time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	current, _ := h.queries.get(sessionID)
	next := make([]string, 0, len(current)+1)
	next = append(next, query)
	for _, q := range current {
		if q != query {
			next = append(next, q)
		}
	}
	if limit > 0 && len(next) > limit {
		next = next[:limit]
	}
	h.queries.set(sessionID, next, ttl)
	return nil
}

// Recent returns up to limit queries, newest first.
func (h *MemorySearchHistory) Recent(_ context.Context, sessionID string, limit int) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	current, _ := h.queries.get(sessionID)
	if limit > 0 && len(current) > limit {
		current = current[:limit]
	}
	out := make([]string, len(current))
	copy(out, current)
	return out, nil
}

// Clear drops the session's history.
func (h *MemorySearchHistory) Clear(_ context.Context, sessionID string) error {
	h.mu.Lock()
	h.queries.delete(sessionID)
	h.mu.Unlock()
	return nil
}
