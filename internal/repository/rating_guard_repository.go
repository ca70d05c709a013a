package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

func ratedKey(sessionID, docID string) string {
	return fmt.Sprintf("rated:%s:%s", sessionID, docID)
}

// RatingGuardRepository records which documents a session has rated.
type RatingGuardRepository struct {
	client *redis.Client
}

// NewRatingGuardRepository constructs the Redis-backed guard.
func NewRatingGuardRepository(client *redis.Client) *RatingGuardRepository {
	return &RatingGuardRepository{client: client}
}

// Claim marks the document as rated by the session. It returns false when a claim already exists.
func (r *RatingGuardRepository) Claim(ctx context.Context, sessionID, docID string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, ratedKey(sessionID, docID), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx rating guard: %w", err)
	}
	return ok, nil
}

// Release removes a claim so a failed rating can be retried by the user.
func (r *RatingGuardRepository) Release(ctx context.Context, sessionID, docID string) error {
	if err := r.client.Del(ctx, ratedKey(sessionID, docID)).Err(); err != nil {
		return fmt.Errorf("redis release rating guard: %w", err)
	}
	return nil
}

// MemoryRatingGuard is the in-process guard used without Redis. Claims expire with the session.
type MemoryRatingGuard struct {
	mu     sync.Mutex
	claims *expiringMap[struct{}]
}

// NewMemoryRatingGuard builds an empty guard.
func NewMemoryRatingGuard() *MemoryRatingGuard {
	return &MemoryRatingGuard{claims: newExpiringMap[struct{}]()}
}

// Claim marks the document as rated by the session unless a live claim exists.
func (g *MemoryRatingGuard) Claim(_ context.Context, sessionID, docID string, ttl time.Duration) (bool, error) {
	key := ratedKey(sessionID, docID)
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.claims.get(key); ok {
		return false, nil
	}
	g.claims.set(key, struct{}{}, ttl)
	return true, nil
}

// Release removes a claim.
func (g *MemoryRatingGuard) Release(_ context.Context, sessionID, docID string) error {
	g.mu.Lock()
	g.claims.delete(ratedKey(sessionID, docID))
	g.mu.Unlock()
	return nil
}
