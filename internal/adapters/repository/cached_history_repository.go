package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
)

var _ domain.HistoryRepository = (*CachedHistoryRepository)(nil)

const historyCacheTTL = 30 * time.Minute

// CachedHistoryRepository is a write-through Redis cache in front of the document store.
type CachedHistoryRepository struct {
	next  domain.HistoryRepository
	cache *redis.Client
}

func NewCachedHistoryRepository(next domain.HistoryRepository, cache *redis.Client) *CachedHistoryRepository {
	return &CachedHistoryRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedHistoryRepository) cacheKey(userID string) string {
	return fmt.Sprintf("history:doc:%s", userID)
}

func (r *CachedHistoryRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		log.Warnf("[CACHE] Failed to invalidate history for user %s: %v", userID, err)
	}
}

func (r *CachedHistoryRepository) Read(ctx context.Context, userID string) (domain.History, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var doc domain.Document
		if err := json.Unmarshal([]byte(val), &doc); err == nil && doc.History != nil {
			return doc.History, nil
		}

		log.Warnf("[CACHE] Corrupted history for user %s, cleaning up key", userID)
		r.invalidate(ctx, userID)
	} else if !errors.Is(err, redis.Nil) {
		log.Warnf("[CACHE] Redis read error: %v", err)
	}

	history, err := r.next.Read(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.store(ctx, userID, history)
	return history, nil
}

func (r *CachedHistoryRepository) Write(ctx context.Context, userID string, history domain.History) error {
	if err := r.next.Write(ctx, userID, history); err != nil {
		r.invalidate(ctx, userID)
		return err
	}

	r.store(ctx, userID, history)
	return nil
}

func (r *CachedHistoryRepository) store(ctx context.Context, userID string, history domain.History) {
	data, err := json.Marshal(domain.Document{History: history})
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, r.cacheKey(userID), data, historyCacheTTL).Err(); err != nil {
		log.Warnf("[CACHE] Redis set error: %v", err)
	}
}
