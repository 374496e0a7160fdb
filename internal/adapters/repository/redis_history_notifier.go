package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
)

var _ domain.HistoryNotifier = (*RedisHistoryNotifier)(nil)

// RedisHistoryNotifier fans history documents out over one pub/sub channel per user.
type RedisHistoryNotifier struct {
	rdb *redis.Client
}

func NewRedisHistoryNotifier(rdb *redis.Client) *RedisHistoryNotifier {
	return &RedisHistoryNotifier{rdb: rdb}
}

func HistoryChannel(userID string) string {
	return fmt.Sprintf("history:%s", userID)
}

func (n *RedisHistoryNotifier) Publish(ctx context.Context, userID string, history domain.History) error {
	data, err := json.Marshal(domain.Document{History: history})
	if err != nil {
		return fmt.Errorf("notifier: failed to marshal history: %w", err)
	}
	return n.rdb.Publish(ctx, HistoryChannel(userID), data).Err()
}

// Subscribe waits for the subscription to be confirmed before returning, so a
// publish issued right after Subscribe returns is never missed.
func (n *RedisHistoryNotifier) Subscribe(ctx context.Context, userID string, onChange func(domain.History)) (func(), error) {
	pubsub := n.rdb.Subscribe(ctx, HistoryChannel(userID))

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("notifier: subscribe to %s failed: %w", HistoryChannel(userID), err)
	}

	ch := pubsub.Channel()
	go func() {
		for msg := range ch {
			var doc domain.Document
			if err := json.Unmarshal([]byte(msg.Payload), &doc); err != nil {
				log.Warnf("[NOTIFY] Dropping malformed history message on %s: %v", msg.Channel, err)
				continue
			}
			if doc.History == nil {
				doc.History = domain.History{}
			}
			onChange(doc.History)
		}
	}()

	return func() {
		if err := pubsub.Close(); err != nil {
			log.Warnf("[NOTIFY] Failed to close subscription for user %s: %v", userID, err)
		}
	}, nil
}
