package repository

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
)

var (
	_ domain.HistoryNotifier   = (*LocalNotifier)(nil)
	_ domain.HistoryRepository = (*NotifyingHistoryRepository)(nil)
)

// LocalNotifier fans changes out to subscribers of the same process.
type LocalNotifier struct {
	mu          sync.RWMutex
	subscribers map[string]map[uint64]func(domain.History)
	nextID      uint64
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{
		subscribers: make(map[string]map[uint64]func(domain.History)),
	}
}

func (n *LocalNotifier) Subscribe(ctx context.Context, userID string, onChange func(domain.History)) (func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID

	if n.subscribers[userID] == nil {
		n.subscribers[userID] = make(map[uint64]func(domain.History))
	}
	n.subscribers[userID][id] = onChange

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()

			delete(n.subscribers[userID], id)
			if len(n.subscribers[userID]) == 0 {
				delete(n.subscribers, userID)
			}
		})
	}, nil
}

// Publish calls every subscriber synchronously, each with its own copy.
func (n *LocalNotifier) Publish(ctx context.Context, userID string, history domain.History) error {
	n.mu.RLock()
	handlers := make([]func(domain.History), 0, len(n.subscribers[userID]))
	for _, h := range n.subscribers[userID] {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()

	for _, h := range handlers {
		h(history.Clone())
	}
	return nil
}

// NotifyingHistoryRepository publishes every successfully written document,
// so every open session of the user reloads it.
type NotifyingHistoryRepository struct {
	next     domain.HistoryRepository
	notifier domain.HistoryNotifier
}

func NewNotifyingHistoryRepository(next domain.HistoryRepository, notifier domain.HistoryNotifier) *NotifyingHistoryRepository {
	return &NotifyingHistoryRepository{
		next:     next,
		notifier: notifier,
	}
}

func (r *NotifyingHistoryRepository) Read(ctx context.Context, userID string) (domain.History, error) {
	return r.next.Read(ctx, userID)
}

// Write succeeds once the store accepted the document. A failed publish only delays other sessions.
func (r *NotifyingHistoryRepository) Write(ctx context.Context, userID string, history domain.History) error {
	if err := r.next.Write(ctx, userID, history); err != nil {
		return err
	}

	if err := r.notifier.Publish(ctx, userID, history); err != nil {
		log.Warnf("[NOTIFY] Failed to publish history change for user %s: %v", userID, err)
	}
	return nil
}
