package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
)

var (
	_ domain.HistoryRepository = (*InMemoryHistoryRepository)(nil)
	_ domain.UserRepository    = (*InMemoryUserRepository)(nil)
)

// InMemoryHistoryRepository keeps documents in process. It is lost on restart.
type InMemoryHistoryRepository struct {
	mu    sync.RWMutex
	store map[string]domain.History
}

func NewInMemoryHistoryRepository() *InMemoryHistoryRepository {
	return &InMemoryHistoryRepository{
		store: make(map[string]domain.History),
	}
}

func (r *InMemoryHistoryRepository) Read(ctx context.Context, userID string) (domain.History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.store[userID]
	if !ok {
		return nil, domain.ErrHistoryNotFound
	}
	return h.Clone(), nil
}

func (r *InMemoryHistoryRepository) Write(ctx context.Context, userID string, history domain.History) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[userID] = history.Clone()
	return nil
}

type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}

	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}
