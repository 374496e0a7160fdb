package domain

import (
	"context"
	"errors"
)

var (
	ErrHistoryNotFound    = errors.New("history document not found")
	ErrHistoryUnavailable = errors.New("history store unavailable")
)

type HistoryRepository interface {
	// Read returns the user's whole history document.
	// It returns ErrHistoryNotFound when the user has never saved anything.
	Read(ctx context.Context, userID string) (History, error)

	// Write replaces the user's whole history document.
	Write(ctx context.Context, userID string, history History) error
}

// HistoryNotifier delivers the full document to subscribers on every remote change.
type HistoryNotifier interface {
	// Subscribe registers onChange for userID. The returned func unsubscribes.
	Subscribe(ctx context.Context, userID string, onChange func(History)) (func(), error)

	Publish(ctx context.Context, userID string, history History) error
}
