package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
)

func sampleHistory(progress float64) domain.History {
	rec := domain.DefaultRecord()
	rec.Physical.Progress = progress
	h := domain.History{}
	h.UpsertToday("2024-01-10", rec)
	return h
}

func TestInMemoryHistoryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Fail: Unknown user has no document", func(t *testing.T) {
		repo := NewInMemoryHistoryRepository()
		_, err := repo.Read(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrHistoryNotFound)
	})

	t.Run("Success: Stored documents are isolated copies", func(t *testing.T) {
		repo := NewInMemoryHistoryRepository()
		h := sampleHistory(10)
		require.NoError(t, repo.Write(ctx, "u1", h))

		*h["2024-01-10"].Physical.Progress = 99

		got, err := repo.Read(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 10.0, got.Materialized("2024-01-10").Physical.Progress)

		*got["2024-01-10"].Physical.Progress = 42
		again, err := repo.Read(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 10.0, again.Materialized("2024-01-10").Physical.Progress)
	})

	t.Run("Success: Concurrent writes are safe", func(t *testing.T) {
		repo := NewInMemoryHistoryRepository()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, repo.Write(ctx, "u1", sampleHistory(float64(i))))
			}(i)
		}
		wg.Wait()

		_, err := repo.Read(ctx, "u1")
		assert.NoError(t, err)
	})
}

func TestInMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserRepository()

	u, err := domain.NewUser("u1", "Jane@Kanso.app", "Europe/Rome")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, u))

	t.Run("Success: Lookup by id and email", func(t *testing.T) {
		byID, err := repo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "jane@kanso.app", byID.Email)

		byEmail, err := repo.GetByEmail(ctx, "JANE@kanso.app")
		require.NoError(t, err)
		assert.Equal(t, "u1", byEmail.ID)
	})

	t.Run("Fail: Duplicate email", func(t *testing.T) {
		dup, err := domain.NewUser("u2", "jane@kanso.app", "")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrEmailAlreadyExists)
	})

	t.Run("Fail: Unknown user", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = repo.GetByEmail(ctx, "nobody@kanso.app")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
