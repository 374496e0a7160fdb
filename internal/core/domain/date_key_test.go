package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
)

func TestParseDateKey(t *testing.T) {
	t.Run("Success: Accepts canonical keys", func(t *testing.T) {
		k, err := domain.ParseDateKey("2024-03-05")
		require.NoError(t, err)
		assert.Equal(t, domain.DateKey("2024-03-05"), k)
	})

	t.Run("Fail: Rejects malformed or non-padded keys", func(t *testing.T) {
		for _, s := range []string{"", "2024-3-5", "2024/03/05", "2024-02-30", "05-03-2024", "yesterday"} {
			_, err := domain.ParseDateKey(s)
			assert.ErrorIs(t, err, domain.ErrInvalidDateKey, "input %q", s)
		}
	})
}

func TestToday(t *testing.T) {
	now := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)

	t.Run("Success: Uses the given zone", func(t *testing.T) {
		tokyo := time.FixedZone("JST", 9*3600)
		assert.Equal(t, domain.DateKey("2024-06-01"), domain.Today(now, time.UTC))
		assert.Equal(t, domain.DateKey("2024-06-02"), domain.Today(now, tokyo))
	})

	t.Run("Success: Nil zone falls back to local", func(t *testing.T) {
		assert.Equal(t, domain.DateKey(now.In(time.Local).Format(domain.DateKeyLayout)), domain.Today(now, nil))
	})
}

func TestDateArithmetic(t *testing.T) {
	t.Run("Success: Shift crosses month and year boundaries", func(t *testing.T) {
		assert.Equal(t, domain.DateKey("2024-03-01"), domain.Shift("2024-02-29", 1))
		assert.Equal(t, domain.DateKey("2023-12-31"), domain.Shift("2024-01-01", -1))
		assert.Equal(t, domain.DateKey("2024-01-01"), domain.Shift("2024-01-01", 0))
	})

	t.Run("Success: DaysBetween is signed", func(t *testing.T) {
		assert.Equal(t, 7, domain.DaysBetween("2024-01-01", "2024-01-08"))
		assert.Equal(t, -7, domain.DaysBetween("2024-01-08", "2024-01-01"))
		assert.Equal(t, 366, domain.DaysBetween("2024-01-01", "2025-01-01"))
	})

	t.Run("Success: DST change in the user zone does not skip a day", func(t *testing.T) {
		days := domain.DateRange("2024-03-30", "2024-04-01")
		assert.Equal(t, []domain.DateKey{"2024-03-30", "2024-03-31", "2024-04-01"}, days)
	})

	t.Run("Success: DateRange is inclusive and empty when reversed", func(t *testing.T) {
		assert.Equal(t, []domain.DateKey{"2024-01-01"}, domain.DateRange("2024-01-01", "2024-01-01"))
		assert.Empty(t, domain.DateRange("2024-01-02", "2024-01-01"))
	})

	t.Run("Success: String order is date order", func(t *testing.T) {
		assert.True(t, domain.DateKey("2023-12-31").Before("2024-01-01"))
		assert.True(t, domain.DateKey("2024-10-01").After("2024-09-30"))
		assert.Equal(t, domain.DateKeyOf(2024, time.September, 9), domain.DateKey("2024-09-09"))
	})
}
