package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/cardroom/internal/domain"
)

func TestRetrier_Retry(t *testing.T) {
	t.Run("succeeds first try", func(t *testing.T) {
		r := NewRetrier()
		calls := 0

		err := r.Retry(context.Background(), func() error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("retries version conflicts", func(t *testing.T) {
		r := NewRetrier()
		calls := 0

		err := r.Retry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return domain.ErrConflict
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		r := NewRetrier()
		calls := 0

		err := r.Retry(context.Background(), func() error {
			calls++
			return domain.ErrConflict
		})
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		if calls != 4 {
			t.Errorf("expected initial call plus 3 retries, got %d", calls)
		}
	})

	t.Run("retries deadlocks", func(t *testing.T) {
		r := NewRetrier()
		calls := 0

		err := r.Retry(context.Background(), func() error {
			calls++
			if calls == 1 {
				return &pgconn.PgError{Code: pgErrDeadlock}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 calls, got %d", calls)
		}
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		r := NewRetrier()
		calls := 0
		permanent := errors.New("constraint violation")

		err := r.Retry(context.Background(), func() error {
			calls++
			return permanent
		})
		if !errors.Is(err, permanent) {
			t.Fatalf("expected permanent error, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})
}
