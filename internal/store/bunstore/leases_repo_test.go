package bunstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"consulta/backend/internal/store"
	"consulta/backend/internal/testfixtures"
)

func TestJobLeaseRepo_AcquireReleaseAndExpiry(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewClock(time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC))
	repo := NewJobLeaseRepo(newSQLiteDB(t))
	repo.now = clock.Now

	lease, err := repo.AcquireLease(ctx, "job", "a", time.Minute)
	if err != nil {
		t.Fatalf("AcquireLease a error: %v", err)
	}
	if !lease.ExpiresAt.Equal(clock.Now().Add(time.Minute)) {
		t.Fatalf("ExpiresAt = %v", lease.ExpiresAt)
	}

	if _, err := repo.AcquireLease(ctx, "job", "b", time.Minute); !errors.Is(err, store.ErrLeaseHeld) {
		t.Fatalf("AcquireLease b err = %v, want %v", err, store.ErrLeaseHeld)
	}

	// The holder may extend its own lease.
	if _, err := repo.AcquireLease(ctx, "job", "a", time.Hour); err != nil {
		t.Fatalf("AcquireLease a again error: %v", err)
	}

	clock.Advance(2 * time.Hour)
	if _, err := repo.AcquireLease(ctx, "job", "b", time.Minute); err != nil {
		t.Fatalf("AcquireLease b after expiry error: %v", err)
	}

	// Releasing with the wrong owner is a no-op.
	if err := repo.ReleaseLease(ctx, "job", "a"); err != nil {
		t.Fatalf("ReleaseLease error: %v", err)
	}
	if _, err := repo.AcquireLease(ctx, "job", "c", time.Minute); !errors.Is(err, store.ErrLeaseHeld) {
		t.Fatalf("AcquireLease c err = %v, want %v", err, store.ErrLeaseHeld)
	}

	if err := repo.ReleaseLease(ctx, "job", "b"); err != nil {
		t.Fatalf("ReleaseLease error: %v", err)
	}
	if _, err := repo.AcquireLease(ctx, "job", "c", time.Minute); err != nil {
		t.Fatalf("AcquireLease c after release error: %v", err)
	}
}
