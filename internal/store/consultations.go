package store

import (
	"context"
	"fmt"
	"time"

	"consulta/backend/internal/domain"
)

// ConsultationTx is the storage port every scheduling operation goes through.
type ConsultationTx interface {
	Find(ctx context.Context, f Filter) ([]domain.Consultation, error)
	// FindOne returns ErrNotFound when nothing matches.
	FindOne(ctx context.Context, f Filter) (domain.Consultation, error)
	FindByID(ctx context.Context, id int64) (domain.Consultation, error)
	Create(ctx context.Context, c domain.Consultation) (domain.Consultation, error)
	UpdateByID(ctx context.Context, id int64, patch ConsultationPatch) error
}

type ConsultationRepository interface {
	ConsultationTx

	// InTransaction runs fn in a transaction holding an exclusive lock on every key.
	InTransaction(ctx context.Context, lockKeys []string, fn func(ctx context.Context, tx ConsultationTx) error) error
}

type JobLeaseRepository interface {
	// AcquireLease claims name for owner until now+ttl. It returns ErrLeaseHeld
	// while another owner holds an unexpired lease.
	AcquireLease(ctx context.Context, name, owner string, ttl time.Duration) (domain.JobLease, error)
	ReleaseLease(ctx context.Context, name, owner string) error
}

func SlotLockKey(officeID int64, start time.Time) string {
	return fmt.Sprintf("slot:%d:%d", officeID, start.UTC().UnixMicro())
}

func SeriesLockKey(rootID int64) string {
	return fmt.Sprintf("series:%d", rootID)
}
