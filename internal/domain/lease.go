package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// JobLease is a time-bounded exclusive claim on a named background job.
type JobLease struct {
	bun.BaseModel `bun:"table:job_leases"`

	Name       string    `bun:"name,pk"`
	Owner      string    `bun:"owner,notnull"`
	AcquiredAt time.Time `bun:"acquired_at,notnull"`
	ExpiresAt  time.Time `bun:"expires_at,notnull"`
}

func (l *JobLease) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if l == nil {
		return nil
	}
	switch query.(type) {
	case *bun.InsertQuery, *bun.UpdateQuery:
		if l.AcquiredAt.IsZero() {
			l.AcquiredAt = time.Now().UTC()
		}
	}
	return nil
}

func (l JobLease) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}
