package bunstore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"consulta/backend/internal/domain"
	"consulta/backend/internal/store"
)

type JobLeaseRepo struct {
	db  bun.IDB
	now func() time.Time
}

func NewJobLeaseRepo(db bun.IDB) *JobLeaseRepo {
	return &JobLeaseRepo{db: db, now: time.Now}
}

func (r *JobLeaseRepo) AcquireLease(ctx context.Context, name, owner string, ttl time.Duration) (domain.JobLease, error) {
	now := r.now().UTC().Truncate(time.Microsecond)
	lease := domain.JobLease{
		Name:       name,
		Owner:      owner,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}

	res, err := r.db.NewInsert().
		Model(&lease).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return domain.JobLease{}, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 1 {
		return lease, nil
	}

	// Take over an expired lease, or extend our own.
	res, err = r.db.NewUpdate().
		Model((*domain.JobLease)(nil)).
		Set("owner = ?", owner).
		Set("acquired_at = ?", lease.AcquiredAt).
		Set("expires_at = ?", lease.ExpiresAt).
		Where("name = ?", name).
		WhereGroup(" AND ", func(q *bun.UpdateQuery) *bun.UpdateQuery {
			return q.Where("expires_at <= ?", now).WhereOr("owner = ?", owner)
		}).
		Exec(ctx)
	if err != nil {
		return domain.JobLease{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.JobLease{}, err
	}
	if affected == 0 {
		return domain.JobLease{}, store.ErrLeaseHeld
	}
	return lease, nil
}

func (r *JobLeaseRepo) ReleaseLease(ctx context.Context, name, owner string) error {
	_, err := r.db.NewDelete().
		Model((*domain.JobLease)(nil)).
		Where("name = ?", name).
		Where("owner = ?", owner).
		Exec(ctx)
	return err
}
