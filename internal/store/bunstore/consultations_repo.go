package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"consulta/backend/internal/domain"
	"consulta/backend/internal/store"
)

type ConsultationRepo struct {
	db *bun.DB
	consultationTx
}

func NewConsultationRepo(db *bun.DB) *ConsultationRepo {
	return &ConsultationRepo{db: db, consultationTx: consultationTx{db: db}}
}

// consultationTx implements store.ConsultationTx on either the pool or an open transaction.
type consultationTx struct {
	db bun.IDB
}

func (r *ConsultationRepo) InTransaction(ctx context.Context, lockKeys []string, fn func(ctx context.Context, tx store.ConsultationTx) error) error {
	keys := uniqueSorted(lockKeys)
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, key := range keys {
			if err := lockKey(ctx, tx, key); err != nil {
				return err
			}
		}
		return fn(ctx, consultationTx{db: tx})
	})
}

// lockKey takes a transaction-scoped advisory lock on Postgres. SQLite runs on a
// single connection, so transactions are already serialized there.
func lockKey(ctx context.Context, tx bun.Tx, key string) error {
	if tx.Dialect().Name() != dialect.PG {
		return nil
	}
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx)
	return err
}

func uniqueSorted(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r consultationTx) Find(ctx context.Context, f store.Filter) ([]domain.Consultation, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var rows []domain.Consultation
	err := applyFilter(r.db.NewSelect().Model(&rows), f).Scan(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		normalizeRow(&rows[i])
	}
	return rows, nil
}

func (r consultationTx) FindOne(ctx context.Context, f store.Filter) (domain.Consultation, error) {
	f.Limit = 1
	rows, err := r.Find(ctx, f)
	if err != nil {
		return domain.Consultation{}, err
	}
	if len(rows) == 0 {
		return domain.Consultation{}, store.ErrNotFound
	}
	return rows[0], nil
}

func (r consultationTx) FindByID(ctx context.Context, id int64) (domain.Consultation, error) {
	var row domain.Consultation
	err := r.db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Consultation{}, store.ErrNotFound
		}
		return domain.Consultation{}, err
	}
	normalizeRow(&row)
	return row, nil
}

func (r consultationTx) Create(ctx context.Context, c domain.Consultation) (domain.Consultation, error) {
	m := c
	m.ID = 0
	m.StartDate = domain.NormalizeInstantPtr(c.StartDate)
	m.EndDate = domain.NormalizeInstantPtr(c.EndDate)
	m.CancelledAt = domain.NormalizeInstantPtr(c.CancelledAt)

	_, err := r.db.NewInsert().Model(&m).Returning("*").Exec(ctx)
	if err != nil {
		return domain.Consultation{}, translateError(err)
	}
	normalizeRow(&m)
	return m, nil
}

func (r consultationTx) UpdateByID(ctx context.Context, id int64, patch store.ConsultationPatch) error {
	q := r.db.NewUpdate().
		Model((*domain.Consultation)(nil)).
		Where("id = ?", id)

	if patch.OfficeID != nil {
		q = q.Set("office_id = ?", *patch.OfficeID)
	}
	if patch.UserID != nil {
		q = setNullableInt(q, "user_id", *patch.UserID)
	}
	if patch.StartDate != nil {
		q = q.Set("start_date = ?", domain.NormalizeInstant(*patch.StartDate))
	}
	if patch.EndDate != nil {
		q = q.Set("end_date = ?", domain.NormalizeInstant(*patch.EndDate))
	}
	if patch.IsFlex != nil {
		q = q.Set("is_flex = ?", *patch.IsFlex)
	}
	if patch.FirstID != nil {
		q = setNullableInt(q, "first_id", *patch.FirstID)
	}
	if patch.WeeklyFrequency != nil {
		q = q.Set("weekly_frequency = ?", *patch.WeeklyFrequency)
	}
	if patch.IsDeleted != nil {
		q = q.Set("is_deleted = ?", *patch.IsDeleted)
	}
	if patch.IsCancelled != nil {
		q = q.Set("is_cancelled = ?", *patch.IsCancelled)
	}
	if patch.CancelledAt != nil {
		q = q.Set("cancelled_at = ?", domain.NormalizeInstant(*patch.CancelledAt))
	}
	if patch.CancellationReason != nil {
		if *patch.CancellationReason == "" {
			q = q.Set("cancellation_reason = NULL")
		} else {
			q = q.Set("cancellation_reason = ?", *patch.CancellationReason)
		}
	}
	q = q.Set("updated_at = ?", time.Now().UTC())

	res, err := q.Exec(ctx)
	if err != nil {
		return translateError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func setNullableInt(q *bun.UpdateQuery, column string, v int64) *bun.UpdateQuery {
	if v == 0 {
		return q.Set("? = NULL", bun.Ident(column))
	}
	return q.Set("? = ?", bun.Ident(column), v)
}

func normalizeRow(c *domain.Consultation) {
	c.StartDate = domain.NormalizeInstantPtr(c.StartDate)
	c.EndDate = domain.NormalizeInstantPtr(c.EndDate)
	c.CancelledAt = domain.NormalizeInstantPtr(c.CancelledAt)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	if c.FirstID != nil && *c.FirstID == 0 {
		c.FirstID = nil
	}
}

// translateError maps unique violations from either driver to store.ErrConflict.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return store.ErrConflict
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return store.ErrConflict
		case sqlite3.SQLITE_CONSTRAINT:
			if strings.Contains(liteErr.Error(), "UNIQUE constraint failed") {
				return store.ErrConflict
			}
		}
	}
	return err
}
