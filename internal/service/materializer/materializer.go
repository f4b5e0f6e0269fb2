package materializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"consulta/backend/internal/domain"
	"consulta/backend/internal/store"
)

const (
	DefaultLeaseName = "recurrence-materializer"
	DefaultLeaseTTL  = 30 * time.Minute
)

type Config struct {
	LeaseName string
	LeaseTTL  time.Duration
	Now       func() time.Time
	// NewOwner returns the token identifying this run on the lease.
	NewOwner func() string
}

type Result struct {
	Created         int
	SeriesProcessed int
	SeriesFailed    int
}

// Materializer turns the near future of every fixed series into occurrence rows.
type Materializer struct {
	repo   store.ConsultationRepository
	leases store.JobLeaseRepository
	log    *slog.Logger
	cfg    Config
}

func New(repo store.ConsultationRepository, leases store.JobLeaseRepository, log *slog.Logger, cfg Config) *Materializer {
	if log == nil {
		log = slog.Default()
	}
	if cfg.LeaseName == "" {
		cfg.LeaseName = DefaultLeaseName
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = DefaultLeaseTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewOwner == nil {
		cfg.NewOwner = uuid.NewString
	}
	return &Materializer{
		repo:   repo,
		leases: leases,
		log:    log.With(slog.String("component", "materializer")),
		cfg:    cfg,
	}
}

// Run creates the missing occurrences of every series up to windowDays ahead.
// It returns store.ErrLeaseHeld without doing anything while another run holds
// the job lease. A failing series is logged and counted; the others still run.
func (m *Materializer) Run(ctx context.Context, windowDays int) (Result, error) {
	if windowDays < 0 {
		return Result{}, fmt.Errorf("window days must not be negative: %d", windowDays)
	}

	owner := m.cfg.NewOwner()
	log := m.log.With(slog.String("run_id", owner), slog.Int("window_days", windowDays))

	if _, err := m.leases.AcquireLease(ctx, m.cfg.LeaseName, owner, m.cfg.LeaseTTL); err != nil {
		if errors.Is(err, store.ErrLeaseHeld) {
			log.Info("materializer run skipped", slog.String("reason", "lease_held"))
		}
		return Result{}, err
	}
	defer func() {
		if err := m.leases.ReleaseLease(context.WithoutCancel(ctx), m.cfg.LeaseName, owner); err != nil {
			log.Warn("lease release failed", slog.Any("err", err))
		}
	}()

	now := domain.NormalizeInstant(m.cfg.Now())
	horizon := now.Add(time.Duration(windowDays) * 24 * time.Hour)

	rootIDs, err := m.seriesRoots(ctx)
	if err != nil {
		log.Error("series lookup failed", slog.Any("err", err))
		return Result{}, err
	}

	res := Result{SeriesProcessed: len(rootIDs)}
	for _, rootID := range rootIDs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		var created int
		err := m.repo.InTransaction(ctx, []string{store.SeriesLockKey(rootID)}, func(ctx context.Context, tx store.ConsultationTx) error {
			n, err := materializeSeries(ctx, tx, rootID, now, horizon)
			created = n
			return err
		})
		if err != nil {
			res.SeriesFailed++
			log.Error("series materialization failed", slog.Int64("root_id", rootID), slog.Any("err", err))
			continue
		}
		res.Created += created
		if created > 0 {
			log.Debug("series materialized", slog.Int64("root_id", rootID), slog.Int("created", created))
		}
	}

	log.Info(
		"materializer run finished",
		slog.Int("created", res.Created),
		slog.Int("series_processed", res.SeriesProcessed),
		slog.Int("series_failed", res.SeriesFailed),
	)
	return res, nil
}

func (m *Materializer) seriesRoots(ctx context.Context) ([]int64, error) {
	rows, err := m.repo.Find(ctx, store.Filter{
		Where: []store.Predicate{
			store.Eq(store.FieldIsFlex, false),
			store.Eq(store.FieldIsDeleted, false),
			store.Eq(store.FieldIsCancelled, false),
		},
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, r := range rows {
		if !r.IsSeriesRoot() {
			continue
		}
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		ids = append(ids, r.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func materializeSeries(ctx context.Context, tx store.ConsultationTx, rootID int64, now, horizon time.Time) (int, error) {
	root, err := tx.FindByID(ctx, rootID)
	if err != nil {
		return 0, fmt.Errorf("load root: %w", err)
	}
	// Series without an end are never advanced.
	if root.EndDate == nil || root.StartDate == nil {
		return 0, nil
	}
	if root.IsDeleted || root.IsCancelled || root.EndDate.Before(now) {
		return 0, nil
	}

	frequency := root.Frequency()
	base := *root.StartDate
	latest, err := tx.FindOne(ctx, store.Filter{
		Where: []store.Predicate{
			store.Eq(store.FieldIsCancelled, false),
			store.Eq(store.FieldIsDeleted, false),
			store.Neq(store.FieldStartDate, nil),
		},
		Or:    store.SeriesRows(rootID),
		Order: &store.Order{Field: store.FieldStartDate, Desc: true},
		Limit: 1,
	})
	switch {
	case err == nil:
		base = *latest.StartDate
	case !errors.Is(err, store.ErrNotFound):
		return 0, fmt.Errorf("find latest occurrence: %w", err)
	}

	limit := *root.EndDate
	if horizon.Before(limit) {
		limit = horizon
	}
	dates, err := domain.CadenceDates(domain.NextCadenceDate(base, frequency), limit, frequency)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, next := range dates {
		_, err := tx.FindOne(ctx, store.Filter{
			Where: []store.Predicate{store.Eq(store.FieldStartDate, next)},
			Or:    store.SeriesRows(rootID),
		})
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return 0, fmt.Errorf("check occurrence %s: %w", next.Format(time.RFC3339), err)
		}

		at := next
		end := *root.EndDate
		firstID := rootID
		if _, err := tx.Create(ctx, domain.Consultation{
			OfficeID:        root.OfficeID,
			UserID:          root.UserID,
			StartDate:       &at,
			EndDate:         &end,
			IsFlex:          false,
			FirstID:         &firstID,
			WeeklyFrequency: frequency,
		}); err != nil {
			return 0, fmt.Errorf("create occurrence %s: %w", next.Format(time.RFC3339), err)
		}
		created++
	}
	return created, nil
}
