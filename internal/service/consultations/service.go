package consultations

import (
	"context"
	"errors"
	"time"

	"consulta/backend/internal/domain"
	"consulta/backend/internal/store"
)

type Config struct {
	// CheckVirtualOccurrences makes the conflict check also reject cadence dates of
	// active series that have not been materialized yet.
	CheckVirtualOccurrences bool
	Now                     func() time.Time
}

type Service struct {
	repo store.ConsultationRepository
	cfg  Config
	now  func() time.Time
}

func NewService(repo store.ConsultationRepository, cfg Config) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, cfg: cfg, now: now}
}

func (s *Service) GetConsultation(ctx context.Context, id int64) (domain.Consultation, error) {
	if id <= 0 {
		return domain.Consultation{}, validationError("id is required")
	}
	return loadConsultation(ctx, s.repo, id)
}

// ListOfficeConsultations returns the active rows of an office whose start falls in
// [windowStart, windowEnd).
func (s *Service) ListOfficeConsultations(ctx context.Context, officeID int64, windowStart, windowEnd time.Time) ([]domain.Consultation, error) {
	if officeID <= 0 {
		return nil, validationError("office_id is required")
	}
	start := domain.NormalizeInstant(windowStart)
	end := domain.NormalizeInstant(windowEnd)
	if !end.After(start) {
		return nil, validationError("window_end must be after window_start")
	}

	return s.repo.Find(ctx, store.Filter{
		Where: []store.Predicate{
			store.Eq(store.FieldOfficeID, officeID),
			store.Eq(store.FieldIsDeleted, false),
			store.Eq(store.FieldIsCancelled, false),
			store.Gte(store.FieldStartDate, start),
			store.Lt(store.FieldStartDate, end),
		},
		Order: &store.Order{Field: store.FieldStartDate},
	})
}

func loadConsultation(ctx context.Context, tx store.ConsultationTx, id int64) (domain.Consultation, error) {
	c, err := tx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Consultation{}, notFoundError("consultation not found")
		}
		return domain.Consultation{}, err
	}
	return c, nil
}

func (s *Service) nowUTC() time.Time {
	return domain.NormalizeInstant(s.now())
}
