package consultations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consulta/backend/internal/domain"
	"consulta/backend/internal/store"
)

// CancelDirect cancels the row itself. For a one-off booking this is the only
// way to cancel; for a series member it cancels just that row. Any existing row
// is accepted, and cancelling again overwrites the reason and timestamp.
func (s *Service) CancelDirect(ctx context.Context, id int64, reason string) (domain.Consultation, error) {
	if id <= 0 {
		return domain.Consultation{}, validationError("id is required")
	}

	var out domain.Consultation
	err := s.repo.InTransaction(ctx, nil, func(ctx context.Context, tx store.ConsultationTx) error {
		if _, err := loadConsultation(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.UpdateByID(ctx, id, store.CancelPatch(s.nowUTC(), reason)); err != nil {
			return err
		}
		var err error
		out, err = loadConsultation(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Consultation{}, err
	}
	return out, nil
}

// CancelSingleDate records that the series of memberID does not happen at
// target. An occurrence already materialized at that date is cancelled in place
// so the series never holds two rows for one date; otherwise a new exception row
// is written.
func (s *Service) CancelSingleDate(ctx context.Context, memberID int64, target time.Time, reason string) (domain.Consultation, error) {
	if memberID <= 0 {
		return domain.Consultation{}, validationError("id is required")
	}
	if target.IsZero() {
		return domain.Consultation{}, validationError("date is required")
	}
	target = domain.NormalizeInstant(target)

	root, err := s.resolveRoot(ctx, memberID)
	if err != nil {
		return domain.Consultation{}, err
	}

	var out domain.Consultation
	err = s.repo.InTransaction(ctx, []string{store.SeriesLockKey(root.ID)}, func(ctx context.Context, tx store.ConsultationTx) error {
		excepted, err := hasException(ctx, tx, root.ID, target)
		if err != nil {
			return err
		}
		if excepted {
			return conflictError("that date is already cancelled for this series")
		}

		now := s.nowUTC()
		occurrence, err := tx.FindOne(ctx, store.Filter{
			Where: []store.Predicate{
				store.Eq(store.FieldFirstID, root.ID),
				store.Eq(store.FieldStartDate, target),
				store.Neq(store.FieldID, root.ID),
				store.Eq(store.FieldIsDeleted, false),
			},
		})
		switch {
		case err == nil:
			if err := tx.UpdateByID(ctx, occurrence.ID, store.CancelPatch(now, reason)); err != nil {
				return err
			}
			out, err = loadConsultation(ctx, tx, occurrence.ID)
			return err
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		out, err = tx.Create(ctx, exceptionRow(root, target, now, reason))
		if err != nil {
			return translateStoreError(err)
		}
		return nil
	})
	if err != nil {
		return domain.Consultation{}, err
	}
	return out, nil
}

type CancelResult struct {
	CancelledCount int
	Message        string
}

// CancelFromDateForward cancels every cadence date of the series from fromDate
// through the series end date, inclusive. Existing rows at a date are cancelled
// in place; dates with no row get an exception.
func (s *Service) CancelFromDateForward(ctx context.Context, memberID int64, fromDate time.Time, reason string) (CancelResult, error) {
	if memberID <= 0 {
		return CancelResult{}, validationError("id is required")
	}
	if fromDate.IsZero() {
		return CancelResult{}, validationError("date is required")
	}
	fromDate = domain.NormalizeInstant(fromDate)

	root, err := s.resolveRoot(ctx, memberID)
	if err != nil {
		return CancelResult{}, err
	}
	if root.EndDate == nil {
		return CancelResult{}, validationError("the series has no end date")
	}

	dates, err := domain.CadenceDates(fromDate, *root.EndDate, root.WeeklyFrequency)
	if err != nil {
		if errors.Is(err, domain.ErrCadenceTooLong) {
			return CancelResult{}, validationError("the series spans too many dates to cancel at once")
		}
		return CancelResult{}, err
	}

	var count int
	err = s.repo.InTransaction(ctx, []string{store.SeriesLockKey(root.ID)}, func(ctx context.Context, tx store.ConsultationTx) error {
		count = 0
		now := s.nowUTC()
		for _, d := range dates {
			existing, err := tx.FindOne(ctx, store.Filter{
				Where: []store.Predicate{
					store.Eq(store.FieldStartDate, d),
					store.Eq(store.FieldIsDeleted, false),
				},
				Or: store.SeriesRows(root.ID),
			})
			switch {
			case err == nil:
				if !existing.IsCancelled {
					if err := tx.UpdateByID(ctx, existing.ID, store.CancelPatch(now, reason)); err != nil {
						return err
					}
				}
			case errors.Is(err, store.ErrNotFound):
				if _, err := tx.Create(ctx, exceptionRow(root, d, now, reason)); err != nil {
					return translateStoreError(err)
				}
			default:
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return CancelResult{}, err
	}

	return CancelResult{
		CancelledCount: count,
		Message:        fmt.Sprintf("cancelled %d consultation(s) from %s", count, fromDate.Format(time.RFC3339)),
	}, nil
}

// ListCancelledDates returns the exception rows of the series memberID belongs
// to, oldest first.
func (s *Service) ListCancelledDates(ctx context.Context, memberID int64) ([]domain.Consultation, error) {
	if memberID <= 0 {
		return nil, validationError("id is required")
	}
	row, err := loadConsultation(ctx, s.repo, memberID)
	if err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, store.Filter{
		Where: []store.Predicate{
			store.Eq(store.FieldFirstID, row.RootID()),
			store.Eq(store.FieldIsCancelled, true),
			store.Eq(store.FieldIsDeleted, false),
		},
		Order: &store.Order{Field: store.FieldStartDate},
	})
}

// resolveRoot loads memberID and the root row of its series. Flexible bookings
// have no series.
func (s *Service) resolveRoot(ctx context.Context, memberID int64) (domain.Consultation, error) {
	row, err := loadConsultation(ctx, s.repo, memberID)
	if err != nil {
		return domain.Consultation{}, err
	}
	if row.IsFlex {
		return domain.Consultation{}, businessRuleError("only fixed consultations support date cancellations")
	}
	if row.IsSeriesRoot() {
		return row, nil
	}
	root, err := s.repo.FindByID(ctx, row.RootID())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Consultation{}, notFoundError("series root not found")
		}
		return domain.Consultation{}, err
	}
	return root, nil
}

func exceptionRow(root domain.Consultation, at, now time.Time, reason string) domain.Consultation {
	firstID := root.ID
	return domain.Consultation{
		OfficeID:           root.OfficeID,
		UserID:             root.UserID,
		StartDate:          &at,
		IsFlex:             false,
		FirstID:            &firstID,
		WeeklyFrequency:    root.Frequency(),
		IsCancelled:        true,
		CancelledAt:        &now,
		CancellationReason: reason,
	}
}
