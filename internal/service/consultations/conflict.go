package consultations

import (
	"context"
	"errors"
	"time"

	"consulta/backend/internal/domain"
	"consulta/backend/internal/store"
)

const slotTakenMessage = "the office already has a consultation booked at that time"

type slotQuery struct {
	officeID  int64
	start     time.Time
	excludeID *int64
	// seriesID is the series the candidate belongs to, if any; its own cadence
	// never conflicts with it.
	seriesID int64
}

// CheckConflict reports a *ConflictError when an active booking already occupies
// the office at start. excludeID skips the row being updated.
func (s *Service) CheckConflict(ctx context.Context, officeID int64, start time.Time, excludeID *int64) error {
	if officeID <= 0 {
		return validationError("office_id is required")
	}
	return s.checkConflict(ctx, s.repo, slotQuery{
		officeID:  officeID,
		start:     domain.NormalizeInstant(start),
		excludeID: excludeID,
	})
}

func (s *Service) checkConflict(ctx context.Context, tx store.ConsultationTx, q slotQuery) error {
	where := []store.Predicate{
		store.Eq(store.FieldOfficeID, q.officeID),
		store.Eq(store.FieldStartDate, q.start),
		store.Eq(store.FieldIsDeleted, false),
		store.Eq(store.FieldIsCancelled, false),
	}
	if q.excludeID != nil {
		where = append(where, store.Neq(store.FieldID, *q.excludeID))
	}

	matches, err := tx.Find(ctx, store.Filter{Where: where})
	if err != nil {
		return err
	}

	for _, m := range matches {
		if !m.IsFlex {
			excepted, err := hasException(ctx, tx, m.RootID(), q.start)
			if err != nil {
				return err
			}
			if excepted {
				continue
			}
		}
		return conflictError(slotTakenMessage)
	}

	if s.cfg.CheckVirtualOccurrences {
		return checkVirtualOccurrences(ctx, tx, q)
	}
	return nil
}

func hasException(ctx context.Context, tx store.ConsultationTx, rootID int64, at time.Time) (bool, error) {
	_, err := tx.FindOne(ctx, store.Filter{
		Where: []store.Predicate{
			store.Eq(store.FieldFirstID, rootID),
			store.Neq(store.FieldID, rootID),
			store.Eq(store.FieldStartDate, at),
			store.Eq(store.FieldIsCancelled, true),
		},
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// checkVirtualOccurrences rejects q.start when it is an unmaterialized cadence date
// of an active series at the same office. Series without an end date are never
// materialized and so never imply occurrences.
func checkVirtualOccurrences(ctx context.Context, tx store.ConsultationTx, q slotQuery) error {
	roots, err := tx.Find(ctx, store.Filter{
		Where: []store.Predicate{
			store.Eq(store.FieldOfficeID, q.officeID),
			store.Eq(store.FieldIsFlex, false),
			store.Eq(store.FieldIsDeleted, false),
			store.Eq(store.FieldIsCancelled, false),
			store.Neq(store.FieldEndDate, nil),
			store.Lt(store.FieldStartDate, q.start),
		},
	})
	if err != nil {
		return err
	}

	for _, r := range roots {
		if !r.IsSeriesRoot() || r.StartDate == nil || r.EndDate == nil {
			continue
		}
		if r.ID == q.seriesID || (q.excludeID != nil && r.ID == *q.excludeID) {
			continue
		}
		if q.start.After(*r.EndDate) || !domain.OnCadence(*r.StartDate, q.start, r.WeeklyFrequency) {
			continue
		}

		// Any row at that date means the date is either materialized (and was
		// checked above) or carved out by an exception.
		_, err := tx.FindOne(ctx, store.Filter{
			Where: []store.Predicate{
				store.Eq(store.FieldFirstID, r.ID),
				store.Eq(store.FieldStartDate, q.start),
			},
		})
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return conflictError(slotTakenMessage)
	}
	return nil
}
