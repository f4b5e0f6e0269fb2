package consultations

import (
	"context"
	"errors"
	"time"

	"consulta/backend/internal/domain"
	"consulta/backend/internal/store"
)

type CreateInput struct {
	OfficeID  int64
	UserID    int64
	StartDate *time.Time
	EndDate   *time.Time
	// IsFlex defaults to true (a one-off booking) unless FirstID is set.
	IsFlex          *bool
	FirstID         *int64
	WeeklyFrequency int
}

// CreateBooking stores a one-off booking, a new series root, or an explicit
// occurrence of an existing series. A booking without a start date is accepted
// without a conflict check.
func (s *Service) CreateBooking(ctx context.Context, in CreateInput) (domain.Consultation, error) {
	if in.OfficeID <= 0 {
		return domain.Consultation{}, validationError("office_id is required")
	}
	if in.UserID < 0 {
		return domain.Consultation{}, validationError("user_id must not be negative")
	}
	frequency, err := normalizeWeeklyFrequency(in.WeeklyFrequency)
	if err != nil {
		return domain.Consultation{}, err
	}

	start := domain.NormalizeInstantPtr(in.StartDate)
	end := domain.NormalizeInstantPtr(in.EndDate)
	var firstID *int64
	if in.FirstID != nil {
		if *in.FirstID < 0 {
			return domain.Consultation{}, validationError("first_id must not be negative")
		}
		if *in.FirstID > 0 {
			v := *in.FirstID
			firstID = &v
		}
	}
	isFlex := firstID == nil
	if in.IsFlex != nil {
		isFlex = *in.IsFlex
	}
	if firstID != nil && isFlex {
		return domain.Consultation{}, validationError("flexible consultations cannot belong to a series")
	}
	if !isFlex && start != nil && end != nil && end.Before(*start) {
		return domain.Consultation{}, validationError("end_date must not be before start_date")
	}

	row := domain.Consultation{
		OfficeID:        in.OfficeID,
		UserID:          in.UserID,
		StartDate:       start,
		EndDate:         end,
		IsFlex:          isFlex,
		FirstID:         firstID,
		WeeklyFrequency: frequency,
	}

	if start == nil {
		out, err := s.repo.Create(ctx, row)
		if err != nil {
			return domain.Consultation{}, translateStoreError(err)
		}
		return out, nil
	}

	var seriesID int64
	if firstID != nil {
		seriesID = *firstID
	}

	var out domain.Consultation
	err = s.repo.InTransaction(ctx, []string{store.SlotLockKey(in.OfficeID, *start)}, func(ctx context.Context, tx store.ConsultationTx) error {
		if err := s.checkConflict(ctx, tx, slotQuery{officeID: in.OfficeID, start: *start, seriesID: seriesID}); err != nil {
			return err
		}
		c, err := tx.Create(ctx, row)
		if err != nil {
			return translateStoreError(err)
		}
		out = c
		return nil
	})
	if err != nil {
		return domain.Consultation{}, err
	}
	return out, nil
}

type UpdateInput struct {
	OfficeID        *int64
	UserID          *int64
	StartDate       *time.Time
	EndDate         *time.Time
	IsFlex          *bool
	WeeklyFrequency *int
}

func (in UpdateInput) patch() (store.ConsultationPatch, error) {
	p := store.ConsultationPatch{
		OfficeID:  in.OfficeID,
		UserID:    in.UserID,
		StartDate: domain.NormalizeInstantPtr(in.StartDate),
		EndDate:   domain.NormalizeInstantPtr(in.EndDate),
		IsFlex:    in.IsFlex,
	}
	if in.OfficeID != nil && *in.OfficeID <= 0 {
		return store.ConsultationPatch{}, validationError("office_id must be positive")
	}
	if in.UserID != nil && *in.UserID < 0 {
		return store.ConsultationPatch{}, validationError("user_id must not be negative")
	}
	if in.WeeklyFrequency != nil {
		f, err := normalizeWeeklyFrequency(*in.WeeklyFrequency)
		if err != nil {
			return store.ConsultationPatch{}, err
		}
		p.WeeklyFrequency = &f
	}
	return p, nil
}

// UpdateBooking applies a partial update. Moving a booking to another office or
// time re-runs the conflict check against the merged values, ignoring the row
// itself.
func (s *Service) UpdateBooking(ctx context.Context, id int64, in UpdateInput) (domain.Consultation, error) {
	if id <= 0 {
		return domain.Consultation{}, validationError("id is required")
	}
	patch, err := in.patch()
	if err != nil {
		return domain.Consultation{}, err
	}

	existing, err := loadConsultation(ctx, s.repo, id)
	if err != nil {
		return domain.Consultation{}, err
	}
	if patch.Empty() {
		return existing, nil
	}

	officeID := existing.OfficeID
	if patch.OfficeID != nil {
		officeID = *patch.OfficeID
	}
	start := existing.StartDate
	if patch.StartDate != nil {
		start = patch.StartDate
	}
	recheck := (patch.OfficeID != nil || patch.StartDate != nil) && start != nil

	var lockKeys []string
	if recheck {
		lockKeys = append(lockKeys, store.SlotLockKey(officeID, *start))
	}

	var out domain.Consultation
	err = s.repo.InTransaction(ctx, lockKeys, func(ctx context.Context, tx store.ConsultationTx) error {
		if recheck {
			var seriesID int64
			if !existing.IsFlex {
				seriesID = existing.RootID()
			}
			q := slotQuery{officeID: officeID, start: *start, excludeID: &id, seriesID: seriesID}
			if err := s.checkConflict(ctx, tx, q); err != nil {
				return err
			}
		}
		if err := tx.UpdateByID(ctx, id, patch); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFoundError("consultation not found")
			}
			return translateStoreError(err)
		}
		c, err := loadConsultation(ctx, tx, id)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return domain.Consultation{}, err
	}
	return out, nil
}

// DeleteBooking soft-deletes the row.
func (s *Service) DeleteBooking(ctx context.Context, id int64) error {
	if id <= 0 {
		return validationError("id is required")
	}
	deleted := true
	err := s.repo.UpdateByID(ctx, id, store.ConsultationPatch{IsDeleted: &deleted})
	if errors.Is(err, store.ErrNotFound) {
		return notFoundError("consultation not found")
	}
	return err
}

func normalizeWeeklyFrequency(f int) (int, error) {
	if f < 0 {
		return 0, validationError("weekly_frequency must be at least 1")
	}
	return domain.NormalizeFrequency(f), nil
}

func translateStoreError(err error) error {
	if errors.Is(err, store.ErrConflict) {
		return conflictError("a consultation already exists for that series date")
	}
	return err
}
