package store

import "time"

// ConsultationPatch is a partial update. Nil fields are left untouched.
type ConsultationPatch struct {
	OfficeID           *int64
	UserID             *int64
	StartDate          *time.Time
	EndDate            *time.Time
	IsFlex             *bool
	FirstID            *int64
	WeeklyFrequency    *int
	IsDeleted          *bool
	IsCancelled        *bool
	CancelledAt        *time.Time
	CancellationReason *string
}

func (p ConsultationPatch) Empty() bool {
	return p.OfficeID == nil && p.UserID == nil && p.StartDate == nil && p.EndDate == nil &&
		p.IsFlex == nil && p.FirstID == nil && p.WeeklyFrequency == nil && p.IsDeleted == nil &&
		p.IsCancelled == nil && p.CancelledAt == nil && p.CancellationReason == nil
}

// CancelPatch marks a row cancelled at the given instant.
func CancelPatch(at time.Time, reason string) ConsultationPatch {
	cancelled := true
	return ConsultationPatch{
		IsCancelled:        &cancelled,
		CancelledAt:        &at,
		CancellationReason: &reason,
	}
}
