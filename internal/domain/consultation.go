package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type Consultation struct {
	bun.BaseModel `bun:"table:consultations"`

	ID                 int64      `bun:"id,pk,autoincrement"`
	OfficeID           int64      `bun:"office_id,notnull"`
	UserID             int64      `bun:"user_id,nullzero"`
	StartDate          *time.Time `bun:"start_date"`
	EndDate            *time.Time `bun:"end_date"`
	IsFlex             bool       `bun:"is_flex,notnull"`
	FirstID            *int64     `bun:"first_id"`
	WeeklyFrequency    int        `bun:"weekly_frequency,notnull"`
	IsDeleted          bool       `bun:"is_deleted,notnull"`
	IsCancelled        bool       `bun:"is_cancelled,notnull"`
	CancelledAt        *time.Time `bun:"cancelled_at"`
	CancellationReason string     `bun:"cancellation_reason,nullzero"`
	CreatedAt          time.Time  `bun:"created_at,notnull"`
	UpdatedAt          time.Time  `bun:"updated_at,notnull"`
}

func (c *Consultation) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if c == nil {
		return nil
	}
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if c.WeeklyFrequency < 1 {
			c.WeeklyFrequency = 1
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		c.UpdatedAt = now
	}
	return nil
}

// RootID resolves the series root a row belongs to. A zero FirstID is
// treated as absent.
func (c Consultation) RootID() int64 {
	if c.FirstID != nil && *c.FirstID > 0 {
		return *c.FirstID
	}
	return c.ID
}

// IsSeriesRoot reports whether the row defines a fixed recurring series.
func (c Consultation) IsSeriesRoot() bool {
	if c.IsFlex {
		return false
	}
	return c.FirstID == nil || *c.FirstID <= 0 || *c.FirstID == c.ID
}

// IsException reports whether the row marks a cadence date of a series as not happening.
func (c Consultation) IsException() bool {
	return !c.IsFlex && c.IsCancelled && c.FirstID != nil && *c.FirstID != c.ID
}

func (c Consultation) Frequency() int {
	return NormalizeFrequency(c.WeeklyFrequency)
}
