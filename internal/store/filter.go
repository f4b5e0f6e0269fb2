package store

import (
	"fmt"
	"time"
)

// Field names a filterable consultation column.
type Field string

const (
	FieldID              Field = "id"
	FieldOfficeID        Field = "office_id"
	FieldUserID          Field = "user_id"
	FieldStartDate       Field = "start_date"
	FieldEndDate         Field = "end_date"
	FieldIsFlex          Field = "is_flex"
	FieldFirstID         Field = "first_id"
	FieldWeeklyFrequency Field = "weekly_frequency"
	FieldIsDeleted       Field = "is_deleted"
	FieldIsCancelled     Field = "is_cancelled"
)

func (f Field) Valid() bool {
	switch f {
	case FieldID, FieldOfficeID, FieldUserID, FieldStartDate, FieldEndDate,
		FieldIsFlex, FieldFirstID, FieldWeeklyFrequency, FieldIsDeleted, FieldIsCancelled:
		return true
	}
	return false
}

type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpGte Op = "gte"
	OpLt  Op = "lt"
)

func (o Op) Valid() bool {
	switch o {
	case OpEq, OpNeq, OpGte, OpLt:
		return true
	}
	return false
}

// Predicate compares one column against a value. Values are int64, int, bool or
// time.Time; a nil value with OpEq/OpNeq means IS NULL / IS NOT NULL.
type Predicate struct {
	Field Field
	Op    Op
	Value any
}

func Eq(field Field, value any) Predicate  { return Predicate{Field: field, Op: OpEq, Value: value} }
func Neq(field Field, value any) Predicate { return Predicate{Field: field, Op: OpNeq, Value: value} }
func Gte(field Field, value any) Predicate { return Predicate{Field: field, Op: OpGte, Value: value} }
func Lt(field Field, value any) Predicate  { return Predicate{Field: field, Op: OpLt, Value: value} }

type Order struct {
	Field Field
	Desc  bool
}

// Filter selects rows matching every Where predicate and, when Or is not empty,
// at least one of the Or groups (each group is a conjunction).
type Filter struct {
	Where []Predicate
	Or    [][]Predicate
	Order *Order
	Limit int
}

func (f Filter) Validate() error {
	check := func(p Predicate) error {
		if !p.Field.Valid() {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, p.Field)
		}
		if !p.Op.Valid() {
			return fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, p.Op)
		}
		switch p.Value.(type) {
		case nil:
			if p.Op != OpEq && p.Op != OpNeq {
				return fmt.Errorf("%w: null comparison on %q needs eq or neq", ErrInvalidFilter, p.Field)
			}
		case int64, int, bool, time.Time:
		default:
			return fmt.Errorf("%w: unsupported value %T for %q", ErrInvalidFilter, p.Value, p.Field)
		}
		return nil
	}

	for _, p := range f.Where {
		if err := check(p); err != nil {
			return err
		}
	}
	for _, group := range f.Or {
		if len(group) == 0 {
			return fmt.Errorf("%w: empty or-group", ErrInvalidFilter)
		}
		for _, p := range group {
			if err := check(p); err != nil {
				return err
			}
		}
	}
	if f.Order != nil && !f.Order.Field.Valid() {
		return fmt.Errorf("%w: unknown order field %q", ErrInvalidFilter, f.Order.Field)
	}
	if f.Limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidFilter)
	}
	return nil
}

// SeriesRows matches the root itself and every row pointing at it.
func SeriesRows(rootID int64) [][]Predicate {
	return [][]Predicate{
		{Eq(FieldID, rootID)},
		{Eq(FieldFirstID, rootID)},
	}
}
