package domain

import (
	"errors"
	"time"
)

// MaxCadenceSteps bounds any walk over a series cadence, roughly a century of weekly steps.
const MaxCadenceSteps = 5300

var ErrCadenceTooLong = errors.New("cadence range too long")

// NormalizeFrequency maps a stored weekly frequency to a usable step count.
// Zero and negative values fall back to every week.
func NormalizeFrequency(frequency int) int {
	if frequency < 1 {
		return 1
	}
	return frequency
}

func CadenceStep(frequency int) time.Duration {
	return time.Duration(NormalizeFrequency(frequency)) * 7 * 24 * time.Hour
}

// NextCadenceDate returns t advanced by one step. All cadence math happens in UTC,
// so a step is always an exact number of hours.
func NextCadenceDate(t time.Time, frequency int) time.Time {
	return t.UTC().Add(CadenceStep(frequency))
}

// CadenceDates enumerates from, from+step, ... up to and including until.
func CadenceDates(from, until time.Time, frequency int) ([]time.Time, error) {
	from = from.UTC()
	until = until.UTC()
	if from.After(until) {
		return nil, nil
	}

	step := CadenceStep(frequency)
	steps := int64(until.Sub(from)/step) + 1
	if steps > MaxCadenceSteps {
		return nil, ErrCadenceTooLong
	}

	out := make([]time.Time, 0, steps)
	for d := from; !d.After(until); d = d.Add(step) {
		out = append(out, d)
	}
	return out, nil
}

// OnCadence reports whether candidate is reached from anchor by a positive whole
// number of steps.
func OnCadence(anchor, candidate time.Time, frequency int) bool {
	diff := candidate.UTC().Sub(anchor.UTC())
	if diff <= 0 {
		return false
	}
	return diff%CadenceStep(frequency) == 0
}

// NormalizeInstant brings a timestamp to the precision and zone the store keeps.
func NormalizeInstant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func NormalizeInstantPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := NormalizeInstant(*t)
	return &n
}
