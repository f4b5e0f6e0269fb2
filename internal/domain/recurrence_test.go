package domain

import (
	"testing"
	"time"
)

func TestNormalizeFrequency(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: -3, want: 1},
		{in: 0, want: 1},
		{in: 1, want: 1},
		{in: 2, want: 2},
	}
	for _, tt := range tests {
		if got := NormalizeFrequency(tt.in); got != tt.want {
			t.Fatalf("NormalizeFrequency(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCadenceDates_InclusiveOfUntil(t *testing.T) {
	from := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	until := from.AddDate(0, 0, 28)

	dates, err := CadenceDates(from, until, 1)
	if err != nil {
		t.Fatalf("CadenceDates error: %v", err)
	}
	if len(dates) != 5 {
		t.Fatalf("len(dates) = %d, want 5", len(dates))
	}
	if !dates[0].Equal(from) || !dates[4].Equal(until) {
		t.Fatalf("bounds = %v..%v, want %v..%v", dates[0], dates[4], from, until)
	}
}

func TestCadenceDates_BiweeklyAndEmptyRange(t *testing.T) {
	from := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	dates, err := CadenceDates(from, from.AddDate(0, 0, 30), 2)
	if err != nil {
		t.Fatalf("CadenceDates error: %v", err)
	}
	if len(dates) != 3 {
		t.Fatalf("len(dates) = %d, want 3", len(dates))
	}
	if got := dates[1].Sub(dates[0]); got != 14*24*time.Hour {
		t.Fatalf("step = %v, want 336h", got)
	}

	dates, err = CadenceDates(from, from.Add(-time.Hour), 1)
	if err != nil {
		t.Fatalf("CadenceDates error: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("len(dates) = %d, want 0", len(dates))
	}
}

func TestCadenceDates_RejectsRunawayRange(t *testing.T) {
	from := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	_, err := CadenceDates(from, from.AddDate(200, 0, 0), 1)
	if err != ErrCadenceTooLong {
		t.Fatalf("err = %v, want %v", err, ErrCadenceTooLong)
	}
}

func TestOnCadence(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		candidate time.Time
		frequency int
		want      bool
	}{
		{name: "anchor itself", candidate: anchor, frequency: 1, want: false},
		{name: "one week later", candidate: anchor.AddDate(0, 0, 7), frequency: 1, want: true},
		{name: "off by an hour", candidate: anchor.AddDate(0, 0, 7).Add(time.Hour), frequency: 1, want: false},
		{name: "odd week on biweekly", candidate: anchor.AddDate(0, 0, 7), frequency: 2, want: false},
		{name: "even week on biweekly", candidate: anchor.AddDate(0, 0, 14), frequency: 2, want: true},
		{name: "before anchor", candidate: anchor.AddDate(0, 0, -7), frequency: 1, want: false},
		{name: "zero frequency treated as weekly", candidate: anchor.AddDate(0, 0, 21), frequency: 0, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OnCadence(anchor, tt.candidate, tt.frequency); got != tt.want {
				t.Fatalf("OnCadence = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConsultationRootResolution(t *testing.T) {
	rootID := int64(1)
	zero := int64(0)
	self := int64(7)

	tests := []struct {
		name     string
		c        Consultation
		wantRoot int64
		isRoot   bool
	}{
		{name: "fixed without first id", c: Consultation{ID: 1}, wantRoot: 1, isRoot: true},
		{name: "fixed pointing at itself", c: Consultation{ID: 7, FirstID: &self}, wantRoot: 7, isRoot: true},
		{name: "zero first id is absent", c: Consultation{ID: 3, FirstID: &zero}, wantRoot: 3, isRoot: true},
		{name: "occurrence", c: Consultation{ID: 9, FirstID: &rootID}, wantRoot: 1, isRoot: false},
		{name: "flexible booking", c: Consultation{ID: 4, IsFlex: true}, wantRoot: 4, isRoot: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.RootID(); got != tt.wantRoot {
				t.Fatalf("RootID = %d, want %d", got, tt.wantRoot)
			}
			if got := tt.c.IsSeriesRoot(); got != tt.isRoot {
				t.Fatalf("IsSeriesRoot = %v, want %v", got, tt.isRoot)
			}
		})
	}
}
