package materializer

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"consulta/backend/internal/domain"
	"consulta/backend/internal/store"
	"consulta/backend/internal/testfixtures"
)

var (
	seriesStart = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	seriesEnd   = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	runDay      = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
)

func newTestMaterializer(t *testing.T) (*Materializer, *testfixtures.MemoryStore) {
	t.Helper()
	clock := testfixtures.NewClock(runDay)
	repo := testfixtures.NewMemoryStore()
	repo.Now = clock.Now
	m := New(repo, repo, slog.Default(), Config{Now: clock.Now})
	return m, repo
}

func root(id, officeID int64, frequency int) domain.Consultation {
	start, end := seriesStart, seriesEnd
	return domain.Consultation{
		ID:              id,
		OfficeID:        officeID,
		UserID:          42,
		StartDate:       &start,
		EndDate:         &end,
		WeeklyFrequency: frequency,
	}
}

func occurrenceDates(repo *testfixtures.MemoryStore, rootID int64) []time.Time {
	var out []time.Time
	for _, r := range repo.Rows() {
		if r.FirstID != nil && *r.FirstID == rootID && !r.IsCancelled {
			out = append(out, *r.StartDate)
		}
	}
	return out
}

func TestRun_CreatesWindowAndIsIdempotent(t *testing.T) {
	m, repo := newTestMaterializer(t)
	repo.Seed(root(1, 5, 1))

	res, err := m.Run(context.Background(), 7)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Created != 2 || res.SeriesProcessed != 1 || res.SeriesFailed != 0 {
		t.Fatalf("result = %+v, want created=2 processed=1", res)
	}

	got := occurrenceDates(repo, 1)
	want := []time.Time{
		time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	if len(got) != len(want) {
		t.Fatalf("occurrences = %v, want %v", got, want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("occurrence[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	for _, r := range repo.Rows()[1:] {
		if r.IsFlex || r.OfficeID != 5 || r.UserID != 42 || r.EndDate == nil || !r.EndDate.Equal(seriesEnd) {
			t.Fatalf("occurrence does not copy the root: %+v", r)
		}
	}

	res, err = m.Run(context.Background(), 7)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.Created != 0 || res.SeriesProcessed != 1 {
		t.Fatalf("second result = %+v, want created=0 processed=1", res)
	}
}

func TestRun_StopsAtSeriesEnd(t *testing.T) {
	m, repo := newTestMaterializer(t)
	repo.Seed(root(1, 5, 1), root(2, 6, 2))

	res, err := m.Run(context.Background(), 90)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// weekly: Jan 8 .. Feb 26; biweekly: Jan 15, Jan 29, Feb 12, Feb 26
	if res.Created != 12 || res.SeriesProcessed != 2 {
		t.Fatalf("result = %+v, want created=12 processed=2", res)
	}

	weekly := occurrenceDates(repo, 1)
	if len(weekly) != 8 {
		t.Fatalf("weekly occurrences = %d, want 8", len(weekly))
	}
	for i, d := range weekly {
		want := seriesStart.Add(time.Duration(i+1) * 7 * 24 * time.Hour)
		if !d.Equal(want) {
			t.Fatalf("weekly[%d] = %v, want %v", i, d, want)
		}
		if d.After(seriesEnd) {
			t.Fatalf("occurrence %v past the series end", d)
		}
	}
	if n := len(occurrenceDates(repo, 2)); n != 4 {
		t.Fatalf("biweekly occurrences = %d, want 4", n)
	}
}

func TestRun_SkipsExceptionDates(t *testing.T) {
	m, repo := newTestMaterializer(t)
	repo.Seed(root(1, 5, 1))
	excepted := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	firstID := int64(1)
	repo.Seed(domain.Consultation{
		ID:          2,
		OfficeID:    5,
		StartDate:   &excepted,
		FirstID:     &firstID,
		IsCancelled: true,
	})

	res, err := m.Run(context.Background(), 7)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("Created = %d, want 1", res.Created)
	}

	for _, d := range occurrenceDates(repo, 1) {
		if d.Equal(excepted) {
			t.Fatalf("occurrence created on an excepted date")
		}
	}
}

func TestRun_SkipsSeriesWithoutUsableEnd(t *testing.T) {
	m, repo := newTestMaterializer(t)

	open := root(1, 5, 1)
	open.EndDate = nil
	ended := root(2, 6, 1)
	past := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	ended.EndDate = &past
	flex := root(3, 7, 1)
	flex.IsFlex = true
	repo.Seed(open, ended, flex)

	res, err := m.Run(context.Background(), 90)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Created != 0 || res.SeriesProcessed != 2 {
		t.Fatalf("result = %+v, want created=0 processed=2", res)
	}
	if n := len(repo.Rows()); n != 3 {
		t.Fatalf("rows = %d, want 3", n)
	}
}

func TestRun_IsolatesFailingSeries(t *testing.T) {
	m, repo := newTestMaterializer(t)
	repo.Seed(root(1, 5, 1), root(2, 6, 1))
	repo.BeforeCreate = func(c domain.Consultation) error {
		if c.OfficeID == 5 {
			return errors.New("disk full")
		}
		return nil
	}

	res, err := m.Run(context.Background(), 7)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.SeriesFailed != 1 || res.SeriesProcessed != 2 || res.Created != 2 {
		t.Fatalf("result = %+v, want failed=1 processed=2 created=2", res)
	}
	if n := len(occurrenceDates(repo, 1)); n != 0 {
		t.Fatalf("failed series kept %d occurrences", n)
	}
}

func TestRun_SkipsWhileLeaseHeld(t *testing.T) {
	m, repo := newTestMaterializer(t)
	repo.Seed(root(1, 5, 1))

	if _, err := repo.AcquireLease(context.Background(), DefaultLeaseName, "other-instance", time.Hour); err != nil {
		t.Fatalf("AcquireLease: %v", err)
	}

	_, err := m.Run(context.Background(), 7)
	if !errors.Is(err, store.ErrLeaseHeld) {
		t.Fatalf("error = %v, want ErrLeaseHeld", err)
	}
	if n := len(repo.Rows()); n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}

	if err := repo.ReleaseLease(context.Background(), DefaultLeaseName, "other-instance"); err != nil {
		t.Fatalf("ReleaseLease: %v", err)
	}
	if _, err := m.Run(context.Background(), 7); err != nil {
		t.Fatalf("Run after release: %v", err)
	}

	// The run released its own lease.
	if _, err := repo.AcquireLease(context.Background(), DefaultLeaseName, "other-instance", time.Hour); err != nil {
		t.Fatalf("lease still held after run: %v", err)
	}
}

func TestRun_RejectsNegativeWindow(t *testing.T) {
	m, _ := newTestMaterializer(t)
	if _, err := m.Run(context.Background(), -1); err == nil {
		t.Fatalf("expected error")
	}
}
