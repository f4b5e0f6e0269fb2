package bunstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"consulta/backend/internal/domain"
	"consulta/backend/internal/store"
)

func mustCreate(t *testing.T, repo *ConsultationRepo, c domain.Consultation) domain.Consultation {
	t.Helper()
	out, err := repo.Create(context.Background(), c)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return out
}

func TestConsultationRepo_CreateAndFindByID(t *testing.T) {
	repo := NewConsultationRepo(newSQLiteDB(t))
	ctx := context.Background()

	start := time.Date(2024, 1, 1, 10, 0, 0, 123456789, time.FixedZone("CST", -6*3600))
	created := mustCreate(t, repo, domain.Consultation{
		OfficeID:  5,
		UserID:    42,
		StartDate: &start,
	})
	if created.ID == 0 {
		t.Fatalf("expected an id")
	}
	if created.WeeklyFrequency != 1 {
		t.Fatalf("WeeklyFrequency = %d, want 1", created.WeeklyFrequency)
	}

	got, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	want := domain.NormalizeInstant(start)
	if got.StartDate == nil || !got.StartDate.Equal(want) {
		t.Fatalf("StartDate = %v, want %v", got.StartDate, want)
	}
	if got.StartDate.Location() != time.UTC {
		t.Fatalf("StartDate location = %v, want UTC", got.StartDate.Location())
	}
	if got.FirstID != nil || got.EndDate != nil || got.CancelledAt != nil {
		t.Fatalf("unexpected non-nil optional fields: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", got)
	}

	if _, err := repo.FindByID(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("FindByID missing err = %v, want %v", err, store.ErrNotFound)
	}
}

func TestConsultationRepo_FindFilters(t *testing.T) {
	repo := NewConsultationRepo(newSQLiteDB(t))
	ctx := context.Background()

	at := func(day int) *time.Time {
		v := time.Date(2024, 1, day, 10, 0, 0, 0, time.UTC)
		return &v
	}
	end := at(31)
	root := mustCreate(t, repo, domain.Consultation{OfficeID: 5, StartDate: at(1), EndDate: end, WeeklyFrequency: 1})
	occ := mustCreate(t, repo, domain.Consultation{OfficeID: 5, StartDate: at(8), FirstID: &root.ID})
	exc := mustCreate(t, repo, domain.Consultation{OfficeID: 5, StartDate: at(15), FirstID: &root.ID, IsCancelled: true})
	mustCreate(t, repo, domain.Consultation{OfficeID: 5, StartDate: at(22), IsFlex: true})

	series, err := repo.Find(ctx, store.Filter{
		Or:    store.SeriesRows(root.ID),
		Order: &store.Order{Field: store.FieldStartDate, Desc: true},
	})
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if len(series) != 3 || series[0].ID != exc.ID || series[2].ID != root.ID {
		t.Fatalf("series rows = %+v", series)
	}

	latest, err := repo.FindOne(ctx, store.Filter{
		Where: []store.Predicate{store.Eq(store.FieldIsCancelled, false)},
		Or:    store.SeriesRows(root.ID),
		Order: &store.Order{Field: store.FieldStartDate, Desc: true},
	})
	if err != nil {
		t.Fatalf("FindOne error: %v", err)
	}
	if latest.ID != occ.ID {
		t.Fatalf("latest = %d, want %d", latest.ID, occ.ID)
	}

	roots, err := repo.Find(ctx, store.Filter{
		Where: []store.Predicate{
			store.Eq(store.FieldFirstID, nil),
			store.Neq(store.FieldEndDate, nil),
			store.Eq(store.FieldIsFlex, false),
		},
	})
	if err != nil {
		t.Fatalf("Find roots error: %v", err)
	}
	if len(roots) != 1 || roots[0].ID != root.ID {
		t.Fatalf("roots = %+v", roots)
	}

	window, err := repo.Find(ctx, store.Filter{
		Where: []store.Predicate{
			store.Gte(store.FieldStartDate, *at(8)),
			store.Lt(store.FieldStartDate, *at(22)),
		},
		Order: &store.Order{Field: store.FieldStartDate},
		Limit: 1,
	})
	if err != nil {
		t.Fatalf("Find window error: %v", err)
	}
	if len(window) != 1 || window[0].ID != occ.ID {
		t.Fatalf("window = %+v", window)
	}

	if _, err := repo.FindOne(ctx, store.Filter{Where: []store.Predicate{store.Eq(store.FieldOfficeID, int64(6))}}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("FindOne err = %v, want %v", err, store.ErrNotFound)
	}

	_, err = repo.Find(ctx, store.Filter{Where: []store.Predicate{store.Eq("title", "x")}})
	if !errors.Is(err, store.ErrInvalidFilter) {
		t.Fatalf("Find err = %v, want %v", err, store.ErrInvalidFilter)
	}
}

func TestConsultationRepo_SeriesDateIsUnique(t *testing.T) {
	repo := NewConsultationRepo(newSQLiteDB(t))
	ctx := context.Background()

	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	date := start.Add(7 * 24 * time.Hour)
	root := mustCreate(t, repo, domain.Consultation{OfficeID: 5, StartDate: &start})
	first := mustCreate(t, repo, domain.Consultation{OfficeID: 5, StartDate: &date, FirstID: &root.ID})

	_, err := repo.Create(ctx, domain.Consultation{OfficeID: 5, StartDate: &date, FirstID: &root.ID, IsCancelled: true})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate err = %v, want %v", err, store.ErrConflict)
	}

	deleted := true
	if err := repo.UpdateByID(ctx, first.ID, store.ConsultationPatch{IsDeleted: &deleted}); err != nil {
		t.Fatalf("UpdateByID error: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Consultation{OfficeID: 5, StartDate: &date, FirstID: &root.ID}); err != nil {
		t.Fatalf("Create after delete error: %v", err)
	}
}

func TestConsultationRepo_SelfReferencingRootLeavesDateFree(t *testing.T) {
	repo := NewConsultationRepo(newSQLiteDB(t))
	ctx := context.Background()

	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	root := mustCreate(t, repo, domain.Consultation{OfficeID: 5, StartDate: &start})
	if err := repo.UpdateByID(ctx, root.ID, store.ConsultationPatch{FirstID: &root.ID}); err != nil {
		t.Fatalf("UpdateByID error: %v", err)
	}

	exception := mustCreate(t, repo, domain.Consultation{OfficeID: 5, StartDate: &start, FirstID: &root.ID, IsCancelled: true})
	if exception.ID == root.ID {
		t.Fatalf("exception reused the root id")
	}

	_, err := repo.Create(ctx, domain.Consultation{OfficeID: 5, StartDate: &start, FirstID: &root.ID})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("second member err = %v, want %v", err, store.ErrConflict)
	}
}

func TestConsultationRepo_UpdateByID(t *testing.T) {
	repo := NewConsultationRepo(newSQLiteDB(t))
	ctx := context.Background()

	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	c := mustCreate(t, repo, domain.Consultation{OfficeID: 5, UserID: 42, StartDate: &start, IsFlex: true})

	at := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	if err := repo.UpdateByID(ctx, c.ID, store.CancelPatch(at, "sick")); err != nil {
		t.Fatalf("UpdateByID error: %v", err)
	}
	noUser := int64(0)
	if err := repo.UpdateByID(ctx, c.ID, store.ConsultationPatch{UserID: &noUser}); err != nil {
		t.Fatalf("UpdateByID error: %v", err)
	}

	got, err := repo.FindByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if !got.IsCancelled || got.CancellationReason != "sick" || got.CancelledAt == nil || !got.CancelledAt.Equal(at) {
		t.Fatalf("cancel patch not applied: %+v", got)
	}
	if got.UserID != 0 {
		t.Fatalf("UserID = %d, want 0", got.UserID)
	}
	if got.OfficeID != 5 || !got.StartDate.Equal(start) {
		t.Fatalf("untouched fields changed: %+v", got)
	}

	if err := repo.UpdateByID(ctx, 999, store.CancelPatch(at, "")); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("UpdateByID missing err = %v, want %v", err, store.ErrNotFound)
	}
}

func TestConsultationRepo_InTransactionRollsBack(t *testing.T) {
	repo := NewConsultationRepo(newSQLiteDB(t))
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	boom := errors.New("boom")
	err := repo.InTransaction(ctx, []string{store.SlotLockKey(5, start), store.SlotLockKey(5, start)}, func(ctx context.Context, tx store.ConsultationTx) error {
		if _, err := tx.Create(ctx, domain.Consultation{OfficeID: 5, StartDate: &start}); err != nil {
			return err
		}
		rows, err := tx.Find(ctx, store.Filter{})
		if err != nil {
			return err
		}
		if len(rows) != 1 {
			t.Errorf("rows inside tx = %d, want 1", len(rows))
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTransaction err = %v, want %v", err, boom)
	}

	rows, err := repo.Find(ctx, store.Filter{})
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows after rollback = %d, want 0", len(rows))
	}
}

func TestUniqueSorted(t *testing.T) {
	got := uniqueSorted([]string{"slot:2", "series:1", "slot:2"})
	if len(got) != 2 || got[0] != "series:1" || got[1] != "slot:2" {
		t.Fatalf("uniqueSorted = %v", got)
	}
}
