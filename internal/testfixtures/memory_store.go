package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"consulta/backend/internal/domain"
	"consulta/backend/internal/store"
)

// MemoryStore is an in-memory store.ConsultationRepository and
// store.JobLeaseRepository. It follows SQL comparison semantics (NULL never
// matches a value) and enforces the same series/date uniqueness as the schema.
type MemoryStore struct {
	txMu sync.Mutex

	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Consultation
	leases map[string]domain.JobLease

	// BeforeCreate, when set, can veto inserts to simulate storage failures.
	BeforeCreate func(c domain.Consultation) error
	Now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		rows:   make(map[int64]domain.Consultation),
		leases: make(map[string]domain.JobLease),
		Now:    time.Now,
	}
}

// Seed inserts rows verbatim, keeping their IDs.
func (s *MemoryStore) Seed(rows ...domain.Consultation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.ID == 0 {
			r.ID = s.nextID
		}
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
		if r.WeeklyFrequency < 1 {
			r.WeeklyFrequency = 1
		}
		s.rows[r.ID] = cloneRow(r)
	}
}

// Rows returns every stored row ordered by ID.
func (s *MemoryStore) Rows() []domain.Consultation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Consultation, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, cloneRow(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) InTransaction(ctx context.Context, lockKeys []string, fn func(ctx context.Context, tx store.ConsultationTx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := make(map[int64]domain.Consultation, len(s.rows))
	for id, r := range s.rows {
		snapshot[id] = r
	}
	nextID := s.nextID
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.rows = snapshot
		s.nextID = nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, f store.Filter) ([]domain.Consultation, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	out := make([]domain.Consultation, 0)
	for _, r := range s.rows {
		if matches(r, f) {
			out = append(out, cloneRow(r))
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if f.Order != nil {
			c := compareField(out[i], out[j], f.Order.Field)
			if c != 0 {
				if f.Order.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) FindOne(ctx context.Context, f store.Filter) (domain.Consultation, error) {
	f.Limit = 1
	rows, err := s.Find(ctx, f)
	if err != nil {
		return domain.Consultation{}, err
	}
	if len(rows) == 0 {
		return domain.Consultation{}, store.ErrNotFound
	}
	return rows[0], nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (domain.Consultation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return domain.Consultation{}, store.ErrNotFound
	}
	return cloneRow(r), nil
}

func (s *MemoryStore) Create(ctx context.Context, c domain.Consultation) (domain.Consultation, error) {
	if s.BeforeCreate != nil {
		if err := s.BeforeCreate(c); err != nil {
			return domain.Consultation{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now().UTC()
	c.ID = s.nextID
	c.StartDate = domain.NormalizeInstantPtr(c.StartDate)
	c.EndDate = domain.NormalizeInstantPtr(c.EndDate)
	c.CancelledAt = domain.NormalizeInstantPtr(c.CancelledAt)
	if c.WeeklyFrequency < 1 {
		c.WeeklyFrequency = 1
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	if s.violatesSeriesDate(c) {
		return domain.Consultation{}, store.ErrConflict
	}

	s.nextID++
	s.rows[c.ID] = cloneRow(c)
	return cloneRow(c), nil
}

func (s *MemoryStore) UpdateByID(ctx context.Context, id int64, patch store.ConsultationPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.OfficeID != nil {
		r.OfficeID = *patch.OfficeID
	}
	if patch.UserID != nil {
		r.UserID = *patch.UserID
	}
	if patch.StartDate != nil {
		r.StartDate = domain.NormalizeInstantPtr(patch.StartDate)
	}
	if patch.EndDate != nil {
		r.EndDate = domain.NormalizeInstantPtr(patch.EndDate)
	}
	if patch.IsFlex != nil {
		r.IsFlex = *patch.IsFlex
	}
	if patch.FirstID != nil {
		if *patch.FirstID == 0 {
			r.FirstID = nil
		} else {
			v := *patch.FirstID
			r.FirstID = &v
		}
	}
	if patch.WeeklyFrequency != nil {
		r.WeeklyFrequency = *patch.WeeklyFrequency
	}
	if patch.IsDeleted != nil {
		r.IsDeleted = *patch.IsDeleted
	}
	if patch.IsCancelled != nil {
		r.IsCancelled = *patch.IsCancelled
	}
	if patch.CancelledAt != nil {
		r.CancelledAt = domain.NormalizeInstantPtr(patch.CancelledAt)
	}
	if patch.CancellationReason != nil {
		r.CancellationReason = *patch.CancellationReason
	}
	r.UpdatedAt = s.Now().UTC()

	if s.violatesSeriesDate(r) {
		return store.ErrConflict
	}
	s.rows[id] = r
	return nil
}

func (s *MemoryStore) AcquireLease(ctx context.Context, name, owner string, ttl time.Duration) (domain.JobLease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now().UTC()
	if cur, ok := s.leases[name]; ok && cur.Owner != owner && !cur.Expired(now) {
		return domain.JobLease{}, store.ErrLeaseHeld
	}
	lease := domain.JobLease{Name: name, Owner: owner, AcquiredAt: now, ExpiresAt: now.Add(ttl)}
	s.leases[name] = lease
	return lease, nil
}

func (s *MemoryStore) ReleaseLease(ctx context.Context, name, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.leases[name]; ok && cur.Owner == owner {
		delete(s.leases, name)
	}
	return nil
}

// violatesSeriesDate mirrors consultations_series_date_uidx. Callers hold s.mu.
func (s *MemoryStore) violatesSeriesDate(c domain.Consultation) bool {
	if c.FirstID == nil || *c.FirstID == c.ID || c.StartDate == nil || c.IsDeleted {
		return false
	}
	for id, r := range s.rows {
		if id == c.ID || r.IsDeleted || r.FirstID == nil || *r.FirstID == id || r.StartDate == nil {
			continue
		}
		if *r.FirstID == *c.FirstID && r.StartDate.Equal(*c.StartDate) {
			return true
		}
	}
	return false
}

func matches(r domain.Consultation, f store.Filter) bool {
	for _, p := range f.Where {
		if !matchPredicate(r, p) {
			return false
		}
	}
	if len(f.Or) == 0 {
		return true
	}
	for _, group := range f.Or {
		ok := true
		for _, p := range group {
			if !matchPredicate(r, p) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func matchPredicate(r domain.Consultation, p store.Predicate) bool {
	v := fieldValue(r, p.Field)
	if p.Value == nil {
		if p.Op == store.OpNeq {
			return v != nil
		}
		return v == nil
	}
	if v == nil {
		return false
	}

	c, ok := compareValues(v, p.Value)
	if !ok {
		return false
	}
	switch p.Op {
	case store.OpNeq:
		return c != 0
	case store.OpGte:
		return c >= 0
	case store.OpLt:
		return c < 0
	default:
		return c == 0
	}
}

func fieldValue(r domain.Consultation, f store.Field) any {
	switch f {
	case store.FieldID:
		return r.ID
	case store.FieldOfficeID:
		return r.OfficeID
	case store.FieldUserID:
		if r.UserID == 0 {
			return nil
		}
		return r.UserID
	case store.FieldStartDate:
		if r.StartDate == nil {
			return nil
		}
		return *r.StartDate
	case store.FieldEndDate:
		if r.EndDate == nil {
			return nil
		}
		return *r.EndDate
	case store.FieldIsFlex:
		return r.IsFlex
	case store.FieldFirstID:
		if r.FirstID == nil {
			return nil
		}
		return *r.FirstID
	case store.FieldWeeklyFrequency:
		return int64(r.WeeklyFrequency)
	case store.FieldIsDeleted:
		return r.IsDeleted
	case store.FieldIsCancelled:
		return r.IsCancelled
	}
	return nil
}

func compareField(a, b domain.Consultation, f store.Field) int {
	va, vb := fieldValue(a, f), fieldValue(b, f)
	switch {
	case va == nil && vb == nil:
		return 0
	case va == nil:
		return 1
	case vb == nil:
		return -1
	}
	c, _ := compareValues(va, vb)
	return c
}

func compareValues(a, b any) (int, bool) {
	switch av := a.(type) {
	case int64:
		bv, ok := toInt64(b)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av {
			return -1, true
		}
		return 1, true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func cloneRow(r domain.Consultation) domain.Consultation {
	out := r
	if r.StartDate != nil {
		v := *r.StartDate
		out.StartDate = &v
	}
	if r.EndDate != nil {
		v := *r.EndDate
		out.EndDate = &v
	}
	if r.FirstID != nil {
		v := *r.FirstID
		out.FirstID = &v
	}
	if r.CancelledAt != nil {
		v := *r.CancelledAt
		out.CancelledAt = &v
	}
	return out
}
