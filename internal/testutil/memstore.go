// Package testutil provides in-memory stores for service and handler tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/publicvoice/internal/model"
	"github.com/iliyamo/publicvoice/internal/repository"
)

// Users is an in-memory repository.UserStore.
type Users struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.User
	Now    func() time.Time

	// Err, when set, is returned by every method.
	Err error
}

// NewUsers returns an empty store.
func NewUsers() *Users {
	return &Users{byID: map[uint64]*model.User{}, Now: time.Now}
}

var _ repository.UserStore = (*Users)(nil)

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

func (s *Users) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	s.nextID++
	now := s.Now().UTC()
	u.ID = s.nextID
	u.CreatedAt, u.UpdatedAt = now, now
	s.byID[u.ID] = copyUser(u)
	return nil
}

// Put stores u as is, for seeding fixtures such as admin accounts.
func (s *Users) Put(u *model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u.ID = s.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.Now().UTC().Add(time.Duration(u.ID) * time.Second)
	}
	s.byID[u.ID] = copyUser(u)
	return u
}

func (s *Users) GetByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.byID {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Users) UpdateProfile(_ context.Context, id uint64, fullName string, profileImage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FullName = fullName
	u.ProfileImage = profileImage
	u.UpdatedAt = s.Now().UTC()
	return nil
}

func (s *Users) SetResetToken(_ context.Context, id uint64, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	h, exp := tokenHash, expiresAt
	u.ResetTokenHash, u.ResetTokenExpiresAt = &h, &exp
	return nil
}

func (s *Users) ConsumeResetToken(_ context.Context, tokenHash, passwordHash string, now time.Time) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	for _, u := range s.byID {
		if u.ResetTokenHash == nil || *u.ResetTokenHash != tokenHash {
			continue
		}
		expired := u.ResetTokenExpiresAt == nil || !now.Before(*u.ResetTokenExpiresAt)
		u.ResetTokenHash, u.ResetTokenExpiresAt = nil, nil
		if expired {
			return 0, repository.ErrResetTokenInvalid
		}
		u.PasswordHash = passwordHash
		return u.ID, nil
	}
	return 0, repository.ErrResetTokenInvalid
}

func (s *Users) List(_ context.Context, q repository.UserQuery) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*model.User
	for _, u := range s.byID {
		switch {
		case q.Role != "" && u.Role != q.Role:
			continue
		case q.Role == "" && !q.IncludeAdmin && u.Role == model.RoleAdmin:
			continue
		}
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return window(out, q.Offset, q.Limit), nil
}

// Reports is an in-memory repository.ReportStore.
type Reports struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.Report
	Now    func() time.Time

	// Err, when set, is returned by every method.
	Err error
	// LastQuery records the most recent List query.
	LastQuery repository.ReportQuery
}

// NewReports returns an empty store.
func NewReports() *Reports {
	return &Reports{byID: map[uint64]*model.Report{}, Now: time.Now}
}

var _ repository.ReportStore = (*Reports)(nil)

func copyReport(r *model.Report) *model.Report {
	c := *r
	return &c
}

func (s *Reports) Create(_ context.Context, r *model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.nextID++
	r.ID = s.nextID
	if r.Status == "" {
		r.Status = model.StatusPending
	}
	// Spread creation times so that newest-first ordering is deterministic.
	now := s.Now().UTC().Add(time.Duration(r.ID) * time.Second)
	r.CreatedAt, r.UpdatedAt = now, now
	s.byID[r.ID] = copyReport(r)
	return nil
}

func (s *Reports) GetByID(_ context.Context, id uint64) (*model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	r, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyReport(r), nil
}

func (s *Reports) List(_ context.Context, q repository.ReportQuery) ([]*model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.LastQuery = q
	var out []*model.Report
	for _, r := range s.byID {
		if q.OwnerID != nil && !r.OwnedBy(*q.OwnerID) {
			continue
		}
		if q.Status != nil && r.Status != *q.Status {
			continue
		}
		if q.Category != nil && r.Category != *q.Category {
			continue
		}
		out = append(out, copyReport(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return window(out, q.Offset, q.Limit), nil
}

func (s *Reports) Update(_ context.Context, id uint64, p repository.ReportPatch) (*model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	r, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.AdminResponse != nil {
		resp := *p.AdminResponse
		r.AdminResponse = &resp
	}
	if p.Status != nil || p.AdminResponse != nil {
		r.UpdatedAt = s.Now().UTC()
	}
	return copyReport(r), nil
}

func (s *Reports) CountByStatus(_ context.Context) (map[model.Status]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[model.Status]int64, len(model.Statuses))
	for _, st := range model.Statuses {
		out[st] = 0
	}
	for _, r := range s.byID {
		out[r.Status]++
	}
	return out, nil
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
