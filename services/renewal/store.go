package renewal

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"passport-apply/apperror"
	renewmodel "passport-apply/models/renewal"
)

// Store is the persistence boundary for renewal requests.
type Store interface {
	Load(ctx context.Context, id uint) (*renewmodel.Renewal, error)
	Save(ctx context.Context, r *renewmodel.Renewal) (*renewmodel.Renewal, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, status renewmodel.RenewalStatus) ([]renewmodel.Renewal, error)
	ListByUser(ctx context.Context, userID uint) ([]renewmodel.Renewal, error)
}

// GormStore persists renewals through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a gorm-backed renewal store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, id uint) (*renewmodel.Renewal, error) {
	var r renewmodel.Renewal
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "Passport renewal request not found")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "failed to load renewal", err)
	}
	return &r, nil
}

func (s *GormStore) Save(ctx context.Context, r *renewmodel.Renewal) (*renewmodel.Renewal, error) {
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to save renewal", err)
	}
	return r, nil
}

func (s *GormStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&renewmodel.Renewal{}, id)
	if result.Error != nil {
		return apperror.Wrap(apperror.KindInternal, "failed to delete renewal", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.New(apperror.KindNotFound, "Passport renewal request not found")
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, status renewmodel.RenewalStatus) ([]renewmodel.Renewal, error) {
	var out []renewmodel.Renewal
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&out).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to list renewals", err)
	}
	return out, nil
}

func (s *GormStore) ListByUser(ctx context.Context, userID uint) ([]renewmodel.Renewal, error) {
	var out []renewmodel.Renewal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to list renewals by user", err)
	}
	return out, nil
}

// MemoryStore is an in-memory Store used by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   uint
	renewals map[uint]renewmodel.Renewal
}

// NewMemoryStore creates an empty in-memory renewal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, renewals: make(map[uint]renewmodel.Renewal)}
}

func copyRenewal(r renewmodel.Renewal) renewmodel.Renewal {
	out := r
	out.Documents = make(renewmodel.DocumentMap, len(r.Documents))
	for k, v := range r.Documents {
		out.Documents[k] = v
	}
	return out
}

func (s *MemoryStore) Load(ctx context.Context, id uint) (*renewmodel.Renewal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.renewals[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "Passport renewal request not found")
	}
	out := copyRenewal(r)
	return &out, nil
}

func (s *MemoryStore) Save(ctx context.Context, r *renewmodel.Renewal) (*renewmodel.Renewal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.nextID
		s.nextID++
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now()
		}
	}
	r.UpdatedAt = time.Now()
	s.renewals[r.ID] = copyRenewal(*r)
	out := copyRenewal(*r)
	return &out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.renewals[id]; !ok {
		return apperror.New(apperror.KindNotFound, "Passport renewal request not found")
	}
	delete(s.renewals, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, status renewmodel.RenewalStatus) ([]renewmodel.Renewal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]renewmodel.Renewal, 0, len(s.renewals))
	for _, r := range s.renewals {
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, copyRenewal(r))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID uint) ([]renewmodel.Renewal, error) {
	all, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]renewmodel.Renewal, 0, len(all))
	for _, r := range all {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}
