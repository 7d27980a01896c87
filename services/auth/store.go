package auth

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"passport-apply/apperror"
	usermodel "passport-apply/models/user"
)

// Store is the persistence boundary for user accounts.
type Store interface {
	LoadByID(ctx context.Context, id uint) (*usermodel.User, error)
	LoadByEmail(ctx context.Context, email string) (*usermodel.User, error)
	Save(ctx context.Context, u *usermodel.User) (*usermodel.User, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]usermodel.User, error)
}

// GormStore persists users in Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) LoadByID(ctx context.Context, id uint) (*usermodel.User, error) {
	var u usermodel.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "User with ID %d not found", id)
		}
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) LoadByEmail(ctx context.Context, email string) (*usermodel.User, error) {
	var u usermodel.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "User with email %s not found", email)
		}
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) Save(ctx context.Context, u *usermodel.User) (*usermodel.User, error) {
	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (s *GormStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&usermodel.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.Newf(apperror.KindNotFound, "User with ID %d not found", id)
	}
	return nil
}

func (s *GormStore) List(ctx context.Context) ([]usermodel.User, error) {
	var users []usermodel.User
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[uint]*usermodel.User
	nextID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[uint]*usermodel.User), nextID: 1}
}

func (s *MemoryStore) LoadByID(ctx context.Context, id uint) (*usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperror.Newf(apperror.KindNotFound, "User with ID %d not found", id)
	}
	dup := *u
	return &dup, nil
}

func (s *MemoryStore) LoadByEmail(ctx context.Context, email string) (*usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			dup := *u
			return &dup, nil
		}
	}
	return nil, apperror.Newf(apperror.KindNotFound, "User with email %s not found", email)
}

func (s *MemoryStore) Save(ctx context.Context, u *usermodel.User) (*usermodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextID
		s.nextID++
		u.CreatedAt = time.Now()
	}
	u.UpdatedAt = time.Now()
	dup := *u
	s.users[u.ID] = &dup
	out := dup
	return &out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return apperror.Newf(apperror.KindNotFound, "User with ID %d not found", id)
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]usermodel.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
