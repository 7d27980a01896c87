package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jinzhu/now"
	"gorm.io/gorm"

	"passport-apply/apperror"
	aptmodel "passport-apply/models/appointment"
)

// Store is the persistence boundary for appointments.
type Store interface {
	Load(ctx context.Context, id uint) (*aptmodel.Appointment, error)
	Save(ctx context.Context, a *aptmodel.Appointment) (*aptmodel.Appointment, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]aptmodel.Appointment, error)
	ListByUser(ctx context.Context, userID uint) ([]aptmodel.Appointment, error)
	// SlotTaken reports whether another blocking appointment already occupies
	// the same day, time and location. excludeID skips one record, to allow
	// rescheduling checks against the appointment being updated.
	SlotTaken(ctx context.Context, date time.Time, timeSlot, location string, excludeID uint) (bool, error)
	// BookedTimes returns the blocked time slots for one day and location.
	BookedTimes(ctx context.Context, date time.Time, location string) ([]string, error)
}

// GormStore persists appointments in Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, id uint) (*aptmodel.Appointment, error) {
	var a aptmodel.Appointment
	err := s.db.WithContext(ctx).Preload("CreatedBy").First(&a, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "Appointment with ID %d not found", id)
		}
		return nil, err
	}
	return &a, nil
}

func (s *GormStore) Save(ctx context.Context, a *aptmodel.Appointment) (*aptmodel.Appointment, error) {
	if err := s.db.WithContext(ctx).Save(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (s *GormStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&aptmodel.Appointment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.Newf(apperror.KindNotFound, "Appointment with ID %d not found", id)
	}
	return nil
}

func (s *GormStore) List(ctx context.Context) ([]aptmodel.Appointment, error) {
	var appointments []aptmodel.Appointment
	err := s.db.WithContext(ctx).
		Preload("CreatedBy").
		Order("created_at DESC").
		Find(&appointments).Error
	return appointments, err
}

func (s *GormStore) ListByUser(ctx context.Context, userID uint) ([]aptmodel.Appointment, error) {
	var appointments []aptmodel.Appointment
	err := s.db.WithContext(ctx).
		Preload("CreatedBy").
		Where("created_by_id = ?", userID).
		Order("created_at DESC").
		Find(&appointments).Error
	return appointments, err
}

func (s *GormStore) SlotTaken(ctx context.Context, date time.Time, timeSlot, location string, excludeID uint) (bool, error) {
	dayStart := now.With(date).BeginningOfDay()
	dayEnd := now.With(date).EndOfDay()

	query := s.db.WithContext(ctx).Model(&aptmodel.Appointment{}).
		Where("preferred_date BETWEEN ? AND ?", dayStart, dayEnd).
		Where("preferred_time = ?", timeSlot).
		Where("preferred_location = ?", location).
		Where("status IN ?", []aptmodel.AppointmentStatus{aptmodel.StatusPending, aptmodel.StatusApproved})
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) BookedTimes(ctx context.Context, date time.Time, location string) ([]string, error) {
	dayStart := now.With(date).BeginningOfDay()
	dayEnd := now.With(date).EndOfDay()

	var times []string
	err := s.db.WithContext(ctx).Model(&aptmodel.Appointment{}).
		Where("preferred_date BETWEEN ? AND ?", dayStart, dayEnd).
		Where("preferred_location = ?", location).
		Where("status IN ?", []aptmodel.AppointmentStatus{aptmodel.StatusPending, aptmodel.StatusApproved}).
		Pluck("preferred_time", &times).Error
	return times, err
}

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu           sync.RWMutex
	appointments map[uint]*aptmodel.Appointment
	nextID       uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{appointments: make(map[uint]*aptmodel.Appointment), nextID: 1}
}

func (s *MemoryStore) Load(ctx context.Context, id uint) (*aptmodel.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, apperror.Newf(apperror.KindNotFound, "Appointment with ID %d not found", id)
	}
	return copyAppointment(a), nil
}

func (s *MemoryStore) Save(ctx context.Context, a *aptmodel.Appointment) (*aptmodel.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.nextID
		s.nextID++
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()
	s.appointments[a.ID] = copyAppointment(a)
	return copyAppointment(a), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[id]; !ok {
		return apperror.Newf(apperror.KindNotFound, "Appointment with ID %d not found", id)
	}
	delete(s.appointments, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]aptmodel.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]aptmodel.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, *copyAppointment(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID uint) ([]aptmodel.Appointment, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]aptmodel.Appointment, 0, len(all))
	for _, a := range all {
		if a.CreatedByID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) SlotTaken(ctx context.Context, date time.Time, timeSlot, location string, excludeID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dayStart := now.With(date).BeginningOfDay()
	dayEnd := now.With(date).EndOfDay()
	for _, a := range s.appointments {
		if a.ID == excludeID || !a.Status.BlocksSlot() {
			continue
		}
		if a.PreferredDate.Before(dayStart) || a.PreferredDate.After(dayEnd) {
			continue
		}
		if a.PreferredTime == timeSlot && a.PreferredLocation == location {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) BookedTimes(ctx context.Context, date time.Time, location string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dayStart := now.With(date).BeginningOfDay()
	dayEnd := now.With(date).EndOfDay()
	var times []string
	for _, a := range s.appointments {
		if !a.Status.BlocksSlot() || a.PreferredLocation != location {
			continue
		}
		if a.PreferredDate.Before(dayStart) || a.PreferredDate.After(dayEnd) {
			continue
		}
		times = append(times, a.PreferredTime)
	}
	return times, nil
}

func copyAppointment(a *aptmodel.Appointment) *aptmodel.Appointment {
	dup := *a
	return &dup
}
