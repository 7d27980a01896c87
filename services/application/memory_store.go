package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"passport-apply/apperror"
	appmodel "passport-apply/models/application"
)

// MemoryStore is an in-memory Store used by tests. Aggregates are deep-copied
// on the way in and out so callers never alias stored state.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID uint
	apps   map[uint]appmodel.Application
}

// NewMemoryStore creates an empty in-memory application store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, apps: make(map[uint]appmodel.Application)}
}

func copyApp(app appmodel.Application) appmodel.Application {
	out := app
	out.StatusHistory = make(appmodel.StatusHistory, len(app.StatusHistory))
	copy(out.StatusHistory, app.StatusHistory)
	out.DocumentVerification = make(appmodel.VerificationList, len(app.DocumentVerification))
	copy(out.DocumentVerification, app.DocumentVerification)
	return out
}

func (s *MemoryStore) Load(ctx context.Context, id uint) (*appmodel.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "Application not found")
	}
	out := copyApp(app)
	return &out, nil
}

func (s *MemoryStore) Save(ctx context.Context, app *appmodel.Application) (*appmodel.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if app.ID == 0 {
		app.ID = s.nextID
		s.nextID++
		if app.CreatedAt.IsZero() {
			app.CreatedAt = time.Now()
		}
	}
	app.UpdatedAt = time.Now()
	s.apps[app.ID] = copyApp(*app)
	out := copyApp(*app)
	return &out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[id]; !ok {
		return apperror.New(apperror.KindNotFound, "Application not found")
	}
	delete(s.apps, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]appmodel.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]appmodel.Application, 0, len(s.apps))
	for _, app := range s.apps {
		out = append(out, copyApp(app))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID uint) ([]appmodel.Application, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]appmodel.Application, 0, len(all))
	for _, app := range all {
		if app.SubmittedByID == userID {
			out = append(out, app)
		}
	}
	return out, nil
}
