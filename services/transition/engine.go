package transition

import (
	"context"
	"fmt"
	"time"

	"passport-apply/apperror"
	"passport-apply/logger"
	appmodel "passport-apply/models/application"
	appservice "passport-apply/services/application"
	"passport-apply/utils"
)

// Engine applies status changes to application aggregates. It is the only
// legal writer of Status and StatusHistory.
type Engine struct {
	store appservice.Store
	locks *utils.KeyedMutex
}

// NewEngine creates a transition engine over the given store. The keyed mutex
// is shared with every other component that mutates the same aggregates.
func NewEngine(store appservice.Store, locks *utils.KeyedMutex) *Engine {
	return &Engine{store: store, locks: locks}
}

// ApplyTransition validates the requested status against the transition table
// and, on success, updates the status and appends exactly one history entry.
// No other field of the aggregate is touched.
func (e *Engine) ApplyTransition(ctx context.Context, id uint, requested appmodel.ApplicationStatus, comment string) (*appmodel.Application, error) {
	if !requested.IsValid() {
		return nil, apperror.Newf(apperror.KindBadRequest, "unknown status %q", requested)
	}

	e.locks.Lock(id)
	defer e.locks.Unlock(id)

	app, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !app.Status.CanTransitionTo(requested) {
		return nil, apperror.Newf(apperror.KindInvalidTransition,
			"Invalid status transition from %s to %s", app.Status, requested)
	}

	app.Status = requested
	app.StatusHistory = append(app.StatusHistory, appmodel.StatusEntry{
		Status:    requested,
		Timestamp: time.Now(),
		Comment:   comment,
	})

	updated, err := e.store.Save(ctx, app)
	if err != nil {
		return nil, err
	}

	logger.Success(fmt.Sprintf("Application %d moved to %s", id, requested))
	return updated, nil
}
