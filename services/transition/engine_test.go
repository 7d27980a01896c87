package transition

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"passport-apply/apperror"
	appmodel "passport-apply/models/application"
	appservice "passport-apply/services/application"
	"passport-apply/utils"
)

func newTestEngine(t *testing.T) (*Engine, *appservice.MemoryStore) {
	t.Helper()
	store := appservice.NewMemoryStore()
	return NewEngine(store, utils.NewKeyedMutex()), store
}

func seedApplication(t *testing.T, store *appservice.MemoryStore) *appmodel.Application {
	t.Helper()
	app := &appmodel.Application{
		Surname:       "Perera",
		OtherNames:    "Nimal",
		SubmittedByID: 1,
	}
	app.SeedOnSubmit(time.Now())
	created, err := store.Save(context.Background(), app)
	require.NoError(t, err)
	return created
}

func TestApplyTransitionAppendsHistory(t *testing.T) {
	engine, store := newTestEngine(t)
	app := seedApplication(t, store)
	require.Equal(t, appmodel.StatusSubmitted, app.Status)
	require.Len(t, app.StatusHistory, 1)

	updated, err := engine.ApplyTransition(context.Background(), app.ID, appmodel.StatusPaymentPending, "Payment slip issued")
	require.NoError(t, err)
	require.Equal(t, appmodel.StatusPaymentPending, updated.Status)
	require.Len(t, updated.StatusHistory, 2)
	require.Equal(t, "Payment slip issued", updated.StatusHistory[1].Comment)
	require.Equal(t, appmodel.StatusPaymentPending, updated.StatusHistory[1].Status)

	updated, err = engine.ApplyTransition(context.Background(), app.ID, appmodel.StatusPaymentVerified, "")
	require.NoError(t, err)
	require.Len(t, updated.StatusHistory, 3)

	// History order mirrors the transitions applied.
	require.Equal(t, appmodel.StatusSubmitted, updated.StatusHistory[0].Status)
	require.Equal(t, appmodel.StatusPaymentPending, updated.StatusHistory[1].Status)
	require.Equal(t, appmodel.StatusPaymentVerified, updated.StatusHistory[2].Status)
}

func TestApplyTransitionRejectsIllegalEdge(t *testing.T) {
	engine, store := newTestEngine(t)
	app := seedApplication(t, store)

	_, err := engine.ApplyTransition(context.Background(), app.ID, appmodel.StatusPrinting, "")
	require.Error(t, err)
	require.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	require.Contains(t, err.Error(), "Invalid status transition from SUBMITTED to PRINTING")

	// A failed transition must leave the aggregate untouched.
	reloaded, err := store.Load(context.Background(), app.ID)
	require.NoError(t, err)
	require.Equal(t, appmodel.StatusSubmitted, reloaded.Status)
	require.Len(t, reloaded.StatusHistory, 1)
}

func TestApplyTransitionRejectsUnknownStatus(t *testing.T) {
	engine, store := newTestEngine(t)
	app := seedApplication(t, store)

	_, err := engine.ApplyTransition(context.Background(), app.ID, appmodel.ApplicationStatus("SHIPPED"), "")
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	reloaded, err := store.Load(context.Background(), app.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.StatusHistory, 1)
}

func TestApplyTransitionMissingApplication(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.ApplyTransition(context.Background(), 99, appmodel.StatusPaymentPending, "")
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestTerminalStatusBlocksFurtherTransitions(t *testing.T) {
	engine, store := newTestEngine(t)
	app := seedApplication(t, store)

	_, err := engine.ApplyTransition(context.Background(), app.ID, appmodel.StatusRejected, "Incomplete documents")
	require.NoError(t, err)

	_, err = engine.ApplyTransition(context.Background(), app.ID, appmodel.StatusPaymentPending, "")
	require.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
}
