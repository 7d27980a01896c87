package appointment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"passport-apply/apperror"
	aptmodel "passport-apply/models/appointment"
	"passport-apply/models/user"
	apttypes "passport-apply/types/appointment"
)

var (
	booker  = user.Identity{UserID: 1, Role: user.RoleApplicant}
	rival   = user.Identity{UserID: 2, Role: user.RoleApplicant}
	officer = user.Identity{UserID: 10, Role: user.RoleManager}
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewMemoryStore())
}

func bookingRequest(timeSlot string) apttypes.CreateAppointmentRequest {
	return apttypes.CreateAppointmentRequest{
		PreferredDate:     time.Date(2026, 9, 15, 0, 0, 0, 0, time.Local),
		PreferredTime:     timeSlot,
		PreferredLocation: "Colombo",
		ContactNumber:     "+94771234567",
	}
}

func TestCreateAssignsReferenceOnce(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), booker, bookingRequest("09:30"))
	require.NoError(t, err)
	require.Equal(t, aptmodel.StatusPending, created.Status)
	require.True(t, strings.HasPrefix(created.Reference, "APT-20260915-COL-0930-"))
	require.Len(t, created.Reference, len("APT-20260915-COL-0930-")+3)

	// The reference is persisted, not derived per read.
	loaded, err := svc.FindOne(context.Background(), booker, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Reference, loaded.Reference)
}

func TestCreateRejectsTakenSlot(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), booker, bookingRequest("09:30"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), rival, bookingRequest("09:30"))
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	// Same time at another location is a different slot.
	other := bookingRequest("09:30")
	other.PreferredLocation = "Kandy"
	_, err = svc.Create(context.Background(), rival, other)
	require.NoError(t, err)
}

func TestCancelledAppointmentFreesSlot(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Create(context.Background(), booker, bookingRequest("10:00"))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), booker, first.ID, apttypes.UpdateAppointmentStatusRequest{Status: "CANCELLED"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), rival, bookingRequest("10:00"))
	require.NoError(t, err)
}

func TestUpdateRescheduleExcludesSelf(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), booker, bookingRequest("09:00"))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), rival, bookingRequest("11:00"))
	require.NoError(t, err)

	// Re-saving with the current slot must not count the appointment against itself.
	sameSlot := "09:00"
	_, err = svc.Update(context.Background(), booker, created.ID, apttypes.UpdateAppointmentRequest{PreferredTime: &sameSlot})
	require.NoError(t, err)

	// Moving onto another booking's slot is refused.
	takenSlot := "11:00"
	_, err = svc.Update(context.Background(), booker, created.ID, apttypes.UpdateAppointmentRequest{PreferredTime: &takenSlot})
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	freeSlot := "13:30"
	updated, err := svc.Update(context.Background(), booker, created.ID, apttypes.UpdateAppointmentRequest{PreferredTime: &freeSlot})
	require.NoError(t, err)
	require.Equal(t, "13:30", updated.PreferredTime)
}

func TestUpdateStatusOwnerMayOnlyCancel(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(context.Background(), booker, bookingRequest("14:00"))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), booker, created.ID, apttypes.UpdateAppointmentStatusRequest{Status: "APPROVED"})
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = svc.UpdateStatus(context.Background(), booker, created.ID, apttypes.UpdateAppointmentStatusRequest{Status: "NONSENSE"})
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	approved, err := svc.UpdateStatus(context.Background(), officer, created.ID, apttypes.UpdateAppointmentStatusRequest{Status: "APPROVED"})
	require.NoError(t, err)
	require.Equal(t, aptmodel.StatusApproved, approved.Status)

	cancelled, err := svc.UpdateStatus(context.Background(), booker, created.ID, apttypes.UpdateAppointmentStatusRequest{Status: "CANCELLED"})
	require.NoError(t, err)
	require.Equal(t, aptmodel.StatusCancelled, cancelled.Status)
}

func TestRemoveBlocksApproved(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(context.Background(), booker, bookingRequest("15:00"))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), officer, created.ID, apttypes.UpdateAppointmentStatusRequest{Status: "APPROVED"})
	require.NoError(t, err)

	err = svc.Remove(context.Background(), booker, created.ID)
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	_, err = svc.UpdateStatus(context.Background(), officer, created.ID, apttypes.UpdateAppointmentStatusRequest{Status: "CANCELLED"})
	require.NoError(t, err)
	require.NoError(t, svc.Remove(context.Background(), booker, created.ID))

	_, err = svc.FindOne(context.Background(), officer, created.ID)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestFindOneHidesForeignAppointments(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(context.Background(), booker, bookingRequest("09:30"))
	require.NoError(t, err)

	_, err = svc.FindOne(context.Background(), rival, created.ID)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = svc.FindOne(context.Background(), rival, 999)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = svc.FindAll(context.Background(), booker)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	mine, err := svc.FindAllByUser(context.Background(), booker)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestAvailableSlotsSubtractsBookings(t *testing.T) {
	svc := newTestService(t)
	day := time.Date(2026, 9, 15, 0, 0, 0, 0, time.Local)

	free, err := svc.AvailableSlots(context.Background(), day, "Colombo")
	require.NoError(t, err)
	require.Equal(t, AvailableTimeSlots, free)

	_, err = svc.Create(context.Background(), booker, bookingRequest("09:30"))
	require.NoError(t, err)

	free, err = svc.AvailableSlots(context.Background(), day, "Colombo")
	require.NoError(t, err)
	require.Len(t, free, len(AvailableTimeSlots)-1)
	require.NotContains(t, free, "09:30")

	// Bookings elsewhere do not reduce this location's availability.
	free, err = svc.AvailableSlots(context.Background(), day, "Kandy")
	require.NoError(t, err)
	require.Len(t, free, len(AvailableTimeSlots))
}
