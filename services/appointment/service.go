package appointment

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"passport-apply/apperror"
	"passport-apply/logger"
	aptmodel "passport-apply/models/appointment"
	"passport-apply/models/user"
	apttypes "passport-apply/types/appointment"
)

// AvailableTimeSlots are the bookable biometric-capture times per day.
var AvailableTimeSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"13:00", "13:30", "14:00", "14:30", "15:00", "15:30",
}

// Service books and manages biometric appointments. A day+time+location slot
// is held by at most one PENDING or APPROVED appointment.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create books a new appointment after checking slot availability.
func (s *Service) Create(ctx context.Context, caller user.Identity, req apttypes.CreateAppointmentRequest) (*aptmodel.Appointment, error) {
	taken, err := s.store.SlotTaken(ctx, req.PreferredDate, req.PreferredTime, req.PreferredLocation, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.New(apperror.KindBadRequest, "Selected time slot is not available")
	}

	a := &aptmodel.Appointment{
		CreatedByID:       caller.UserID,
		PreferredDate:     req.PreferredDate,
		PreferredTime:     req.PreferredTime,
		PreferredLocation: req.PreferredLocation,
		ContactNumber:     req.ContactNumber,
		Notes:             req.Notes,
		Status:            aptmodel.StatusPending,
	}
	a.Reference = buildReference(a)

	created, err := s.store.Save(ctx, a)
	if err != nil {
		return nil, err
	}
	logger.Success(fmt.Sprintf("Appointment %s booked by user %d", created.Reference, caller.UserID))
	return created, nil
}

// FindAll lists every appointment. Staff only.
func (s *Service) FindAll(ctx context.Context, caller user.Identity) ([]aptmodel.Appointment, error) {
	if !caller.IsStaff() {
		return nil, errAppointmentAccessDenied()
	}
	return s.store.List(ctx)
}

// FindAllByUser lists the caller's own appointments.
func (s *Service) FindAllByUser(ctx context.Context, caller user.Identity) ([]aptmodel.Appointment, error) {
	return s.store.ListByUser(ctx, caller.UserID)
}

// FindOne returns one appointment. Staff may read any; applicants only their
// own, without revealing whether a foreign id exists.
func (s *Service) FindOne(ctx context.Context, caller user.Identity, id uint) (*aptmodel.Appointment, error) {
	a, err := s.store.Load(ctx, id)
	if err != nil {
		if !caller.IsStaff() && apperror.IsKind(err, apperror.KindNotFound) {
			return nil, errAppointmentAccessDenied()
		}
		return nil, err
	}
	if !caller.IsStaff() && a.CreatedByID != caller.UserID {
		return nil, errAppointmentAccessDenied()
	}
	return a, nil
}

// Update reschedules or annotates an appointment. Owner or staff. Moving the
// slot re-checks availability, excluding the appointment itself.
func (s *Service) Update(ctx context.Context, caller user.Identity, id uint, req apttypes.UpdateAppointmentRequest) (*aptmodel.Appointment, error) {
	a, err := s.FindOne(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Reschedules() {
		date := a.PreferredDate
		timeSlot := a.PreferredTime
		location := a.PreferredLocation
		if req.PreferredDate != nil {
			date = *req.PreferredDate
		}
		if req.PreferredTime != nil {
			timeSlot = *req.PreferredTime
		}
		if req.PreferredLocation != nil {
			location = *req.PreferredLocation
		}

		taken, err := s.store.SlotTaken(ctx, date, timeSlot, location, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperror.New(apperror.KindBadRequest, "Selected time slot is not available")
		}

		a.PreferredDate = date
		a.PreferredTime = timeSlot
		a.PreferredLocation = location
	}
	if req.ContactNumber != nil {
		a.ContactNumber = *req.ContactNumber
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}

	return s.store.Save(ctx, a)
}

// UpdateStatus approves, rejects or cancels an appointment. Staff may set any
// status; the owner may only cancel.
func (s *Service) UpdateStatus(ctx context.Context, caller user.Identity, id uint, req apttypes.UpdateAppointmentStatusRequest) (*aptmodel.Appointment, error) {
	status := aptmodel.AppointmentStatus(req.Status)
	if !status.IsValid() {
		return nil, apperror.Newf(apperror.KindBadRequest, "unknown appointment status %q", req.Status)
	}

	a, err := s.FindOne(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsStaff() && status != aptmodel.StatusCancelled {
		return nil, errAppointmentAccessDenied()
	}

	a.Status = status
	return s.store.Save(ctx, a)
}

// Remove deletes an appointment. Approved appointments cannot be deleted.
func (s *Service) Remove(ctx context.Context, caller user.Identity, id uint) error {
	a, err := s.FindOne(ctx, caller, id)
	if err != nil {
		return err
	}
	if a.Status == aptmodel.StatusApproved {
		return apperror.New(apperror.KindBadRequest, "Cannot delete an approved appointment")
	}
	return s.store.Delete(ctx, id)
}

// AvailableSlots returns the free time slots for one day and location.
func (s *Service) AvailableSlots(ctx context.Context, date time.Time, location string) ([]string, error) {
	booked, err := s.store.BookedTimes(ctx, date, location)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	free := make([]string, 0, len(AvailableTimeSlots))
	for _, t := range AvailableTimeSlots {
		if _, ok := taken[t]; !ok {
			free = append(free, t)
		}
	}
	return free, nil
}

// buildReference derives the booking reference, e.g. APT-20260115-COL-0930-X4T.
func buildReference(a *aptmodel.Appointment) string {
	locationCode := strings.ToUpper(a.PreferredLocation)
	if len(locationCode) > 3 {
		locationCode = locationCode[:3]
	}
	timeCode := strings.ReplaceAll(a.PreferredTime, ":", "")
	return fmt.Sprintf("APT-%s-%s-%s-%s",
		a.PreferredDate.Format("20060102"), locationCode, timeCode, randomSuffix(3))
}

const suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// Fall back to a time-derived suffix; uniqueness is enforced by the
		// reference column index.
		return fmt.Sprintf("%03d", time.Now().UnixNano()%1000)
	}
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(buf)
}

func errAppointmentAccessDenied() error {
	return apperror.New(apperror.KindForbidden, "You do not have access to this appointment")
}
