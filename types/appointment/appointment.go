package appointment

import (
	"fmt"
	"time"
)

// CreateAppointmentRequest is the biometric appointment booking payload.
type CreateAppointmentRequest struct {
	PreferredDate     time.Time `json:"preferred_date" validate:"required"`
	PreferredTime     string    `json:"preferred_time" validate:"required,max=10"`
	PreferredLocation string    `json:"preferred_location" validate:"required,max=100"`
	ContactNumber     string    `json:"contact_number" validate:"required,max=20"`
	Notes             string    `json:"notes" validate:"omitempty"`
}

func (r CreateAppointmentRequest) Validate() error {
	if r.PreferredDate.IsZero() {
		return fmt.Errorf("preferred_date is required")
	}
	if r.PreferredTime == "" {
		return fmt.Errorf("preferred_time is required")
	}
	if r.PreferredLocation == "" {
		return fmt.Errorf("preferred_location is required")
	}
	if r.ContactNumber == "" {
		return fmt.Errorf("contact_number is required")
	}
	return nil
}

// UpdateAppointmentRequest reschedules or annotates an existing appointment.
// Nil fields are left unchanged.
type UpdateAppointmentRequest struct {
	PreferredDate     *time.Time `json:"preferred_date"`
	PreferredTime     *string    `json:"preferred_time"`
	PreferredLocation *string    `json:"preferred_location"`
	ContactNumber     *string    `json:"contact_number"`
	Notes             *string    `json:"notes"`
}

// Reschedules reports whether the update touches the booked slot.
func (r UpdateAppointmentRequest) Reschedules() bool {
	return r.PreferredDate != nil || r.PreferredTime != nil || r.PreferredLocation != nil
}

// UpdateAppointmentStatusRequest approves, rejects or cancels an appointment.
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED CANCELLED"`
}

func (r UpdateAppointmentStatusRequest) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}
