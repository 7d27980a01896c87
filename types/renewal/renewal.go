package renewal

import (
	"fmt"
	"time"
)

// CreateRenewalRequest is the renewal submission payload.
type CreateRenewalRequest struct {
	FullName                  string    `json:"full_name" validate:"required,max=255"`
	DateOfBirth               time.Time `json:"date_of_birth" validate:"required"`
	NICNumber                 string    `json:"nic_number" validate:"required,max=50"`
	CurrentPassportNumber     string    `json:"current_passport_number" validate:"required,max=100"`
	CurrentPassportExpiryDate time.Time `json:"current_passport_expiry_date" validate:"required"`
	Address                   string    `json:"address" validate:"required"`
	ContactNumber             string    `json:"contact_number" validate:"required,max=20"`
	Email                     string    `json:"email" validate:"required,email"`
}

func (r CreateRenewalRequest) Validate() error {
	if r.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if r.DateOfBirth.IsZero() {
		return fmt.Errorf("date_of_birth is required")
	}
	if r.NICNumber == "" {
		return fmt.Errorf("nic_number is required")
	}
	if r.CurrentPassportNumber == "" {
		return fmt.Errorf("current_passport_number is required")
	}
	if r.CurrentPassportExpiryDate.IsZero() {
		return fmt.Errorf("current_passport_expiry_date is required")
	}
	if r.Address == "" {
		return fmt.Errorf("address is required")
	}
	if r.ContactNumber == "" {
		return fmt.Errorf("contact_number is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	return nil
}

// UpdateRenewalStatusRequest moves a renewal to VERIFIED or REJECTED.
type UpdateRenewalStatusRequest struct {
	Status       string `json:"status" validate:"required,oneof=PENDING VERIFIED REJECTED"`
	AdminRemarks string `json:"admin_remarks" validate:"omitempty"`
}

func (r UpdateRenewalStatusRequest) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}
