package appointment

import (
	"time"

	"passport-apply/models/user"
)

// AppointmentStatus is the booking state of a biometric appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusApproved  AppointmentStatus = "APPROVED"
	StatusRejected  AppointmentStatus = "REJECTED"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

func (as AppointmentStatus) String() string {
	return string(as)
}

func (as AppointmentStatus) IsValid() bool {
	switch as {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// BlocksSlot reports whether an appointment in this state keeps its time
// slot reserved.
func (as AppointmentStatus) BlocksSlot() bool {
	return as == StatusPending || as == StatusApproved
}

// Appointment is one biometric-capture appointment request.
type Appointment struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	CreatedByID uint      `gorm:"not null;index" json:"created_by_id"`
	CreatedBy   user.User `gorm:"foreignKey:CreatedByID" json:"created_by"`

	// Reference is assigned once at booking time, e.g. APT-20260115-COL-0930-X4T.
	Reference string `gorm:"type:varchar(40);uniqueIndex" json:"reference"`

	PreferredDate     time.Time         `gorm:"not null;index" json:"preferred_date"`
	PreferredTime     string            `gorm:"type:varchar(10);not null" json:"preferred_time"`
	PreferredLocation string            `gorm:"type:varchar(100);not null" json:"preferred_location"`
	ContactNumber     string            `gorm:"type:varchar(20);not null" json:"contact_number"`
	Notes             string            `gorm:"type:text" json:"notes,omitempty"`
	Status            AppointmentStatus `gorm:"type:varchar(20);not null;default:PENDING;index" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the Appointment model.
func (Appointment) TableName() string {
	return "appointments"
}
