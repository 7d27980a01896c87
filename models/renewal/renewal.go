package renewal

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"passport-apply/models/document"
	"passport-apply/models/user"
)

// RenewalStatus is the processing state of a renewal request.
type RenewalStatus string

const (
	StatusPending  RenewalStatus = "PENDING"
	StatusVerified RenewalStatus = "VERIFIED"
	StatusRejected RenewalStatus = "REJECTED"
)

func (rs RenewalStatus) String() string {
	return string(rs)
}

func (rs RenewalStatus) IsValid() bool {
	switch rs {
	case StatusPending, StatusVerified, StatusRejected:
		return true
	default:
		return false
	}
}

// DocumentMap holds storage keys per document type. Stored as a JSON column;
// keys are merged per type, never replaced wholesale.
type DocumentMap map[document.Type]string

// Scan implements the Scanner interface for database deserialization.
func (dm *DocumentMap) Scan(value interface{}) error {
	if value == nil {
		*dm = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, dm)
}

// Value implements the driver Valuer interface for database serialization.
func (dm DocumentMap) Value() (driver.Value, error) {
	if dm == nil {
		return json.Marshal(DocumentMap{})
	}
	return json.Marshal(dm)
}

// Renewal is one passport renewal request.
type Renewal struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID uint      `gorm:"not null;index" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	FullName    string    `gorm:"type:varchar(255);not null" json:"full_name"`
	DateOfBirth time.Time `gorm:"not null" json:"date_of_birth"`

	// NIC number is encrypted at rest, see services/renewal.
	NICNumberEncrypted string `gorm:"column:nic_number_encrypted;type:text;not null" json:"-"`

	CurrentPassportNumber     string    `gorm:"type:varchar(100);not null" json:"current_passport_number"`
	CurrentPassportExpiryDate time.Time `gorm:"not null" json:"current_passport_expiry_date"`

	Address       string `gorm:"type:text;not null" json:"address"`
	ContactNumber string `gorm:"type:varchar(20);not null" json:"contact_number"`
	Email         string `gorm:"type:varchar(255);not null" json:"email"`

	Documents DocumentMap `gorm:"type:jsonb" json:"documents"`

	Status       RenewalStatus `gorm:"type:varchar(20);not null;default:PENDING;index" json:"status"`
	AdminRemarks string        `gorm:"type:text" json:"admin_remarks,omitempty"`
	VerifiedAt   *time.Time    `json:"verified_at,omitempty"`
	VerifiedBy   string        `gorm:"type:varchar(255)" json:"verified_by,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the Renewal model.
func (Renewal) TableName() string {
	return "renewals"
}

// IsMutable reports whether documents may still be attached or removed.
// Only pending requests keep an open mutable window.
func (r *Renewal) IsMutable() bool {
	return r.Status == StatusPending
}
