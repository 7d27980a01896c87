package user

import (
	"time"
)

// Role is the authorization role carried on every caller identity.
type Role string

const (
	RoleApplicant Role = "APPLICANT"
	RoleManager   Role = "MANAGER"
	RoleAdmin     Role = "ADMIN"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleApplicant, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// Account statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is an account that submits or processes applications.
type User struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(255);not null" json:"last_name"`
	Email     string `gorm:"type:varchar(255);not null;unique" json:"email"`
	Password  string `gorm:"type:varchar(255);not null" json:"-"`
	Gender    string `gorm:"type:varchar(10);not null" json:"gender"`
	Birthdate string `gorm:"type:varchar(20);not null" json:"birthdate"`
	Role      Role   `gorm:"type:varchar(20);not null;default:APPLICANT" json:"role"`
	Status    string `gorm:"type:varchar(20);not null;default:active" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Identity is the normalized caller shape passed to every mutating service
// call. Services enforce ownership and role checks against it; authentication
// itself happens in the middleware.
type Identity struct {
	UserID uint
	Role   Role
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IsStaff reports whether the caller holds a back-office role.
func (i Identity) IsStaff() bool {
	return i.Role == RoleAdmin || i.Role == RoleManager
}
