package auth

import "fmt"

// SignupRequest is the account registration payload.
type SignupRequest struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Gender    string `json:"gender" validate:"required"`
	Birthdate string `json:"birthdate" validate:"required"`
}

func (r SignupRequest) Validate() error {
	if r.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if r.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if len(r.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// ChangeUserStatusRequest activates or deactivates an account.
type ChangeUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

func (r ChangeUserStatusRequest) Validate() error {
	if r.Status != "active" && r.Status != "inactive" {
		return fmt.Errorf("status must be active or inactive")
	}
	return nil
}
