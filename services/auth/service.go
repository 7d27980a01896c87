package auth

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"passport-apply/apperror"
	"passport-apply/logger"
	usermodel "passport-apply/models/user"
	authtypes "passport-apply/types/auth"
)

const tokenTTL = 24 * time.Hour

// Service handles account registration, credential login and user
// administration.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Signup registers a new applicant account. Emails are unique.
func (s *Service) Signup(ctx context.Context, req authtypes.SignupRequest) (*usermodel.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.store.LoadByEmail(ctx, email); err == nil {
		return nil, apperror.New(apperror.KindBadRequest, "Email already registered")
	} else if !apperror.IsKind(err, apperror.KindNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to hash password", err)
	}

	u := &usermodel.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Password:  string(hashed),
		Gender:    req.Gender,
		Birthdate: req.Birthdate,
		Role:      usermodel.RoleApplicant,
		Status:    usermodel.StatusActive,
	}

	created, err := s.store.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	logger.Success(fmt.Sprintf("User %s registered", created.Email))
	return created, nil
}

// Login verifies credentials and issues a signed bearer token.
func (s *Service) Login(ctx context.Context, req authtypes.LoginRequest) (string, *usermodel.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.store.LoadByEmail(ctx, email)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return "", nil, errInvalidCredentials()
		}
		return "", nil, err
	}
	if u.Status != usermodel.StatusActive {
		return "", nil, apperror.New(apperror.KindForbidden, "Account is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return "", nil, errInvalidCredentials()
	}

	token, err := IssueToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// FindByID returns one account by id.
func (s *Service) FindByID(ctx context.Context, id uint) (*usermodel.User, error) {
	return s.store.LoadByID(ctx, id)
}

// FindAll lists every account. Admin only.
func (s *Service) FindAll(ctx context.Context, caller usermodel.Identity) ([]usermodel.User, error) {
	if !caller.IsAdmin() {
		return nil, errUserAdminDenied()
	}
	return s.store.List(ctx)
}

// ChangeStatus activates or deactivates an account. Admin only.
func (s *Service) ChangeStatus(ctx context.Context, caller usermodel.Identity, id uint, status string) (*usermodel.User, error) {
	if !caller.IsAdmin() {
		return nil, errUserAdminDenied()
	}
	if status != usermodel.StatusActive && status != usermodel.StatusInactive {
		return nil, apperror.Newf(apperror.KindBadRequest, "unknown account status %q", status)
	}

	u, err := s.store.LoadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Status = status
	return s.store.Save(ctx, u)
}

// Remove deletes an account. Admin only; admins cannot delete themselves.
func (s *Service) Remove(ctx context.Context, caller usermodel.Identity, id uint) error {
	if !caller.IsAdmin() {
		return errUserAdminDenied()
	}
	if caller.UserID == id {
		return apperror.New(apperror.KindBadRequest, "You cannot delete your own account")
	}
	return s.store.Delete(ctx, id)
}

// IssueToken signs an HS256 bearer token carrying the user id and role.
func IssueToken(u *usermodel.User) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", apperror.New(apperror.KindInternal, "JWT_SECRET is not configured")
	}

	claims := jwt.MapClaims{
		"uid":   u.ID,
		"role":  u.Role.String(),
		"email": u.Email,
		"exp":   time.Now().Add(tokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", apperror.Wrap(apperror.KindInternal, "failed to sign token", err)
	}
	return signed, nil
}

func errInvalidCredentials() error {
	return apperror.New(apperror.KindBadRequest, "Invalid email or password")
}

func errUserAdminDenied() error {
	return apperror.New(apperror.KindForbidden, "You do not have access to user administration")
}
