package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"passport-apply/apperror"
	"passport-apply/middleware"
	usermodel "passport-apply/models/user"
	authtypes "passport-apply/types/auth"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	return NewService(NewMemoryStore())
}

func signupRequest(email string) authtypes.SignupRequest {
	return authtypes.SignupRequest{
		FirstName: "Nimal",
		LastName:  "Perera",
		Email:     email,
		Password:  "s3cret-pass",
	}
}

func TestSignupAndLoginRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Signup(ctx, signupRequest("Nimal@Example.com "))
	require.NoError(t, err)
	require.Equal(t, "nimal@example.com", created.Email)
	require.Equal(t, usermodel.RoleApplicant, created.Role)
	require.Equal(t, usermodel.StatusActive, created.Status)
	require.NotEqual(t, "s3cret-pass", created.Password)

	token, u, err := svc.Login(ctx, authtypes.LoginRequest{Email: "nimal@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.Equal(t, created.ID, u.ID)
	require.NotEmpty(t, token)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupRequest("nimal@example.com"))
	require.NoError(t, err)

	_, err = svc.Signup(ctx, signupRequest("NIMAL@example.com"))
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))
	require.Equal(t, "Email already registered", apperror.Message(err))
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupRequest("nimal@example.com"))
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, authtypes.LoginRequest{Email: "nimal@example.com", Password: "wrong"})
	require.Equal(t, "Invalid email or password", apperror.Message(err))

	// An unknown account reads the same as a bad password.
	_, _, err = svc.Login(ctx, authtypes.LoginRequest{Email: "nobody@example.com", Password: "wrong"})
	require.Equal(t, "Invalid email or password", apperror.Message(err))
}

func TestLoginBlocksInactiveAccounts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Signup(ctx, signupRequest("nimal@example.com"))
	require.NoError(t, err)

	adminID := created.ID + 100
	adminCaller := usermodel.Identity{UserID: adminID, Role: usermodel.RoleAdmin}
	_, err = svc.ChangeStatus(ctx, adminCaller, created.ID, usermodel.StatusInactive)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, authtypes.LoginRequest{Email: "nimal@example.com", Password: "s3cret-pass"})
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))
	require.Equal(t, "Account is inactive", apperror.Message(err))
}

func TestIssuedTokenVerifies(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Signup(context.Background(), signupRequest("nimal@example.com"))
	require.NoError(t, err)

	token, err := IssueToken(created)
	require.NoError(t, err)

	claims, err := middleware.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "nimal@example.com", claims["email"])

	identity, err := middleware.IdentityFromClaims(claims)
	require.NoError(t, err)
	require.Equal(t, created.ID, identity.UserID)
	require.Equal(t, usermodel.RoleApplicant, identity.Role)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Signup(context.Background(), signupRequest("nimal@example.com"))
	require.NoError(t, err)

	token, err := IssueToken(created)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "another-secret")
	_, err = middleware.VerifyToken(token)
	require.Error(t, err)
}

func TestUserAdministrationIsAdminOnly(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Signup(ctx, signupRequest("nimal@example.com"))
	require.NoError(t, err)

	applicantCaller := usermodel.Identity{UserID: created.ID, Role: usermodel.RoleApplicant}
	adminCaller := usermodel.Identity{UserID: created.ID + 100, Role: usermodel.RoleAdmin}

	_, err = svc.FindAll(ctx, applicantCaller)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	users, err := svc.FindAll(ctx, adminCaller)
	require.NoError(t, err)
	require.Len(t, users, 1)

	_, err = svc.ChangeStatus(ctx, adminCaller, created.ID, "SUSPENDED")
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	err = svc.Remove(ctx, adminCaller, adminCaller.UserID)
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	require.NoError(t, svc.Remove(ctx, adminCaller, created.ID))
	_, err = svc.FindByID(ctx, created.ID)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
