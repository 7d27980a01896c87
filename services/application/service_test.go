package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"passport-apply/apperror"
	appmodel "passport-apply/models/application"
	"passport-apply/models/document"
	"passport-apply/models/user"
	apptypes "passport-apply/types/application"
	"passport-apply/utils"
)

var (
	applicant = user.Identity{UserID: 1, Role: user.RoleApplicant}
	otherUser = user.Identity{UserID: 2, Role: user.RoleApplicant}
	manager   = user.Identity{UserID: 10, Role: user.RoleManager}
	admin     = user.Identity{UserID: 11, Role: user.RoleAdmin}
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewMemoryStore(), utils.NewKeyedMutex())
}

func createRequest() apptypes.CreateApplicationRequest {
	return apptypes.CreateApplicationRequest{
		TypeOfService:              "normal",
		TypeOfTravelDocument:       "all",
		NationalIdentityCardNumber: "902345678V",
		Surname:                    "Perera",
		OtherNames:                 "Nimal",
		PermanentAddress:           "12 Temple Road, Colombo 05",
		PermanentAddressDistrict:   "CMB",
		Birthdate:                  "1990-01-15",
		BirthCertificateNumber:     "BC-556677",
		BirthCertificateDistrict:   "CMB",
		PlaceOfBirth:               "Colombo",
		Sex:                        "male",
		Profession:                 "Engineer",
		MobileNumber:               "+94771234567",
		EmailAddress:               "nimal@example.com",
		CollectionLocation:         "Colombo HQ",
	}
}

func TestCreateSeedsStatusAndVerification(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), applicant, createRequest())
	require.NoError(t, err)
	require.Equal(t, appmodel.StatusSubmitted, created.Status)
	require.Len(t, created.StatusHistory, 1)
	require.Equal(t, "Application submitted", created.StatusHistory[0].Comment)
	require.Equal(t, applicant.UserID, created.SubmittedByID)

	require.Len(t, created.DocumentVerification, 2)
	for _, record := range created.DocumentVerification {
		require.False(t, record.Verified)
		require.Nil(t, record.VerificationDate)
	}
	require.NotNil(t, created.DocumentVerification.Find(document.VerificationNIC))
	require.NotNil(t, created.DocumentVerification.Find(document.VerificationBirthCert))
}

func TestFindAllIsStaffOnly(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Create(context.Background(), applicant, createRequest())
	require.NoError(t, err)

	_, err = svc.FindAll(context.Background(), applicant)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	apps, err := svc.FindAll(context.Background(), manager)
	require.NoError(t, err)
	require.Len(t, apps, 1)
}

func TestFindOneOwnership(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(context.Background(), applicant, createRequest())
	require.NoError(t, err)

	// Owner reads their own.
	got, err := svc.FindOne(context.Background(), applicant, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	// Staff read anything.
	_, err = svc.FindOne(context.Background(), manager, created.ID)
	require.NoError(t, err)

	// A foreign applicant gets the same Forbidden whether the id exists or not.
	_, err = svc.FindOne(context.Background(), otherUser, created.ID)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = svc.FindOne(context.Background(), otherUser, 9999)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	// Staff asking for a missing id get the real NotFound.
	_, err = svc.FindOne(context.Background(), manager, 9999)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestUpdateMergesPointerFields(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(context.Background(), applicant, createRequest())
	require.NoError(t, err)

	mobile := "+94779999999"
	counter := "C-04"
	verified := true
	updated, err := svc.Update(context.Background(), manager, created.ID, apptypes.UpdateApplicationRequest{
		MobileNumber:  &mobile,
		CounterNumber: &counter,
		PhotoVerified: &verified,
	})
	require.NoError(t, err)
	require.Equal(t, mobile, updated.MobileNumber)
	require.Equal(t, counter, updated.CounterNumber)
	require.True(t, updated.PhotoVerified)

	// Untouched fields survive.
	require.Equal(t, "nimal@example.com", updated.EmailAddress)
	require.Equal(t, appmodel.StatusSubmitted, updated.Status)

	_, err = svc.Update(context.Background(), applicant, created.ID, apptypes.UpdateApplicationRequest{})
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))
}

func TestVerifyDocument(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(context.Background(), applicant, createRequest())
	require.NoError(t, err)

	updated, err := svc.VerifyDocument(context.Background(), manager, created.ID, "nic")
	require.NoError(t, err)
	record := updated.DocumentVerification.Find(document.VerificationNIC)
	require.NotNil(t, record)
	require.True(t, record.Verified)
	require.NotNil(t, record.VerificationDate)
	firstStamp := *record.VerificationDate

	// Sibling untouched.
	other := updated.DocumentVerification.Find(document.VerificationBirthCert)
	require.False(t, other.Verified)

	// Re-verification is allowed and re-stamps the date.
	again, err := svc.VerifyDocument(context.Background(), manager, created.ID, "nic")
	require.NoError(t, err)
	record = again.DocumentVerification.Find(document.VerificationNIC)
	require.True(t, record.Verified)
	require.False(t, record.VerificationDate.Before(firstStamp))

	// Unknown record is a BadRequest, not silent creation.
	_, err = svc.VerifyDocument(context.Background(), manager, created.ID, "driving_license")
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	// Applicants cannot verify.
	_, err = svc.VerifyDocument(context.Background(), applicant, created.ID, "nic")
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))
}

func TestRemoveIsAdminOnly(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(context.Background(), applicant, createRequest())
	require.NoError(t, err)

	err = svc.Remove(context.Background(), manager, created.ID)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	err = svc.Remove(context.Background(), admin, created.ID)
	require.NoError(t, err)

	_, err = svc.FindOne(context.Background(), admin, created.ID)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestFindByUserFiltersOwnership(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Create(context.Background(), applicant, createRequest())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), otherUser, createRequest())
	require.NoError(t, err)

	mine, err := svc.FindByUser(context.Background(), applicant)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, applicant.UserID, mine[0].SubmittedByID)
}
