package renewal

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"passport-apply/apperror"
	"passport-apply/models/document"
	renewmodel "passport-apply/models/renewal"
	"passport-apply/models/user"
	docservice "passport-apply/services/document"
	"passport-apply/storage"
	renewtypes "passport-apply/types/renewal"
	"passport-apply/utils"
)

var (
	requester = user.Identity{UserID: 1, Role: user.RoleApplicant}
	outsider  = user.Identity{UserID: 2, Role: user.RoleApplicant}
	officer   = user.Identity{UserID: 10, Role: user.RoleManager}
	superuser = user.Identity{UserID: 11, Role: user.RoleAdmin}
)

func setEncryptionKey(t *testing.T) {
	t.Helper()
	t.Setenv("ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("k"), 32)))
}

func newTestService(t *testing.T) (*Service, *storage.Memory) {
	t.Helper()
	setEncryptionKey(t)
	blobs := storage.NewMemory()
	cfg := docservice.DefaultUploadConfig()
	cfg.RetryBaseDelay = time.Millisecond
	return NewService(NewMemoryStore(), blobs, utils.NewKeyedMutex(), cfg), blobs
}

func createRequest() renewtypes.CreateRenewalRequest {
	return renewtypes.CreateRenewalRequest{
		FullName:                  "Nimal Perera",
		DateOfBirth:               time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC),
		NICNumber:                 "902345678V",
		CurrentPassportNumber:     "N1234567",
		CurrentPassportExpiryDate: time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
		Address:                   "12 Temple Road, Colombo 05",
		ContactNumber:             "+94771234567",
		Email:                     "nimal@example.com",
	}
}

func TestCreateEncryptsNIC(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), requester, createRequest())
	require.NoError(t, err)
	require.Equal(t, renewmodel.StatusPending, created.Status)
	require.Equal(t, requester.UserID, created.UserID)
	require.NotEqual(t, "902345678V", created.NICNumberEncrypted)

	plain, err := utils.DecryptData(created.NICNumberEncrypted)
	require.NoError(t, err)
	require.Equal(t, "902345678V", plain)
}

func TestFindAllStaffOnlyWithStatusFilter(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), requester, createRequest())
	require.NoError(t, err)

	_, err = svc.FindAll(context.Background(), requester, "")
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = svc.FindAll(context.Background(), officer, "NONSENSE")
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	pending, err := svc.FindAll(context.Background(), officer, renewmodel.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	verified, err := svc.FindAll(context.Background(), officer, renewmodel.StatusVerified)
	require.NoError(t, err)
	require.Empty(t, verified)
}

func TestFindOneHidesForeignRequests(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), requester, createRequest())
	require.NoError(t, err)

	_, err = svc.FindOne(context.Background(), outsider, created.ID)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	// A missing id gets the same answer as a foreign one.
	_, err = svc.FindOne(context.Background(), outsider, 999)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = svc.FindOne(context.Background(), officer, 999)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))

	found, err := svc.FindOne(context.Background(), requester, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
}

func TestUpdateStatusStampsVerifier(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), requester, createRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), requester, created.ID, renewtypes.UpdateRenewalStatusRequest{Status: "VERIFIED"})
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	updated, err := svc.UpdateStatus(context.Background(), officer, created.ID, renewtypes.UpdateRenewalStatusRequest{
		Status:       "VERIFIED",
		AdminRemarks: "Checked against registry",
	})
	require.NoError(t, err)
	require.Equal(t, renewmodel.StatusVerified, updated.Status)
	require.Equal(t, "Checked against registry", updated.AdminRemarks)
	require.NotNil(t, updated.VerifiedAt)
	require.Equal(t, "10", updated.VerifiedBy)
}

func TestUploadDocumentMergesAndReplaces(t *testing.T) {
	svc, blobs := newTestService(t)
	created, err := svc.Create(context.Background(), requester, createRequest())
	require.NoError(t, err)

	data := []byte("passport-scan")
	updated, err := svc.UploadDocument(context.Background(), requester, created.ID, document.TypeCurrentPassport, data, "image/jpeg")
	require.NoError(t, err)
	firstKey := updated.Documents[document.TypeCurrentPassport]
	require.NotEmpty(t, firstKey)
	require.True(t, blobs.Has(firstKey))

	updated, err = svc.UploadDocument(context.Background(), requester, created.ID, document.TypePassportPhoto, []byte("photo"), "image/png")
	require.NoError(t, err)
	require.Len(t, updated.Documents, 2)
	require.Equal(t, firstKey, updated.Documents[document.TypeCurrentPassport])

	// FileKey is timestamped; make sure the replacement gets a distinct key.
	time.Sleep(2 * time.Millisecond)
	updated, err = svc.UploadDocument(context.Background(), requester, created.ID, document.TypeCurrentPassport, []byte("rescan"), "image/jpeg")
	require.NoError(t, err)
	replacedKey := updated.Documents[document.TypeCurrentPassport]
	require.NotEqual(t, firstKey, replacedKey)
	require.True(t, blobs.Has(replacedKey))
	require.False(t, blobs.Has(firstKey))
}

func TestUploadDocumentGuards(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), requester, createRequest())
	require.NoError(t, err)

	_, err = svc.UploadDocument(context.Background(), requester, created.ID, document.TypeNICFront, []byte("x"), "image/jpeg")
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	_, err = svc.UploadDocument(context.Background(), requester, created.ID, document.TypeCurrentPassport, []byte("x"), "application/pdf")
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.UploadDocument(context.Background(), outsider, created.ID, document.TypeCurrentPassport, []byte("x"), "image/jpeg")
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	_, err = svc.UpdateStatus(context.Background(), officer, created.ID, renewtypes.UpdateRenewalStatusRequest{Status: "VERIFIED"})
	require.NoError(t, err)
	_, err = svc.UploadDocument(context.Background(), requester, created.ID, document.TypeCurrentPassport, []byte("x"), "image/jpeg")
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))
}

func TestDocumentURLAndDelete(t *testing.T) {
	svc, blobs := newTestService(t)
	created, err := svc.Create(context.Background(), requester, createRequest())
	require.NoError(t, err)

	_, err = svc.DocumentURL(context.Background(), requester, created.ID, document.TypeCurrentPassport)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))

	updated, err := svc.UploadDocument(context.Background(), requester, created.ID, document.TypeCurrentPassport, []byte("scan"), "image/jpeg")
	require.NoError(t, err)
	key := updated.Documents[document.TypeCurrentPassport]

	url, err := svc.DocumentURL(context.Background(), requester, created.ID, document.TypeCurrentPassport)
	require.NoError(t, err)
	require.NotEmpty(t, url)

	_, err = svc.DocumentURL(context.Background(), outsider, created.ID, document.TypeCurrentPassport)
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	staffURL, err := svc.DocumentURL(context.Background(), officer, created.ID, document.TypeCurrentPassport)
	require.NoError(t, err)
	require.NotEmpty(t, staffURL)

	afterDelete, err := svc.DeleteDocument(context.Background(), requester, created.ID, document.TypeCurrentPassport)
	require.NoError(t, err)
	require.Empty(t, afterDelete.Documents[document.TypeCurrentPassport])
	require.False(t, blobs.Has(key))

	_, err = svc.DeleteDocument(context.Background(), requester, created.ID, document.TypeCurrentPassport)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestRemoveIsAdminOnlyAndCleansBlobs(t *testing.T) {
	svc, blobs := newTestService(t)
	created, err := svc.Create(context.Background(), requester, createRequest())
	require.NoError(t, err)

	updated, err := svc.UploadDocument(context.Background(), requester, created.ID, document.TypeCurrentPassport, []byte("scan"), "image/jpeg")
	require.NoError(t, err)
	key := updated.Documents[document.TypeCurrentPassport]

	err = svc.Remove(context.Background(), officer, created.ID)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	require.NoError(t, svc.Remove(context.Background(), superuser, created.ID))
	require.False(t, blobs.Has(key))

	_, err = svc.FindOne(context.Background(), superuser, created.ID)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
