package document

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"passport-apply/apperror"
	appmodel "passport-apply/models/application"
	"passport-apply/models/document"
	"passport-apply/models/user"
	appservice "passport-apply/services/application"
	"passport-apply/storage"
	"passport-apply/utils"
)

var (
	owner    = user.Identity{UserID: 1, Role: user.RoleApplicant}
	stranger = user.Identity{UserID: 2, Role: user.RoleApplicant}
	sysadmin = user.Identity{UserID: 11, Role: user.RoleAdmin}
)

func testUploadConfig() UploadConfig {
	cfg := DefaultUploadConfig()
	cfg.RetryBaseDelay = time.Millisecond
	return cfg
}

func newTestManager(t *testing.T) (*Manager, *appservice.MemoryStore, *storage.Memory) {
	t.Helper()
	apps := appservice.NewMemoryStore()
	blobs := storage.NewMemory()
	return NewManager(apps, blobs, utils.NewKeyedMutex(), testUploadConfig()), apps, blobs
}

func seedApplication(t *testing.T, apps *appservice.MemoryStore, ownerID uint) uint {
	t.Helper()
	app := &appmodel.Application{SubmittedByID: ownerID}
	app.SeedOnSubmit(time.Now())
	saved, err := apps.Save(context.Background(), app)
	require.NoError(t, err)
	return saved.ID
}

func jpegFixture(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestAttachStoresBlobAndFillsSlot(t *testing.T) {
	mgr, apps, blobs := newTestManager(t)
	appID := seedApplication(t, apps, owner.UserID)
	data := jpegFixture(t, 40, 40)

	result, err := mgr.Attach(context.Background(), owner, false, appID, document.TypeNICFront, data, "image/jpeg")
	require.NoError(t, err)
	require.NotEmpty(t, result.Key)
	require.NotEmpty(t, result.URL)
	require.True(t, blobs.Has(result.Key))

	app, err := apps.Load(context.Background(), appID)
	require.NoError(t, err)
	key, url, ok := app.DocumentSlot(document.TypeNICFront)
	require.True(t, ok)
	require.Equal(t, result.Key, key)
	require.Equal(t, result.URL, url)
}

func TestAttachMergesSiblingSlots(t *testing.T) {
	mgr, apps, _ := newTestManager(t)
	appID := seedApplication(t, apps, owner.UserID)
	data := jpegFixture(t, 40, 40)

	front, err := mgr.Attach(context.Background(), owner, false, appID, document.TypeNICFront, data, "image/jpeg")
	require.NoError(t, err)
	back, err := mgr.Attach(context.Background(), owner, false, appID, document.TypeNICBack, data, "image/jpeg")
	require.NoError(t, err)

	app, err := apps.Load(context.Background(), appID)
	require.NoError(t, err)
	frontKey, _, _ := app.DocumentSlot(document.TypeNICFront)
	backKey, _, _ := app.DocumentSlot(document.TypeNICBack)
	require.Equal(t, front.Key, frontKey)
	require.Equal(t, back.Key, backKey)
}

func TestReattachReplacesOnlyOneSlot(t *testing.T) {
	mgr, apps, _ := newTestManager(t)
	appID := seedApplication(t, apps, owner.UserID)
	data := jpegFixture(t, 40, 40)

	_, err := mgr.Attach(context.Background(), owner, false, appID, document.TypeNICFront, data, "image/jpeg")
	require.NoError(t, err)
	back, err := mgr.Attach(context.Background(), owner, false, appID, document.TypeNICBack, data, "image/jpeg")
	require.NoError(t, err)

	replacement, err := mgr.Attach(context.Background(), owner, false, appID, document.TypeNICFront, data, "image/jpeg")
	require.NoError(t, err)

	app, err := apps.Load(context.Background(), appID)
	require.NoError(t, err)
	frontKey, _, _ := app.DocumentSlot(document.TypeNICFront)
	backKey, _, _ := app.DocumentSlot(document.TypeNICBack)
	require.Equal(t, replacement.Key, frontKey)
	require.Equal(t, back.Key, backKey)
}

func TestAttachRollsBackBlobOnFailedAssociation(t *testing.T) {
	mgr, apps, blobs := newTestManager(t)
	appID := seedApplication(t, apps, owner.UserID)
	data := jpegFixture(t, 40, 40)

	_, err := mgr.Attach(context.Background(), stranger, false, appID, document.TypeNICFront, data, "image/jpeg")
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))
	require.Equal(t, 0, blobs.Len())

	_, err = mgr.Attach(context.Background(), owner, false, 999, document.TypeNICFront, data, "image/jpeg")
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
	require.Equal(t, 0, blobs.Len())
}

func TestAttachRetriesTransientUploadFailures(t *testing.T) {
	mgr, apps, blobs := newTestManager(t)
	appID := seedApplication(t, apps, owner.UserID)
	data := jpegFixture(t, 40, 40)

	blobs.FailNextPuts(1)
	result, err := mgr.Attach(context.Background(), owner, false, appID, document.TypeNICFront, data, "image/jpeg")
	require.NoError(t, err)
	require.True(t, blobs.Has(result.Key))
	require.Equal(t, 2, blobs.PutCalls())
}

func TestAttachFailsAfterRetryBudgetExhausted(t *testing.T) {
	mgr, apps, blobs := newTestManager(t)
	appID := seedApplication(t, apps, owner.UserID)
	data := jpegFixture(t, 40, 40)

	blobs.FailNextPuts(3)
	_, err := mgr.Attach(context.Background(), owner, false, appID, document.TypeNICFront, data, "image/jpeg")
	require.True(t, apperror.IsKind(err, apperror.KindStorage))
	require.Equal(t, 3, blobs.PutCalls())
	require.Equal(t, 0, blobs.Len())
}

func TestAttachRejectsInvalidInput(t *testing.T) {
	mgr, apps, _ := newTestManager(t)
	appID := seedApplication(t, apps, owner.UserID)

	_, err := mgr.Attach(context.Background(), owner, false, appID, document.TypeCurrentPassport, jpegFixture(t, 10, 10), "image/jpeg")
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	oversized := make([]byte, 6*1024*1024)
	_, err = mgr.Attach(context.Background(), owner, false, appID, document.TypeNICFront, oversized, "image/jpeg")
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = mgr.Attach(context.Background(), owner, false, appID, document.TypeNICFront, []byte("plain text"), "text/plain")
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = mgr.Attach(context.Background(), owner, false, appID, document.TypeNICFront, []byte("not an image"), "image/jpeg")
	require.True(t, apperror.IsKind(err, apperror.KindProcessing))
}

func TestAdminMutationRequiresElevation(t *testing.T) {
	mgr, apps, blobs := newTestManager(t)
	appID := seedApplication(t, apps, owner.UserID)
	data := jpegFixture(t, 40, 40)

	_, err := mgr.Attach(context.Background(), sysadmin, false, appID, document.TypeNICFront, data, "image/jpeg")
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))
	require.Equal(t, 0, blobs.Len())

	result, err := mgr.Attach(context.Background(), sysadmin, true, appID, document.TypeNICFront, data, "image/jpeg")
	require.NoError(t, err)
	require.True(t, blobs.Has(result.Key))
}

func TestRemoveDeletesBlobAndClearsSlot(t *testing.T) {
	mgr, apps, blobs := newTestManager(t)
	appID := seedApplication(t, apps, owner.UserID)
	data := jpegFixture(t, 40, 40)

	result, err := mgr.Attach(context.Background(), owner, false, appID, document.TypeNICFront, data, "image/jpeg")
	require.NoError(t, err)

	url, err := mgr.URL(context.Background(), owner, appID, document.TypeNICFront)
	require.NoError(t, err)
	require.NotEmpty(t, url)

	require.NoError(t, mgr.Remove(context.Background(), owner, false, appID, document.TypeNICFront))
	require.False(t, blobs.Has(result.Key))

	_, err = mgr.URL(context.Background(), owner, appID, document.TypeNICFront)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))

	err = mgr.Remove(context.Background(), owner, false, appID, document.TypeNICFront)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestURLAccessRules(t *testing.T) {
	mgr, apps, _ := newTestManager(t)
	appID := seedApplication(t, apps, owner.UserID)
	data := jpegFixture(t, 40, 40)

	_, err := mgr.Attach(context.Background(), owner, false, appID, document.TypeNICFront, data, "image/jpeg")
	require.NoError(t, err)

	_, err = mgr.URL(context.Background(), stranger, appID, document.TypeNICFront)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	// A missing aggregate looks identical to a foreign one for applicants.
	_, err = mgr.URL(context.Background(), stranger, 999, document.TypeNICFront)
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	url, err := mgr.URL(context.Background(), sysadmin, appID, document.TypeNICFront)
	require.NoError(t, err)
	require.NotEmpty(t, url)
}
