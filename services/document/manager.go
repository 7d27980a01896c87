package document

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"passport-apply/apperror"
	"passport-apply/logger"
	"passport-apply/models/document"
	"passport-apply/models/user"
	appservice "passport-apply/services/application"
	"passport-apply/storage"
	"passport-apply/utils"
)

// UploadConfig bounds incoming files and the blob-store retry budget.
type UploadConfig struct {
	MaxFileSize    int64
	AllowedTypes   []string
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// DefaultUploadConfig returns the production defaults: 5MB ceiling, JPEG/PNG
// only, 3 upload attempts with a doubling backoff.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		MaxFileSize:    5 * 1024 * 1024,
		AllowedTypes:   []string{"image/jpeg", "image/png", "image/jpg"},
		MaxAttempts:    3,
		RetryBaseDelay: 100 * time.Millisecond,
	}
}

// UploadConfigFromEnv reads MAX_FILE_SIZE and ALLOWED_FILE_TYPES, falling
// back to the defaults.
func UploadConfigFromEnv() UploadConfig {
	cfg := DefaultUploadConfig()
	if raw := os.Getenv("MAX_FILE_SIZE"); raw != "" {
		if size, err := strconv.ParseInt(raw, 10, 64); err == nil && size > 0 {
			cfg.MaxFileSize = size
		}
	}
	if raw := os.Getenv("ALLOWED_FILE_TYPES"); raw != "" {
		cfg.AllowedTypes = strings.Split(raw, ",")
	}
	return cfg
}

// AttachResult reports where an uploaded document landed.
type AttachResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Manager coordinates the upload-then-associate flow for application
// documents: validate, normalize, upload with retry, sign a retrieval URL and
// record it on the aggregate. A failed association always deletes the blob it
// just uploaded.
type Manager struct {
	apps  appservice.Store
	blobs storage.Storage
	locks *utils.KeyedMutex
	cfg   UploadConfig
}

// NewManager creates a document manager. The keyed mutex is shared with the
// transition engine so attach/remove on one aggregate never interleave with
// other writers.
func NewManager(apps appservice.Store, blobs storage.Storage, locks *utils.KeyedMutex, cfg UploadConfig) *Manager {
	return &Manager{apps: apps, blobs: blobs, locks: locks, cfg: cfg}
}

// ValidateFile enforces the size ceiling and allowed content types. It runs
// before any storage I/O.
func (m *Manager) ValidateFile(size int64, contentType string) error {
	if size > m.cfg.MaxFileSize {
		return apperror.Newf(apperror.KindValidation,
			"File size exceeds %dMB limit", m.cfg.MaxFileSize/1024/1024)
	}
	for _, allowed := range m.cfg.AllowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return apperror.Newf(apperror.KindValidation,
		"Invalid file type. Allowed types: %s", strings.Join(m.cfg.AllowedTypes, ", "))
}

// FileKey derives the storage key for one upload. The timestamp qualifier
// makes repeated uploads distinct without any de-duplication.
func FileKey(ownerID uint, docType document.Type) string {
	return fmt.Sprintf("documents/%d/%s-%d", ownerID, docType, time.Now().UnixMilli())
}

// Attach runs the full attachment flow for one application document and
// returns the storage key plus a 7-day retrieval URL.
// The elevated flag lets an administrator mutate an aggregate they do not
// own; without it even admins are held to the ownership rule.
func (m *Manager) Attach(ctx context.Context, caller user.Identity, elevated bool, applicationID uint, docType document.Type, data []byte, contentType string) (*AttachResult, error) {
	if !docType.IsApplicationType() {
		return nil, apperror.Newf(apperror.KindBadRequest, "Invalid document type %q", docType)
	}
	if err := m.ValidateFile(int64(len(data)), contentType); err != nil {
		return nil, err
	}

	processed, err := ProcessImage(data)
	if err != nil {
		return nil, err
	}

	key := FileKey(caller.UserID, docType)
	if err := UploadWithRetry(ctx, m.blobs, key, processed, "image/jpeg", m.cfg.MaxAttempts, m.cfg.RetryBaseDelay); err != nil {
		return nil, err
	}

	url, err := m.blobs.SignedURL(ctx, key, storage.OperationRead, storage.ApplicationURLTTL)
	if err != nil {
		m.cleanup(ctx, key)
		return nil, apperror.Wrap(apperror.KindStorage, "Failed to generate retrieval URL", err)
	}

	if err := m.associate(ctx, caller, elevated, applicationID, docType, key, url); err != nil {
		// Never leave an orphaned blob behind a failed association.
		m.cleanup(ctx, key)
		return nil, err
	}

	logger.Success(fmt.Sprintf("Document %s attached to application %d as %s", docType, applicationID, key))
	return &AttachResult{Key: key, URL: url}, nil
}

// associate records the key/URL on the aggregate's slot, merging with sibling
// slots rather than replacing the group.
func (m *Manager) associate(ctx context.Context, caller user.Identity, elevated bool, applicationID uint, docType document.Type, key, url string) error {
	m.locks.Lock(applicationID)
	defer m.locks.Unlock(applicationID)

	app, err := m.apps.Load(ctx, applicationID)
	if err != nil {
		return err
	}
	if err := m.checkMutationAccess(caller, elevated, app.SubmittedByID); err != nil {
		return err
	}
	if !app.SetDocumentSlot(docType, key, url) {
		return apperror.Newf(apperror.KindBadRequest, "Invalid document type %q", docType)
	}
	_, err = m.apps.Save(ctx, app)
	return err
}

// Remove mirrors Attach: delete the blob first, then clear the slot.
func (m *Manager) Remove(ctx context.Context, caller user.Identity, elevated bool, applicationID uint, docType document.Type) error {
	if !docType.IsApplicationType() {
		return apperror.Newf(apperror.KindBadRequest, "Invalid document type %q", docType)
	}

	m.locks.Lock(applicationID)
	defer m.locks.Unlock(applicationID)

	app, err := m.apps.Load(ctx, applicationID)
	if err != nil {
		return err
	}
	if err := m.checkMutationAccess(caller, elevated, app.SubmittedByID); err != nil {
		return err
	}

	key, _, _ := app.DocumentSlot(docType)
	if key == "" {
		return apperror.Newf(apperror.KindNotFound, "Document of type %s not found", docType)
	}

	if err := m.blobs.Delete(ctx, key); err != nil {
		return apperror.Wrap(apperror.KindStorage, "Failed to delete document", err)
	}

	app.ClearDocumentSlot(docType)
	_, err = m.apps.Save(ctx, app)
	return err
}

// URL returns a fresh 7-day retrieval URL for an attached document. Staff may
// read any application's documents; applicants only their own.
func (m *Manager) URL(ctx context.Context, caller user.Identity, applicationID uint, docType document.Type) (string, error) {
	app, err := m.apps.Load(ctx, applicationID)
	if err != nil {
		if !caller.IsStaff() && apperror.IsKind(err, apperror.KindNotFound) {
			return "", errDocumentAccessDenied()
		}
		return "", err
	}
	if !caller.IsStaff() && app.SubmittedByID != caller.UserID {
		return "", errDocumentAccessDenied()
	}

	key, _, ok := app.DocumentSlot(docType)
	if !ok {
		return "", apperror.Newf(apperror.KindBadRequest, "Invalid document type %q", docType)
	}
	if key == "" {
		return "", apperror.Newf(apperror.KindNotFound, "Document of type %s not found", docType)
	}
	return m.blobs.SignedURL(ctx, key, storage.OperationRead, storage.ApplicationURLTTL)
}

// checkMutationAccess enforces the ownership rule for mutation: only the
// owner writes. Admins bypass ownership for reads but must not silently
// mutate another user's aggregate; they have to ask for elevation.
func (m *Manager) checkMutationAccess(caller user.Identity, elevated bool, ownerID uint) error {
	if caller.UserID == ownerID {
		return nil
	}
	if caller.IsAdmin() && elevated {
		return nil
	}
	return errDocumentAccessDenied()
}

// cleanup deletes one uploaded blob, best effort. A failed cleanup is logged
// and not surfaced; the original error matters more to the caller.
func (m *Manager) cleanup(ctx context.Context, key string) {
	if err := m.blobs.Delete(ctx, key); err != nil {
		logger.Error(fmt.Sprintf("Failed to clean up uploaded blob %s", key), err)
	}
}

// CleanupUploads deletes every key uploaded during a failed multi-file
// operation. Individual delete failures log and continue so one bad key does
// not abort the batch.
func CleanupUploads(ctx context.Context, blobs storage.Storage, keys []string) {
	for _, key := range keys {
		if err := blobs.Delete(ctx, key); err != nil {
			logger.Error(fmt.Sprintf("Failed to clean up uploaded blob %s", key), err)
		}
	}
}

// UploadWithRetry uploads one blob with a bounded retry budget and
// exponential backoff, doubling the delay after each failed attempt.
func UploadWithRetry(ctx context.Context, blobs storage.Storage, key string, data []byte, contentType string, maxAttempts int, baseDelay time.Duration) error {
	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = blobs.Put(ctx, key, data, contentType)
		if lastErr == nil {
			return nil
		}
		logger.Warning(fmt.Sprintf("Upload attempt %d/%d for %s failed: %v", attempt, maxAttempts, key, lastErr))
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return apperror.Wrap(apperror.KindStorage, "Upload cancelled", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return apperror.Wrap(apperror.KindStorage, "Failed to upload document", lastErr)
}

func errDocumentAccessDenied() error {
	return apperror.New(apperror.KindForbidden, "You do not have access to this document")
}
