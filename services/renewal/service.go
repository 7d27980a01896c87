package renewal

import (
	"context"
	"fmt"
	"time"

	"passport-apply/apperror"
	"passport-apply/logger"
	"passport-apply/models/document"
	renewmodel "passport-apply/models/renewal"
	"passport-apply/models/user"
	docservice "passport-apply/services/document"
	"passport-apply/storage"
	renewtypes "passport-apply/types/renewal"
	"passport-apply/utils"
)

// Service owns the renewal request lifecycle, including its open-ended
// document map. Documents may only change while the request is PENDING.
type Service struct {
	store Store
	blobs storage.Storage
	locks *utils.KeyedMutex
	cfg   docservice.UploadConfig
}

// NewService creates a renewal service.
func NewService(store Store, blobs storage.Storage, locks *utils.KeyedMutex, cfg docservice.UploadConfig) *Service {
	return &Service{store: store, blobs: blobs, locks: locks, cfg: cfg}
}

// Create persists a new pending renewal. The NIC number is encrypted at rest.
func (s *Service) Create(ctx context.Context, caller user.Identity, req renewtypes.CreateRenewalRequest) (*renewmodel.Renewal, error) {
	encryptedNIC, err := utils.EncryptData(req.NICNumber)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to protect NIC number", err)
	}

	r := &renewmodel.Renewal{
		UserID:                    caller.UserID,
		FullName:                  req.FullName,
		DateOfBirth:               req.DateOfBirth,
		NICNumberEncrypted:        encryptedNIC,
		CurrentPassportNumber:     req.CurrentPassportNumber,
		CurrentPassportExpiryDate: req.CurrentPassportExpiryDate,
		Address:                   req.Address,
		ContactNumber:             req.ContactNumber,
		Email:                     req.Email,
		Documents:                 renewmodel.DocumentMap{},
		Status:                    renewmodel.StatusPending,
	}

	created, err := s.store.Save(ctx, r)
	if err != nil {
		return nil, err
	}
	logger.Success(fmt.Sprintf("Renewal request %d created by user %d", created.ID, caller.UserID))
	return created, nil
}

// FindAll lists renewals, optionally filtered by status. Staff only.
func (s *Service) FindAll(ctx context.Context, caller user.Identity, status renewmodel.RenewalStatus) ([]renewmodel.Renewal, error) {
	if !caller.IsStaff() {
		return nil, errRenewalAccessDenied()
	}
	if status != "" && !status.IsValid() {
		return nil, apperror.Newf(apperror.KindBadRequest, "unknown renewal status %q", status)
	}
	return s.store.List(ctx, status)
}

// FindAllByUser lists the caller's own renewals.
func (s *Service) FindAllByUser(ctx context.Context, caller user.Identity) ([]renewmodel.Renewal, error) {
	return s.store.ListByUser(ctx, caller.UserID)
}

// FindOne returns one renewal. Staff may read any; applicants only their own,
// without revealing whether a foreign id exists.
func (s *Service) FindOne(ctx context.Context, caller user.Identity, id uint) (*renewmodel.Renewal, error) {
	r, err := s.store.Load(ctx, id)
	if err != nil {
		if !caller.IsStaff() && apperror.IsKind(err, apperror.KindNotFound) {
			return nil, errRenewalAccessDenied()
		}
		return nil, err
	}
	if !caller.IsStaff() && r.UserID != caller.UserID {
		return nil, errRenewalAccessDenied()
	}
	return r, nil
}

// UpdateStatus moves a renewal to PENDING, VERIFIED or REJECTED. Staff only.
// Verification stamps the verifier and time.
func (s *Service) UpdateStatus(ctx context.Context, caller user.Identity, id uint, req renewtypes.UpdateRenewalStatusRequest) (*renewmodel.Renewal, error) {
	if !caller.IsStaff() {
		return nil, errRenewalAccessDenied()
	}

	status := renewmodel.RenewalStatus(req.Status)
	if !status.IsValid() {
		return nil, apperror.Newf(apperror.KindBadRequest, "unknown renewal status %q", req.Status)
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	r, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	r.Status = status
	r.AdminRemarks = req.AdminRemarks
	if status == renewmodel.StatusVerified {
		now := time.Now()
		r.VerifiedAt = &now
		r.VerifiedBy = fmt.Sprintf("%d", caller.UserID)
	}

	return s.store.Save(ctx, r)
}

// UploadDocument validates and uploads one renewal document and merges its
// storage key into the documents map. Owner only, PENDING only.
func (s *Service) UploadDocument(ctx context.Context, caller user.Identity, id uint, docType document.Type, data []byte, contentType string) (*renewmodel.Renewal, error) {
	if !docType.IsRenewalType() {
		return nil, apperror.Newf(apperror.KindBadRequest, "Invalid document type %q", docType)
	}
	if err := s.validateFile(int64(len(data)), contentType); err != nil {
		return nil, err
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	r, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != caller.UserID {
		return nil, apperror.New(apperror.KindBadRequest, "You can only upload documents to your own requests")
	}
	if !r.IsMutable() {
		return nil, apperror.New(apperror.KindBadRequest, "Cannot upload documents to non-pending requests")
	}

	key := docservice.FileKey(caller.UserID, docType)
	if err := docservice.UploadWithRetry(ctx, s.blobs, key, data, contentType, s.cfg.MaxAttempts, s.cfg.RetryBaseDelay); err != nil {
		return nil, err
	}

	// Replacing a document type leaves the previous blob unreferenced; drop it.
	previous := r.Documents[docType]

	if r.Documents == nil {
		r.Documents = renewmodel.DocumentMap{}
	}
	r.Documents[docType] = key

	updated, err := s.store.Save(ctx, r)
	if err != nil {
		// Failed association must not leave the fresh blob orphaned.
		if cleanupErr := s.blobs.Delete(ctx, key); cleanupErr != nil {
			logger.Error(fmt.Sprintf("Failed to clean up uploaded blob %s", key), cleanupErr)
		}
		return nil, err
	}

	if previous != "" && previous != key {
		if err := s.blobs.Delete(ctx, previous); err != nil {
			logger.Error(fmt.Sprintf("Failed to delete replaced blob %s", previous), err)
		}
	}
	return updated, nil
}

// DocumentURL returns a short-lived retrieval URL for one renewal document.
func (s *Service) DocumentURL(ctx context.Context, caller user.Identity, id uint, docType document.Type) (string, error) {
	r, err := s.store.Load(ctx, id)
	if err != nil {
		return "", err
	}
	if !caller.IsStaff() && r.UserID != caller.UserID {
		return "", apperror.New(apperror.KindBadRequest, "You can only access documents from your own requests")
	}

	key := r.Documents[docType]
	if key == "" {
		return "", apperror.Newf(apperror.KindNotFound, "Document of type %s not found", docType)
	}
	return s.blobs.SignedURL(ctx, key, storage.OperationRead, storage.RenewalURLTTL)
}

// DeleteDocument removes one renewal document: blob first, then the map key.
// Owner only, PENDING only.
func (s *Service) DeleteDocument(ctx context.Context, caller user.Identity, id uint, docType document.Type) (*renewmodel.Renewal, error) {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	r, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != caller.UserID {
		return nil, apperror.New(apperror.KindBadRequest, "You can only delete documents from your own requests")
	}
	if !r.IsMutable() {
		return nil, apperror.New(apperror.KindBadRequest, "Cannot delete documents from non-pending requests")
	}

	key := r.Documents[docType]
	if key == "" {
		return nil, apperror.Newf(apperror.KindNotFound, "Document of type %s not found", docType)
	}

	if err := s.blobs.Delete(ctx, key); err != nil {
		return nil, apperror.Wrap(apperror.KindStorage, "Failed to delete document", err)
	}

	delete(r.Documents, docType)
	return s.store.Save(ctx, r)
}

// Remove hard-deletes a renewal and, best effort, its stored blobs.
func (s *Service) Remove(ctx context.Context, caller user.Identity, id uint) error {
	if !caller.IsAdmin() {
		return errRenewalAccessDenied()
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	r, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(r.Documents))
	for _, key := range r.Documents {
		keys = append(keys, key)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	docservice.CleanupUploads(ctx, s.blobs, keys)
	return nil
}

func (s *Service) validateFile(size int64, contentType string) error {
	if size > s.cfg.MaxFileSize {
		return apperror.Newf(apperror.KindValidation,
			"File size exceeds %dMB limit", s.cfg.MaxFileSize/1024/1024)
	}
	for _, allowed := range s.cfg.AllowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return apperror.Newf(apperror.KindValidation, "Invalid file type")
}

func errRenewalAccessDenied() error {
	return apperror.New(apperror.KindForbidden, "You do not have access to this renewal request")
}
