package application

import (
	"context"
	"fmt"
	"time"

	"passport-apply/apperror"
	"passport-apply/logger"
	appmodel "passport-apply/models/application"
	"passport-apply/models/document"
	"passport-apply/models/user"
	apptypes "passport-apply/types/application"
	"passport-apply/utils"
)

// Service owns the application aggregate lifecycle outside of status changes:
// creation, reads, authorized field updates, document verification and
// removal. Status itself is only writable through the transition engine.
type Service struct {
	store Store
	locks *utils.KeyedMutex
}

// NewService creates an application service. The keyed mutex is shared with
// the transition engine and document manager.
func NewService(store Store, locks *utils.KeyedMutex) *Service {
	return &Service{store: store, locks: locks}
}

// Store exposes the underlying store for collaborating services.
func (s *Service) Store() Store {
	return s.store
}

// Create persists a new application seeded with SUBMITTED status, one history
// entry and the default verification records.
func (s *Service) Create(ctx context.Context, caller user.Identity, req apptypes.CreateApplicationRequest) (*appmodel.Application, error) {
	app := &appmodel.Application{
		TypeOfService:              req.TypeOfService,
		TypeOfTravelDocument:       req.TypeOfTravelDocument,
		PresentTravelDocument:      req.PresentTravelDocument,
		NMRPNumber:                 req.NMRPNumber,
		NationalIdentityCardNumber: req.NationalIdentityCardNumber,
		Surname:                    req.Surname,
		OtherNames:                 req.OtherNames,
		PermanentAddress:           req.PermanentAddress,
		PermanentAddressDistrict:   req.PermanentAddressDistrict,
		Birthdate:                  req.Birthdate,
		BirthCertificateNumber:     req.BirthCertificateNumber,
		BirthCertificateDistrict:   req.BirthCertificateDistrict,
		PlaceOfBirth:               req.PlaceOfBirth,
		Sex:                        req.Sex,
		Profession:                 req.Profession,
		IsDualCitizen:              req.IsDualCitizen,
		DualCitizenshipNumber:      req.DualCitizenshipNumber,
		ForeignNationality:         req.ForeignNationality,
		ForeignPassportNumber:      req.ForeignPassportNumber,
		IsChild:                    req.IsChild,
		ChildFatherPassportNumber:  req.ChildFatherPassportNumber,
		ChildMotherPassportNumber:  req.ChildMotherPassportNumber,
		MobileNumber:               req.MobileNumber,
		EmailAddress:               req.EmailAddress,
		CollectionLocation:         req.CollectionLocation,
		BiometricAppointmentDate:   req.BiometricAppointmentDate,
		BiometricAppointmentTime:   req.BiometricAppointmentTime,
		PaymentAmount:              req.PaymentAmount,
		PaymentReference:           req.PaymentReference,
		StudioPhotoURL:             req.StudioPhotoURL,
		SubmittedByID:              caller.UserID,
	}

	for _, dv := range req.DocumentVerification {
		app.DocumentVerification = append(app.DocumentVerification, appmodel.VerificationRecord{
			DocumentType: dv.DocumentType,
			Verified:     dv.Verified,
		})
	}

	app.SeedOnSubmit(time.Now())

	created, err := s.store.Save(ctx, app)
	if err != nil {
		return nil, err
	}

	logger.Success(fmt.Sprintf("Application %d submitted by user %d", created.ID, caller.UserID))
	return created, nil
}

// FindAll returns every application. Staff only.
func (s *Service) FindAll(ctx context.Context, caller user.Identity) ([]appmodel.Application, error) {
	if !caller.IsStaff() {
		return nil, errAccessDenied()
	}
	return s.store.List(ctx)
}

// FindByUser returns the caller's own applications.
func (s *Service) FindByUser(ctx context.Context, caller user.Identity) ([]appmodel.Application, error) {
	return s.store.ListByUser(ctx, caller.UserID)
}

// FindOne returns one application. Staff may read any; applicants only their
// own. Access failures do not reveal whether the aggregate exists.
func (s *Service) FindOne(ctx context.Context, caller user.Identity, id uint) (*appmodel.Application, error) {
	app, err := s.store.Load(ctx, id)
	if err != nil {
		if !caller.IsStaff() && apperror.IsKind(err, apperror.KindNotFound) {
			return nil, errAccessDenied()
		}
		return nil, err
	}
	if !caller.IsStaff() && app.SubmittedByID != caller.UserID {
		return nil, errAccessDenied()
	}
	return app, nil
}

// Update applies an authorized field update. Staff only; identity fields and
// status are not updatable through this path.
func (s *Service) Update(ctx context.Context, caller user.Identity, id uint, req apptypes.UpdateApplicationRequest) (*appmodel.Application, error) {
	if !caller.IsStaff() {
		return nil, errAccessDenied()
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	app, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PermanentAddress != nil {
		app.PermanentAddress = *req.PermanentAddress
	}
	if req.PermanentAddressDistrict != nil {
		app.PermanentAddressDistrict = *req.PermanentAddressDistrict
	}
	if req.MobileNumber != nil {
		app.MobileNumber = *req.MobileNumber
	}
	if req.EmailAddress != nil {
		app.EmailAddress = *req.EmailAddress
	}
	if req.Profession != nil {
		app.Profession = *req.Profession
	}
	if req.CollectionLocation != nil {
		app.CollectionLocation = *req.CollectionLocation
	}
	if req.BiometricAppointmentDate != nil {
		app.BiometricAppointmentDate = *req.BiometricAppointmentDate
	}
	if req.BiometricAppointmentTime != nil {
		app.BiometricAppointmentTime = *req.BiometricAppointmentTime
	}
	if req.PhotoVerified != nil {
		app.PhotoVerified = *req.PhotoVerified
	}
	if req.FingerprintVerified != nil {
		app.FingerprintVerified = *req.FingerprintVerified
	}
	if req.CounterNumber != nil {
		app.CounterNumber = *req.CounterNumber
	}
	if req.PaymentAmount != nil {
		app.PaymentAmount = *req.PaymentAmount
	}
	if req.PaymentReference != nil {
		app.PaymentReference = *req.PaymentReference
	}

	return s.store.Save(ctx, app)
}

// VerifyDocument marks one seeded verification record as confirmed.
// Verification records are created at submission, never on demand; a missing
// record is a BadRequest. Re-verifying is allowed and re-stamps the date.
func (s *Service) VerifyDocument(ctx context.Context, caller user.Identity, id uint, documentType string) (*appmodel.Application, error) {
	if !caller.IsStaff() {
		return nil, errAccessDenied()
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	app, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	record := app.DocumentVerification.Find(document.VerificationType(documentType))
	if record == nil {
		return nil, apperror.New(apperror.KindBadRequest, "Document type not found")
	}

	now := time.Now()
	record.Verified = true
	record.VerificationDate = &now

	updated, err := s.store.Save(ctx, app)
	if err != nil {
		return nil, err
	}

	logger.Success(fmt.Sprintf("Document %s verified on application %d", documentType, id))
	return updated, nil
}

// Remove hard-deletes an application regardless of its status. Admin only.
func (s *Service) Remove(ctx context.Context, caller user.Identity, id uint) error {
	if !caller.IsAdmin() {
		return errAccessDenied()
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	if _, err := s.store.Load(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// errAccessDenied is the uniform ownership/role failure. The message never
// reveals whether the target exists.
func errAccessDenied() error {
	return apperror.New(apperror.KindForbidden, "You do not have access to this application")
}
