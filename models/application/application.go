package application

import (
	"time"

	"passport-apply/models/document"
	"passport-apply/models/user"
)

// Application is one passport/travel-document request aggregate.
type Application struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	TypeOfService        string `gorm:"type:varchar(20);not null" json:"type_of_service"`          // normal, oneDay
	TypeOfTravelDocument string `gorm:"type:varchar(50);not null" json:"type_of_travel_document"`  // all, middleEast, emergencyCertificate, identityCertificate
	PresentTravelDocument string `gorm:"type:varchar(100)" json:"present_travel_document,omitempty"` // set when renewing an existing document
	NMRPNumber           string `gorm:"type:varchar(100)" json:"nmrp_number,omitempty"`

	NationalIdentityCardNumber string `gorm:"type:varchar(50);not null" json:"national_identity_card_number"`
	Surname                    string `gorm:"type:varchar(255);not null" json:"surname"`
	OtherNames                 string `gorm:"type:varchar(255);not null" json:"other_names"`
	PermanentAddress           string `gorm:"type:text;not null" json:"permanent_address"`
	PermanentAddressDistrict   string `gorm:"type:varchar(100);not null" json:"permanent_address_district"`
	Birthdate                  string `gorm:"type:varchar(20);not null" json:"birthdate"`
	BirthCertificateNumber     string `gorm:"type:varchar(100);not null" json:"birth_certificate_number"`
	BirthCertificateDistrict   string `gorm:"type:varchar(100);not null" json:"birth_certificate_district"`
	PlaceOfBirth               string `gorm:"type:varchar(255);not null" json:"place_of_birth"`
	Sex                        string `gorm:"type:varchar(10);not null" json:"sex"`
	Profession                 string `gorm:"type:varchar(255);not null" json:"profession"`

	IsDualCitizen         bool   `gorm:"default:false" json:"is_dual_citizen"`
	DualCitizenshipNumber string `gorm:"type:varchar(100)" json:"dual_citizenship_number,omitempty"`
	ForeignNationality    string `gorm:"type:varchar(100)" json:"foreign_nationality,omitempty"`
	ForeignPassportNumber string `gorm:"type:varchar(100)" json:"foreign_passport_number,omitempty"`

	IsChild                   bool   `gorm:"default:false" json:"is_child"`
	ChildFatherPassportNumber string `gorm:"type:varchar(100)" json:"child_father_passport_number,omitempty"`
	ChildMotherPassportNumber string `gorm:"type:varchar(100)" json:"child_mother_passport_number,omitempty"`

	MobileNumber string `gorm:"type:varchar(20);not null" json:"mobile_number"`
	EmailAddress string `gorm:"type:varchar(255);not null" json:"email_address"`

	CollectionLocation       string `gorm:"type:varchar(100);not null" json:"collection_location"`
	BiometricAppointmentDate string `gorm:"type:varchar(20)" json:"biometric_appointment_date,omitempty"`
	BiometricAppointmentTime string `gorm:"type:varchar(20)" json:"biometric_appointment_time,omitempty"`

	PhotoVerified       bool    `gorm:"default:false" json:"photo_verified"`
	FingerprintVerified bool    `gorm:"default:false" json:"fingerprint_verified"`
	CounterNumber       string  `gorm:"type:varchar(20)" json:"counter_number,omitempty"`
	PaymentAmount       float64 `gorm:"type:decimal(12,2)" json:"payment_amount,omitempty"`
	PaymentReference    string  `gorm:"type:varchar(100)" json:"payment_reference,omitempty"`
	StudioPhotoURL      string  `gorm:"type:varchar(2048)" json:"studio_photo_url,omitempty"`

	Status        ApplicationStatus `gorm:"type:varchar(30);not null;index" json:"status"`
	StatusHistory StatusHistory     `gorm:"type:jsonb" json:"status_history"`

	DocumentVerification VerificationList `gorm:"type:jsonb" json:"document_verification"`

	NICPhotos              PhotoPair `gorm:"type:jsonb" json:"nic_photos"`
	BirthCertificatePhotos PhotoPair `gorm:"type:jsonb" json:"birth_certificate_photos"`
	UserPhoto              PhotoSlot `gorm:"type:jsonb" json:"user_photo"`

	// Foreign key for the submitting user relationship. Immutable after creation.
	SubmittedByID uint      `gorm:"not null;index" json:"submitted_by_id"`
	SubmittedBy   user.User `gorm:"foreignKey:SubmittedByID" json:"submitted_by"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the Application model.
func (Application) TableName() string {
	return "applications"
}

// SeedOnSubmit initializes status, history and verification records at
// creation time. History is seeded with exactly one SUBMITTED entry.
func (a *Application) SeedOnSubmit(at time.Time) {
	a.Status = StatusSubmitted
	a.StatusHistory = StatusHistory{{
		Status:    StatusSubmitted,
		Timestamp: at,
		Comment:   "Application submitted",
	}}
	if len(a.DocumentVerification) == 0 {
		for _, t := range document.DefaultVerificationTypes() {
			a.DocumentVerification = append(a.DocumentVerification, VerificationRecord{
				DocumentType: t,
			})
		}
	}
}

// SetDocumentSlot records the storage key and retrieval URL for one document
// type. Each slot is written explicitly so sibling slots are never touched.
func (a *Application) SetDocumentSlot(t document.Type, key, url string) bool {
	switch t {
	case document.TypeNICFront:
		a.NICPhotos.Front = url
		a.NICPhotos.FrontKey = key
	case document.TypeNICBack:
		a.NICPhotos.Back = url
		a.NICPhotos.BackKey = key
	case document.TypeBirthCertFront:
		a.BirthCertificatePhotos.Front = url
		a.BirthCertificatePhotos.FrontKey = key
	case document.TypeBirthCertBack:
		a.BirthCertificatePhotos.Back = url
		a.BirthCertificatePhotos.BackKey = key
	case document.TypeUserPhoto:
		a.UserPhoto.URL = url
		a.UserPhoto.Key = key
	default:
		return false
	}
	return true
}

// DocumentSlot returns the storage key and URL currently recorded for one
// document type.
func (a *Application) DocumentSlot(t document.Type) (key, url string, ok bool) {
	switch t {
	case document.TypeNICFront:
		return a.NICPhotos.FrontKey, a.NICPhotos.Front, true
	case document.TypeNICBack:
		return a.NICPhotos.BackKey, a.NICPhotos.Back, true
	case document.TypeBirthCertFront:
		return a.BirthCertificatePhotos.FrontKey, a.BirthCertificatePhotos.Front, true
	case document.TypeBirthCertBack:
		return a.BirthCertificatePhotos.BackKey, a.BirthCertificatePhotos.Back, true
	case document.TypeUserPhoto:
		return a.UserPhoto.Key, a.UserPhoto.URL, true
	default:
		return "", "", false
	}
}

// ClearDocumentSlot removes the key and URL for one document type.
func (a *Application) ClearDocumentSlot(t document.Type) bool {
	return a.SetDocumentSlot(t, "", "")
}
