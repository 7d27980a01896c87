package application

import (
	"fmt"

	"passport-apply/models/document"
)

// CreateApplicationRequest is the submission payload.
type CreateApplicationRequest struct {
	TypeOfService         string `json:"type_of_service" validate:"required,oneof=normal oneDay"`
	TypeOfTravelDocument  string `json:"type_of_travel_document" validate:"required,oneof=all middleEast emergencyCertificate identityCertificate"`
	PresentTravelDocument string `json:"present_travel_document" validate:"omitempty,max=100"`
	NMRPNumber            string `json:"nmrp_number" validate:"omitempty,max=100"`

	NationalIdentityCardNumber string `json:"national_identity_card_number" validate:"required,max=50"`
	Surname                    string `json:"surname" validate:"required,max=255"`
	OtherNames                 string `json:"other_names" validate:"required,max=255"`
	PermanentAddress           string `json:"permanent_address" validate:"required"`
	PermanentAddressDistrict   string `json:"permanent_address_district" validate:"required,max=100"`
	Birthdate                  string `json:"birthdate" validate:"required"`
	BirthCertificateNumber     string `json:"birth_certificate_number" validate:"required,max=100"`
	BirthCertificateDistrict   string `json:"birth_certificate_district" validate:"required,max=100"`
	PlaceOfBirth               string `json:"place_of_birth" validate:"required,max=255"`
	Sex                        string `json:"sex" validate:"required,oneof=male female"`
	Profession                 string `json:"profession" validate:"required,max=255"`

	IsDualCitizen         bool   `json:"is_dual_citizen"`
	DualCitizenshipNumber string `json:"dual_citizenship_number" validate:"omitempty,max=100"`
	ForeignNationality    string `json:"foreign_nationality" validate:"omitempty,max=100"`
	ForeignPassportNumber string `json:"foreign_passport_number" validate:"omitempty,max=100"`

	IsChild                   bool   `json:"is_child"`
	ChildFatherPassportNumber string `json:"child_father_passport_number" validate:"omitempty,max=100"`
	ChildMotherPassportNumber string `json:"child_mother_passport_number" validate:"omitempty,max=100"`

	MobileNumber string `json:"mobile_number" validate:"required,max=20"`
	EmailAddress string `json:"email_address" validate:"required,email"`

	CollectionLocation       string `json:"collection_location" validate:"required,max=100"`
	BiometricAppointmentDate string `json:"biometric_appointment_date" validate:"omitempty"`
	BiometricAppointmentTime string `json:"biometric_appointment_time" validate:"omitempty"`

	PaymentAmount    float64 `json:"payment_amount" validate:"omitempty"`
	PaymentReference string  `json:"payment_reference" validate:"omitempty,max=100"`
	StudioPhotoURL   string  `json:"studio_photo_url" validate:"required"`

	DocumentVerification []DocumentVerificationInput `json:"document_verification" validate:"omitempty"`
}

// DocumentVerificationInput seeds one verification record.
type DocumentVerificationInput struct {
	DocumentType document.VerificationType `json:"document_type"`
	Verified     bool                      `json:"verified"`
}

var serviceTypes = map[string]bool{"normal": true, "oneDay": true}
var travelDocumentTypes = map[string]bool{
	"all":                  true,
	"middleEast":           true,
	"emergencyCertificate": true,
	"identityCertificate":  true,
}

// Validate performs structural validation before the request reaches the core.
func (r CreateApplicationRequest) Validate() error {
	if !serviceTypes[r.TypeOfService] {
		return fmt.Errorf("type_of_service must be either 'normal' or 'oneDay'")
	}
	if !travelDocumentTypes[r.TypeOfTravelDocument] {
		return fmt.Errorf("type_of_travel_document is invalid")
	}
	if r.NationalIdentityCardNumber == "" {
		return fmt.Errorf("national_identity_card_number is required")
	}
	if r.Surname == "" {
		return fmt.Errorf("surname is required")
	}
	if r.OtherNames == "" {
		return fmt.Errorf("other_names is required")
	}
	if r.PermanentAddress == "" {
		return fmt.Errorf("permanent_address is required")
	}
	if r.PermanentAddressDistrict == "" {
		return fmt.Errorf("permanent_address_district is required")
	}
	if r.Birthdate == "" {
		return fmt.Errorf("birthdate is required")
	}
	if r.BirthCertificateNumber == "" {
		return fmt.Errorf("birth_certificate_number is required")
	}
	if r.BirthCertificateDistrict == "" {
		return fmt.Errorf("birth_certificate_district is required")
	}
	if r.PlaceOfBirth == "" {
		return fmt.Errorf("place_of_birth is required")
	}
	if r.Sex != "male" && r.Sex != "female" {
		return fmt.Errorf("sex must be either 'male' or 'female'")
	}
	if r.Profession == "" {
		return fmt.Errorf("profession is required")
	}
	if r.MobileNumber == "" {
		return fmt.Errorf("mobile_number is required")
	}
	if r.EmailAddress == "" {
		return fmt.Errorf("email_address is required")
	}
	if r.CollectionLocation == "" {
		return fmt.Errorf("collection_location is required")
	}
	if r.StudioPhotoURL == "" {
		return fmt.Errorf("studio_photo_url is required")
	}
	return nil
}

// UpdateApplicationRequest carries the authorized-update fields. Nil pointers
// leave the stored value untouched.
type UpdateApplicationRequest struct {
	PermanentAddress         *string  `json:"permanent_address,omitempty"`
	PermanentAddressDistrict *string  `json:"permanent_address_district,omitempty"`
	MobileNumber             *string  `json:"mobile_number,omitempty"`
	EmailAddress             *string  `json:"email_address,omitempty"`
	Profession               *string  `json:"profession,omitempty"`
	CollectionLocation       *string  `json:"collection_location,omitempty"`
	BiometricAppointmentDate *string  `json:"biometric_appointment_date,omitempty"`
	BiometricAppointmentTime *string  `json:"biometric_appointment_time,omitempty"`
	PhotoVerified            *bool    `json:"photo_verified,omitempty"`
	FingerprintVerified      *bool    `json:"fingerprint_verified,omitempty"`
	CounterNumber            *string  `json:"counter_number,omitempty"`
	PaymentAmount            *float64 `json:"payment_amount,omitempty"`
	PaymentReference         *string  `json:"payment_reference,omitempty"`
}

// UpdateStatusRequest asks the transition engine for a status change.
type UpdateStatusRequest struct {
	Status  string `json:"status" validate:"required"`
	Comment string `json:"comment" validate:"omitempty"`
}

func (r UpdateStatusRequest) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}

// VerifyDocumentRequest marks one seeded verification record as confirmed.
type VerifyDocumentRequest struct {
	DocumentType string `json:"document_type" validate:"required"`
}

func (r VerifyDocumentRequest) Validate() error {
	if r.DocumentType == "" {
		return fmt.Errorf("document_type is required")
	}
	return nil
}
