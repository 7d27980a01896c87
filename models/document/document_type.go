package document

// Type identifies one uploadable document. The application flow uses the
// closed NIC/birth-certificate/photo set; the renewal flow additionally
// accepts the open-ended renewal set keyed into the renewal documents map.
type Type string

const (
	// Application document types. NIC and birth certificate carry front/back
	// pairs; the user photo is a single slot.
	TypeNICFront       Type = "nic-front"
	TypeNICBack        Type = "nic-back"
	TypeBirthCertFront Type = "birth-certificate-front"
	TypeBirthCertBack  Type = "birth-certificate-back"
	TypeUserPhoto      Type = "user-photo"

	// Renewal document types.
	TypeCurrentPassport Type = "current-passport"
	TypeBirthCert       Type = "birth-certificate"
	TypePassportPhoto   Type = "passport-photo"
	TypeAdditionalDocs  Type = "additional-documents"
)

func (t Type) String() string {
	return string(t)
}

// IsApplicationType reports whether t maps to a slot on the application
// aggregate.
func (t Type) IsApplicationType() bool {
	switch t {
	case TypeNICFront, TypeNICBack, TypeBirthCertFront, TypeBirthCertBack, TypeUserPhoto:
		return true
	default:
		return false
	}
}

// IsRenewalType reports whether t is accepted on a renewal request.
func (t Type) IsRenewalType() bool {
	switch t {
	case TypeCurrentPassport, TypeNICFront, TypeNICBack, TypeBirthCert, TypePassportPhoto, TypeAdditionalDocs:
		return true
	default:
		return false
	}
}

// ParseApplicationType resolves a route parameter to an application document
// type.
func ParseApplicationType(s string) (Type, bool) {
	switch s {
	case "nic-front":
		return TypeNICFront, true
	case "nic-back":
		return TypeNICBack, true
	case "birth-cert-front":
		return TypeBirthCertFront, true
	case "birth-cert-back":
		return TypeBirthCertBack, true
	case "user-photo":
		return TypeUserPhoto, true
	default:
		return "", false
	}
}

// ParseRenewalType resolves a route parameter to a renewal document type.
func ParseRenewalType(s string) (Type, bool) {
	t := Type(s)
	if t.IsRenewalType() {
		return t, true
	}
	return "", false
}

// VerificationType is a document class tracked by the verification records
// seeded on every application.
type VerificationType string

const (
	VerificationNIC       VerificationType = "nic"
	VerificationBirthCert VerificationType = "birth_certificate"
)

// DefaultVerificationTypes are the records seeded at application creation.
func DefaultVerificationTypes() []VerificationType {
	return []VerificationType{VerificationNIC, VerificationBirthCert}
}
