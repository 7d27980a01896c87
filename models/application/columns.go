package application

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"passport-apply/models/document"
)

// StatusEntry is one record of the append-only status history.
type StatusEntry struct {
	Status    ApplicationStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Comment   string            `json:"comment,omitempty"`
}

// StatusHistory is stored as a JSON column. It is only ever appended to.
type StatusHistory []StatusEntry

// Scan implements the Scanner interface for database deserialization.
func (sh *StatusHistory) Scan(value interface{}) error {
	if value == nil {
		*sh = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, sh)
}

// Value implements the driver Valuer interface for database serialization.
func (sh StatusHistory) Value() (driver.Value, error) {
	if sh == nil {
		return nil, nil
	}
	return json.Marshal(sh)
}

// VerificationRecord tracks whether one submitted document class has been
// manually confirmed. Records are seeded at creation and only ever move
// toward verified=true.
type VerificationRecord struct {
	DocumentType     document.VerificationType `json:"document_type"`
	Verified         bool                      `json:"verified"`
	VerificationDate *time.Time                `json:"verification_date,omitempty"`
}

// VerificationList is stored as a JSON column.
type VerificationList []VerificationRecord

func (vl *VerificationList) Scan(value interface{}) error {
	if value == nil {
		*vl = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, vl)
}

func (vl VerificationList) Value() (driver.Value, error) {
	if vl == nil {
		return nil, nil
	}
	return json.Marshal(vl)
}

// Find returns the record for the given document type, or nil.
func (vl VerificationList) Find(t document.VerificationType) *VerificationRecord {
	for i := range vl {
		if vl[i].DocumentType == t {
			return &vl[i]
		}
	}
	return nil
}

// PhotoPair holds the front/back attachment slots of a two-sided document.
// Each slot is updated independently so attaching one side never clobbers the
// other.
type PhotoPair struct {
	Front    string `json:"front,omitempty"`
	FrontKey string `json:"front_key,omitempty"`
	Back     string `json:"back,omitempty"`
	BackKey  string `json:"back_key,omitempty"`
}

func (pp *PhotoPair) Scan(value interface{}) error {
	if value == nil {
		*pp = PhotoPair{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, pp)
}

func (pp PhotoPair) Value() (driver.Value, error) {
	return json.Marshal(pp)
}

// PhotoSlot is a single-document attachment slot.
type PhotoSlot struct {
	URL string `json:"url,omitempty"`
	Key string `json:"key,omitempty"`
}

func (ps *PhotoSlot) Scan(value interface{}) error {
	if value == nil {
		*ps = PhotoSlot{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, ps)
}

func (ps PhotoSlot) Value() (driver.Value, error) {
	return json.Marshal(ps)
}
