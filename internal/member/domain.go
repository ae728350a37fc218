// internal/member/domain.go
package member

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when no member matches the given id.
	ErrNotFound = errors.New("member not found")
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("invalid member input")
)

// Gender values accepted for a member profile.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"
)

// StatusActive is the account status assigned to newly created credentials.
const StatusActive = "ACTIVE"

// Member represents a cooperative member's profile row.
type Member struct {
	ID            int64     `json:"id"`
	MemberCode    string    `json:"memberCode"`
	FullName      string    `json:"fullName"`
	Age           int       `json:"age"`
	ContactNumber string    `json:"contactNumber"`
	Gender        string    `json:"gender"`
	Address       string    `json:"address"`
	SharedCapital float64   `json:"sharedCapital"`
	MemberSince   time.Time `json:"memberSince"`

	// Stored filenames of uploaded documents, empty when absent.
	IDPicture         string `json:"idPicture,omitempty"`
	ApplicationForm   string `json:"applicationForm,omitempty"`
	BarangayClearance string `json:"barangayClearance,omitempty"`
	TIN               string `json:"tin,omitempty"`
	PMES              string `json:"pmes,omitempty"`

	// Joined from the account row when fetching by id.
	Email         string `json:"email,omitempty"`
	AccountStatus string `json:"accountStatus,omitempty"`
}

// Credential represents a member's account row. The password is only
// ever held as a bcrypt hash.
type Credential struct {
	MemberID      int64  `json:"member_id"`
	Email         string `json:"email"`
	PasswordHash  string `json:"-"`
	AccountStatus string `json:"account_status"`
}

// CreateInput carries everything needed to add a member. Documents maps
// a recognized upload field name to its stored filename.
type CreateInput struct {
	FullName      string
	Age           int
	ContactNumber string
	Gender        string
	Address       string
	SharedCapital float64
	MemberSince   time.Time
	Email         string
	Password      string
	Documents     map[string]string
}

// UpdateInput carries a full profile resubmission. An empty Password
// leaves the stored hash untouched; Documents only holds newly uploaded
// references, absent fields keep their existing value.
type UpdateInput struct {
	FullName      string
	Age           int
	ContactNumber string
	Gender        string
	Address       string
	SharedCapital float64
	Email         string
	Password      string
	Documents     map[string]string
}

func (in CreateInput) validate() error {
	if in.FullName == "" {
		return fmt.Errorf("%w: fullName is required", ErrValidation)
	}
	if in.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if in.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if in.SharedCapital < 0 {
		return fmt.Errorf("%w: sharedCapital must be non-negative", ErrValidation)
	}
	return nil
}

func (in UpdateInput) validate() error {
	if in.FullName == "" {
		return fmt.Errorf("%w: fullName is required", ErrValidation)
	}
	if in.ContactNumber == "" {
		return fmt.Errorf("%w: contactNumber is required", ErrValidation)
	}
	if in.Gender == "" {
		return fmt.Errorf("%w: gender is required", ErrValidation)
	}
	if in.Address == "" {
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	if in.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if in.SharedCapital < 0 {
		return fmt.Errorf("%w: sharedCapital must be non-negative", ErrValidation)
	}
	return nil
}
