// Package models defines data types for the family graph.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Field limits shared by validation and storage.
const (
	MaxIDLength        = 255
	MaxNameLength      = 500
	MaxBirthDateLength = 64
)

// Gender values accepted on the wire. Anything else normalizes to GenderOther.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Person is a member of a tenant's family graph. Parents are ordered; the first two
// are read as the biological pair when tagging maternal and paternal sides.
type Person struct {
	ID        string    `json:"id"`
	TenantID  uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender"`
	BirthDate string    `json:"birth_date,omitempty"`
	Parents   []string  `json:"parents"`
	Partners  []string  `json:"partners"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeGender maps free-form input ("Male", "F", "") to male, female or other.
func NormalizeGender(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return GenderOther
	}
}

// CreatePersonRequest is the payload for adding a person.
type CreatePersonRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birth_date,omitempty"`
}

// Validate checks required fields and limits on CreatePersonRequest and normalizes
// the gender. If ID is empty, a UUID is auto-generated.
func (r *CreatePersonRequest) Validate() error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}

	if len(r.ID) > MaxIDLength {
		return ErrFieldTooLong("id", MaxIDLength)
	}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrMissingName
	}

	if len(r.Name) > MaxNameLength {
		return ErrFieldTooLong("name", MaxNameLength)
	}

	if len(r.BirthDate) > MaxBirthDateLength {
		return ErrFieldTooLong("birth_date", MaxBirthDateLength)
	}

	r.Gender = NormalizeGender(r.Gender)

	return nil
}

// UpdatePersonRequest is the payload for changing a person's attributes.
// Links are managed through the parent and partner endpoints.
type UpdatePersonRequest struct {
	Name      *string `json:"name,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
}

// Validate checks UpdatePersonRequest fields.
func (r *UpdatePersonRequest) Validate() error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return fmt.Errorf("name cannot be empty")
		}
		if len(name) > MaxNameLength {
			return ErrFieldTooLong("name", MaxNameLength)
		}
		r.Name = &name
	}

	if r.Gender != nil {
		g := NormalizeGender(*r.Gender)
		r.Gender = &g
	}

	if r.BirthDate != nil && len(*r.BirthDate) > MaxBirthDateLength {
		return ErrFieldTooLong("birth_date", MaxBirthDateLength)
	}

	return nil
}

// Empty reports whether the request changes nothing.
func (r *UpdatePersonRequest) Empty() bool {
	return r.Name == nil && r.Gender == nil && r.BirthDate == nil
}

// PersonListOpts filters a people listing.
type PersonListOpts struct {
	// Query matches names case-insensitively by substring.
	Query  string
	Limit  int
	Offset int
}
