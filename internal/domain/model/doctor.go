// Package model defines the core data types exchanged by the ThankYouDoc directory APIs.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// maxDoctorTextLen is the maximum length, in characters, of doctor name and specialty.
	maxDoctorTextLen = 200
	// MaxExperienceYears bounds experience_years.
	MaxExperienceYears = 80
	// DefaultListLimit is applied when a list request has no positive limit.
	DefaultListLimit = 50
	// MaxListLimit caps list page size.
	MaxListLimit = 200
)

// Doctor is a bookable practitioner in the directory.
// ConsultationFee is in paise.
type Doctor struct {
	ID              string    `json:"id"               db:"id"`
	Name            string    `json:"name"             db:"name"`
	Specialty       string    `json:"specialty"        db:"specialty"`
	Hospital        string    `json:"hospital"         db:"hospital"`
	City            string    `json:"city"             db:"city"`
	ExperienceYears int       `json:"experience_years" db:"experience_years"`
	ConsultationFee int64     `json:"consultation_fee" db:"consultation_fee"`
	Available       bool      `json:"available"        db:"available"`
	CreatedAt       time.Time `json:"created_at"       db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"       db:"updated_at"`
}

// CreateDoctorRequest represents a request to add a doctor.
type CreateDoctorRequest struct {
	Name            string `json:"name"`
	Specialty       string `json:"specialty"`
	Hospital        string `json:"hospital,omitempty"`
	City            string `json:"city,omitempty"`
	ExperienceYears int    `json:"experience_years,omitempty"`
	ConsultationFee int64  `json:"consultation_fee,omitempty"`
	Available       *bool  `json:"available,omitempty"`
}

// UpdateDoctorRequest represents a partial update of a doctor.
type UpdateDoctorRequest struct {
	Name            *string `json:"name,omitempty"`
	Specialty       *string `json:"specialty,omitempty"`
	Hospital        *string `json:"hospital,omitempty"`
	City            *string `json:"city,omitempty"`
	ExperienceYears *int    `json:"experience_years,omitempty"`
	ConsultationFee *int64  `json:"consultation_fee,omitempty"`
	Available       *bool   `json:"available,omitempty"`
}

// DoctorListOptions controls paging and filtering for listing doctors.
// Specialty matches case-insensitively. AvailableOnly hides unavailable doctors.
type DoctorListOptions struct {
	Limit         int
	Offset        int
	Specialty     *string
	AvailableOnly bool
}

// Normalize clamps the page window to [1, MaxListLimit] and a non-negative offset.
func (o DoctorListOptions) Normalize() DoctorListOptions {
	o.Limit, o.Offset = ClampPage(o.Limit, o.Offset)
	return o
}

// ClampPage applies the shared pagination defaults.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return min(limit, MaxListLimit), max(offset, 0)
}

// Validate validates the CreateDoctorRequest fields.
func (r *CreateDoctorRequest) Validate() error {
	if err := validateRequiredText("name", r.Name); err != nil {
		return err
	}
	if err := validateRequiredText("specialty", r.Specialty); err != nil {
		return err
	}
	if err := validateExperience(r.ExperienceYears); err != nil {
		return err
	}
	return validateFee(r.ConsultationFee)
}

// Normalize trims text fields in place.
func (r *CreateDoctorRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Specialty = strings.TrimSpace(r.Specialty)
	r.Hospital = strings.TrimSpace(r.Hospital)
	r.City = strings.TrimSpace(r.City)
}

// IsAvailable returns the requested availability, defaulting to true.
func (r *CreateDoctorRequest) IsAvailable() bool {
	return r.Available == nil || *r.Available
}

// Validate validates the UpdateDoctorRequest fields and ensures at least one field is being updated.
func (r *UpdateDoctorRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Name != nil {
		if err := validateRequiredText("name", *r.Name); err != nil {
			return err
		}
	}
	if r.Specialty != nil {
		if err := validateRequiredText("specialty", *r.Specialty); err != nil {
			return err
		}
	}
	if r.ExperienceYears != nil {
		if err := validateExperience(*r.ExperienceYears); err != nil {
			return err
		}
	}
	if r.ConsultationFee != nil {
		return validateFee(*r.ConsultationFee)
	}
	return nil
}

// HasUpdates returns true if the UpdateDoctorRequest has any fields to update.
func (r *UpdateDoctorRequest) HasUpdates() bool {
	return r.Name != nil || r.Specialty != nil || r.Hospital != nil || r.City != nil ||
		r.ExperienceYears != nil || r.ConsultationFee != nil || r.Available != nil
}

func validateRequiredText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required and cannot be empty", field)
	}
	if utf8.RuneCountInString(v) > maxDoctorTextLen {
		return fmt.Errorf("%s cannot exceed %d characters", field, maxDoctorTextLen)
	}
	return nil
}

func validateExperience(years int) error {
	if years < 0 || years > MaxExperienceYears {
		return fmt.Errorf("experience_years must be between 0 and %d", MaxExperienceYears)
	}
	return nil
}

func validateFee(fee int64) error {
	if fee < 0 {
		return errors.New("consultation_fee cannot be negative")
	}
	return nil
}
