package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/thankyoudoc/thankyoudoc-api/internal/core"
	"github.com/thankyoudoc/thankyoudoc-api/internal/domain/model"
	apperrors "github.com/thankyoudoc/thankyoudoc-api/internal/errors"
)

// DoctorServiceOptions groups dependencies for DoctorService.
type DoctorServiceOptions struct {
	Repo core.DoctorRepository
}

// DoctorService manages the doctor directory.
type DoctorService struct {
	repo core.DoctorRepository
}

// NewDoctorService constructs a new DoctorService.
func NewDoctorService(opts DoctorServiceOptions) *DoctorService {
	return &DoctorService{repo: opts.Repo}
}

// Create validates and stores a new doctor.
func (s *DoctorService) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	return s.repo.Create(ctx, req)
}

// GetByID retrieves a doctor by ID.
func (s *DoctorService) GetByID(ctx context.Context, id string) (*model.Doctor, error) {
	if err := validateDoctorID(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// List returns a page of doctors.
func (s *DoctorService) List(ctx context.Context, opts model.DoctorListOptions) ([]*model.Doctor, error) {
	return s.repo.List(ctx, opts.Normalize())
}

// Update applies a partial update to a doctor.
func (s *DoctorService) Update(ctx context.Context, id string, req model.UpdateDoctorRequest) (*model.Doctor, error) {
	if err := validateDoctorID(id); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	return s.repo.Update(ctx, id, req)
}

// Delete removes a doctor. Doctors with appointments cannot be deleted; mark them unavailable instead.
func (s *DoctorService) Delete(ctx context.Context, id string) error {
	if err := validateDoctorID(id); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFound("doctor not found")
	}
	return nil
}

func validateDoctorID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.ValidationField("id", "doctor id must be a valid UUID")
	}
	return nil
}
