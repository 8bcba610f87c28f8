// Package core holds the repository contracts and caching services shared by the ThankYouDoc services.
package core

import (
	"context"
	"time"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/domain/model"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// Repositories return *errors.AppError values produced by errors.MapDBError.

// DoctorRepository defines the interface for doctor directory data operations.
type DoctorRepository interface {
	Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error)
	GetByID(ctx context.Context, id string) (*model.Doctor, error)
	List(ctx context.Context, opts model.DoctorListOptions) ([]*model.Doctor, error)
	Update(ctx context.Context, id string, req model.UpdateDoctorRequest) (*model.Doctor, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// TransitionParams groups parameters for AppointmentRepository.Transition.
type TransitionParams struct {
	ID   string
	From model.AppointmentStatus
	To   model.AppointmentStatus
}

// AppointmentRepository defines the interface for appointment data operations.
type AppointmentRepository interface {
	Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	ListByUser(ctx context.Context, opts model.AppointmentListOptions) ([]*model.Appointment, error)
	// Transition moves an appointment from one status to another. It reports false
	// when the row no longer holds the From status.
	Transition(ctx context.Context, p TransitionParams) (*model.Appointment, bool, error)
}

// AppointmentSweepRepository marks elapsed bookings as completed.
// CompletePast updates at most limit booked rows with slot_at before the cutoff
// and returns the number of rows changed.
type AppointmentSweepRepository interface {
	CompletePast(ctx context.Context, before time.Time, limit int) (int64, error)
}

// RoleRepository defines the interface for the user_roles table.
// Get returns ports.ErrRoleNotFound when the user has no record.
type RoleRepository interface {
	Get(ctx context.Context, userID string) (domainauth.Role, error)
	Upsert(ctx context.Context, userID string, role domainauth.Role) (ports.RoleAssignment, error)
	Delete(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]ports.RoleAssignment, error)
}
