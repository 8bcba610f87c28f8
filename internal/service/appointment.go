package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/thankyoudoc/thankyoudoc-api/internal/core"
	"github.com/thankyoudoc/thankyoudoc-api/internal/domain/model"
	apperrors "github.com/thankyoudoc/thankyoudoc-api/internal/errors"
)

// AppointmentServiceOptions groups dependencies for AppointmentService.
type AppointmentServiceOptions struct {
	Repo    core.AppointmentRepository
	Doctors core.DoctorRepository
	Logger  *slog.Logger
	Now     func() time.Time
}

// AppointmentService books and cancels appointments on behalf of patients.
type AppointmentService struct {
	repo    core.AppointmentRepository
	doctors core.DoctorRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewAppointmentService constructs a new AppointmentService.
func NewAppointmentService(opts AppointmentServiceOptions) *AppointmentService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AppointmentService{
		repo:    opts.Repo,
		doctors: opts.Doctors,
		logger:  logger.With("component", "appointment_service"),
		now:     now,
	}
}

// Book creates an appointment for req.UserID. The doctor must exist and be available.
func (s *AppointmentService) Book(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	if err := req.Validate(s.now()); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if _, err := uuid.Parse(req.DoctorID); err != nil {
		return nil, apperrors.ValidationField("doctor_id", "doctor_id must be a valid UUID")
	}

	doctor, err := s.doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("doctor not found")
		}
		return nil, err
	}
	if !doctor.Available {
		return nil, apperrors.Conflict("doctor is not accepting appointments")
	}

	appt, err := s.repo.Create(ctx, req)
	if err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConflict, "this slot is already booked")
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "appointment booked",
		"appointment_id", appt.ID,
		"doctor_id", appt.DoctorID,
		"user_id", appt.UserID,
	)
	return appt, nil
}

// ListForUser returns the caller's own appointments.
func (s *AppointmentService) ListForUser(
	ctx context.Context,
	opts model.AppointmentListOptions,
) ([]*model.Appointment, error) {
	if opts.UserID == "" {
		return nil, apperrors.ValidationField("user_id", "user_id is required")
	}
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, apperrors.ValidationField("status", "status must be one of: booked, cancelled, completed")
	}
	opts.Limit, opts.Offset = model.ClampPage(opts.Limit, opts.Offset)
	return s.repo.ListByUser(ctx, opts)
}

// Cancel cancels a booked appointment owned by userID.
func (s *AppointmentService) Cancel(ctx context.Context, userID, id string) (*model.Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ValidationField("id", "appointment id must be a valid UUID")
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("appointment not found")
		}
		return nil, err
	}
	if appt.UserID != userID {
		return nil, apperrors.Forbidden("appointment belongs to another user")
	}
	if !appt.Cancellable() {
		return nil, apperrors.Conflict("only booked appointments can be cancelled")
	}

	updated, ok, err := s.repo.Transition(ctx, core.TransitionParams{
		ID:   id,
		From: model.AppointmentStatusBooked,
		To:   model.AppointmentStatusCancelled,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Conflict("only booked appointments can be cancelled")
	}
	s.logger.InfoContext(ctx, "appointment cancelled", "appointment_id", id, "user_id", userID)
	return updated, nil
}
