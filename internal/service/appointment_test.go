package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/thankyoudoc/thankyoudoc-api/internal/core"
	"github.com/thankyoudoc/thankyoudoc-api/internal/domain/model"
	apperrors "github.com/thankyoudoc/thankyoudoc-api/internal/errors"
	"github.com/thankyoudoc/thankyoudoc-api/internal/mocks"
)

const testAppointmentID = "6a1d2c3b-4e5f-4a6b-8c7d-9e0f1a2b3c4d"

var bookingNow = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

type appointmentFixture struct {
	repo    *mocks.MockAppointmentRepository
	doctors *mocks.MockDoctorRepository
	svc     *AppointmentService
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &appointmentFixture{
		repo:    mocks.NewMockAppointmentRepository(ctrl),
		doctors: mocks.NewMockDoctorRepository(ctrl),
	}
	f.svc = NewAppointmentService(AppointmentServiceOptions{
		Repo:    f.repo,
		Doctors: f.doctors,
		Now:     func() time.Time { return bookingNow },
	})
	return f
}

func validBooking() *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		UserID:        "user-1",
		DoctorID:      testDoctorID,
		SlotAt:        bookingNow.Add(24 * time.Hour),
		PaymentMethod: model.PaymentMethodUPI,
	}
}

func TestAppointmentService_Book(t *testing.T) {
	t.Parallel()
	f := newAppointmentFixture(t)
	req := validBooking()

	f.doctors.EXPECT().GetByID(gomock.Any(), testDoctorID).Return(&model.Doctor{ID: testDoctorID, Available: true}, nil)
	f.repo.EXPECT().Create(gomock.Any(), req).Return(&model.Appointment{
		ID: testAppointmentID, UserID: "user-1", DoctorID: testDoctorID, Status: model.AppointmentStatusBooked,
	}, nil)

	appt, err := f.svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusBooked, appt.Status)
}

func TestAppointmentService_Book_Rejections(t *testing.T) {
	t.Parallel()

	t.Run("past slot", func(t *testing.T) {
		f := newAppointmentFixture(t)
		req := validBooking()
		req.SlotAt = bookingNow
		_, err := f.svc.Book(context.Background(), req)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Contains(t, err.Error(), "slot_at must be in the future")
	})

	t.Run("malformed doctor id", func(t *testing.T) {
		f := newAppointmentFixture(t)
		req := validBooking()
		req.DoctorID = "dr-1"
		_, err := f.svc.Book(context.Background(), req)
		assert.Equal(t, "doctor_id", apperrors.GetField(err))
	})

	t.Run("unknown doctor", func(t *testing.T) {
		f := newAppointmentFixture(t)
		f.doctors.EXPECT().GetByID(gomock.Any(), testDoctorID).Return(nil, apperrors.NotFound("The requested record was not found."))
		_, err := f.svc.Book(context.Background(), validBooking())
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Equal(t, "doctor not found", err.Error())
	})

	t.Run("doctor unavailable", func(t *testing.T) {
		f := newAppointmentFixture(t)
		f.doctors.EXPECT().GetByID(gomock.Any(), testDoctorID).Return(&model.Doctor{ID: testDoctorID}, nil)
		_, err := f.svc.Book(context.Background(), validBooking())
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("slot taken", func(t *testing.T) {
		f := newAppointmentFixture(t)
		f.doctors.EXPECT().GetByID(gomock.Any(), testDoctorID).Return(&model.Doctor{ID: testDoctorID, Available: true}, nil)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, apperrors.Conflict("This value already exists."))
		_, err := f.svc.Book(context.Background(), validBooking())
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.Contains(t, err.Error(), "this slot is already booked")
	})

	t.Run("repository failure", func(t *testing.T) {
		f := newAppointmentFixture(t)
		boom := errors.New("boom")
		f.doctors.EXPECT().GetByID(gomock.Any(), testDoctorID).Return(nil, boom)
		_, err := f.svc.Book(context.Background(), validBooking())
		assert.ErrorIs(t, err, boom)
	})
}

func TestAppointmentService_ListForUser(t *testing.T) {
	t.Parallel()

	t.Run("requires user", func(t *testing.T) {
		f := newAppointmentFixture(t)
		_, err := f.svc.ListForUser(context.Background(), model.AppointmentListOptions{})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newAppointmentFixture(t)
		status := model.AppointmentStatus("pending")
		_, err := f.svc.ListForUser(context.Background(), model.AppointmentListOptions{UserID: "u", Status: &status})
		assert.Equal(t, "status", apperrors.GetField(err))
	})

	t.Run("defaults page", func(t *testing.T) {
		f := newAppointmentFixture(t)
		f.repo.EXPECT().ListByUser(gomock.Any(), model.AppointmentListOptions{
			UserID: "u", Limit: model.DefaultListLimit,
		}).Return([]*model.Appointment{{ID: testAppointmentID}}, nil)
		got, err := f.svc.ListForUser(context.Background(), model.AppointmentListOptions{UserID: "u"})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestAppointmentService_Cancel(t *testing.T) {
	t.Parallel()
	booked := func(owner string) *model.Appointment {
		return &model.Appointment{ID: testAppointmentID, UserID: owner, Status: model.AppointmentStatusBooked}
	}

	t.Run("owner cancels", func(t *testing.T) {
		f := newAppointmentFixture(t)
		f.repo.EXPECT().GetByID(gomock.Any(), testAppointmentID).Return(booked("user-1"), nil)
		f.repo.EXPECT().Transition(gomock.Any(), core.TransitionParams{
			ID: testAppointmentID, From: model.AppointmentStatusBooked, To: model.AppointmentStatusCancelled,
		}).Return(&model.Appointment{ID: testAppointmentID, Status: model.AppointmentStatusCancelled}, true, nil)

		appt, err := f.svc.Cancel(context.Background(), "user-1", testAppointmentID)
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusCancelled, appt.Status)
	})

	t.Run("other user", func(t *testing.T) {
		f := newAppointmentFixture(t)
		f.repo.EXPECT().GetByID(gomock.Any(), testAppointmentID).Return(booked("user-2"), nil)
		_, err := f.svc.Cancel(context.Background(), "user-1", testAppointmentID)
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("already cancelled", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appt := booked("user-1")
		appt.Status = model.AppointmentStatusCompleted
		f.repo.EXPECT().GetByID(gomock.Any(), testAppointmentID).Return(appt, nil)
		_, err := f.svc.Cancel(context.Background(), "user-1", testAppointmentID)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("lost race", func(t *testing.T) {
		f := newAppointmentFixture(t)
		f.repo.EXPECT().GetByID(gomock.Any(), testAppointmentID).Return(booked("user-1"), nil)
		f.repo.EXPECT().Transition(gomock.Any(), gomock.Any()).Return(nil, false, nil)
		_, err := f.svc.Cancel(context.Background(), "user-1", testAppointmentID)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("missing", func(t *testing.T) {
		f := newAppointmentFixture(t)
		f.repo.EXPECT().GetByID(gomock.Any(), testAppointmentID).Return(nil, apperrors.NotFound("x"))
		_, err := f.svc.Cancel(context.Background(), "user-1", testAppointmentID)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newAppointmentFixture(t)
		_, err := f.svc.Cancel(context.Background(), "user-1", "abc")
		assert.True(t, apperrors.IsValidation(err))
	})
}
