package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/thankyoudoc/thankyoudoc-api/internal/domain/model"
	apperrors "github.com/thankyoudoc/thankyoudoc-api/internal/errors"
	"github.com/thankyoudoc/thankyoudoc-api/internal/mocks"
)

const testDoctorID = "0b6f8f8e-7f3b-4d7e-9a43-5d1c2b7e9a10"

func newDoctorService(t *testing.T) (*mocks.MockDoctorRepository, *DoctorService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockDoctorRepository(ctrl)
	return repo, NewDoctorService(DoctorServiceOptions{Repo: repo})
}

func TestDoctorService_Create(t *testing.T) {
	t.Parallel()
	repo, svc := newDoctorService(t)
	ctx := context.Background()

	req := &model.CreateDoctorRequest{Name: "  Dr. Asha Rao ", Specialty: "Cardiology", ConsultationFee: 50000}
	repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, got *model.CreateDoctorRequest) (*model.Doctor, error) {
			assert.Equal(t, "Dr. Asha Rao", got.Name)
			return &model.Doctor{ID: testDoctorID, Name: got.Name, Specialty: got.Specialty, Available: true}, nil
		})

	doc, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, testDoctorID, doc.ID)
}

func TestDoctorService_Create_Validation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		req  *model.CreateDoctorRequest
		want string
	}{
		{"nil", nil, "request body is required"},
		{"blank name", &model.CreateDoctorRequest{Name: "  ", Specialty: "ENT"}, "name is required"},
		{"long specialty", &model.CreateDoctorRequest{Name: "A", Specialty: strings.Repeat("x", 201)}, "specialty cannot exceed"},
		{"experience", &model.CreateDoctorRequest{Name: "A", Specialty: "ENT", ExperienceYears: 81}, "experience_years"},
		{"fee", &model.CreateDoctorRequest{Name: "A", Specialty: "ENT", ConsultationFee: -1}, "consultation_fee"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := newDoctorService(t)
			_, err := svc.Create(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDoctorService_GetByID(t *testing.T) {
	t.Parallel()

	t.Run("invalid id", func(t *testing.T) {
		_, svc := newDoctorService(t)
		_, err := svc.GetByID(context.Background(), "not-a-uuid")
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "id", apperrors.GetField(err))
	})

	t.Run("found", func(t *testing.T) {
		repo, svc := newDoctorService(t)
		repo.EXPECT().GetByID(gomock.Any(), testDoctorID).Return(&model.Doctor{ID: testDoctorID}, nil)
		doc, err := svc.GetByID(context.Background(), testDoctorID)
		require.NoError(t, err)
		assert.Equal(t, testDoctorID, doc.ID)
	})
}

func TestDoctorService_List_NormalizesPage(t *testing.T) {
	t.Parallel()
	repo, svc := newDoctorService(t)
	specialty := "cardio"
	repo.EXPECT().List(gomock.Any(), model.DoctorListOptions{
		Limit: model.MaxListLimit, Offset: 0, Specialty: &specialty, AvailableOnly: true,
	}).Return([]*model.Doctor{}, nil)

	_, err := svc.List(context.Background(), model.DoctorListOptions{
		Limit: 1000, Offset: -5, Specialty: &specialty, AvailableOnly: true,
	})
	require.NoError(t, err)
}

func TestDoctorService_Update(t *testing.T) {
	t.Parallel()

	t.Run("no fields", func(t *testing.T) {
		_, svc := newDoctorService(t)
		_, err := svc.Update(context.Background(), testDoctorID, model.UpdateDoctorRequest{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one field must be updated")
	})

	t.Run("applies", func(t *testing.T) {
		repo, svc := newDoctorService(t)
		req := model.UpdateDoctorRequest{Available: ptr(false)}
		repo.EXPECT().Update(gomock.Any(), testDoctorID, req).Return(&model.Doctor{ID: testDoctorID}, nil)
		_, err := svc.Update(context.Background(), testDoctorID, req)
		require.NoError(t, err)
	})
}

func TestDoctorService_Delete(t *testing.T) {
	t.Parallel()

	t.Run("deleted", func(t *testing.T) {
		repo, svc := newDoctorService(t)
		repo.EXPECT().Delete(gomock.Any(), testDoctorID).Return(true, nil)
		require.NoError(t, svc.Delete(context.Background(), testDoctorID))
	})

	t.Run("missing", func(t *testing.T) {
		repo, svc := newDoctorService(t)
		repo.EXPECT().Delete(gomock.Any(), testDoctorID).Return(false, nil)
		err := svc.Delete(context.Background(), testDoctorID)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("referenced by appointments", func(t *testing.T) {
		repo, svc := newDoctorService(t)
		fk := &apperrors.AppError{Code: apperrors.ErrCodeForeignKey, Message: "in use", Cause: errors.New("fk")}
		repo.EXPECT().Delete(gomock.Any(), testDoctorID).Return(false, fk)
		err := svc.Delete(context.Background(), testDoctorID)
		assert.True(t, apperrors.IsForeignKey(err))
	})
}
