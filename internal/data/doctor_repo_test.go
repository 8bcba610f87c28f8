package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thankyoudoc/thankyoudoc-api/internal/domain/model"
	apperrors "github.com/thankyoudoc/thankyoudoc-api/internal/errors"
	"github.com/thankyoudoc/thankyoudoc-api/internal/testutil"
)

func TestDoctorRepo_Create_Get_Update_Delete(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewDoctorRepo(db)

		d, err := repo.Create(ctx, testutil.NewDoctorRequest().WithSpecialty("Cardiology").WithFee(50000).Build())
		require.NoError(t, err)
		require.NotEmpty(t, d.ID)
		assert.True(t, d.Available)
		assert.Equal(t, int64(50000), d.ConsultationFee)
		assert.NotZero(t, d.CreatedAt)

		got, err := repo.GetByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, d.Name, got.Name)

		updated, err := repo.Update(ctx, d.ID, model.UpdateDoctorRequest{
			City:      testutil.StringPtr(" Pune "),
			Available: testutil.BoolPtr(false),
		})
		require.NoError(t, err)
		assert.Equal(t, "Pune", updated.City)
		assert.False(t, updated.Available)
		assert.Equal(t, d.Specialty, updated.Specialty)
		assert.False(t, updated.UpdatedAt.Before(d.UpdatedAt))

		unchanged, err := repo.Update(ctx, d.ID, model.UpdateDoctorRequest{})
		require.NoError(t, err)
		assert.Equal(t, "Pune", unchanged.City)

		deleted, err := repo.Delete(ctx, d.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, d.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = repo.GetByID(ctx, d.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestDoctorRepo_List_Filters(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewDoctorRepo(db)

		_, err := repo.Create(ctx, testutil.NewDoctorRequest().WithSpecialty("Cardiology").Build())
		require.NoError(t, err)
		_, err = repo.Create(ctx, testutil.NewDoctorRequest().WithSpecialty("cardiology").Unavailable().Build())
		require.NoError(t, err)
		newest, err := repo.Create(ctx, testutil.NewDoctorRequest().WithSpecialty("Dermatology").Build())
		require.NoError(t, err)

		all, err := repo.List(ctx, model.DoctorListOptions{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, newest.ID, all[0].ID)

		cardio, err := repo.List(ctx, model.DoctorListOptions{Specialty: testutil.StringPtr("CARDIOLOGY")})
		require.NoError(t, err)
		assert.Len(t, cardio, 2)

		open, err := repo.List(ctx, model.DoctorListOptions{
			Specialty:     testutil.StringPtr("cardiology"),
			AvailableOnly: true,
		})
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.True(t, open[0].Available)

		page, err := repo.List(ctx, model.DoctorListOptions{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Len(t, page, 1)
	})
}

func TestDoctorRepo_Delete_Referenced(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		doctors := NewDoctorRepo(db)
		appts := NewAppointmentRepo(db)

		d, err := doctors.Create(ctx, testutil.NewDoctorRequest().Build())
		require.NoError(t, err)
		_, err = appts.Create(ctx, testutil.NewAppointmentRequest("patient-1", d.ID).Build())
		require.NoError(t, err)

		_, err = doctors.Delete(ctx, d.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsForeignKey(err))
	})
}

func TestBuildDoctorUpdateClause(t *testing.T) {
	clause, args := buildDoctorUpdateClause(model.UpdateDoctorRequest{
		Name:            testutil.StringPtr(" Dr. Rao "),
		ConsultationFee: func() *int64 { v := int64(700); return &v }(),
	})
	assert.Equal(t, "name = $1, consultation_fee = $2", clause)
	assert.Equal(t, []any{"Dr. Rao", int64(700)}, args)

	clause, args = buildDoctorUpdateClause(model.UpdateDoctorRequest{})
	assert.Empty(t, clause)
	assert.Nil(t, args)
}
