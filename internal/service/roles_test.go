package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	apperrors "github.com/thankyoudoc/thankyoudoc-api/internal/errors"
	"github.com/thankyoudoc/thankyoudoc-api/internal/mocks"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

func newRoleService(t *testing.T) (*mocks.MockRoleAssigner, *RoleService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	assigner := mocks.NewMockRoleAssigner(ctrl)
	return assigner, NewRoleService(RoleServiceOptions{Assigner: assigner})
}

func TestRoleService_Assign(t *testing.T) {
	t.Parallel()

	t.Run("parses role", func(t *testing.T) {
		assigner, svc := newRoleService(t)
		assigner.EXPECT().Assign(gomock.Any(), "u1", domainauth.RoleModerator).
			Return(ports.RoleAssignment{UserID: "u1", Role: domainauth.RoleModerator}, nil)
		got, err := svc.Assign(context.Background(), " u1 ", "Moderator")
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleModerator, got.Role)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, svc := newRoleService(t)
		_, err := svc.Assign(context.Background(), "u1", "superadmin")
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("missing user", func(t *testing.T) {
		_, svc := newRoleService(t)
		_, err := svc.Assign(context.Background(), "", "admin")
		assert.Equal(t, "user_id", apperrors.GetField(err))
	})
}

func TestRoleService_Revoke(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		assigner, svc := newRoleService(t)
		assigner.EXPECT().Revoke(gomock.Any(), "u1").Return(nil)
		assert.NoError(t, svc.Revoke(context.Background(), "u1"))
	})

	t.Run("absent", func(t *testing.T) {
		assigner, svc := newRoleService(t)
		assigner.EXPECT().Revoke(gomock.Any(), "u1").Return(ports.ErrRoleNotFound)
		err := svc.Revoke(context.Background(), "u1")
		assert.True(t, apperrors.IsNotFound(err))
		assert.ErrorIs(t, err, ports.ErrRoleNotFound)
	})
}

func TestRoleService_List(t *testing.T) {
	t.Parallel()
	assigner, svc := newRoleService(t)
	assigner.EXPECT().List(gomock.Any(), 50, 0).Return([]ports.RoleAssignment{{UserID: "u1"}}, nil)
	got, err := svc.List(context.Background(), 0, -1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
