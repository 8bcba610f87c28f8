package service

import (
	"context"
	"errors"
	"strings"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/domain/model"
	apperrors "github.com/thankyoudoc/thankyoudoc-api/internal/errors"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

// RoleServiceOptions groups dependencies for RoleService.
type RoleServiceOptions struct {
	Assigner ports.RoleAssigner
}

// RoleService validates role administration requests before they reach the directory.
type RoleService struct {
	assigner ports.RoleAssigner
}

// NewRoleService constructs a new RoleService.
func NewRoleService(opts RoleServiceOptions) *RoleService {
	return &RoleService{assigner: opts.Assigner}
}

// Assign sets the role of userID. role is parsed with domainauth.ParseRole.
func (s *RoleService) Assign(ctx context.Context, userID, role string) (ports.RoleAssignment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ports.RoleAssignment{}, apperrors.ValidationField("user_id", "user_id is required")
	}
	parsed, err := domainauth.ParseRole(role)
	if err != nil {
		return ports.RoleAssignment{}, apperrors.Validation(err.Error())
	}
	return s.assigner.Assign(ctx, userID, parsed)
}

// Revoke removes the role record of userID.
func (s *RoleService) Revoke(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.ValidationField("user_id", "user_id is required")
	}
	err := s.assigner.Revoke(ctx, userID)
	if errors.Is(err, ports.ErrRoleNotFound) {
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "role assignment not found")
	}
	return err
}

// List returns a page of role records.
func (s *RoleService) List(ctx context.Context, limit, offset int) ([]ports.RoleAssignment, error) {
	limit, offset = model.ClampPage(limit, offset)
	return s.assigner.List(ctx, limit, offset)
}
