package httpx

import (
	"log/slog"
	"net/http"

	"github.com/thankyoudoc/thankyoudoc-api/internal/domain/model"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
	"github.com/thankyoudoc/thankyoudoc-api/internal/service"
)

// RoleHandlers exposes role administration for the super-admin portal.
type RoleHandlers struct {
	Svc    *service.RoleService
	Logger *slog.Logger
}

type assignRoleRequest struct {
	Role string `json:"role"`
}

// List handles GET /api/superadmin/roles.
func (h *RoleHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, model.DefaultListLimit, model.MaxListLimit)
	roles, err := h.Svc.List(r.Context(), limit, offset)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	if roles == nil {
		roles = []ports.RoleAssignment{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"roles":  roles,
		"limit":  limit,
		"offset": offset,
	})
}

// Assign handles PUT /api/superadmin/roles/{user_id}.
func (h *RoleHandlers) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	assignment, err := h.Svc.Assign(r.Context(), r.PathValue("user_id"), req.Role)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, assignment)
}

// Revoke handles DELETE /api/superadmin/roles/{user_id}.
func (h *RoleHandlers) Revoke(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Revoke(r.Context(), r.PathValue("user_id")); err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
