package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/thankyoudoc/thankyoudoc-api/internal/domain/model"
	"github.com/thankyoudoc/thankyoudoc-api/internal/service"
)

// AppointmentHandlers provides HTTP handlers for a patient's own appointments.
// Every handler runs behind RequireAccess and reads the caller from the context.
type AppointmentHandlers struct {
	Svc    *service.AppointmentService
	Logger *slog.Logger
}

// callerID returns the authenticated user id. Quick-login overrides carry no
// patient identity, so they cannot book or list appointments.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "identity_required",
			Err:     errors.New("a signed-in patient account is required"),
		})
		return "", false
	}
	return identity.UserID, true
}

// Book handles POST /api/appointments.
func (h *AppointmentHandlers) Book(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req model.CreateAppointmentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.UserID = userID

	appt, err := h.Svc.Book(r.Context(), &req)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, appt)
}

// List handles GET /api/appointments?status=&limit=&offset=.
func (h *AppointmentHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	limit, offset := ParseLimitOffset(r, model.DefaultListLimit, model.MaxListLimit)
	opts := model.AppointmentListOptions{UserID: userID, Limit: limit, Offset: offset}
	if s := r.URL.Query().Get("status"); s != "" {
		status := model.AppointmentStatus(s)
		opts.Status = &status
	}

	appts, err := h.Svc.ListForUser(r.Context(), opts)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	if appts == nil {
		appts = []*model.Appointment{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"appointments": appts,
		"limit":        limit,
		"offset":       offset,
	})
}

// Cancel handles POST /api/appointments/{id}/cancel.
func (h *AppointmentHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	appt, err := h.Svc.Cancel(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, appt)
}
