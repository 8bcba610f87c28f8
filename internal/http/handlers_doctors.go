package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/thankyoudoc/thankyoudoc-api/internal/domain/model"
	"github.com/thankyoudoc/thankyoudoc-api/internal/service"
)

// DoctorHandlers provides HTTP handlers for the doctor directory.
type DoctorHandlers struct {
	Svc    *service.DoctorService
	Logger *slog.Logger
}

// List handles GET /api/doctors?limit=&offset=&specialty=&available=.
func (h *DoctorHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, model.DefaultListLimit, model.MaxListLimit)
	opts := model.DoctorListOptions{
		Limit:         limit,
		Offset:        offset,
		AvailableOnly: parseBoolQuery(r, "available", false),
	}
	if specialty := strings.TrimSpace(r.URL.Query().Get("specialty")); specialty != "" {
		opts.Specialty = &specialty
	}

	doctors, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	if doctors == nil {
		doctors = []*model.Doctor{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"doctors": doctors,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetByID handles GET /api/doctors/{id}.
func (h *DoctorHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.Svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, doctor)
}

// Create handles POST /api/admin/doctors.
func (h *DoctorHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDoctorRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	doctor, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, doctor)
}

// Update handles PUT /api/admin/doctors/{id}.
func (h *DoctorHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateDoctorRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	doctor, err := h.Svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, doctor)
}

// Delete handles DELETE /api/admin/doctors/{id}.
func (h *DoctorHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
