package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/thankyoudoc/thankyoudoc-api/internal/domain/model"
)

var builderSeq atomic.Int64

// DoctorRequestBuilder provides a fluent interface for building CreateDoctorRequest objects.
type DoctorRequestBuilder struct {
	req *model.CreateDoctorRequest
}

// NewDoctorRequest returns a builder with a unique name and valid defaults.
func NewDoctorRequest() *DoctorRequestBuilder {
	n := builderSeq.Add(1)
	return &DoctorRequestBuilder{req: &model.CreateDoctorRequest{
		Name:            fmt.Sprintf("Dr. Test %d", n),
		Specialty:       "General Medicine",
		Hospital:        "City Care Hospital",
		City:            "Bengaluru",
		ExperienceYears: 10,
		ConsultationFee: 50000,
	}}
}

// WithName sets the doctor name.
func (b *DoctorRequestBuilder) WithName(name string) *DoctorRequestBuilder {
	b.req.Name = name
	return b
}

// WithSpecialty sets the specialty.
func (b *DoctorRequestBuilder) WithSpecialty(specialty string) *DoctorRequestBuilder {
	b.req.Specialty = specialty
	return b
}

// WithFee sets the consultation fee in paise.
func (b *DoctorRequestBuilder) WithFee(fee int64) *DoctorRequestBuilder {
	b.req.ConsultationFee = fee
	return b
}

// Unavailable marks the doctor as not accepting appointments.
func (b *DoctorRequestBuilder) Unavailable() *DoctorRequestBuilder {
	available := false
	b.req.Available = &available
	return b
}

// Build returns the constructed request.
func (b *DoctorRequestBuilder) Build() *model.CreateDoctorRequest {
	return b.req
}

// AppointmentRequestBuilder provides a fluent interface for building CreateAppointmentRequest objects.
type AppointmentRequestBuilder struct {
	req *model.CreateAppointmentRequest
}

// NewAppointmentRequest returns a builder for a cash booking one day from now.
func NewAppointmentRequest(userID, doctorID string) *AppointmentRequestBuilder {
	return &AppointmentRequestBuilder{req: &model.CreateAppointmentRequest{
		UserID:        userID,
		DoctorID:      doctorID,
		SlotAt:        time.Now().Add(24 * time.Hour).Truncate(time.Minute).UTC(),
		PaymentMethod: model.PaymentMethodCash,
	}}
}

// At sets the slot time.
func (b *AppointmentRequestBuilder) At(slot time.Time) *AppointmentRequestBuilder {
	b.req.SlotAt = slot
	return b
}

// WithPayment sets the payment method.
func (b *AppointmentRequestBuilder) WithPayment(m model.PaymentMethod) *AppointmentRequestBuilder {
	b.req.PaymentMethod = m
	return b
}

// WithNotes sets the patient notes.
func (b *AppointmentRequestBuilder) WithNotes(notes string) *AppointmentRequestBuilder {
	b.req.Notes = notes
	return b
}

// Build returns the constructed request.
func (b *AppointmentRequestBuilder) Build() *model.CreateAppointmentRequest {
	return b.req
}

// BoolPtr returns a pointer to the given bool value.
func BoolPtr(b bool) *bool { return &b }

// StringPtr returns a pointer to the given string value.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to the given int value.
func IntPtr(i int) *int { return &i }
