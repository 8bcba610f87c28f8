package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// AppointmentStatus is the lifecycle state of a booking.
type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusBooked, AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// PaymentMethod records how the patient intends to pay. No vendor calls are made.
type PaymentMethod string

const (
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodUPI      PaymentMethod = "upi"
	PaymentMethodCash     PaymentMethod = "cash"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodRazorpay, PaymentMethodUPI, PaymentMethodCash:
		return true
	}
	return false
}

const maxNotesLen = 1000

// Appointment is a patient's booking of a doctor slot.
type Appointment struct {
	ID            string            `json:"id"             db:"id"`
	UserID        string            `json:"user_id"        db:"user_id"`
	DoctorID      string            `json:"doctor_id"      db:"doctor_id"`
	SlotAt        time.Time         `json:"slot_at"        db:"slot_at"`
	Status        AppointmentStatus `json:"status"         db:"status"`
	PaymentMethod PaymentMethod     `json:"payment_method" db:"payment_method"`
	Notes         string            `json:"notes"          db:"notes"`
	CreatedAt     time.Time         `json:"created_at"     db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"     db:"updated_at"`
}

// Cancellable reports whether the appointment can still be cancelled.
func (a *Appointment) Cancellable() bool { return a.Status == AppointmentStatusBooked }

// CreateAppointmentRequest represents a booking request. UserID is set by the server
// from the authenticated identity and is never read from the body.
type CreateAppointmentRequest struct {
	UserID        string        `json:"-"`
	DoctorID      string        `json:"doctor_id"`
	SlotAt        time.Time     `json:"slot_at"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Notes         string        `json:"notes,omitempty"`
}

// Validate validates the request against now. The slot must be strictly in the future.
func (r *CreateAppointmentRequest) Validate(now time.Time) error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(r.DoctorID) == "" {
		return errors.New("doctor_id is required")
	}
	if r.SlotAt.IsZero() {
		return errors.New("slot_at is required")
	}
	if !r.SlotAt.After(now) {
		return errors.New("slot_at must be in the future")
	}
	if !r.PaymentMethod.Valid() {
		return fmt.Errorf("payment_method must be one of: %s, %s, %s",
			PaymentMethodRazorpay, PaymentMethodUPI, PaymentMethodCash)
	}
	if utf8.RuneCountInString(r.Notes) > maxNotesLen {
		return fmt.Errorf("notes cannot exceed %d characters", maxNotesLen)
	}
	return nil
}

// AppointmentListOptions controls paging for a user's appointments.
type AppointmentListOptions struct {
	UserID string
	Status *AppointmentStatus
	Limit  int
	Offset int
}
