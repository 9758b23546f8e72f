package model

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusNoShow    = "no_show"
)

// Reservation is a committed claim on a provider's time range. Admission
// creates reservations directly in confirmed state; there is no pending
// approval step. For a given provider, no two reservations whose status is
// not cancelled may have overlapping [start, end) ranges.
type Reservation struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProviderID    string    `json:"provider_id" bson:"provider_id" validate:"required,mongodb"`
	ServiceID     string    `json:"service_id" bson:"service_id" validate:"required,mongodb"`
	StartTime     time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status        string    `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled completed no_show"`
	CustomerName  string    `json:"customer_name" bson:"customer_name" validate:"required,min=2,max=100"`
	CustomerPhone string    `json:"customer_phone" bson:"customer_phone" validate:"required,e164"`
	Version       int64     `json:"version" bson:"version" validate:"omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// AdmissionRequest asks for a confirmed reservation on [StartTime, EndTime).
// The range is client-derived from generated slots but never trusted: the
// admission controller re-validates it against the live reservation state.
type AdmissionRequest struct {
	ProviderID    string    `json:"provider_id" validate:"required,mongodb"`
	ServiceID     string    `json:"service_id" validate:"required,mongodb"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	CustomerName  string    `json:"customer_name" validate:"required,min=2,max=100"`
	CustomerPhone string    `json:"customer_phone" validate:"required,e164"`
}

// Reservation builds the confirmed reservation this request admits.
func (r *AdmissionRequest) Reservation() *Reservation {
	return &Reservation{
		ProviderID:    r.ProviderID,
		ServiceID:     r.ServiceID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Status:        StatusConfirmed,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Version:       1,
	}
}

// StatusTransition is the payload of a status-change command. Exactly one of
// the actor fields identifies the caller: customers cancel their own
// reservations, providers may apply any allowed transition on reservations
// they own.
type StatusTransition struct {
	Status        string `json:"status" validate:"required,oneof=cancelled completed no_show"`
	CustomerPhone string `json:"customer_phone,omitempty" validate:"omitempty,e164"`
	ProviderID    string `json:"provider_id,omitempty" validate:"omitempty,mongodb"`
}

// allowedTransitions is the full lifecycle: confirmed is the only state
// that accepts transitions; cancelled, completed and no_show are terminal.
var allowedTransitions = map[string]map[string]bool{
	StatusConfirmed: {
		StatusCancelled: true,
		StatusCompleted: true,
		StatusNoShow:    true,
	},
}

// CanTransition reports whether a reservation may move from one status to
// another.
func CanTransition(from, to string) bool {
	return allowedTransitions[from][to]
}

// CountsAsBusy reports whether a reservation in the given status blocks its
// time range. Completed and no_show remain busy: they are post-hoc markers on
// past reservations and never free up a range.
func CountsAsBusy(status string) bool {
	return status != StatusCancelled
}
