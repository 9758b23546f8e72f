package model

import "time"

// Service is a bookable offering of a provider. Granularity (duration plus
// buffer) is the step size used to tile availability into slots.
type Service struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProviderID  string    `json:"provider_id" bson:"provider_id" validate:"required,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DurationMin int       `json:"duration_min" bson:"duration_min" validate:"required,min=1,max=480"`
	BufferMin   int       `json:"buffer_min" bson:"buffer_min" validate:"min=0,max=480"`
	Active      bool      `json:"active" bson:"active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// GranularityMin is the slot step size in minutes.
func (s *Service) GranularityMin() int {
	return s.DurationMin + s.BufferMin
}

type ServiceUpdate struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	DurationMin *int   `json:"duration_min,omitempty" validate:"omitempty,min=1,max=480"`
	BufferMin   *int   `json:"buffer_min,omitempty" validate:"omitempty,min=0,max=480"`
	Active      *bool  `json:"active,omitempty"`
}
