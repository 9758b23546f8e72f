package model

import "time"

// Provider is an independent service provider. TimeZone is the IANA zone in
// which the provider's availability rules are defined and is immutable after
// signup.
type Provider struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	TimeZone  string    `json:"time_zone" bson:"time_zone" validate:"required,timezone"`
	Phone     string    `json:"phone" bson:"phone" validate:"required,e164"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type ProviderUpdate struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone string `json:"phone,omitempty" validate:"omitempty,e164"`
}
