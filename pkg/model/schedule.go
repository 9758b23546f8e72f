package model

import "time"

// AvailabilityRule is a recurring weekly opening window in the provider's
// local time. Weekday follows time.Weekday numbering (Sunday = 0). Several
// non-overlapping rules per day are allowed (e.g. a morning/afternoon split).
type AvailabilityRule struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProviderID string    `json:"provider_id" bson:"provider_id" validate:"required,mongodb"`
	Weekday    int       `json:"weekday" bson:"weekday" validate:"min=0,max=6"`
	StartLocal string    `json:"start_local" bson:"start_local" validate:"required,local_clock"`
	EndLocal   string    `json:"end_local" bson:"end_local" validate:"required,local_clock"`
	Enabled    bool      `json:"enabled" bson:"enabled"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// AvailabilityRuleUpdate carries mutable rule fields. Weekday moves are done
// by deleting and recreating the rule.
type AvailabilityRuleUpdate struct {
	StartLocal string `json:"start_local,omitempty" validate:"omitempty,local_clock"`
	EndLocal   string `json:"end_local,omitempty" validate:"omitempty,local_clock"`
	Enabled    *bool  `json:"enabled,omitempty"`
}

// BlockedInterval is an ad-hoc closed period (vacation, break) in UTC.
// It always wins over availability rules.
type BlockedInterval struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProviderID string    `json:"provider_id" bson:"provider_id" validate:"required,mongodb"`
	StartTime  time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Reason     string    `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=200"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
