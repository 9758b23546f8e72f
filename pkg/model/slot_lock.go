package model

import "time"

// SlotLock is an advisory lock document claiming one fixed-width time bucket
// for one provider while an admission check is in flight. A requested range
// claims every bucket it intersects, so any two overlapping ranges always
// collide on at least one bucket regardless of their exact starts. The _id
// carries the provider and bucket coordinates; a duplicate-key insert is the
// non-blocking contention signal.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
