package model

import "time"

// Slot is a candidate reservable interval derived from availability rules.
// Instants are emitted in the viewer's requested time zone; ordering is by
// instant and therefore zone-independent.
type Slot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Available bool      `json:"available"`
}
