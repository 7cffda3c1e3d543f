package models

import "time"

// Booking is the persisted booking record. The lifecycle snapshot document is
// stored alongside legacy timestamp fields kept for records created before the
// engine existed; the status resolver consults the snapshot first and only
// falls back to the timestamps when no snapshot is present.
type Booking struct {
	ID        string    `bson:"id" json:"id"`                 // Unique booking identifier (UUID)
	Tenant    string    `bson:"tenant" json:"tenant"`         // Owning tenant
	Email     string    `bson:"email" json:"email"`           // Requester email
	Role      string    `bson:"role,omitempty" json:"role,omitempty"`
	Rooms     []Room    `bson:"rooms" json:"rooms"`           // Selected rooms at request time
	StartsAt  time.Time `bson:"starts_at" json:"starts_at"`   // Scheduled start
	EndsAt    time.Time `bson:"ends_at" json:"ends_at"`       // Scheduled end
	CreatedAt time.Time `bson:"created_at" json:"created_at"` // Timestamp when the booking was created
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// Snapshot holds the encoded lifecycle snapshot document; Revision guards
	// against concurrent writers via compare-and-set updates.
	Snapshot map[string]interface{} `bson:"snapshot,omitempty" json:"snapshot,omitempty"`
	Revision int64                  `bson:"revision" json:"revision"`

	// Legacy timestamp fields (ISO-8601 strings) from pre-engine records.
	RequestedAt     string `bson:"requested_at,omitempty" json:"requested_at,omitempty"`
	FirstApprovedAt string `bson:"first_approved_at,omitempty" json:"first_approved_at,omitempty"`
	FinalApprovedAt string `bson:"final_approved_at,omitempty" json:"final_approved_at,omitempty"`
	DeclinedAt      string `bson:"declined_at,omitempty" json:"declined_at,omitempty"`
	CanceledAt      string `bson:"canceled_at,omitempty" json:"canceled_at,omitempty"`
	CheckedInAt     string `bson:"checked_in_at,omitempty" json:"checked_in_at,omitempty"`
	CheckedOutAt    string `bson:"checked_out_at,omitempty" json:"checked_out_at,omitempty"`
	NoShowedAt      string `bson:"no_showed_at,omitempty" json:"no_showed_at,omitempty"`
	ClosedAt        string `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
	WalkedInAt      string `bson:"walked_in_at,omitempty" json:"walked_in_at,omitempty"` // Walk-in marker on legacy records
}

// BookingLogEntry is an append-only audit record written once per lifecycle
// transition and never mutated.
type BookingLogEntry struct {
	ID        string    `bson:"id" json:"id"`                 // Entry identifier (UUID)
	BookingID string    `bson:"booking_id" json:"booking_id"` // Booking the transition belongs to
	Status    string    `bson:"status" json:"status"`         // Resulting status label
	Actor     string    `bson:"actor" json:"actor"`           // Identity performing the transition
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	Tenant    string    `bson:"tenant" json:"tenant"`
}
