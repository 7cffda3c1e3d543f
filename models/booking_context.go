package models

// Room is one selected room on a booking request.
type Room struct {
	ID                   string `bson:"id" json:"id"`                                               // Room identifier within the tenant
	Name                 string `bson:"name,omitempty" json:"name,omitempty"`                       // Display name
	AutoApprovalEligible bool   `bson:"autoApprovalEligible" json:"autoApprovalEligible"`           // Set from tenant configuration at request time
}

// BookingContext is the mutable data a lifecycle machine instance carries.
// ServicesRequested is computed once at creation and frozen; ServicesApproved
// and ServicesClosed are toggled by the per-service approve/decline/closeout
// events. An approved flag may only be true for a requested service.
type BookingContext struct {
	Tenant          string `bson:"tenant" json:"tenant"`                                             // Selects which rule set applies
	CalendarEventID string `bson:"calendarEventId,omitempty" json:"calendarEventId,omitempty"`       // External calendar reference, set post-creation
	Email           string `bson:"email,omitempty" json:"email,omitempty"`                           // Requester identity
	Role            string `bson:"role,omitempty" json:"role,omitempty"`                             // Requester role
	SelectedRooms   []Room `bson:"selectedRooms,omitempty" json:"selectedRooms,omitempty"`           // Ordered list of room descriptors
	IsWalkIn        bool   `bson:"isWalkIn" json:"isWalkIn"`                                         // Walk-ins bypass manual review
	IsVip           bool   `bson:"isVip" json:"isVip"`                                               // Origin flag, surfaced to collaborators

	ServicesRequested map[ServiceKind]bool `bson:"servicesRequested,omitempty" json:"servicesRequested,omitempty"` // Frozen at creation
	ServicesApproved  map[ServiceKind]bool `bson:"servicesApproved,omitempty" json:"servicesApproved,omitempty"`   // Toggled by approve<Service>/decline<Service>
	ServicesClosed    map[ServiceKind]bool `bson:"servicesClosed,omitempty" json:"servicesClosed,omitempty"`       // Toggled by closeout<Service>

	// Set only when rehydrated from a legacy record; suppresses auto-approval
	// re-evaluation so historical bookings are not silently re-approved.
	RestoredFromExternalStatus bool `bson:"restoredFromExternalStatus" json:"restoredFromExternalStatus"`
}

// RequestedServices returns the requested kinds in AllServiceKinds order.
func (c BookingContext) RequestedServices() []ServiceKind {
	var out []ServiceKind
	for _, k := range AllServiceKinds {
		if c.ServicesRequested[k] {
			out = append(out, k)
		}
	}
	return out
}
