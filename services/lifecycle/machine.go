package lifecycle

import (
	"strings"

	"roomlift/models"
)

// Event is a lifecycle event accepted by Send. Names are case-sensitive and
// fixed for compatibility with stored snapshots and API callers.
type Event string

const (
	EventApprove  Event = "approve"
	EventDecline  Event = "decline"
	EventCancel   Event = "cancel"
	EventCheckIn  Event = "checkIn"
	EventCheckOut Event = "checkOut"
	EventNoShow   Event = "noShow"
	EventClose    Event = "close"
)

// ApproveServiceEvent returns the per-service approval event (e.g. "approveCatering").
func ApproveServiceEvent(k models.ServiceKind) Event {
	return Event("approve" + string(k))
}

// DeclineServiceEvent returns the per-service decline event.
func DeclineServiceEvent(k models.ServiceKind) Event {
	return Event("decline" + string(k))
}

// CloseoutServiceEvent returns the per-service closeout event.
func CloseoutServiceEvent(k models.ServiceKind) Event {
	return Event("closeout" + string(k))
}

// serviceEvent splits a per-service event into its verb and service kind.
// Returns ok=false for plain lifecycle events and unknown service names.
func serviceEvent(ev Event) (verb string, kind models.ServiceKind, ok bool) {
	for _, v := range []string{"approve", "decline", "closeout"} {
		rest, found := strings.CutPrefix(string(ev), v)
		if !found || rest == "" {
			continue
		}
		if models.IsValidServiceKind(rest) {
			return v, models.ServiceKind(rest), true
		}
	}
	return "", "", false
}

// State names. Leaf names double as display labels; the two composite names
// label their parallel-region phases.
const (
	StateRequested       = "Requested"
	StatePreApproved     = "Pre-approved"
	StateApproved        = "Approved"
	StateServicesRequest = "Services Request"
	StateCheckedIn       = "Checked In"
	StateCheckedOut      = "Checked Out"
	StateServiceCloseout = "Service Closeout"
	StateNoShow          = "No Show"
	StateDeclined        = "Declined"
	StateCanceled        = "Canceled"
	StateClosed          = "Closed"
)

// StatusUnknown is the resolver label for records with no usable state data.
const StatusUnknown = "Unknown"

// Region sub-states inside the composite states.
const (
	RegionRequested = "Requested"
	RegionApproved  = "Approved"
	RegionDeclined  = "Declined"
	RegionPending   = "Pending"
	RegionClosed    = "Closed"
)

// Machine identifiers. Tenants whose rule set enables the ancillary service
// sub-workflow run the services machine; everyone else runs the basic one.
// The resolver uses the id to decide how to interpret a stored state value.
const (
	MachineRoomBooking         = "roomBooking"
	MachineRoomBookingServices = "roomBookingServices"
)

// StateValue is the current position of a machine instance: either a flat
// leaf state, or a composite state holding one independently progressing
// sub-state per requested service.
type StateValue struct {
	Name    string
	Regions map[models.ServiceKind]string
}

// Leaf returns a flat state value.
func Leaf(name string) StateValue {
	return StateValue{Name: name}
}

// Composite reports whether the value is a parallel composite state.
func (v StateValue) Composite() bool {
	return len(v.Regions) > 0
}

func isTerminal(name string) bool {
	switch name {
	case StateDeclined, StateCanceled, StateNoShow, StateClosed:
		return true
	}
	return false
}

func isKnownLeaf(name string) bool {
	switch name {
	case StateRequested, StatePreApproved, StateApproved, StateCheckedIn,
		StateCheckedOut, StateNoShow, StateDeclined, StateCanceled, StateClosed:
		return true
	}
	return false
}

// transition is a single allowed edge between flat states. Targets that name
// Approved or Checked Out are resolved dynamically by the actor, since both
// may land in a composite state when services are in play.
type transition struct {
	From  string
	Event Event
	To    string
}

var transitions = []transition{
	{From: StateRequested, Event: EventApprove, To: StatePreApproved},
	{From: StatePreApproved, Event: EventApprove, To: StateApproved},

	{From: StateRequested, Event: EventDecline, To: StateDeclined},
	{From: StatePreApproved, Event: EventDecline, To: StateDeclined},

	{From: StateRequested, Event: EventCancel, To: StateCanceled},
	{From: StatePreApproved, Event: EventCancel, To: StateCanceled},
	{From: StateApproved, Event: EventCancel, To: StateCanceled},

	{From: StateApproved, Event: EventCheckIn, To: StateCheckedIn},
	{From: StateApproved, Event: EventNoShow, To: StateNoShow},
	{From: StateCheckedIn, Event: EventCheckOut, To: StateCheckedOut},
	{From: StateCheckedIn, Event: EventNoShow, To: StateNoShow},

	{From: StateCheckedOut, Event: EventClose, To: StateClosed},
}

func transitionFor(from string, ev Event) (transition, bool) {
	for _, t := range transitions {
		if t.From == from && t.Event == ev {
			return t, true
		}
	}
	return transition{}, false
}
