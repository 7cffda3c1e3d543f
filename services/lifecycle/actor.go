package lifecycle

import (
	"time"

	"roomlift/models"
	"roomlift/utils"
)

// Snapshot status values, mirroring the persisted document's status field.
const (
	statusActive = "active"
	statusDone   = "done"
)

// Actor interprets one machine instance for one booking. It is single
// threaded and cooperative: Send runs one event to completion (guards, state
// update, effect collection) before returning. Callers must serialize access
// per booking id; actors for different bookings are fully independent.
type Actor struct {
	machineID      string
	value          StateValue
	context        models.BookingContext
	status         string
	lastTransition time.Time
}

// Start constructs a fresh actor from a booking context and the tenant rule
// set, runs the initial guard evaluation exactly once, and returns the actor
// together with the entry effects of the settled state. Callers fetch tenant
// rules once and pass them in; the engine reads no ambient state.
func Start(ctx models.BookingContext, rules models.TenantRules) (*Actor, []Effect) {
	machineID := MachineRoomBooking
	if rules.UsesServiceWorkflow {
		machineID = MachineRoomBookingServices
	}
	a := &Actor{
		machineID: machineID,
		context:   ctx,
		status:    statusActive,
	}
	logger := utils.GetLogger()
	if safeGuard(logger, "canAutoApprove", func() bool { return CanAutoApprove(a.context) }) {
		return a, a.enterApproved()
	}
	return a, a.enterLeaf(StateRequested)
}

// Resume rehydrates an actor at a previously persisted state. Initial guards
// are not re-run; they only run on a fresh Start.
func Resume(snap Snapshot) *Actor {
	return &Actor{
		machineID:      snap.MachineID,
		value:          snap.Value,
		context:        snap.Context,
		status:         snap.Status,
		lastTransition: snap.LastTransition,
	}
}

// Value returns the current state value.
func (a *Actor) Value() StateValue {
	return a.value
}

// Context returns a copy of the booking context.
func (a *Actor) Context() models.BookingContext {
	return a.context
}

// Done reports whether a terminal state has been reached.
func (a *Actor) Done() bool {
	return a.status == statusDone
}

// Snapshot captures the actor's current state for persistence.
func (a *Actor) Snapshot() Snapshot {
	return Snapshot{
		MachineID:      a.machineID,
		LastTransition: a.lastTransition,
		Status:         a.status,
		Value:          a.value,
		Context:        a.context,
		HistoryValue:   map[string]interface{}{},
		Children:       map[string]interface{}{},
	}
}

// Send delivers one event. If the current state has no transition defined for
// the event, or a terminal state has been reached, the call is a silent no-op
// returning no effects; stale UI buttons must never surface as errors.
func (a *Actor) Send(ev Event) []Effect {
	if a.Done() {
		return nil
	}
	if a.value.Composite() {
		switch a.value.Name {
		case StateServicesRequest:
			return a.sendServicesRequest(ev)
		case StateServiceCloseout:
			return a.sendServiceCloseout(ev)
		}
		return nil
	}
	t, ok := transitionFor(a.value.Name, ev)
	if !ok {
		return nil
	}
	switch t.To {
	case StateApproved:
		return a.enterApproved()
	case StateCheckedOut:
		return a.enterCheckedOut()
	default:
		return a.enterLeaf(t.To)
	}
}

// CanSend reports whether the event would cause a transition, without
// mutating state. Used by callers to decide which actions to offer.
func (a *Actor) CanSend(ev Event) bool {
	if a.Done() {
		return false
	}
	if a.value.Composite() {
		switch a.value.Name {
		case StateServicesRequest:
			if ev == EventCancel {
				return true
			}
			verb, kind, ok := serviceEvent(ev)
			return ok && (verb == "approve" || verb == "decline") && a.context.ServicesRequested[kind]
		case StateServiceCloseout:
			verb, kind, ok := serviceEvent(ev)
			return ok && verb == "closeout" && a.context.ServicesRequested[kind] && !a.context.ServicesClosed[kind]
		}
		return false
	}
	_, ok := transitionFor(a.value.Name, ev)
	return ok
}

// sendServicesRequest handles events while the parallel service-approval
// regions are active. Each requested service progresses independently; the
// composite exits into plain Approved the instant every requested service is
// approved, with no explicit event.
func (a *Actor) sendServicesRequest(ev Event) []Effect {
	if ev == EventCancel {
		return a.enterLeaf(StateCanceled)
	}
	verb, kind, ok := serviceEvent(ev)
	if !ok || !a.context.ServicesRequested[kind] {
		return nil
	}
	var effects []Effect
	switch verb {
	case "approve":
		a.setServiceApproved(kind, true)
		a.value.Regions[kind] = RegionApproved
		effects = append(effects, auditEffect(StateServicesRequest, string(kind)+" approved"))
	case "decline":
		a.setServiceApproved(kind, false)
		a.value.Regions[kind] = RegionDeclined
		effects = append(effects, auditEffect(StateServicesRequest, string(kind)+" declined"))
	default:
		return nil
	}
	a.lastTransition = time.Now().UTC()
	logger := utils.GetLogger()
	if safeGuard(logger, "allServicesApproved", func() bool { return AllServicesApproved(a.context) }) {
		effects = append(effects, a.enterLeaf(StateApproved)...)
	}
	return effects
}

// sendServiceCloseout handles events while the post-checkout closeout
// regions are active; the composite exits into Closed once every requested
// service reports closed.
func (a *Actor) sendServiceCloseout(ev Event) []Effect {
	verb, kind, ok := serviceEvent(ev)
	if !ok || verb != "closeout" || !a.context.ServicesRequested[kind] {
		return nil
	}
	if a.context.ServicesClosed[kind] {
		return nil
	}
	a.setServiceClosed(kind)
	a.value.Regions[kind] = RegionClosed
	a.lastTransition = time.Now().UTC()
	effects := []Effect{auditEffect(StateServiceCloseout, string(kind) + " closed out")}

	logger := utils.GetLogger()
	closed := a.context.ServicesClosed
	if safeGuard(logger, "allServicesClosed", func() bool { return AllServicesClosed(a.context, closed) }) {
		effects = append(effects, a.enterLeaf(StateClosed)...)
	}
	return effects
}

// enterApproved resolves an approval landing: when the tenant runs the
// service workflow and at least one service is still pending approval, the
// machine enters the Services Request composite instead of the plain leaf.
func (a *Actor) enterApproved() []Effect {
	logger := utils.GetLogger()
	pending := a.machineID == MachineRoomBookingServices &&
		safeGuard(logger, "hasAnyServiceRequested", func() bool { return HasAnyServiceRequested(a.context) }) &&
		!safeGuard(logger, "allServicesApproved", func() bool { return AllServicesApproved(a.context) })
	if !pending {
		return a.enterLeaf(StateApproved)
	}

	regions := make(map[models.ServiceKind]string)
	for _, kind := range a.context.RequestedServices() {
		if a.context.ServicesApproved[kind] {
			regions[kind] = RegionApproved
		} else {
			regions[kind] = RegionRequested
		}
	}
	a.value = StateValue{Name: StateServicesRequest, Regions: regions}
	a.lastTransition = time.Now().UTC()
	return []Effect{auditEffect(StateServicesRequest, "")}
}

// enterCheckedOut resolves the check-out landing: with pending service
// closeouts the machine enters the Service Closeout composite; otherwise it
// advances straight through Checked Out into Closed.
func (a *Actor) enterCheckedOut() []Effect {
	effects := a.enterLeaf(StateCheckedOut)

	logger := utils.GetLogger()
	closed := a.context.ServicesClosed
	pending := a.machineID == MachineRoomBookingServices &&
		safeGuard(logger, "hasAnyServiceRequested", func() bool { return HasAnyServiceRequested(a.context) }) &&
		!safeGuard(logger, "allServicesClosed", func() bool { return AllServicesClosed(a.context, closed) })
	if !pending {
		return append(effects, a.enterLeaf(StateClosed)...)
	}

	regions := make(map[models.ServiceKind]string)
	for _, kind := range a.context.RequestedServices() {
		if a.context.ServicesClosed[kind] {
			regions[kind] = RegionClosed
		} else {
			regions[kind] = RegionPending
		}
	}
	a.value = StateValue{Name: StateServiceCloseout, Regions: regions}
	a.lastTransition = time.Now().UTC()
	return append(effects, auditEffect(StateServiceCloseout, ""))
}

// enterLeaf commits a flat state entry and collects its entry effects. The
// state change is committed in memory before any effect runs, so effect
// failures can never roll it back.
func (a *Actor) enterLeaf(name string) []Effect {
	a.value = Leaf(name)
	a.lastTransition = time.Now().UTC()
	if isTerminal(name) {
		a.status = statusDone
	}

	effects := []Effect{auditEffect(name, "")}
	switch name {
	case StateApproved:
		effects = append(effects, calendarEffect(StateApproved), notifyEffect(NotifyApproved))
	case StateDeclined:
		effects = append(effects, notifyEffect(NotifyDeclined))
	case StateCanceled:
		effects = append(effects, notifyEffect(NotifyCanceled))
	case StateNoShow:
		effects = append(effects, notifyEffect(NotifyNoShow))
	}
	return effects
}

func (a *Actor) setServiceApproved(kind models.ServiceKind, approved bool) {
	if a.context.ServicesApproved == nil {
		a.context.ServicesApproved = make(map[models.ServiceKind]bool)
	}
	if approved {
		a.context.ServicesApproved[kind] = true
	} else {
		delete(a.context.ServicesApproved, kind)
	}
}

func (a *Actor) setServiceClosed(kind models.ServiceKind) {
	if a.context.ServicesClosed == nil {
		a.context.ServicesClosed = make(map[models.ServiceKind]bool)
	}
	a.context.ServicesClosed[kind] = true
}
