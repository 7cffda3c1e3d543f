package lifecycle

// EffectKind discriminates the side effects a transition asks for. The engine
// never performs effects itself; it returns them alongside the new snapshot
// and the caller decides execution and retry policy.
type EffectKind string

const (
	// EffectAudit appends a BookingLogEntry with the new status label.
	EffectAudit EffectKind = "audit"
	// EffectCalendar updates the status prefix on the external calendar event.
	EffectCalendar EffectKind = "calendar"
	// EffectNotify sends the notification matching the entered state.
	EffectNotify EffectKind = "notify"
)

// NotifyKind selects which notification a notify effect carries.
type NotifyKind string

const (
	NotifyApproved NotifyKind = "approved"
	NotifyDeclined NotifyKind = "declined"
	NotifyCanceled NotifyKind = "canceled"
	NotifyNoShow   NotifyKind = "noShow"
)

// Effect is one side effect requested by a transition. Effects are
// best-effort from the engine's perspective: a failing effect is logged by
// the caller and never rolls back the transition.
type Effect struct {
	Kind   EffectKind
	Label  string     // status label, set for audit and calendar effects
	Note   string     // free-text detail, e.g. which service region moved
	Notify NotifyKind // set for notify effects
}

func auditEffect(label, note string) Effect {
	return Effect{Kind: EffectAudit, Label: label, Note: note}
}

func calendarEffect(label string) Effect {
	return Effect{Kind: EffectCalendar, Label: label}
}

func notifyEffect(kind NotifyKind) Effect {
	return Effect{Kind: EffectNotify, Notify: kind}
}
