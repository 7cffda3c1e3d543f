package lifecycle

import (
	"fmt"

	"roomlift/models"

	"go.uber.org/zap"
)

// Guard predicates are pure and total: no side effects, no external calls,
// and absent flags always read as false. Evaluation order matters only in
// that RestoredFromExternalStatus short-circuits auto-approval before any
// other check, so legacy bookings are never silently re-approved.

// CanAutoApprove reports whether the booking skips manual review: every
// selected room must be individually eligible, the context must not be a
// legacy restore, and either the booking is a walk-in (walk-ins always bypass
// review regardless of services) or no ancillary service was requested.
func CanAutoApprove(ctx models.BookingContext) bool {
	if ctx.RestoredFromExternalStatus {
		return false
	}
	if len(ctx.SelectedRooms) == 0 {
		return false
	}
	for _, room := range ctx.SelectedRooms {
		if !room.AutoApprovalEligible {
			return false
		}
	}
	return ctx.IsWalkIn || !HasAnyServiceRequested(ctx)
}

// HasAnyServiceRequested reports whether at least one service flag is set.
func HasAnyServiceRequested(ctx models.BookingContext) bool {
	for _, requested := range ctx.ServicesRequested {
		if requested {
			return true
		}
	}
	return false
}

// AllServicesApproved reports whether every requested service has been
// approved. True when nothing was requested.
func AllServicesApproved(ctx models.BookingContext) bool {
	for kind, requested := range ctx.ServicesRequested {
		if requested && !ctx.ServicesApproved[kind] {
			return false
		}
	}
	return true
}

// AllServicesClosed reports whether every requested service has been closed
// out after check-out. True when nothing was requested.
func AllServicesClosed(ctx models.BookingContext, closed map[models.ServiceKind]bool) bool {
	for kind, requested := range ctx.ServicesRequested {
		if requested && !closed[kind] {
			return false
		}
	}
	return true
}

// safeGuard evaluates a guard, recovering from a panic by treating the guard
// as false. Guards must not panic by contract; if one ever does, the machine
// stays progressable and the incident is logged.
func safeGuard(logger *zap.Logger, name string, fn func() bool) (result bool) {
	defer func() {
		if r := recover(); r != nil {
			result = false
			if logger != nil {
				logger.Error("lifecycle guard panicked, treating as false",
					zap.String("guard", name),
					zap.String("panic", fmt.Sprint(r)))
			}
		}
	}()
	return fn()
}
