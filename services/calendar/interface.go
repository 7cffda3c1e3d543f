package calendar

import "context"

// Service mutates the external calendar event belonging to a booking.
// Updates are best-effort: a failure is logged by the caller and never
// retried by the lifecycle engine.
type Service interface {
	SetStatusPrefix(ctx context.Context, calendarEventID, label string) error
}
