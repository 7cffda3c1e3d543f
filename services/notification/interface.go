package notification

import "context"

// Notification kinds emitted by lifecycle transitions.
const (
	KindApproved = "approved"
	KindDeclined = "declined"
	KindCanceled = "canceled"
	KindNoShow   = "noShow"
)

// NotificationService defines methods for sending booking pushes. Sends are
// fire-and-forget from the lifecycle engine's perspective; failures are
// logged by the dispatcher and never affect the transition.
type NotificationService interface {
	Send(ctx context.Context, kind string, recipients []string, payload map[string]string) error
}
