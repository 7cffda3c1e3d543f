package booking

import (
	"context"
	"time"

	"roomlift/models"
	"roomlift/services/lifecycle"
)

// CreateBookingInput is the workflow-facing booking request.
type CreateBookingInput struct {
	Tenant          string               `json:"tenant"`
	Email           string               `json:"email"`
	Role            string               `json:"role"`
	RoomIDs         []string             `json:"roomIds"`
	StartsAt        time.Time            `json:"startsAt"`
	EndsAt          time.Time            `json:"endsAt"`
	IsWalkIn        bool                 `json:"isWalkIn"`
	IsVip           bool                 `json:"isVip"`
	Services        []models.ServiceKind `json:"services"`
	CalendarEventID string               `json:"calendarEventId"`
}

// WorkflowService is the booking lifecycle workflow: it owns loading and
// persisting snapshots around the engine, serializing sends per booking, and
// performing the side effects each transition requests.
type WorkflowService interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, string, error)
	DispatchEvent(ctx context.Context, bookingID string, event lifecycle.Event, actor string) (string, error)
	Status(ctx context.Context, bookingID string) (string, error)
	AvailableActions(ctx context.Context, bookingID string) ([]string, error)
}

// Locker serializes event dispatch per booking id.
type Locker interface {
	Acquire(ctx context.Context, bookingID string) (func(), error)
}
