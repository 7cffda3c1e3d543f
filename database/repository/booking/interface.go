package bookingRepo

import (
	"context"
	"errors"
	"time"

	"roomlift/database"
	"roomlift/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrRevisionConflict is returned when a snapshot write loses an optimistic
// concurrency race; the caller must reload the freshest snapshot and re-apply
// its event.
var ErrRevisionConflict = errors.New("booking revision conflict")

// ErrNotFound is returned when no booking matches the given id.
var ErrNotFound = errors.New("booking not found")

// BookingRepository defines the interface for booking data access.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// UpdateSnapshot persists a new snapshot document iff the stored revision
	// still matches fromRevision, bumping the revision on success.
	UpdateSnapshot(ctx context.Context, id string, snapshot map[string]interface{}, fromRevision int64) error
	// ListNoShowCandidates returns bookings whose scheduled end has passed
	// while their snapshot still rests in one of the given states.
	ListNoShowCandidates(ctx context.Context, before time.Time, states []string) ([]models.Booking, error)
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a BookingRepository backed by MongoDB.
func NewMongoBookingRepo() BookingRepository {
	db := database.MongoClient.Database("roomlift")
	return &mongoBookingRepo{
		coll: db.Collection("bookings"),
	}
}
