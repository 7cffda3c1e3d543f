package bookingRepo

import (
	"context"
	"time"

	"roomlift/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new booking record.
func (r *mongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, booking)
	return err
}

// GetByID returns a booking by its ID.
func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateSnapshot writes the new snapshot document guarded by a revision
// compare-and-set. Two callers racing on one booking means the loser sees
// ErrRevisionConflict and must retry from the freshest snapshot.
func (r *mongoBookingRepo) UpdateSnapshot(ctx context.Context, id string, snapshot map[string]interface{}, fromRevision int64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "revision": fromRevision},
		bson.M{
			"$set": bson.M{
				"snapshot":   snapshot,
				"updated_at": time.Now(),
			},
			"$inc": bson.M{"revision": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRevisionConflict
	}
	return nil
}

// ListNoShowCandidates fetches bookings past their scheduled end whose
// snapshot value is still one of the given states.
func (r *mongoBookingRepo) ListNoShowCandidates(ctx context.Context, before time.Time, states []string) ([]models.Booking, error) {
	cursor, err := r.coll.Find(ctx, bson.M{
		"ends_at":                 bson.M{"$lt": before},
		"snapshot.snapshot.value": bson.M{"$in": states},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}
