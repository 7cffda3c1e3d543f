package auditlogRepo

import (
	"context"
	"time"

	"roomlift/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Append inserts a new log entry and returns once it is durable.
func (r *mongoAuditLogRepo) Append(ctx context.Context, entry models.BookingLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	_, err := r.coll.InsertOne(ctx, entry)
	return err
}

// ListByBooking returns all log entries for a booking, oldest first.
func (r *mongoAuditLogRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.BookingLogEntry, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.BookingLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
