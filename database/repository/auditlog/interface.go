package auditlogRepo

import (
	"context"

	"roomlift/database"
	"roomlift/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AuditLogRepository defines append-only access to booking log entries.
// Entries are written once per lifecycle transition and never mutated;
// at-least-once delivery means duplicates must be tolerated by readers.
type AuditLogRepository interface {
	Append(ctx context.Context, entry models.BookingLogEntry) error
	ListByBooking(ctx context.Context, bookingID string) ([]models.BookingLogEntry, error)
}

type mongoAuditLogRepo struct {
	coll *mongo.Collection
}

// NewMongoAuditLogRepo returns an AuditLogRepository backed by MongoDB.
func NewMongoAuditLogRepo() AuditLogRepository {
	db := database.MongoClient.Database("roomlift")
	return &mongoAuditLogRepo{
		coll: db.Collection("booking_log"),
	}
}
