package tenantRepo

import (
	"context"
	"errors"

	"roomlift/database"
	"roomlift/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no configuration exists for a tenant.
var ErrNotFound = errors.New("tenant config not found")

// TenantRepository defines read access to tenant configuration.
type TenantRepository interface {
	GetTenant(ctx context.Context, tenant string) (*models.TenantConfig, error)
}

type mongoTenantRepo struct {
	coll *mongo.Collection
}

// NewMongoTenantRepo returns a TenantRepository backed by MongoDB.
func NewMongoTenantRepo() TenantRepository {
	db := database.MongoClient.Database("roomlift")
	return &mongoTenantRepo{
		coll: db.Collection("tenants"),
	}
}

// GetTenant returns the stored configuration for one tenant.
func (r *mongoTenantRepo) GetTenant(ctx context.Context, tenant string) (*models.TenantConfig, error) {
	var cfg models.TenantConfig
	err := r.coll.FindOne(ctx, bson.M{"tenant": tenant}).Decode(&cfg)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
