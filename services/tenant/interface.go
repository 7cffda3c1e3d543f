package tenant

import (
	"context"

	"roomlift/models"
)

// ConfigService exposes the tenant configuration reads the lifecycle
// dispatcher needs: per-room auto-approval eligibility and the tenant rule
// set. Both are queried once at booking start.
type ConfigService interface {
	RoomEligibility(ctx context.Context, tenant, roomID string) (bool, error)
	Rules(ctx context.Context, tenant string) (models.TenantRules, error)
	GetConfig(ctx context.Context, tenant string) (*models.TenantConfig, error)
}
