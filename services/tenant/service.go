package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tenantRepo "roomlift/database/repository/tenant"
	"roomlift/models"
	"roomlift/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const cacheTTL = 5 * time.Minute

// DefaultConfigService reads tenant configuration from MongoDB with a
// short-lived Redis cache in front; rule-set reads happen on every booking
// start and the configs change rarely.
type DefaultConfigService struct {
	Repo  tenantRepo.TenantRepository
	Cache *redis.Client
}

func NewDefaultConfigService(repo tenantRepo.TenantRepository, cache *redis.Client) *DefaultConfigService {
	return &DefaultConfigService{Repo: repo, Cache: cache}
}

// GetConfig returns the tenant configuration, preferring the cache.
func (s *DefaultConfigService) GetConfig(ctx context.Context, tenant string) (*models.TenantConfig, error) {
	key := "tenant-config:" + tenant

	if s.Cache != nil {
		if data, err := s.Cache.Get(ctx, key).Result(); err == nil {
			var cfg models.TenantConfig
			if err := json.Unmarshal([]byte(data), &cfg); err == nil {
				return &cfg, nil
			}
		}
	}

	cfg, err := s.Repo.GetTenant(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant config for %s: %w", tenant, err)
	}

	if s.Cache != nil {
		if data, err := json.Marshal(cfg); err == nil {
			if err := s.Cache.Set(ctx, key, data, cacheTTL).Err(); err != nil {
				utils.GetLogger().Warn("failed to cache tenant config",
					zap.String("tenant", tenant), zap.Error(err))
			}
		}
	}
	return cfg, nil
}

// RoomEligibility reports whether the room is auto-approval eligible for the
// tenant. Unknown rooms are not eligible.
func (s *DefaultConfigService) RoomEligibility(ctx context.Context, tenant, roomID string) (bool, error) {
	cfg, err := s.GetConfig(ctx, tenant)
	if err != nil {
		return false, err
	}
	return cfg.RoomEligibility(roomID), nil
}

// Rules returns the tenant rule set the lifecycle engine starts with.
func (s *DefaultConfigService) Rules(ctx context.Context, tenant string) (models.TenantRules, error) {
	cfg, err := s.GetConfig(ctx, tenant)
	if err != nil {
		return models.TenantRules{}, err
	}
	return models.TenantRules{UsesServiceWorkflow: cfg.UsesServiceWorkflow}, nil
}
